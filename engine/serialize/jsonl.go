// Package serialize renders a canonical store back to JSONL with a
// byte-stable ordering: the metadata record first, then nodes sorted by
// id, then edges sorted by (source, target). Serializing the same store
// twice, or a store rebuilt from its own output, yields identical bytes.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
)

// Wrapper structs pin the kind discriminator as the first key of every
// emitted object. encoding/json emits struct fields in declaration order.

type metaLine struct {
	Kind schema.Kind `json:"kind"`
	*schema.Metadata
}

type nodeLine struct {
	Kind schema.Kind `json:"kind"`
	*schema.Node
}

type edgeLine struct {
	Kind schema.Kind `json:"kind"`
	*schema.Edge
}

// Write streams the store to w in canonical order, one record per line.
func Write(w io.Writer, s *graph.Store) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if meta := s.Metadata(); meta != nil {
		if err := enc.Encode(metaLine{Kind: schema.KindMeta, Metadata: meta}); err != nil {
			return fmt.Errorf("serialize metadata: %w", err)
		}
	}

	// Store.Nodes already sorts by id.
	for _, n := range s.Nodes() {
		if err := enc.Encode(nodeLine{Kind: schema.KindNode, Node: n}); err != nil {
			return fmt.Errorf("serialize node %s: %w", n.ID, err)
		}
	}

	edges := append([]*schema.Edge(nil), s.Edges()...)
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		if err := enc.Encode(edgeLine{Kind: schema.KindEdge, Edge: e}); err != nil {
			return fmt.Errorf("serialize edge %s->%s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

// Marshal returns the canonical JSONL bytes for a store.
func Marshal(s *graph.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
