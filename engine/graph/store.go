// Package graph holds the canonical wiring-graph store, the derived lookup
// model, and the topology integrity checker.
package graph

import (
	"sort"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// Store is the canonical Node/Edge/Metadata store for a single pipeline
// run. It is exclusively owned by that run; concurrent runs use
// independent stores. Nothing is ever deleted from a Store: records that
// fail validation are simply never inserted.
type Store struct {
	meta  *schema.Metadata
	nodes map[string]*schema.Node
	edges []*schema.Edge
}

// NewStore creates an empty canonical store.
func NewStore() *Store {
	return &Store{nodes: make(map[string]*schema.Node)}
}

// SetMetadata records the singleton graph header. The last metadata record
// wins; duplicate headers are a caller concern.
func (s *Store) SetMetadata(m *schema.Metadata) { s.meta = m }

// Metadata returns the graph header, or nil if none was supplied.
func (s *Store) Metadata() *schema.Metadata { return s.meta }

// AddNode inserts a node. Inserting a second node with the same id returns
// schema.ErrDuplicateID and leaves the first node in place.
func (s *Store) AddNode(n *schema.Node) error {
	if _, exists := s.nodes[n.ID]; exists {
		return schema.ErrDuplicateID
	}
	s.nodes[n.ID] = n
	return nil
}

// AddEdge appends an edge. Edges are kept in insertion order; dangling
// edges are retained and flagged by the integrity checker rather than
// rejected here.
func (s *Store) AddEdge(e *schema.Edge) { s.edges = append(s.edges, e) }

// Node returns the node with the given id.
func (s *Store) Node(id string) (*schema.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by id.
func (s *Store) Nodes() []*schema.Node {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*schema.Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}

// Edges returns all edges in insertion order, including flagged ones.
func (s *Store) Edges() []*schema.Edge { return s.edges }

// Len returns the node and edge counts.
func (s *Store) Len() (nodes, edges int) { return len(s.nodes), len(s.edges) }
