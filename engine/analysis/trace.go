// Package analysis runs read-only heuristic topology analysis over the
// canonical graph model: power-path tracing, circuit-family
// classification, current-draw estimation, and pattern detection. Every
// function here is pure and deterministic: identical input always yields
// identical output.
package analysis

import (
	"strings"

	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
)

// DefaultMaxTraceDepth bounds power-path traversal. The graph is not
// guaranteed acyclic, so the bound is load-bearing, not a tuning knob.
const DefaultMaxTraceDepth = 6

// distributionTypes are the node types a power path may pass *through*.
// Any other node type terminates the path.
var distributionTypes = map[schema.NodeType]bool{
	schema.TypeFuse:      true,
	schema.TypeConnector: true,
	schema.TypeRelay:     true,
}

// PowerPathTrace walks outward from a power source, descending only
// through distribution-role nodes (fuse, connector, relay), and returns
// every bounded path from the source to a non-distribution endpoint.
// Neighbor order comes from the model's sorted adjacency lists, so the
// result order is deterministic. maxDepth <= 0 uses DefaultMaxTraceDepth.
func PowerPathTrace(m *graph.Model, sourceID string, maxDepth int) [][]string {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTraceDepth
	}
	if _, ok := m.Nodes[sourceID]; !ok {
		return nil
	}

	var paths [][]string
	onPath := map[string]bool{sourceID: true}

	var walk func(id string, path []string, depth int)
	walk = func(id string, path []string, depth int) {
		if depth >= maxDepth {
			return
		}
		for _, nb := range m.Neighbors[id] {
			if onPath[nb] {
				continue
			}
			node, ok := m.Nodes[nb]
			if !ok {
				continue
			}
			next := append(append([]string(nil), path...), nb)
			if distributionTypes[node.Type] {
				onPath[nb] = true
				walk(nb, next, depth+1)
				delete(onPath, nb)
				continue
			}
			// Reached a load, ground, or other terminal entity.
			paths = append(paths, next)
		}
	}

	walk(sourceID, []string{sourceID}, 0)
	return paths
}

// PowerSources returns, sorted, the ids of nodes that look like power
// origins: anything labelled battery or alternator.
func PowerSources(m *graph.Model) []string {
	var out []string
	for _, id := range m.ByType[schema.TypeComponent] {
		n := m.Nodes[id]
		text := strings.ToLower(n.Label + " " + n.CanonicalID)
		if strings.Contains(text, "battery") || strings.Contains(text, "alternator") {
			out = append(out, id)
		}
	}
	return out
}
