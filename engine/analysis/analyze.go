package analysis

import (
	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/pkg/fn"
)

// Report bundles every analysis result for one graph. It is advisory
// output only and never feeds back into the graph.
type Report struct {
	Families        map[string]CircuitFamily      `json:"families"`
	Draws           map[string]DrawEstimate       `json:"draws"`
	Recommendations map[string]WireRecommendation `json:"recommendations"`
	PowerPaths      map[string][][]string         `json:"power_paths"`
	Patterns        []Pattern                     `json:"patterns"`
}

// Analyze runs the full analysis suite over a model: circuit-family
// classification for every node, draw estimates and wiring
// recommendations for drawing nodes, a power-path trace from every
// detected source, and the pattern detectors. Pure and deterministic.
func Analyze(m *graph.Model, maxDepth int) *Report {
	r := &Report{
		Families:        make(map[string]CircuitFamily, len(m.Nodes)),
		Draws:           make(map[string]DrawEstimate),
		Recommendations: make(map[string]WireRecommendation),
		PowerPaths:      make(map[string][][]string),
	}

	for _, id := range fn.SortedKeys(m.Nodes) {
		n := m.Nodes[id]
		r.Families[id] = ClassifyCircuitFamily(n)
		if est := EstimateDraw(n); est.Max > 0 {
			r.Draws[id] = est
			r.Recommendations[id] = RecommendWiring(n)
		}
	}

	for _, src := range PowerSources(m) {
		if paths := PowerPathTrace(m, src, maxDepth); len(paths) > 0 {
			r.PowerPaths[src] = paths
		}
	}

	r.Patterns = DetectPatterns(m)
	return r
}
