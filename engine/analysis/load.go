package analysis

import (
	"strings"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// DrawEstimate is an estimated current draw range in amperes. It is an
// estimate from a lookup table, not a solved circuit value.
type DrawEstimate struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Typical float64 `json:"typical"`
}

// drawByType is the base estimate per node type. Types absent here
// (wires, pins, structural nodes) draw nothing themselves.
var drawByType = map[schema.NodeType]DrawEstimate{
	schema.TypeComponent: {Min: 0.5, Max: 15, Typical: 4},
	schema.TypeRelay:     {Min: 0.1, Max: 0.5, Typical: 0.2},
	schema.TypeBus:       {Min: 0.05, Max: 0.5, Typical: 0.1},
}

// drawOverrides refine the base estimate by label substring, evaluated in
// order with first match winning. The starter entry dwarfs everything
// else on purpose: cranking current is in a different class.
var drawOverrides = []struct {
	substring string
	est       DrawEstimate
}{
	{"starter", DrawEstimate{Min: 80, Max: 250, Typical: 150}},
	{"glow plug", DrawEstimate{Min: 20, Max: 60, Typical: 40}},
	{"blower", DrawEstimate{Min: 10, Max: 25, Typical: 15}},
	{"heated seat", DrawEstimate{Min: 4, Max: 10, Typical: 6}},
	{"fuel pump", DrawEstimate{Min: 4, Max: 10, Typical: 6}},
	{"headlight", DrawEstimate{Min: 4, Max: 10, Typical: 5}},
	{"wiper", DrawEstimate{Min: 2, Max: 6, Typical: 3}},
	{"ecu", DrawEstimate{Min: 0.5, Max: 2, Typical: 1}},
}

// EstimateDraw returns the current-draw estimate for a node from the
// type-keyed table, refined by label-substring overrides.
func EstimateDraw(n *schema.Node) DrawEstimate {
	label := strings.ToLower(n.Label)
	for _, o := range drawOverrides {
		if label != "" && strings.Contains(label, o.substring) {
			return o.est
		}
	}
	return drawByType[n.Type]
}

// WireRecommendation is a suggested conductor size and fuse rating for
// feeding one load.
type WireRecommendation struct {
	Gauge      string  `json:"gauge"`
	FuseAmps   float64 `json:"fuse_amps"`
	BasisTotal float64 `json:"basis_amps"`
}

// gaugeSteps maps a maximum continuous current to the smallest metric
// conductor size rated for it.
var gaugeSteps = []struct {
	maxAmps float64
	gauge   string
}{
	{5, "0.5mm²"},
	{10, "1.0mm²"},
	{15, "1.5mm²"},
	{20, "2.5mm²"},
	{30, "4.0mm²"},
	{50, "6.0mm²"},
	{100, "16mm²"},
	{300, "25mm²"},
}

// fuseRatings are the standard blade/midi ratings to round up into.
var fuseRatings = []float64{5, 7.5, 10, 15, 20, 25, 30, 40, 50, 60, 80, 100, 150, 200, 250, 300}

// RecommendWiring sizes a conductor and fuse for a node's estimated peak
// draw with 25% headroom. Nodes with no estimated draw return a zero
// recommendation.
func RecommendWiring(n *schema.Node) WireRecommendation {
	est := EstimateDraw(n)
	if est.Max <= 0 {
		return WireRecommendation{}
	}
	need := est.Max * 1.25

	rec := WireRecommendation{BasisTotal: need}
	for _, step := range gaugeSteps {
		if need <= step.maxAmps {
			rec.Gauge = step.gauge
			break
		}
	}
	if rec.Gauge == "" {
		rec.Gauge = gaugeSteps[len(gaugeSteps)-1].gauge
	}
	for _, r := range fuseRatings {
		if r >= need {
			rec.FuseAmps = r
			break
		}
	}
	if rec.FuseAmps == 0 {
		rec.FuseAmps = fuseRatings[len(fuseRatings)-1]
	}
	return rec
}
