package spatial

import (
	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
)

// bridgeOffset is the lateral (Y) shift applied to the midpoint of every
// bridged wire so that several wires bridged between the same two anchors
// don't collapse into one overlapping straight segment.
const bridgeOffset = 0.05

// Stats reports what a synthesis pass wrote.
type Stats struct {
	Anchors int `json:"anchors"`
	BBoxes  int `json:"bboxes"`
	Bridges int `json:"bridges"`
}

// Synthesize runs the three synthesis operations over the store in order:
// anchor synthesis, bbox defaulting, then wire path bridging (which needs
// the anchors the first pass may have just written). All three are
// monotonic and idempotent, so calling Synthesize twice writes nothing the
// second time. The caller must rebuild the graph model afterwards.
func Synthesize(s *graph.Store) (Stats, []schema.GeometryWarning) {
	var stats Stats
	var warns []schema.GeometryWarning

	for _, n := range s.Nodes() {
		if w := SynthesizeAnchor(n); w != nil {
			if n.AnchorXYZ != nil {
				stats.Anchors++
			}
			warns = append(warns, *w)
		}
		if DefaultBBox(n) {
			stats.BBoxes++
		}
	}

	bridged, bridgeWarns := bridgeWirePaths(s)
	stats.Bridges = bridged
	warns = append(warns, bridgeWarns...)
	return stats, warns
}

// bridgeWirePaths fills path_xyz for wires that still have none: the first
// two anchored placement endpoints become P1 and P2, and the path is
// [P1, M, P2] with M the midpoint shifted laterally. The offset sign
// alternates per bridged wire. A wire with fewer than two anchored
// endpoints keeps a nil path and gets exactly one warning; that is a
// valid terminal state, not an error.
func bridgeWirePaths(s *graph.Store) (int, []schema.GeometryWarning) {
	var warns []schema.GeometryWarning
	bridged := 0

	for _, n := range s.Nodes() {
		if n.Type != schema.TypeWire || len(n.Path) > 0 {
			continue
		}
		endpoints := graph.AnchoredEndpoints(s, n.ID)
		if len(endpoints) < 2 {
			warns = append(warns, schema.GeometryWarning{
				NodeID: n.ID,
				Reason: "wire path not bridgeable: fewer than 2 anchored endpoints",
			})
			continue
		}

		a, _ := s.Node(endpoints[0])
		b, _ := s.Node(endpoints[1])
		p1, p2 := *a.AnchorXYZ, *b.AnchorXYZ

		mid := schema.Vec3{
			(p1[0] + p2[0]) / 2,
			(p1[1] + p2[1]) / 2,
			(p1[2] + p2[2]) / 2,
		}
		if bridged%2 == 0 {
			mid[1] += bridgeOffset
		} else {
			mid[1] -= bridgeOffset
		}

		n.Path = []schema.Vec3{p1, mid, p2}
		bridged++
	}
	return bridged, warns
}
