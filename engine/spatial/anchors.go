package spatial

import (
	"fmt"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// SynthesizeAnchor assigns the zone table's representative point to a node
// that names a zone but carries no anchor. Returns a warning citing the
// synthesized origin, or nil if nothing was written.
func SynthesizeAnchor(n *schema.Node) *schema.GeometryWarning {
	if n.AnchorXYZ != nil || n.Zone == "" {
		return nil
	}
	point, ok := ZoneAnchors[n.Zone]
	if !ok {
		return &schema.GeometryWarning{
			NodeID: n.ID,
			Reason: fmt.Sprintf("anchor_zone %q has no representative point", n.Zone),
		}
	}
	xyz := point
	n.AnchorXYZ = &xyz
	return &schema.GeometryWarning{
		NodeID: n.ID,
		Reason: fmt.Sprintf("anchor synthesized from zone %q", n.Zone),
	}
}

// DefaultBBox assigns the static per-type bounding box to component, fuse,
// and relay nodes that lack one. Returns true if a box was written.
func DefaultBBox(n *schema.Node) bool {
	if n.BBox != nil {
		return false
	}
	box, ok := DefaultBBoxes[n.Type]
	if !ok {
		return false
	}
	b := box
	n.BBox = &b
	return true
}
