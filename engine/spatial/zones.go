// Package spatial fills missing anchor coordinates and missing wire
// geometry in the canonical graph. Every operation here is guarded by a
// presence check, so re-running synthesis on an already-synthesized graph
// is a no-op.
package spatial

import "github.com/WessleyAI/harness-engine/engine/schema"

// ZoneAnchors maps each named vehicle zone to its representative anchor
// point in metres, vehicle frame (X forward, Y left, Z up). A node with a
// zone but no anchor is placed at the zone's point.
var ZoneAnchors = map[string]schema.Vec3{
	"Engine Compartment": {1.10, 0.00, 0.75},
	"Dashboard":          {0.45, 0.00, 0.95},
	"Cabin":              {0.00, 0.00, 0.60},
	"Trunk":              {-1.45, 0.00, 0.70},
	"Roof":               {0.00, 0.00, 1.40},
	"Left Front Door":    {0.30, 0.80, 0.85},
	"Right Front Door":   {0.30, -0.80, 0.85},
}

// DefaultBBoxes are the static per-type bounding boxes (metres) assigned
// to nodes that ship without one.
var DefaultBBoxes = map[schema.NodeType]schema.Vec3{
	schema.TypeComponent: {0.15, 0.15, 0.10},
	schema.TypeFuse:      {0.02, 0.01, 0.03},
	schema.TypeRelay:     {0.03, 0.03, 0.04},
}
