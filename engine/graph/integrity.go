package graph

import (
	"fmt"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// PlacementRels are the relationships that can place a wire in space when
// it has no native path geometry: the wire's position is inferred from the
// anchored entities on the far side of these edges. The spatial
// synthesizer bridges through the same set.
var PlacementRels = map[schema.Relationship]bool{
	schema.RelPinToWire:    true,
	schema.RelWireToPin:    true,
	schema.RelWireToFuse:   true,
	schema.RelWireToGround: true,
	schema.RelHasConnector: true,
}

// endpointRule returns the required source/target node types for a
// relationship. Empty means unconstrained. The switch enumerates the
// closed Relationship set; a new relationship must get a case here before
// the validator will ever admit it.
func endpointRule(rel schema.Relationship) (src, dst schema.NodeType) {
	switch rel {
	case schema.RelHasPin:
		return schema.TypeConnector, ""
	case schema.RelPinToWire:
		return schema.TypePin, schema.TypeWire
	case schema.RelWireToPin:
		return schema.TypeWire, schema.TypePin
	case schema.RelWireToFuse:
		return "", schema.TypeFuse
	case schema.RelWireToGround:
		return "", schema.TypeGroundPoint
	case schema.RelGroundToPlane:
		return "", schema.TypeGroundPlane
	case schema.RelInLocation:
		return "", schema.TypeLocation
	case schema.RelHasConnector, schema.RelConnectsTo:
		return "", ""
	}
	return "", ""
}

// CheckIntegrity enforces the relationship/endpoint-type table and detects
// dangling references. Violations never remove an edge: a dangling edge is
// flagged (excluding it from the adjacency view), a type violation is
// recorded and the edge left as-is. In strict mode the first error aborts.
//
// The wire-placement check at the end is advisory only: it warns about
// wires the synthesizer will have to bridge, and never blocks a run.
func CheckIntegrity(s *Store, mode schema.Mode) ([]schema.IntegrityError, []schema.GeometryWarning, error) {
	var errs []schema.IntegrityError

	report := func(e *schema.Edge, reason string) *schema.IntegrityError {
		ie := schema.IntegrityError{Source: e.Source, Target: e.Target, Rel: e.Rel, Reason: reason}
		errs = append(errs, ie)
		return &ie
	}

	for _, e := range s.Edges() {
		srcNode, srcOK := s.Node(e.Source)
		dstNode, dstOK := s.Node(e.Target)

		if !srcOK || !dstOK {
			e.Flagged = true
			ie := report(e, "unresolved endpoint")
			if mode == schema.ModeStrict {
				return errs, nil, ie
			}
			continue
		}

		wantSrc, wantDst := endpointRule(e.Rel)
		if wantSrc != "" && srcNode.Type != wantSrc {
			ie := report(e, fmt.Sprintf("source must be %s, got %s", wantSrc, srcNode.Type))
			if mode == schema.ModeStrict {
				return errs, nil, ie
			}
		}
		if wantDst != "" && dstNode.Type != wantDst {
			ie := report(e, fmt.Sprintf("target must be %s, got %s", wantDst, dstNode.Type))
			if mode == schema.ModeStrict {
				return errs, nil, ie
			}
		}
	}

	return errs, checkWirePlacement(s), nil
}

// checkWirePlacement warns for each wire that has neither native path
// geometry nor at least two placement edges resolving to anchored
// endpoints. Synthesis runs after this and may still fix the wire, so the
// warning names that follow-up.
func checkWirePlacement(s *Store) []schema.GeometryWarning {
	var warns []schema.GeometryWarning
	for _, n := range s.Nodes() {
		if n.Type != schema.TypeWire || len(n.Path) > 0 {
			continue
		}
		if len(AnchoredEndpoints(s, n.ID)) >= 2 {
			continue
		}
		warns = append(warns, schema.GeometryWarning{
			NodeID: n.ID,
			Reason: "wire has no path geometry and fewer than 2 anchored placement endpoints; synthesis will attempt a bridge",
		})
	}
	return warns
}

// AnchoredEndpoints returns, in edge insertion order, the distinct far
// endpoints of a node's placement edges that carry an anchor point.
func AnchoredEndpoints(s *Store, id string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range s.Edges() {
		if e.Flagged || !PlacementRels[e.Rel] {
			continue
		}
		var other string
		switch id {
		case e.Source:
			other = e.Target
		case e.Target:
			other = e.Source
		default:
			continue
		}
		if seen[other] {
			continue
		}
		if n, ok := s.Node(other); ok && n.AnchorXYZ != nil {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}
