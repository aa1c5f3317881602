package graph

import (
	"sort"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// Anchor captures a node's resolved 3D placement.
type Anchor struct {
	XYZ  schema.Vec3  `json:"xyz"`
	YPR  *schema.Vec3 `json:"ypr_deg,omitempty"`
	BBox *schema.Vec3 `json:"bbox_m,omitempty"`
}

// Model is the derived lookup structure over the canonical store. It is
// always rebuilt whole by BuildModel, never patched incrementally, so it
// can never reflect a partially-mutated store.
type Model struct {
	Nodes           map[string]*schema.Node
	Edges           []*schema.Edge
	ByType          map[schema.NodeType][]string
	ByZone          map[string][]string
	Neighbors       map[string][]string
	PinsByConnector map[string][]string
	WiresByRail     map[string][]string
	Anchors         map[string]Anchor
}

// BuildModel derives the full lookup model from a node/edge set. It is a
// pure function of its inputs: same nodes and edges, same model. All id
// lists are sorted so downstream traversal order is deterministic.
//
// Flagged (dangling) edges contribute nothing to the adjacency view.
func BuildModel(nodes []*schema.Node, edges []*schema.Edge) *Model {
	m := &Model{
		Nodes:           make(map[string]*schema.Node, len(nodes)),
		ByType:          make(map[schema.NodeType][]string),
		ByZone:          make(map[string][]string),
		Neighbors:       make(map[string][]string),
		PinsByConnector: make(map[string][]string),
		WiresByRail:     make(map[string][]string),
		Anchors:         make(map[string]Anchor),
	}

	for _, n := range nodes {
		m.Nodes[n.ID] = n
		m.ByType[n.Type] = append(m.ByType[n.Type], n.ID)
		if n.Zone != "" {
			m.ByZone[n.Zone] = append(m.ByZone[n.Zone], n.ID)
		}
		if n.Type == schema.TypeWire && n.Rail != "" {
			m.WiresByRail[n.Rail] = append(m.WiresByRail[n.Rail], n.ID)
		}
		if n.AnchorXYZ != nil {
			m.Anchors[n.ID] = Anchor{XYZ: *n.AnchorXYZ, YPR: n.AnchorYPR, BBox: n.BBox}
		}
	}

	neighborSets := make(map[string]map[string]struct{})
	addNeighbor := func(a, b string) {
		set, ok := neighborSets[a]
		if !ok {
			set = make(map[string]struct{})
			neighborSets[a] = set
		}
		set[b] = struct{}{}
	}

	for _, e := range edges {
		if e.Flagged {
			continue
		}
		m.Edges = append(m.Edges, e)
		// Undirected view over the directed edge store.
		addNeighbor(e.Source, e.Target)
		addNeighbor(e.Target, e.Source)
		if e.Rel == schema.RelHasPin {
			m.PinsByConnector[e.Source] = append(m.PinsByConnector[e.Source], e.Target)
		}
	}

	for id, set := range neighborSets {
		ids := make([]string, 0, len(set))
		for nb := range set {
			ids = append(ids, nb)
		}
		sort.Strings(ids)
		m.Neighbors[id] = ids
	}

	for _, ids := range m.ByType {
		sort.Strings(ids)
	}
	for _, ids := range m.ByZone {
		sort.Strings(ids)
	}
	for _, ids := range m.PinsByConnector {
		sort.Strings(ids)
	}
	for _, ids := range m.WiresByRail {
		sort.Strings(ids)
	}

	return m
}
