// Package schema defines the canonical record types for the wiring-graph
// engine and the validation gate that raw attribute records pass through
// before anything downstream sees them.
package schema

// Kind discriminates the record union.
type Kind string

const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
	KindMeta Kind = "meta"
)

// Record is the closed union of canonical record types.
// Only Metadata, Node, and Edge implement it.
type Record interface {
	RecordKind() Kind
}

// NodeType classifies an electrical entity.
type NodeType string

const (
	TypeComponent   NodeType = "component"
	TypeFuse        NodeType = "fuse"
	TypeRelay       NodeType = "relay"
	TypeConnector   NodeType = "connector"
	TypePin         NodeType = "pin"
	TypeWire        NodeType = "wire"
	TypeHarness     NodeType = "harness"
	TypeGroundPoint NodeType = "ground_point"
	TypeGroundPlane NodeType = "ground_plane"
	TypeSplice      NodeType = "splice"
	TypeBus         NodeType = "bus"
	TypeLocation    NodeType = "location"
)

// ValidNodeTypes is the set of recognised node types.
var ValidNodeTypes = map[NodeType]bool{
	TypeComponent: true, TypeFuse: true, TypeRelay: true,
	TypeConnector: true, TypePin: true, TypeWire: true,
	TypeHarness: true, TypeGroundPoint: true, TypeGroundPlane: true,
	TypeSplice: true, TypeBus: true, TypeLocation: true,
}

// Relationship is a directed, typed relation between two nodes.
type Relationship string

const (
	RelHasPin        Relationship = "has_pin"
	RelPinToWire     Relationship = "pin_to_wire"
	RelWireToPin     Relationship = "wire_to_pin"
	RelWireToFuse    Relationship = "wire_to_fuse"
	RelWireToGround  Relationship = "wire_to_ground"
	RelGroundToPlane Relationship = "ground_to_plane"
	RelInLocation    Relationship = "in_location"
	RelHasConnector  Relationship = "has_connector"
	RelConnectsTo    Relationship = "connects_to"
)

// ValidRelationships is the set of recognised relationship types.
var ValidRelationships = map[Relationship]bool{
	RelHasPin: true, RelPinToWire: true, RelWireToPin: true,
	RelWireToFuse: true, RelWireToGround: true, RelGroundToPlane: true,
	RelInLocation: true, RelHasConnector: true, RelConnectsTo: true,
}

// Vec3 is a 3D point or extent in metres (or degrees for orientations).
type Vec3 [3]float64

// Node is one electrical entity record.
type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"node_type"`
	CanonicalID string   `json:"canonical_id,omitempty"`
	Label       string   `json:"label,omitempty"`
	Zone        string   `json:"anchor_zone,omitempty"`
	AnchorXYZ   *Vec3    `json:"anchor_xyz,omitempty"`
	AnchorYPR   *Vec3    `json:"anchor_ypr_deg,omitempty"`
	BBox        *Vec3    `json:"bbox_m,omitempty"`
	Rail        string   `json:"rail,omitempty"`
	Path        []Vec3   `json:"path_xyz,omitempty"`
	Color       string   `json:"color,omitempty"`
	Gauge       string   `json:"gauge,omitempty"`
	Signal      string   `json:"signal,omitempty"`
	Voltage     string   `json:"voltage,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Edge is a directed, typed relation between two nodes.
type Edge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Rel    Relationship `json:"relationship"`
	Notes  string       `json:"notes,omitempty"`

	// Flagged is set by the integrity checker when an endpoint does not
	// resolve. Flagged edges stay in the store but are excluded from
	// index derivation.
	Flagged bool `json:"-"`
}

// Metadata is the singleton per-graph header record.
type Metadata struct {
	Model      string `json:"model"`
	Version    string `json:"version"`
	Units      string `json:"units"`
	CoordFrame string `json:"coord_frame"`
}

func (*Node) RecordKind() Kind     { return KindNode }
func (*Edge) RecordKind() Kind     { return KindEdge }
func (*Metadata) RecordKind() Kind { return KindMeta }

// Mode is the pipeline-wide failure policy.
type Mode int

const (
	// ModeLenient records validation and integrity failures and continues.
	ModeLenient Mode = iota
	// ModeStrict aborts the run on the first SchemaError or IntegrityError.
	ModeStrict
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "lenient"
}
