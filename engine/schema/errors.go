package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for record shape failures.
var (
	ErrUnknownKind         = errors.New("unknown record kind")
	ErrMissingField        = errors.New("missing required field")
	ErrBadTriple           = errors.New("expected exactly 3 numeric components")
	ErrBadPath             = errors.New("path must be a list of 3-number points")
	ErrUnknownNodeType     = errors.New("unknown node type")
	ErrUnknownRelationship = errors.New("unknown relationship type")
	ErrDuplicateID         = errors.New("duplicate node id")
)

// SchemaError reports a record that failed shape validation. In lenient
// mode the record is dropped and the error kept on the session; in strict
// mode it aborts the run.
type SchemaError struct {
	RecordIndex int    `json:"record_index"`
	ID          string `json:"id,omitempty"`
	Field       string `json:"field,omitempty"`
	Wrapped     error  `json:"-"`
	Reason      string `json:"reason"`
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: record %d (id=%q) field %q: %s", e.RecordIndex, e.ID, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Wrapped }

// NewSchemaError creates a SchemaError wrapping a sentinel.
func NewSchemaError(index int, id, field string, wrapped error) *SchemaError {
	return &SchemaError{RecordIndex: index, ID: id, Field: field, Wrapped: wrapped, Reason: wrapped.Error()}
}

// IntegrityError reports a dangling reference or a relationship whose
// endpoints have the wrong node types. The offending edge is retained but
// flagged; strict mode aborts instead.
type IntegrityError struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Rel    Relationship `json:"relationship"`
	Reason string       `json:"reason"`
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: edge %s-[%s]->%s: %s", e.Source, e.Rel, e.Target, e.Reason)
}

// GeometryWarning reports missing or unbridgeable spatial data, or notes a
// synthesized origin. Warnings never abort a run and a nil wire path is a
// valid terminal state.
type GeometryWarning struct {
	NodeID string `json:"node_id"`
	Reason string `json:"reason"`
}

func (w GeometryWarning) String() string {
	return fmt.Sprintf("geometry: node %s: %s", w.NodeID, w.Reason)
}

// RepairRecord is an informational before/after diff for one auto-fixed
// field, keyed by node id. Consumed by the external report generator.
type RepairRecord struct {
	NodeID string `json:"node_id"`
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}
