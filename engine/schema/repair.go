package schema

import (
	"regexp"
	"strings"
)

// Trailing parenthetical annotations in free-text fields, e.g.
// "Starter Motor (see page 12)".
var parentheticalSuffix = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// Repair applies best-effort fixes for recoverable field issues, mutating
// the node in place. It never invents data: categorical fields get their
// delimiter variants normalized (slash to hyphen), free-text fields lose
// trailing parenthetical annotations. Each change is returned as a
// before/after diff keyed by node id.
//
// Repair is idempotent; re-running it on a repaired node returns nil.
func Repair(n *Node) []RepairRecord {
	var diffs []RepairRecord

	record := func(field, before, after string) {
		diffs = append(diffs, RepairRecord{
			NodeID: n.ID, Field: field, Before: before, After: after,
		})
	}

	// Categorical fields: slash-separated codes become hyphen-separated.
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"color", &n.Color},
		{"rail", &n.Rail},
		{"canonical_id", &n.CanonicalID},
	} {
		if fixed := normalizeDelimiters(*f.val); fixed != *f.val {
			record(f.name, *f.val, fixed)
			*f.val = fixed
		}
	}

	// Free-text fields: strip trailing parenthetical annotations.
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"label", &n.Label},
		{"notes", &n.Notes},
	} {
		if fixed := stripAnnotation(*f.val); fixed != *f.val {
			record(f.name, *f.val, fixed)
			*f.val = fixed
		}
	}

	return diffs
}

func normalizeDelimiters(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	out := strings.ReplaceAll(s, "/", "-")
	// Collapse doubled hyphens from mixed "A/-B" style input.
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

func stripAnnotation(s string) string {
	out := s
	for {
		next := parentheticalSuffix.ReplaceAllString(out, "")
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
}
