package schema

import "testing"

func TestRepairDelimiters(t *testing.T) {
	n := &Node{ID: "w1", Type: TypeWire, Color: "red/white", Rail: "12V", CanonicalID: "feed/main"}
	diffs := Repair(n)

	if n.Color != "red-white" {
		t.Fatalf("color not normalized: %q", n.Color)
	}
	if n.CanonicalID != "feed-main" {
		t.Fatalf("canonical_id not normalized: %q", n.CanonicalID)
	}
	if n.Rail != "12V" {
		t.Fatalf("rail should be untouched: %q", n.Rail)
	}
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d: %+v", len(diffs), diffs)
	}
	if diffs[0].NodeID != "w1" || diffs[0].Field != "color" || diffs[0].Before != "red/white" || diffs[0].After != "red-white" {
		t.Fatalf("wrong diff: %+v", diffs[0])
	}
}

func TestRepairDoubledDelimiters(t *testing.T) {
	n := &Node{ID: "w2", Type: TypeWire, Color: "red/-white/"}
	Repair(n)
	if n.Color != "red-white" {
		t.Fatalf("doubled hyphens not collapsed: %q", n.Color)
	}
}

func TestRepairAnnotations(t *testing.T) {
	n := &Node{
		ID:    "c1",
		Type:  TypeComponent,
		Label: "Starter Motor (see page 12)",
		Notes: "relocated (2019 facelift) (verify)",
	}
	diffs := Repair(n)

	if n.Label != "Starter Motor" {
		t.Fatalf("label annotation not stripped: %q", n.Label)
	}
	if n.Notes != "relocated" {
		t.Fatalf("stacked annotations not stripped: %q", n.Notes)
	}
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d", len(diffs))
	}
}

func TestRepairInteriorParenthesesKept(t *testing.T) {
	n := &Node{ID: "c2", Type: TypeComponent, Label: "Fuse (30A) box cover"}
	diffs := Repair(n)
	if len(diffs) != 0 {
		t.Fatalf("interior parenthetical must be kept: %+v", diffs)
	}
	if n.Label != "Fuse (30A) box cover" {
		t.Fatalf("label mutated: %q", n.Label)
	}
}

func TestRepairIdempotent(t *testing.T) {
	n := &Node{ID: "c1", Type: TypeComponent, Color: "a/b", Label: "X (old)"}
	first := Repair(n)
	if len(first) == 0 {
		t.Fatal("expected repairs on first pass")
	}
	second := Repair(n)
	if len(second) != 0 {
		t.Fatalf("second pass must be a no-op, got %+v", second)
	}
}

func TestRepairCleanNode(t *testing.T) {
	n := &Node{ID: "c1", Type: TypeComponent, Color: "red-white", Label: "Starter"}
	if diffs := Repair(n); len(diffs) != 0 {
		t.Fatalf("clean node must produce no diffs: %+v", diffs)
	}
}
