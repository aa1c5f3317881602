package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/WessleyAI/harness-engine/engine/schema"
	"github.com/WessleyAI/harness-engine/engine/serialize"
)

func quietOpts(mode schema.Mode) Options {
	return Options{
		Mode:   mode,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func rawRecords() []map[string]any {
	return []map[string]any{
		{"kind": "meta", "model": "NA6", "version": "1.0", "units": "m", "coord_frame": "vehicle"},
		{"kind": "node", "id": "bat", "node_type": "component", "label": "Battery", "anchor_zone": "Engine Compartment"},
		{"kind": "node", "id": "f1", "node_type": "fuse"},
		{"kind": "node", "id": "w1", "node_type": "wire", "gauge": "2.5mm²"},
		{"kind": "edge", "source": "bat", "target": "f1", "relationship": "connects_to"},
		{"kind": "edge", "source": "f1", "target": "ghost", "relationship": "connects_to"},
	}
}

func TestRunLenient(t *testing.T) {
	raw := append(rawRecords(),
		map[string]any{"kind": "node", "node_type": "component"},         // missing id
		map[string]any{"kind": "node", "id": "bat", "node_type": "fuse"}, // duplicate
		map[string]any{"kind": "gizmo"},                                  // unknown kind
	)

	res, err := Run(context.Background(), raw, quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("lenient run: %v", err)
	}
	sess := res.Session

	if sess.Records != len(raw) {
		t.Fatalf("records = %d, want %d", sess.Records, len(raw))
	}
	if sess.Dropped != 3 {
		t.Fatalf("dropped = %d, want 3", sess.Dropped)
	}
	if len(sess.SchemaErrors) != 3 {
		t.Fatalf("schema errors = %d, want 3", len(sess.SchemaErrors))
	}
	// The dangling edge is flagged, not dropped.
	if len(sess.IntegrityErrors) != 1 {
		t.Fatalf("integrity errors = %+v", sess.IntegrityErrors)
	}
	if len(res.Store.Edges()) != 2 {
		t.Fatalf("both edges stay in the store: %d", len(res.Store.Edges()))
	}
	if len(res.Model.Edges) != 1 {
		t.Fatalf("flagged edge must not reach the model: %d", len(res.Model.Edges))
	}
	if res.Session.ID == "" || res.Session.Mode != "lenient" {
		t.Fatalf("session header: %+v", res.Session)
	}
	if res.Session.FinishedAt.Before(res.Session.StartedAt) {
		t.Fatal("finished before started")
	}
}

func TestRunStrictAbortsOnSchemaError(t *testing.T) {
	raw := append(rawRecords(), map[string]any{"kind": "node", "node_type": "component"})
	_, err := Run(context.Background(), raw, quietOpts(schema.ModeStrict))
	if err == nil {
		t.Fatal("strict run must abort on a schema error")
	}
	var serr *schema.SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("want SchemaError in chain, got %v", err)
	}
	if !errors.Is(err, schema.ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
}

func TestRunStrictAbortsOnDuplicateID(t *testing.T) {
	raw := append(rawRecords(), map[string]any{"kind": "node", "id": "bat", "node_type": "fuse"})
	_, err := Run(context.Background(), raw, quietOpts(schema.ModeStrict))
	if !errors.Is(err, schema.ErrDuplicateID) {
		t.Fatalf("want ErrDuplicateID, got %v", err)
	}
}

func TestRunStrictAbortsOnDanglingEdge(t *testing.T) {
	_, err := Run(context.Background(), rawRecords(), quietOpts(schema.ModeStrict))
	if err == nil {
		t.Fatal("strict run must abort on a dangling edge")
	}
	var ierr *schema.IntegrityError
	if !errors.As(err, &ierr) {
		t.Fatalf("want IntegrityError in chain, got %v", err)
	}
}

func TestRunMetadataLastWins(t *testing.T) {
	raw := []map[string]any{
		{"kind": "meta", "model": "NA6", "version": "1.0", "units": "m", "coord_frame": "vehicle"},
		{"kind": "meta", "model": "NA8", "version": "1.1", "units": "m", "coord_frame": "vehicle"},
	}
	res, err := Run(context.Background(), raw, quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.Store.Metadata().Model; got != "NA8" {
		t.Fatalf("last metadata record wins: got %s", got)
	}
}

func TestRunSynthesizesGeometry(t *testing.T) {
	res, err := Run(context.Background(), rawRecords(), quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Session.Stats.Anchors == 0 {
		t.Fatalf("battery anchor should be synthesized from its zone: %+v", res.Session.Stats)
	}
	bat, ok := res.Model.Nodes["bat"]
	if !ok || bat.AnchorXYZ == nil {
		t.Fatal("model must see the synthesized anchor")
	}
}

func TestRunDeterministic(t *testing.T) {
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		res, err := Run(context.Background(), rawRecords(), quietOpts(schema.ModeLenient))
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		out, err := serialize.Marshal(res.Store)
		if err != nil {
			t.Fatalf("marshal %d: %v", i, err)
		}
		outputs = append(outputs, out)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatalf("two runs over the same input diverged:\n%s\nvs\n%s", outputs[0], outputs[1])
	}
}

func TestRunUnbridgeableWireWarnsOnce(t *testing.T) {
	// One anchored endpoint only: the integrity checker records an
	// advisory and the synthesizer then fails the bridge. The session
	// must end with a single warning for the wire, the terminal one.
	raw := []map[string]any{
		{"kind": "node", "id": "p1", "node_type": "pin", "anchor_xyz": []any{0.1, 0.2, 0.3}},
		{"kind": "node", "id": "w1", "node_type": "wire"},
		{"kind": "edge", "source": "p1", "target": "w1", "relationship": "pin_to_wire"},
	}
	res, err := Run(context.Background(), raw, quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var reasons []string
	for _, w := range res.Session.Warnings {
		if w.NodeID == "w1" {
			reasons = append(reasons, w.Reason)
		}
	}
	if len(reasons) != 1 {
		t.Fatalf("want exactly one warning for w1, got %d: %v", len(reasons), reasons)
	}
	if !strings.Contains(reasons[0], "not bridgeable") {
		t.Fatalf("terminal warning must survive, got %q", reasons[0])
	}
}

func TestRunBridgedWireKeepsAdvisoryOnly(t *testing.T) {
	// At integrity time only p1 is anchored, so the wire gets an
	// advisory. Synthesis then anchors p2 from its zone and bridges the
	// wire without re-warning, so the advisory is the wire's only warning.
	raw := []map[string]any{
		{"kind": "node", "id": "p1", "node_type": "pin", "anchor_xyz": []any{0.0, 0.0, 0.0}},
		{"kind": "node", "id": "p2", "node_type": "pin", "anchor_zone": "Dashboard"},
		{"kind": "node", "id": "w1", "node_type": "wire"},
		{"kind": "edge", "source": "p1", "target": "w1", "relationship": "pin_to_wire"},
		{"kind": "edge", "source": "w1", "target": "p2", "relationship": "wire_to_pin"},
	}
	res, err := Run(context.Background(), raw, quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	count := 0
	for _, w := range res.Session.Warnings {
		if w.NodeID == "w1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("want one advisory warning for w1, got %d: %+v", count, res.Session.Warnings)
	}
	if res.Session.Stats.Bridges != 1 {
		t.Fatalf("wire should bridge after the zone anchor lands: %+v", res.Session.Stats)
	}
}

func TestRunStageObserver(t *testing.T) {
	var stages []string
	opts := quietOpts(schema.ModeLenient)
	opts.StageObserver = func(stage string, _ time.Duration) {
		stages = append(stages, stage)
	}
	if _, err := Run(context.Background(), rawRecords(), opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"decode", "integrity", "synthesize", "index", "analyze"}
	if !reflect.DeepEqual(stages, want) {
		t.Fatalf("observed stages %v, want %v", stages, want)
	}
}

func TestRunAnalysisReport(t *testing.T) {
	raw := append(rawRecords(),
		map[string]any{"kind": "node", "id": "starter", "node_type": "component", "label": "Starter motor"},
		map[string]any{"kind": "edge", "source": "f1", "target": "starter", "relationship": "connects_to"},
	)
	res, err := Run(context.Background(), raw, quietOpts(schema.ModeLenient))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rep := res.Report
	if rep == nil {
		t.Fatal("report missing")
	}
	if rep.Families["starter"] == "" {
		t.Fatalf("starter must be classified: %+v", rep.Families)
	}
	if len(rep.PowerPaths["bat"]) == 0 {
		t.Fatalf("power paths from the battery expected: %+v", rep.PowerPaths)
	}
	if len(rep.Patterns) != 4 {
		t.Fatalf("four pattern detectors expected: %+v", rep.Patterns)
	}
}
