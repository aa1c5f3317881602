package analysis

import (
	"testing"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

func TestEstimateDrawByType(t *testing.T) {
	comp := &schema.Node{Type: schema.TypeComponent, Label: "Horn"}
	if est := EstimateDraw(comp); est.Typical != 4 {
		t.Fatalf("generic component draw: %+v", est)
	}
	relay := &schema.Node{Type: schema.TypeRelay, Label: "Main relay"}
	if est := EstimateDraw(relay); est.Max != 0.5 {
		t.Fatalf("relay coil draw: %+v", est)
	}
	wire := &schema.Node{Type: schema.TypeWire}
	if est := EstimateDraw(wire); est.Max != 0 {
		t.Fatalf("wires draw nothing: %+v", est)
	}
}

func TestEstimateDrawOverrides(t *testing.T) {
	starter := &schema.Node{Type: schema.TypeComponent, Label: "Starter motor"}
	est := EstimateDraw(starter)
	if est.Min != 80 || est.Max != 250 || est.Typical != 150 {
		t.Fatalf("starter override: %+v", est)
	}

	// Overrides are evaluated in order; "glow plug" must not fall through
	// to the generic component estimate.
	glow := &schema.Node{Type: schema.TypeComponent, Label: "Glow plug bank 1"}
	if est := EstimateDraw(glow); est.Max != 60 {
		t.Fatalf("glow plug override: %+v", est)
	}

	// An override matches regardless of node type.
	ecu := &schema.Node{Type: schema.TypeComponent, Label: "Body ECU"}
	if est := EstimateDraw(ecu); est.Max != 2 {
		t.Fatalf("ecu override: %+v", est)
	}
}

func TestRecommendWiring(t *testing.T) {
	starter := &schema.Node{Type: schema.TypeComponent, Label: "Starter motor"}
	rec := RecommendWiring(starter)
	// 250A * 1.25 = 312.5A exceeds every gauge step and fuse rating, so
	// both saturate at the top entries.
	if rec.Gauge != "25mm²" {
		t.Fatalf("starter gauge: %+v", rec)
	}
	if rec.FuseAmps != 300 {
		t.Fatalf("starter fuse: %+v", rec)
	}

	wiper := &schema.Node{Type: schema.TypeComponent, Label: "Wiper motor"}
	rec = RecommendWiring(wiper)
	// 6A * 1.25 = 7.5A
	if rec.Gauge != "1.0mm²" || rec.FuseAmps != 7.5 {
		t.Fatalf("wiper recommendation: %+v", rec)
	}

	wire := &schema.Node{Type: schema.TypeWire}
	if rec := RecommendWiring(wire); rec.Gauge != "" || rec.FuseAmps != 0 {
		t.Fatalf("non-drawing node must get a zero recommendation: %+v", rec)
	}
}
