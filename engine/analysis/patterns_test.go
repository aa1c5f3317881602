package analysis

import (
	"testing"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

func findPattern(t *testing.T, patterns []Pattern, name string) Pattern {
	t.Helper()
	for _, p := range patterns {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pattern %s missing from %+v", name, patterns)
	return Pattern{}
}

func TestDetectStarterCircuit(t *testing.T) {
	// Battery, relay, and starter fully connected, one edge carrying a
	// heavy cranking gauge.
	nodes := []*schema.Node{
		{ID: "bat", Type: schema.TypeComponent, Label: "Battery"},
		{ID: "r1", Type: schema.TypeRelay, Label: "Starter relay"},
		{ID: "starter", Type: schema.TypeComponent, Label: "Starter motor"},
	}
	edges := []*schema.Edge{
		{Source: "bat", Target: "r1", Rel: schema.RelConnectsTo},
		{Source: "r1", Target: "starter", Rel: schema.RelConnectsTo, Notes: "25mm² cranking feed"},
		{Source: "bat", Target: "starter", Rel: schema.RelConnectsTo},
	}
	m := modelOf(nodes, edges)

	p := findPattern(t, DetectPatterns(m), "starter_circuit")
	if !p.Detected {
		t.Fatalf("starter circuit not detected: %+v", p)
	}
	if p.Confidence < 0.5 {
		t.Fatalf("confidence below threshold: %v", p.Confidence)
	}
}

func TestDetectStarterViaWireGauge(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "bat", Type: schema.TypeComponent, Label: "Battery"},
		{ID: "starter", Type: schema.TypeComponent, Label: "Starter motor"},
		{ID: "w1", Type: schema.TypeWire, Gauge: "16mm²"},
	}
	m := modelOf(nodes, nil)

	p := findPattern(t, DetectPatterns(m), "starter_circuit")
	// 0.3 starter + 0.2 battery + 0.3 gauge = 0.8, no relay needed.
	if !p.Detected {
		t.Fatalf("starter circuit not detected: %+v", p)
	}
}

func TestStarterNotDetectedWithoutEvidence(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "horn", Type: schema.TypeComponent, Label: "Horn"},
		{ID: "bat", Type: schema.TypeComponent, Label: "Battery"},
	}
	m := modelOf(nodes, nil)

	p := findPattern(t, DetectPatterns(m), "starter_circuit")
	if p.Detected {
		t.Fatalf("false positive: %+v", p)
	}
}

func TestDetectChargingCircuit(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "alt", Type: schema.TypeComponent, Label: "Alternator"},
		{ID: "bat", Type: schema.TypeComponent, Label: "Battery"},
	}
	edges := []*schema.Edge{{Source: "alt", Target: "bat", Rel: schema.RelConnectsTo}}
	m := modelOf(nodes, edges)

	p := findPattern(t, DetectPatterns(m), "charging_circuit")
	if !p.Detected {
		t.Fatalf("charging circuit not detected: %+v", p)
	}
	// 0.4 + 0.2 + 0.3 link.
	if p.Confidence < 0.89 || p.Confidence > 0.91 {
		t.Fatalf("want ~0.9 confidence, got %v", p.Confidence)
	}
}

func TestDetectChargingLinkViaIntermediate(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "alt", Type: schema.TypeComponent, Label: "Alternator"},
		{ID: "bat", Type: schema.TypeComponent, Label: "Battery"},
		{ID: "f1", Type: schema.TypeFuse},
	}
	edges := []*schema.Edge{
		{Source: "alt", Target: "f1", Rel: schema.RelConnectsTo},
		{Source: "f1", Target: "bat", Rel: schema.RelConnectsTo},
	}
	m := modelOf(nodes, edges)

	p := findPattern(t, DetectPatterns(m), "charging_circuit")
	if p.Confidence < 0.89 || p.Confidence > 0.91 {
		t.Fatalf("one-hop link must count: %+v", p)
	}
}

func TestDetectRelayControl(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "r1", Type: schema.TypeRelay, Label: "Main relay"},
		{ID: "f1", Type: schema.TypeFuse},
		{ID: "load1", Type: schema.TypeComponent, Label: "Fan"},
		{ID: "load2", Type: schema.TypeComponent, Label: "Pump"},
		{ID: "w1", Type: schema.TypeWire, Signal: "IGN switched"},
	}
	edges := []*schema.Edge{
		{Source: "f1", Target: "r1", Rel: schema.RelConnectsTo},
		{Source: "r1", Target: "load1", Rel: schema.RelConnectsTo},
		{Source: "r1", Target: "load2", Rel: schema.RelConnectsTo},
	}
	m := modelOf(nodes, edges)

	p := findPattern(t, DetectPatterns(m), "relay_control")
	if !p.Detected {
		t.Fatalf("relay control not detected: %+v", p)
	}
	// 0.3 relay + 0.3 fan-out + 0.2 fused + 0.2 control wire.
	if p.Confidence < 0.99 {
		t.Fatalf("all four conditions should fire: %v", p.Confidence)
	}
	if p.Confidence > 1.0 {
		t.Fatalf("confidence must be clamped: %v", p.Confidence)
	}
}

func TestDetectCANBus(t *testing.T) {
	nodes := []*schema.Node{
		{ID: "bus1", Type: schema.TypeBus, Label: "Powertrain CAN"},
		{ID: "wh", Type: schema.TypeWire, Signal: "CAN-H"},
		{ID: "wl", Type: schema.TypeWire, Signal: "CAN-L"},
		{ID: "ecu1", Type: schema.TypeComponent, Label: "Engine ECU"},
		{ID: "ecu2", Type: schema.TypeComponent, Label: "Transmission module"},
	}
	m := modelOf(nodes, nil)

	p := findPattern(t, DetectPatterns(m), "can_bus")
	if !p.Detected {
		t.Fatalf("CAN bus not detected: %+v", p)
	}
	// 0.4 backbone + 0.3 pair + 0.2 modules.
	if p.Confidence < 0.89 || p.Confidence > 0.91 {
		t.Fatalf("want ~0.9, got %v", p.Confidence)
	}
}

func TestDetectPatternsOrderStable(t *testing.T) {
	m := modelOf([]*schema.Node{{ID: "a", Type: schema.TypeComponent}}, nil)
	want := []string{"starter_circuit", "charging_circuit", "relay_control", "can_bus"}
	for run := 0; run < 5; run++ {
		got := DetectPatterns(m)
		for i, name := range want {
			if got[i].Name != name {
				t.Fatalf("run %d: pattern order changed: %+v", run, got)
			}
		}
	}
}
