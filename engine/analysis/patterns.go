package analysis

import (
	"strings"

	"github.com/WessleyAI/harness-engine/engine/graph"
	"github.com/WessleyAI/harness-engine/engine/schema"
	"github.com/WessleyAI/harness-engine/pkg/fn"
)

// Pattern is the outcome of one topology detector. Confidence accumulates
// additively from weighted sub-conditions and is clamped to [0,1]; a
// pattern counts as detected above the 0.5 threshold.
type Pattern struct {
	Name       string   `json:"name"`
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence,omitempty"`
}

const detectThreshold = 0.5

// Sub-condition weights. These are calibration parameters, pinned by the
// detector tests rather than derived from anything physical.
const (
	wStarterLoad    = 0.3
	wStarterBattery = 0.2
	wStarterRelay   = 0.2
	wStarterGauge   = 0.3

	wChargingAlternator = 0.4
	wChargingBattery    = 0.2
	wChargingLink       = 0.3

	wRelayPresent = 0.3
	wRelayFanOut  = 0.3
	wRelayFused   = 0.2
	wRelayControl = 0.2

	wCanBackbone = 0.4
	wCanPair     = 0.3
	wCanModules  = 0.2
)

// heavyGauges are conductor sizes only a cranking or charging circuit
// would carry.
var heavyGauges = []string{"10mm²", "16mm²", "25mm²"}

// DetectPatterns runs every detector over the immutable model. The
// detectors are independent and read-only, so they run concurrently; the
// results are merged in declaration order to keep output byte-stable.
func DetectPatterns(m *graph.Model) []Pattern {
	return fn.FanOut(
		func() Pattern { return detectStarter(m) },
		func() Pattern { return detectCharging(m) },
		func() Pattern { return detectRelayControl(m) },
		func() Pattern { return detectCANBus(m) },
	)
}

// scorecard accumulates weighted evidence for one pattern.
type scorecard struct {
	name       string
	confidence float64
	evidence   []string
}

func (s *scorecard) add(weight float64, why string) {
	s.confidence += weight
	s.evidence = append(s.evidence, why)
}

func (s *scorecard) pattern() Pattern {
	conf := s.confidence
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return Pattern{
		Name:       s.name,
		Detected:   conf > detectThreshold,
		Confidence: conf,
		Evidence:   s.evidence,
	}
}

func nodeText(n *schema.Node) string {
	return strings.ToLower(n.Label + " " + n.CanonicalID + " " + n.Notes)
}

// firstNodeContaining returns the lowest node id whose text contains the
// substring. Iteration uses sorted ids for determinism.
func firstNodeContaining(m *graph.Model, substr string) (string, bool) {
	for _, id := range fn.SortedKeys(m.Nodes) {
		if strings.Contains(nodeText(m.Nodes[id]), substr) {
			return id, true
		}
	}
	return "", false
}

func detectStarter(m *graph.Model) Pattern {
	s := scorecard{name: "starter_circuit"}
	if id, ok := firstNodeContaining(m, "starter"); ok {
		s.add(wStarterLoad, "starter load "+id)
	}
	if id, ok := firstNodeContaining(m, "battery"); ok {
		s.add(wStarterBattery, "battery "+id)
	}
	if ids := m.ByType[schema.TypeRelay]; len(ids) > 0 {
		s.add(wStarterRelay, "relay "+ids[0])
	} else if id, ok := firstNodeContaining(m, "solenoid"); ok {
		s.add(wStarterRelay, "solenoid "+id)
	}
	if why, ok := heavyGaugeEvidence(m); ok {
		s.add(wStarterGauge, why)
	}
	return s.pattern()
}

func detectCharging(m *graph.Model) Pattern {
	s := scorecard{name: "charging_circuit"}
	altID, hasAlt := firstNodeContaining(m, "alternator")
	if hasAlt {
		s.add(wChargingAlternator, "alternator "+altID)
	}
	batID, hasBat := firstNodeContaining(m, "battery")
	if hasBat {
		s.add(wChargingBattery, "battery "+batID)
	}
	if hasAlt && hasBat && connected(m, altID, batID) {
		s.add(wChargingLink, "alternator-battery link")
	}
	return s.pattern()
}

func detectRelayControl(m *graph.Model) Pattern {
	s := scorecard{name: "relay_control"}
	relays := m.ByType[schema.TypeRelay]
	if len(relays) == 0 {
		return s.pattern()
	}
	s.add(wRelayPresent, "relay "+relays[0])

	for _, id := range relays {
		if len(m.Neighbors[id]) >= 3 {
			s.add(wRelayFanOut, "relay "+id+" switches multiple circuits")
			break
		}
	}
	for _, id := range relays {
		if nb, ok := adjacentOfType(m, id, schema.TypeFuse); ok {
			s.add(wRelayFused, "relay "+id+" fed through fuse "+nb)
			break
		}
	}
	for _, id := range m.ByType[schema.TypeWire] {
		text := strings.ToLower(m.Nodes[id].Signal + " " + m.Nodes[id].Label)
		if strings.Contains(text, "ign") || strings.Contains(text, "control") {
			s.add(wRelayControl, "control wire "+id)
			break
		}
	}
	return s.pattern()
}

func detectCANBus(m *graph.Model) Pattern {
	s := scorecard{name: "can_bus"}
	if ids := m.ByType[schema.TypeBus]; len(ids) > 0 {
		s.add(wCanBackbone, "bus node "+ids[0])
	} else if id, ok := firstNodeContaining(m, "can bus"); ok {
		s.add(wCanBackbone, "backbone "+id)
	}

	canWires := 0
	for _, id := range m.ByType[schema.TypeWire] {
		if strings.Contains(strings.ToLower(m.Nodes[id].Signal), "can") {
			canWires++
		}
	}
	if canWires >= 2 {
		s.add(wCanPair, "differential pair of CAN wires")
	}

	modules := 0
	for _, id := range fn.SortedKeys(m.Nodes) {
		text := nodeText(m.Nodes[id])
		if strings.Contains(text, "ecu") || strings.Contains(text, "module") {
			modules++
		}
	}
	if modules >= 2 {
		s.add(wCanModules, "multiple control modules")
	}
	return s.pattern()
}

// heavyGaugeEvidence finds a cranking-class conductor either as a wire
// node's gauge or in a connecting edge's notes.
func heavyGaugeEvidence(m *graph.Model) (string, bool) {
	for _, id := range m.ByType[schema.TypeWire] {
		for _, g := range heavyGauges {
			if m.Nodes[id].Gauge == g {
				return "wire " + id + " gauge " + g, true
			}
		}
	}
	for _, e := range m.Edges {
		for _, g := range heavyGauges {
			if strings.Contains(e.Notes, g) {
				return "edge " + e.Source + "->" + e.Target + " gauge " + g, true
			}
		}
	}
	return "", false
}

// connected reports whether a and b are direct neighbors or share one
// intermediate node.
func connected(m *graph.Model, a, b string) bool {
	for _, nb := range m.Neighbors[a] {
		if nb == b {
			return true
		}
		for _, nb2 := range m.Neighbors[nb] {
			if nb2 == b {
				return true
			}
		}
	}
	return false
}

func adjacentOfType(m *graph.Model, id string, t schema.NodeType) (string, bool) {
	for _, nb := range m.Neighbors[id] {
		if n, ok := m.Nodes[nb]; ok && n.Type == t {
			return nb, true
		}
	}
	return "", false
}
