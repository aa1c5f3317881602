package analysis

import (
	"strings"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// CircuitFamily is a coarse functional classification tag.
type CircuitFamily string

const (
	FamilyPowerDistribution  CircuitFamily = "power_distribution"
	FamilyLighting           CircuitFamily = "lighting"
	FamilyEngineManagement   CircuitFamily = "engine_management"
	FamilyBodyControl        CircuitFamily = "body_control"
	FamilySafetySystems      CircuitFamily = "safety_systems"
	FamilyComfortConvenience CircuitFamily = "comfort_convenience"
	FamilyUnknown            CircuitFamily = "unknown"
)

// classifyRule matches a node either by type or by a substring of its
// lowercased label+notes text.
type classifyRule struct {
	types     map[schema.NodeType]bool
	substring string
	family    CircuitFamily
}

// classifyRules is evaluated in order; the first matching rule wins, so
// rule order is part of the classification contract. Keep the more
// specific text rules above the broader ones.
var classifyRules = []classifyRule{
	// Infrastructure node types are power distribution regardless of label.
	{types: map[schema.NodeType]bool{
		schema.TypeFuse: true, schema.TypeGroundPoint: true,
		schema.TypeGroundPlane: true, schema.TypeSplice: true,
	}, family: FamilyPowerDistribution},
	{substring: "battery", family: FamilyPowerDistribution},
	{substring: "alternator", family: FamilyPowerDistribution},
	{substring: "fuse box", family: FamilyPowerDistribution},
	{substring: "junction", family: FamilyPowerDistribution},
	// Safety before body control: "abs" must not fall through to "door" etc.
	{substring: "airbag", family: FamilySafetySystems},
	{substring: "srs", family: FamilySafetySystems},
	{substring: "abs", family: FamilySafetySystems},
	{substring: "seatbelt", family: FamilySafetySystems},
	{substring: "collision", family: FamilySafetySystems},
	{substring: "headlight", family: FamilyLighting},
	{substring: "taillight", family: FamilyLighting},
	{substring: "turn signal", family: FamilyLighting},
	{substring: "lamp", family: FamilyLighting},
	{substring: "light", family: FamilyLighting},
	{substring: "starter", family: FamilyEngineManagement},
	{substring: "injector", family: FamilyEngineManagement},
	{substring: "ignition", family: FamilyEngineManagement},
	{substring: "ecu", family: FamilyEngineManagement},
	{substring: "ecm", family: FamilyEngineManagement},
	{substring: "pcm", family: FamilyEngineManagement},
	{substring: "o2 sensor", family: FamilyEngineManagement},
	{substring: "crank", family: FamilyEngineManagement},
	{substring: "cam", family: FamilyEngineManagement},
	{substring: "glow plug", family: FamilyEngineManagement},
	{substring: "door", family: FamilyBodyControl},
	{substring: "window", family: FamilyBodyControl},
	{substring: "lock", family: FamilyBodyControl},
	{substring: "mirror", family: FamilyBodyControl},
	{substring: "wiper", family: FamilyBodyControl},
	{substring: "bcm", family: FamilyBodyControl},
	{substring: "hvac", family: FamilyComfortConvenience},
	{substring: "blower", family: FamilyComfortConvenience},
	{substring: "heater", family: FamilyComfortConvenience},
	{substring: "heated seat", family: FamilyComfortConvenience},
	{substring: "radio", family: FamilyComfortConvenience},
	{substring: "infotainment", family: FamilyComfortConvenience},
	{substring: "socket", family: FamilyComfortConvenience},
}

// ClassifyCircuitFamily maps a node to its circuit family using the
// ordered rule table. Nodes matching nothing classify as unknown.
func ClassifyCircuitFamily(n *schema.Node) CircuitFamily {
	text := strings.ToLower(n.Label + " " + n.Notes)
	for _, rule := range classifyRules {
		if rule.types != nil {
			if rule.types[n.Type] {
				return rule.family
			}
			continue
		}
		if strings.Contains(text, rule.substring) {
			return rule.family
		}
	}
	return FamilyUnknown
}
