package lifecalc

// Per-factor penalties applied multiplicatively to remaining years. Each is a
// named constant so the algorithm transparency screen can disclose them
// exactly as applied.
const (
	SmokingPenalty       = 0.85
	HeavyDrinkingPenalty = 0.88
	SedentaryPenalty     = 0.92
	ChronicStressPenalty = 0.94
)

// RiskFactors is the fixed set of lifestyle modifiers the product asks
// about. A closed struct rather than an open map keeps the disclosed
// penalties auditable.
type RiskFactors struct {
	Smoking       bool `json:"smoking"`
	HeavyDrinking bool `json:"heavy_drinking"`
	Sedentary     bool `json:"sedentary"`
	ChronicStress bool `json:"chronic_stress"`
}

// Any reports whether at least one factor is set.
func (r RiskFactors) Any() bool {
	return r.Smoking || r.HeavyDrinking || r.Sedentary || r.ChronicStress
}

// Multiplier returns the combined penalty, 1.0 when no factors are set.
func (r RiskFactors) Multiplier() float64 {
	m := 1.0
	if r.Smoking {
		m *= SmokingPenalty
	}
	if r.HeavyDrinking {
		m *= HeavyDrinkingPenalty
	}
	if r.Sedentary {
		m *= SedentaryPenalty
	}
	if r.ChronicStress {
		m *= ChronicStressPenalty
	}
	return m
}
