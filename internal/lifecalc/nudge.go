package lifecalc

import "math"

// Intervention names a lifestyle change the "extend your life" screen can
// simulate.
type Intervention string

const (
	InterventionDailyWalk         Intervention = "daily_walk"
	InterventionMediterraneanDiet Intervention = "mediterranean_diet"
	InterventionSleepHygiene      Intervention = "sleep_hygiene"
	InterventionMeditation        Intervention = "meditation"
	InterventionSocialTies        Intervention = "social_ties"
	InterventionLimitAlcohol      Intervention = "limit_alcohol"
)

// MaxCombinedImprovement caps the compounded nudge at +15%. The cap keeps
// the gamified feature credible: stacking every tip cannot promise an
// implausible extension.
const MaxCombinedImprovement = 1.15

// interventionFactors are the per-intervention multipliers, each > 1.0.
// Named here rather than inlined so the transparency screen can list them.
var interventionFactors = map[Intervention]float64{
	InterventionDailyWalk:         1.030,
	InterventionMediterraneanDiet: 1.040,
	InterventionSleepHygiene:      1.022,
	InterventionMeditation:        1.018,
	InterventionSocialTies:        1.032,
	InterventionLimitAlcohol:      1.036,
}

// InterventionFactor returns the multiplier for a known intervention.
func InterventionFactor(i Intervention) (float64, bool) {
	f, ok := interventionFactors[i]
	return f, ok
}

// Interventions lists the catalog in no particular order.
func Interventions() []Intervention {
	out := make([]Intervention, 0, len(interventionFactors))
	for i := range interventionFactors {
		out = append(out, i)
	}
	return out
}

// CombinedFactor multiplies the selected interventions' factors, ignoring
// unknown names, and clamps the product to [1, MaxCombinedImprovement].
func CombinedFactor(selected []Intervention) float64 {
	combined := 1.0
	for _, i := range selected {
		if f, ok := interventionFactors[i]; ok {
			combined *= f
		}
	}
	return clampFactor(combined)
}

// ApplyImprovement overlays a what-if improvement on a prediction. The base
// estimate and its factors are preserved untouched; only the adjusted years
// and the predicted date move. The new date is anchored on base years times
// the factor, so a risk-penalized input does not drag the nudged date down.
// No randomness here, so the same inputs always produce the same output.
func ApplyImprovement(pred Prediction, combinedFactor float64) Prediction {
	factor := clampFactor(combinedFactor)
	adjusted := pred.BaseRemainingYears * factor

	// The incoming date is dob + (age + floor(applied)) years, where applied
	// is the adjusted years when risks were present. Strip that span to
	// recover the birth-anchored reference, then add the nudged span.
	applied := pred.BaseRemainingYears
	if pred.AdjustedRemainingYears != nil {
		applied = *pred.AdjustedRemainingYears
	}
	anchor := pred.PredictedDeathDate.AddDate(-int(math.Floor(applied)), 0, 0)

	out := pred
	out.AdjustedRemainingYears = &adjusted
	out.PredictedDeathDate = anchor.AddDate(int(math.Floor(adjusted)), 0, 0)
	return out
}

// DeltaDays converts the adjusted-vs-base difference to days for the
// "+N days" feedback. Zero when no adjustment is present.
func DeltaDays(pred Prediction) float64 {
	if pred.AdjustedRemainingYears == nil {
		return 0
	}
	return (*pred.AdjustedRemainingYears - pred.BaseRemainingYears) * DaysPerYear
}

func clampFactor(f float64) float64 {
	if f < 1 {
		return 1
	}
	if f > MaxCombinedImprovement {
		return MaxCombinedImprovement
	}
	return f
}
