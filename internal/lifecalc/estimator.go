// Package lifecalc is the computational core of More Minutes: a
// deterministic, seeded actuarial simulation that estimates remaining
// lifespan from demographic inputs. It performs no I/O beyond the one-time
// embedded table load and holds no per-call shared state, so concurrent
// estimations never interfere.
package lifecalc

import (
	"math"
	"math/rand"
	"time"

	"moreminutes/internal/lifecalc/mortality"
)

// Gompertz hazard model h(age) = B * C^age, blended with the life table to
// capture the exponential rise of mortality at high ages that a coarse table
// may under-encode. Calibration inherited from the product's original model;
// the table remains primary ground truth.
const (
	gompertzB = 0.000045
	gompertzC = 1.098

	// hazardBlendWeight is the share of the blended probability taken from
	// the Gompertz term; the rest comes from the table.
	hazardBlendWeight = 0.30

	// terminalMargin bounds how many years the walk may continue past the
	// table's terminal age at the terminal rate.
	terminalMargin = 10
)

// DaysPerYear is the fixed day-count convention for rendering deltas.
const DaysPerYear = 365.25

// Sex aliases the mortality table's column selector.
type Sex = mortality.Sex

const (
	SexMale   = mortality.SexMale
	SexFemale = mortality.SexFemale
)

// Input carries everything an estimation needs. Callers validate before
// invoking: the estimator assumes dob is a real past date and sex is valid.
type Input struct {
	DOB          time.Time
	Sex          Sex
	IdentitySeed string
	Risks        RiskFactors
}

// Factors echoes the inputs that produced a prediction, for the product's
// algorithm-transparency screen.
type Factors struct {
	Sex               Sex     `json:"sex"`
	CurrentAgeYears   int     `json:"current_age_years"`
	BaseMortalityRate float64 `json:"base_mortality_rate"`
	HazardAdjustment  float64 `json:"hazard_adjustment"`
}

// Prediction is the immutable result of one estimation.
// AdjustedRemainingYears is set only when risk factors or a nudge have been
// applied; BaseRemainingYears always holds the canonical walk outcome.
type Prediction struct {
	CurrentAgeYears        int       `json:"current_age_years"`
	BaseRemainingYears     float64   `json:"base_remaining_years"`
	AdjustedRemainingYears *float64  `json:"adjusted_remaining_years,omitempty"`
	PredictedDeathDate     time.Time `json:"predicted_death_date"`
	Factors                Factors   `json:"factors"`
}

// Estimator runs seeded survival walks. The salt is a process-wide constant;
// rotating it changes every prediction, which is a documented deployment
// event, not a silent fallback.
type Estimator struct {
	Salt string
}

// Estimate runs the walk against the current wall clock.
func (e Estimator) Estimate(input Input) Prediction {
	return e.EstimateAt(input, time.Now().UTC())
}

// EstimateAt runs the year-by-year survival walk at a fixed "now". Exposed
// so callers can pin the clock (request-scoped time, tests).
func (e Estimator) EstimateAt(input Input, now time.Time) Prediction {
	age := AgeAt(input.DOB, now)
	dob := input.DOB.Format("2006-01-02")

	rng := rand.New(rand.NewSource(seedSource(input.IdentitySeed, dob, e.Salt)))

	remaining := 0
	for a := age; a < mortality.MaxAge+terminalMargin; a++ {
		if rng.Float64() < blendedRate(a, input.Sex) {
			break
		}
		remaining++
	}

	base := float64(remaining)
	pred := Prediction{
		CurrentAgeYears:    age,
		BaseRemainingYears: base,
		PredictedDeathDate: deathDate(input.DOB, age, base),
		Factors: Factors{
			Sex:               input.Sex,
			CurrentAgeYears:   age,
			BaseMortalityRate: mortality.Rate(age, input.Sex),
			HazardAdjustment:  hazard(age),
		},
	}

	if input.Risks.Any() {
		adjusted := base * input.Risks.Multiplier()
		pred.AdjustedRemainingYears = &adjusted
		pred.PredictedDeathDate = deathDate(input.DOB, age, adjusted)
	}
	return pred
}

// blendedRate mixes the table probability with the Gompertz hazard. Ages
// beyond the table reuse the terminal-age rate (the table clamps), so very
// old inputs decay geometrically instead of erroring.
func blendedRate(age int, sex Sex) float64 {
	q := (1-hazardBlendWeight)*mortality.Rate(age, sex) + hazardBlendWeight*hazard(age)
	if q > 1 {
		return 1
	}
	return q
}

func hazard(age int) float64 {
	h := gompertzB * math.Pow(gompertzC, float64(age))
	if h > 1 {
		return 1
	}
	return h
}

// deathDate anchors the predicted date to the birth month and day: dob plus
// whole years lived plus whole remaining years. One rule, applied everywhere,
// so saved predictions round-trip stably.
func deathDate(dob time.Time, age int, remaining float64) time.Time {
	return dob.AddDate(age+int(math.Floor(remaining)), 0, 0)
}
