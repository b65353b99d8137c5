package models

import (
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/lifecalc"
)

// IdentityKind records which identity fed the deterministic seed, for
// transparency and metrics. Collisions between anonymous guests are accepted.
type IdentityKind string

const (
	IdentityUser      IdentityKind = "user"
	IdentityDevice    IdentityKind = "device"
	IdentityAnonymous IdentityKind = "anonymous"
)

// PredictionRecord is a saved estimate in a user's history.
type PredictionRecord struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	PredictedDOD       time.Time        `json:"predicted_dod"`
	BaseRemainingYears float64          `json:"base_remaining_years"`
	AdjustedYears      *float64         `json:"adjusted_years,omitempty"`
	Factors            lifecalc.Factors `json:"factors"`
	CreatedAt          time.Time        `json:"created_at"`
}

// EstimateRequest is the wire form of an estimation call.
type EstimateRequest struct {
	DOB   string               `json:"dob"` // YYYY-MM-DD
	Sex   string               `json:"sex"`
	Risks lifecalc.RiskFactors `json:"risk_factors"`
}

// EstimateResponse returns the prediction plus which identity seeded it.
type EstimateResponse struct {
	Prediction lifecalc.Prediction `json:"prediction"`
	Identity   IdentityKind        `json:"identity"`
}

// NudgeRequest overlays selected interventions on a previously computed
// prediction. The prediction is round-tripped through the client; the nudge
// is a pure function of it, so no server state is needed.
type NudgeRequest struct {
	Prediction    lifecalc.Prediction     `json:"prediction"`
	Interventions []lifecalc.Intervention `json:"interventions"`
}

// NudgeResponse carries the what-if overlay and the "+N days" delta.
type NudgeResponse struct {
	Prediction     lifecalc.Prediction `json:"prediction"`
	CombinedFactor float64             `json:"combined_factor"`
	DeltaDays      float64             `json:"delta_days"`
}

// SaveRequest persists a prediction against the authenticated user.
type SaveRequest struct {
	PredictedDOD       string           `json:"predicted_dod"` // YYYY-MM-DD
	BaseRemainingYears float64          `json:"base_remaining_years"`
	AdjustedYears      *float64         `json:"adjusted_years,omitempty"`
	Factors            lifecalc.Factors `json:"factors"`
}
