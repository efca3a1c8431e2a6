package model

import "time"

// ScoreBreakdown holds the per-candidate sub-scores produced during one
// matching pass. All sub-scores are normalized to [0,1].
type ScoreBreakdown struct {
	DriverID          string  `json:"driver_id"`
	CompositeScore    float64 `json:"composite_score"`
	EtaScore          float64 `json:"eta_score"`
	RatingScore       float64 `json:"rating_score"`
	ReliabilityScore  float64 `json:"reliability_score"`
	FairnessBoost     float64 `json:"fairness_boost"`
	VehicleMatchScore float64 `json:"vehicle_match_score"`

	EstimatedArrivalMinutes int     `json:"estimated_arrival_minutes"`
	DistanceKm              float64 `json:"distance_km"`
}

// MatchResult is the ranked shortlist returned for one request. An empty
// Ranked slice means no eligible candidates, which is not an error.
type MatchResult struct {
	MatchID         string           `json:"match_id"`
	OrderID         string           `json:"order_id"`
	Ranked          []ScoreBreakdown `json:"ranked"`
	TotalCandidates int              `json:"total_candidates"`
	EligibleCount   int              `json:"eligible_count"`
	ComputedAt      time.Time        `json:"computed_at"`
}
