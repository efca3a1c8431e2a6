package matching

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Config holds the scoring weights and hard constraints of the matching
// algorithm. It is loaded once at startup and validated eagerly; the process
// refuses to serve with invalid weights.
type Config struct {
	EtaWeight         float64 `json:"eta_weight"`
	RatingWeight      float64 `json:"rating_weight"`
	ReliabilityWeight float64 `json:"reliability_weight"`
	FairnessWeight    float64 `json:"fairness_weight"`
	VehicleWeight     float64 `json:"vehicle_weight"`

	MaxMatchDistanceKm float64 `json:"max_match_distance_km"`
	MaxEtaMinutes      int     `json:"max_eta_minutes"`
	AverageSpeedKmh    float64 `json:"average_speed_kmh"`
	MaxResults         int     `json:"max_results"`

	// EtaSoftFloor switches the over-ceiling ETA score from a hard zero to a
	// 0.7 floor. Only visible in score breakdowns since the eligibility
	// filter already rejects over-ceiling candidates.
	EtaSoftFloor bool `json:"eta_soft_floor"`

	// RequireVerified rejects unverified drivers during filtering.
	RequireVerified bool `json:"require_verified"`
}

// weightSumTolerance is the accepted deviation of the weight sum from 1.0.
const weightSumTolerance = 1e-9

// DefaultConfig returns the production default weights and ceilings.
func DefaultConfig() Config {
	return Config{
		EtaWeight:          0.35,
		RatingWeight:       0.25,
		ReliabilityWeight:  0.15,
		FairnessWeight:     0.15,
		VehicleWeight:      0.10,
		MaxMatchDistanceKm: 50,
		MaxEtaMinutes:      30,
		AverageSpeedKmh:    30,
		MaxResults:         5,
		RequireVerified:    true,
	}
}

// SetDefaults fills zero values with the production defaults.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.EtaWeight == 0 && c.RatingWeight == 0 && c.ReliabilityWeight == 0 &&
		c.FairnessWeight == 0 && c.VehicleWeight == 0 {
		c.EtaWeight = def.EtaWeight
		c.RatingWeight = def.RatingWeight
		c.ReliabilityWeight = def.ReliabilityWeight
		c.FairnessWeight = def.FairnessWeight
		c.VehicleWeight = def.VehicleWeight
	}
	if c.MaxMatchDistanceKm == 0 {
		c.MaxMatchDistanceKm = def.MaxMatchDistanceKm
	}
	if c.MaxEtaMinutes == 0 {
		c.MaxEtaMinutes = def.MaxEtaMinutes
	}
	if c.AverageSpeedKmh == 0 {
		c.AverageSpeedKmh = def.AverageSpeedKmh
	}
	if c.MaxResults == 0 {
		c.MaxResults = def.MaxResults
	}
}

// Weights returns the five weights in scoring order.
func (c Config) Weights() []float64 {
	return []float64{c.EtaWeight, c.RatingWeight, c.ReliabilityWeight, c.FairnessWeight, c.VehicleWeight}
}

// Validate checks the weight sum and the constraint ceilings.
func (c Config) Validate() error {
	w := c.Weights()
	for _, v := range w {
		if v < 0 {
			return fmt.Errorf("weights must not be negative, got %v", w)
		}
	}
	if sum := floats.Sum(w); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	if c.MaxMatchDistanceKm <= 0 {
		return fmt.Errorf("max_match_distance_km must be positive, got %v", c.MaxMatchDistanceKm)
	}
	if c.MaxEtaMinutes <= 0 {
		return fmt.Errorf("max_eta_minutes must be positive, got %v", c.MaxEtaMinutes)
	}
	if c.AverageSpeedKmh <= 0 {
		return fmt.Errorf("average_speed_kmh must be positive, got %v", c.AverageSpeedKmh)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %v", c.MaxResults)
	}
	return nil
}
