package matching

import (
	"fmt"

	"github.com/ridewire/matchd/core/geo"
	"github.com/ridewire/matchd/core/model"
)

// tierMinRating is the minimum recent rating a driver needs to serve each
// premium tier.
var tierMinRating = map[model.PremiumTier]float64{
	model.TierBronze:   4.5,
	model.TierSilver:   4.0,
	model.TierGold:     4.5,
	model.TierPlatinum: 4.8,
}

// Candidate pairs a driver snapshot with the geo metrics derived for the
// request being served.
type Candidate struct {
	Driver     model.DriverCandidate
	DistanceKm float64
	EtaMinutes int
}

// EligibilityFilter applies the hard pass/fail constraints ahead of scoring.
// It is pure: no side effects, and candidate records are never mutated.
type EligibilityFilter struct {
	cfg Config
}

// NewEligibilityFilter returns a filter bound to the given algorithm config.
func NewEligibilityFilter(cfg Config) EligibilityFilter {
	return EligibilityFilter{cfg: cfg}
}

// Check returns nil when the driver can serve the request, or an error
// naming the first failed constraint. Missing optional attributes are
// treated as empty sets rather than failures.
func (f EligibilityFilter) Check(d model.DriverCandidate, req model.MatchRequest, distanceKm float64) error {
	if !d.Available {
		return fmt.Errorf("driver not available")
	}
	if f.cfg.RequireVerified && !d.Verified {
		return fmt.Errorf("driver not verified")
	}
	if distanceKm > f.cfg.MaxMatchDistanceKm {
		return fmt.Errorf("driver too far: %.2fkm > %.2fkm", distanceKm, f.cfg.MaxMatchDistanceKm)
	}
	if !d.SupportsService(req.Service) {
		return fmt.Errorf("service type %s not supported", req.Service)
	}
	if min, ok := tierMinRating[req.Tier]; ok && d.RecentRating < min {
		return fmt.Errorf("rating %.2f below tier minimum %.2f", d.RecentRating, min)
	}
	for _, r := range req.Requirements {
		if !d.HasFeature(r) {
			return fmt.Errorf("missing required feature %q", r)
		}
	}
	return nil
}

// Filter computes distance and ETA for each driver in the pool and returns
// the candidates passing every constraint. The ETA ceiling is enforced
// implicitly: EtaMinutes caps at the configured maximum and over-distance
// drivers are already rejected.
func (f EligibilityFilter) Filter(pool []model.DriverCandidate, req model.MatchRequest) []Candidate {
	var out []Candidate
	for _, d := range pool {
		dist := geo.DistanceKm(d.Latitude, d.Longitude, req.Pickup.Lat, req.Pickup.Lon)
		if err := f.Check(d, req, dist); err != nil {
			continue
		}
		out = append(out, Candidate{
			Driver:     d,
			DistanceKm: dist,
			EtaMinutes: geo.EtaMinutes(dist, f.cfg.AverageSpeedKmh, f.cfg.MaxEtaMinutes),
		})
	}
	return out
}
