package model

import (
	"fmt"
	"time"
)

// PremiumTier is a premium service level affecting eligibility and pricing.
type PremiumTier string

const (
	TierNone     PremiumTier = ""
	TierBronze   PremiumTier = "BRONZE"
	TierSilver   PremiumTier = "SILVER"
	TierGold     PremiumTier = "GOLD"
	TierPlatinum PremiumTier = "PLATINUM"
)

// KnownTier reports whether t is a valid premium tier. The empty tier is
// valid and means standard service.
func KnownTier(t PremiumTier) bool {
	switch t {
	case TierNone, TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinate ranges.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", c.Lon)
	}
	return nil
}

// MatchRequest describes one incoming service request. It is immutable once
// submitted.
type MatchRequest struct {
	OrderID string      `json:"order_id"`
	Pickup  Coordinates `json:"pickup"`
	Dropoff Coordinates `json:"dropoff"`

	Service ServiceType `json:"service_type"`
	// VehicleType optionally pins the request to a vehicle type. Empty means
	// any compatible vehicle.
	VehicleType VehicleType `json:"vehicle_type,omitempty"`
	Tier        PremiumTier `json:"premium_tier,omitempty"`

	// Requirements lists special requirements such as "child_seat" or
	// "pet_friendly" that the assigned driver must satisfy.
	Requirements []string `json:"special_requirements,omitempty"`

	// ScheduledAt is the requested service time. Zero means immediate.
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`

	// BaseFare is the pre-computed standard fare supplied by the order
	// collaborator, used for the tier pricing quote. Zero skips quoting.
	BaseFare float64 `json:"base_fare,omitempty"`

	// MaxResults caps the ranked shortlist. Zero applies the configured
	// default.
	MaxResults int `json:"max_results,omitempty"`
}

// Validate rejects malformed requests before any scoring happens.
func (r MatchRequest) Validate() error {
	if r.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	if err := r.Pickup.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if err := r.Dropoff.Validate(); err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}
	if !KnownService(r.Service) {
		return fmt.Errorf("unknown service type %q", r.Service)
	}
	if !KnownTier(r.Tier) {
		return fmt.Errorf("unknown premium tier %q", r.Tier)
	}
	if r.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative")
	}
	if r.BaseFare < 0 {
		return fmt.Errorf("base_fare must not be negative")
	}
	return nil
}
