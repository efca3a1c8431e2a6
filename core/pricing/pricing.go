// Package pricing computes tier-based fare quotes. Quotes are pure
// functions of the base fare, the premium tier and the service time.
package pricing

import (
	"fmt"
	"time"

	"github.com/ridewire/matchd/core/model"
)

// Config defines the tier multiplier table and the time-based surcharges.
type Config struct {
	// PremiumFeeRate is the flat premium fee as a fraction of the base fare.
	PremiumFeeRate float64 `json:"premium_fee_rate"`

	TierMultipliers map[model.PremiumTier]float64 `json:"tier_multipliers"`

	// NightFactor applies between NightStartHour and NightEndHour.
	NightFactor    float64 `json:"night_factor"`
	NightStartHour int     `json:"night_start_hour"`
	NightEndHour   int     `json:"night_end_hour"`

	// WeekendFactor applies on Saturday and Sunday.
	WeekendFactor float64 `json:"weekend_factor"`
}

// SetDefaults applies the production pricing table.
func (c *Config) SetDefaults() {
	if c.PremiumFeeRate == 0 {
		c.PremiumFeeRate = 0.2
	}
	if len(c.TierMultipliers) == 0 {
		c.TierMultipliers = map[model.PremiumTier]float64{
			model.TierBronze:   1.3,
			model.TierSilver:   1.5,
			model.TierGold:     2.0,
			model.TierPlatinum: 2.5,
		}
	}
	if c.NightFactor == 0 {
		c.NightFactor = 1.1
	}
	if c.NightStartHour == 0 {
		c.NightStartHour = 22
	}
	if c.NightEndHour == 0 {
		c.NightEndHour = 6
	}
	if c.WeekendFactor == 0 {
		c.WeekendFactor = 1.05
	}
}

// Validate checks the multiplier table.
func (c Config) Validate() error {
	if c.PremiumFeeRate < 0 {
		return fmt.Errorf("premium_fee_rate must not be negative")
	}
	for tier, m := range c.TierMultipliers {
		if m <= 0 {
			return fmt.Errorf("tier %s multiplier must be positive, got %v", tier, m)
		}
	}
	if c.NightFactor <= 0 || c.WeekendFactor <= 0 {
		return fmt.Errorf("surcharge factors must be positive")
	}
	if c.NightStartHour < 0 || c.NightStartHour > 23 || c.NightEndHour < 0 || c.NightEndHour > 23 {
		return fmt.Errorf("night hours must be in [0,23]")
	}
	return nil
}

// Quote is the fare breakdown returned to the caller.
type Quote struct {
	BaseFare   float64 `json:"base_fare"`
	PremiumFee float64 `json:"premium_fee"`
	Multiplier float64 `json:"multiplier"`
	TotalFare  float64 `json:"total_fare"`
}

// QuoteFare prices a trip for the given tier at the given time. The night
// and weekend surcharges compose multiplicatively onto the tier multiplier.
// An empty tier yields the plain base fare with no premium fee.
func (c Config) QuoteFare(baseFare float64, tier model.PremiumTier, at time.Time) (Quote, error) {
	if baseFare < 0 {
		return Quote{}, fmt.Errorf("base fare must not be negative, got %v", baseFare)
	}
	if !model.KnownTier(tier) {
		return Quote{}, fmt.Errorf("unknown premium tier %q", tier)
	}

	multiplier := 1.0
	fee := 0.0
	if tier != model.TierNone {
		multiplier = c.TierMultipliers[tier]
		if multiplier == 0 {
			multiplier = 1.0
		}
		fee = baseFare * c.PremiumFeeRate
	}
	if c.isNight(at.Hour()) {
		multiplier *= c.NightFactor
	}
	if isWeekend(at.Weekday()) {
		multiplier *= c.WeekendFactor
	}

	return Quote{
		BaseFare:   baseFare,
		PremiumFee: fee,
		Multiplier: multiplier,
		TotalFare:  baseFare*multiplier + fee,
	}, nil
}

func (c Config) isNight(hour int) bool {
	if c.NightStartHour > c.NightEndHour {
		return hour >= c.NightStartHour || hour < c.NightEndHour
	}
	return hour >= c.NightStartHour && hour < c.NightEndHour
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
