package matching

import "github.com/ridewire/matchd/core/model"

// softEtaFloor is the over-ceiling ETA score when the soft-floor policy is
// enabled.
const softEtaFloor = 0.7

// EtaScore normalizes an ETA to [0,1]: 1 at zero ETA, falling linearly to 0
// at the ceiling. Beyond the ceiling the score is a hard zero unless the
// soft-floor policy applies.
func EtaScore(etaMinutes, maxEtaMinutes int, softFloor bool) float64 {
	if maxEtaMinutes <= 0 {
		return 0
	}
	if etaMinutes >= maxEtaMinutes {
		if softFloor {
			return softEtaFloor
		}
		return 0
	}
	return clamp01(1 - float64(etaMinutes)/float64(maxEtaMinutes))
}

// RatingScore maps a 1-5 rating onto [0,1].
func RatingScore(rating float64) float64 {
	return clamp01((rating - 1) / 4)
}

// ReliabilityScore blends completion and acceptance rates. Completion
// carries more weight since a cancelled trip hurts more than a declined
// offer.
func ReliabilityScore(completionRate, acceptanceRate float64) float64 {
	return clamp01(0.7*clamp01(completionRate) + 0.3*clamp01(acceptanceRate))
}

// VehicleMatchScore scores how well the driver's vehicle fits the request.
// No requested type means any vehicle is fine. An exact type match is full
// score; otherwise the driver earns the fraction of special requirements
// covered by their declared features.
func VehicleMatchScore(requested model.VehicleType, driver model.DriverCandidate, requirements []string) float64 {
	if requested == "" {
		return 1
	}
	if driver.VehicleType == requested {
		return 1
	}
	if len(requirements) == 0 {
		return 0
	}
	matched := 0
	for _, req := range requirements {
		if driver.HasFeature(req) {
			matched++
		}
	}
	return float64(matched) / float64(len(requirements))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
