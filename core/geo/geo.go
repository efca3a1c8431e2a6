// Package geo provides the distance and ETA estimates used by the matching
// engine. Estimates are straight-line only; real routing is out of scope.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// PickupOverheadMinutes is the fixed time added to every ETA for the driver
// to reach the rider at the pickup point.
const PickupOverheadMinutes = 3

// DistanceKm returns the great-circle distance in kilometers between two
// coordinate pairs.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EtaMinutes estimates the arrival time for the given distance at the given
// average speed, including the pickup overhead. The result is capped at
// maxEtaMinutes. A non-positive speed returns maxEtaMinutes so degenerate
// input degrades to the filter ceiling instead of failing.
func EtaMinutes(distanceKm, avgSpeedKmh float64, maxEtaMinutes int) int {
	if avgSpeedKmh <= 0 {
		return maxEtaMinutes
	}
	minutes := int(distanceKm/avgSpeedKmh*60) + PickupOverheadMinutes
	if minutes > maxEtaMinutes {
		return maxEtaMinutes
	}
	return minutes
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
