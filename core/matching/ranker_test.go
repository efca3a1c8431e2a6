package matching

import (
	"math"
	"testing"

	"github.com/ridewire/matchd/core/model"
)

func candidate(id string, eta int) Candidate {
	return Candidate{
		Driver:     eligibleDriver(id),
		DistanceKm: float64(eta) / 2,
		EtaMinutes: eta,
	}
}

func TestScoreBreakdownInRange(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	for _, eta := range []int{0, 5, 15, 29, 30} {
		sb := r.Score(candidate("d1", eta), req, 1)
		if sb.CompositeScore < 0 || sb.CompositeScore > 1 {
			t.Fatalf("composite %v out of [0,1] at eta %d", sb.CompositeScore, eta)
		}
		for name, v := range map[string]float64{
			"eta":         sb.EtaScore,
			"rating":      sb.RatingScore,
			"reliability": sb.ReliabilityScore,
			"fairness":    sb.FairnessBoost,
			"vehicle":     sb.VehicleMatchScore,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s score %v out of [0,1]", name, v)
			}
		}
	}
}

func TestScoreWeightsApplied(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	c := candidate("d1", 15)
	sb := r.Score(c, req, 0.8)

	want := 0.35*sb.EtaScore + 0.25*sb.RatingScore + 0.15*sb.ReliabilityScore +
		0.15*0.8 + 0.10*sb.VehicleMatchScore
	if math.Abs(sb.CompositeScore-want) > 1e-9 {
		t.Fatalf("composite %v does not match the weighted sum %v", sb.CompositeScore, want)
	}
}

func TestFairnessBoostChangesRanking(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	// Identical drivers; only the fairness boost differs. The idle driver
	// (full boost) must outrank the saturated one (tail factor).
	cands := []Candidate{candidate("busy", 10), candidate("idle", 10)}
	boost := func(id string) float64 {
		if id == "busy" {
			return 0.1
		}
		return 1.0
	}
	ranked := r.Rank(cands, req, boost, 0)
	if ranked[0].DriverID != "idle" {
		t.Fatalf("idle driver should rank first, got %s", ranked[0].DriverID)
	}
	if diff := ranked[0].CompositeScore - ranked[1].CompositeScore; math.Abs(diff-0.15*0.9) > 1e-9 {
		t.Fatalf("score gap should be fairness weight times boost delta, got %v", diff)
	}
}

func TestVehiclePreferenceChangesRanking(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	req.VehicleType = model.VehicleSUV

	sedan := candidate("sedan", 10)
	suv := candidate("suv", 10)
	suv.Driver.VehicleType = model.VehicleSUV

	ranked := r.Rank([]Candidate{sedan, suv}, req, nil, 0)
	if ranked[0].DriverID != "suv" {
		t.Fatalf("requested vehicle type should rank first, got %s", ranked[0].DriverID)
	}
}

func TestRankTieBreaks(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRanker(cfg)
	req := rideRequest()

	// Same composite score, different ETA: lower ETA wins. The eta weight is
	// zeroed so the ETA difference does not affect the composite.
	cfg2 := cfg
	cfg2.EtaWeight = 0
	cfg2.RatingWeight = 0.6
	r2 := NewRanker(cfg2)
	ranked := r2.Rank([]Candidate{candidate("slow", 20), candidate("fast", 5)}, req, nil, 0)
	if ranked[0].DriverID != "fast" {
		t.Fatalf("equal scores must break ties on lower eta, got %s", ranked[0].DriverID)
	}

	// Fully identical candidates: driver ID decides.
	ranked = r.Rank([]Candidate{candidate("b", 10), candidate("a", 10)}, req, nil, 0)
	if ranked[0].DriverID != "a" || ranked[1].DriverID != "b" {
		t.Fatalf("identical candidates must order by driver ID, got %s, %s", ranked[0].DriverID, ranked[1].DriverID)
	}
}

func TestRankDeterministic(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	cands := []Candidate{candidate("c", 12), candidate("a", 7), candidate("b", 20)}
	first := r.Rank(cands, req, nil, 0)
	for i := 0; i < 10; i++ {
		again := r.Rank(cands, req, nil, 0)
		for j := range first {
			if first[j].DriverID != again[j].DriverID {
				t.Fatalf("ranking not deterministic at position %d", j)
			}
		}
	}
}

func TestRankTruncates(t *testing.T) {
	r := NewRanker(DefaultConfig())
	req := rideRequest()
	var cands []Candidate
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		cands = append(cands, candidate(id, 10))
	}
	if got := len(r.Rank(cands, req, nil, 0)); got != 5 {
		t.Fatalf("default cap should keep 5, got %d", got)
	}
	if got := len(r.Rank(cands, req, nil, 2)); got != 2 {
		t.Fatalf("explicit cap should keep 2, got %d", got)
	}
}
