package matching

import (
	"sort"

	"github.com/ridewire/matchd/core/model"
)

// Ranker composes the normalized sub-scores into a composite score and
// produces the ranked shortlist.
type Ranker struct {
	cfg Config
}

// NewRanker returns a ranker bound to the given algorithm config.
func NewRanker(cfg Config) Ranker {
	return Ranker{cfg: cfg}
}

// Score computes the full breakdown for one candidate. boost is the fairness
// term supplied by the tracker for this driver.
func (r Ranker) Score(c Candidate, req model.MatchRequest, boost float64) model.ScoreBreakdown {
	eta := EtaScore(c.EtaMinutes, r.cfg.MaxEtaMinutes, r.cfg.EtaSoftFloor)
	rating := RatingScore(c.Driver.RecentRating)
	reliability := ReliabilityScore(c.Driver.CompletionRate, c.Driver.AcceptanceRate)
	vehicle := VehicleMatchScore(req.VehicleType, c.Driver, req.Requirements)
	boost = clamp01(boost)

	composite := r.cfg.EtaWeight*eta +
		r.cfg.RatingWeight*rating +
		r.cfg.ReliabilityWeight*reliability +
		r.cfg.FairnessWeight*boost +
		r.cfg.VehicleWeight*vehicle

	return model.ScoreBreakdown{
		DriverID:                c.Driver.ID,
		CompositeScore:          composite,
		EtaScore:                eta,
		RatingScore:             rating,
		ReliabilityScore:        reliability,
		FairnessBoost:           boost,
		VehicleMatchScore:       vehicle,
		EstimatedArrivalMinutes: c.EtaMinutes,
		DistanceKm:              c.DistanceKm,
	}
}

// Rank scores every candidate and returns at most maxResults breakdowns in
// descending composite order. Ties break on lower ETA, then on driver ID so
// the output is fully deterministic.
func (r Ranker) Rank(cands []Candidate, req model.MatchRequest, boost func(driverID string) float64, maxResults int) []model.ScoreBreakdown {
	if maxResults <= 0 {
		maxResults = r.cfg.MaxResults
	}
	scores := make([]model.ScoreBreakdown, 0, len(cands))
	for _, c := range cands {
		b := 1.0
		if boost != nil {
			b = boost(c.Driver.ID)
		}
		scores = append(scores, r.Score(c, req, b))
	}
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.EstimatedArrivalMinutes != b.EstimatedArrivalMinutes {
			return a.EstimatedArrivalMinutes < b.EstimatedArrivalMinutes
		}
		return a.DriverID < b.DriverID
	})
	if len(scores) > maxResults {
		scores = scores[:maxResults]
	}
	return scores
}
