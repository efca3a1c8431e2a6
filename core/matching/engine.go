package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridewire/matchd/core/logger"
	"github.com/ridewire/matchd/core/model"
	"github.com/ridewire/matchd/core/registry"
)

// FairnessSource supplies the fairness correction term for a driver. The
// boost must be in [0,1] and monotonically non-increasing in the driver's
// recent assignment count.
type FairnessSource interface {
	Boost(driverID string) float64
}

// Engine runs one matching pass: snapshot, filter, score, rank. It holds no
// request-scoped state, so concurrent Match calls are safe.
type Engine struct {
	cfg      Config
	filter   EligibilityFilter
	ranker   Ranker
	fairness FairnessSource
	registry registry.DriverRegistry
	log      logger.Logger
}

// NewEngine validates the configuration and builds an engine. fairness may
// be nil, in which case every driver receives the full boost.
func NewEngine(cfg Config, fairness FairnessSource, reg registry.DriverRegistry, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matching config: %w", err)
	}
	if reg == nil {
		return nil, fmt.Errorf("matching: nil registry provided to NewEngine")
	}
	return &Engine{
		cfg:      cfg,
		filter:   NewEligibilityFilter(cfg),
		ranker:   NewRanker(cfg),
		fairness: fairness,
		registry: reg,
		log:      log,
	}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Match validates the request, reduces the candidate pool and returns the
// ranked shortlist. An empty pool yields an empty result, not an error.
func (e *Engine) Match(ctx context.Context, req model.MatchRequest) (model.MatchResult, error) {
	if err := req.Validate(); err != nil {
		return model.MatchResult{}, fmt.Errorf("invalid match request: %w", err)
	}

	pool, err := e.registry.Snapshot(ctx)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("driver snapshot: %w", err)
	}

	start := time.Now()
	eligible := e.filter.Filter(pool, req)
	var boost func(string) float64
	if e.fairness != nil {
		boost = e.fairness.Boost
	}
	ranked := e.ranker.Rank(eligible, req, boost, req.MaxResults)
	scoringDuration.Observe(time.Since(start).Seconds())

	matchRequests.WithLabelValues(string(req.Service)).Inc()
	eligiblePool.Observe(float64(len(eligible)))
	if len(ranked) == 0 {
		emptyMatches.Inc()
		if e.log != nil {
			e.log.Warnf("no eligible drivers for order %s (%d in pool)", req.OrderID, len(pool))
		}
	}

	return model.MatchResult{
		MatchID:         uuid.NewString(),
		OrderID:         req.OrderID,
		Ranked:          ranked,
		TotalCandidates: len(pool),
		EligibleCount:   len(eligible),
		ComputedAt:      time.Now(),
	}, nil
}
