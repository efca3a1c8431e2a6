package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ridewire/matchd/core/events"
	"github.com/ridewire/matchd/core/logger"
	"github.com/ridewire/matchd/core/matchlog"
	"github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/core/model"
	"github.com/ridewire/matchd/core/mqtt"
	"github.com/ridewire/matchd/core/pricing"
	"github.com/ridewire/matchd/core/registry"
	"github.com/ridewire/matchd/internal/eventbus"
)

// AssignmentTracker records confirmed assignments for fairness accounting.
type AssignmentTracker interface {
	RecordAssignment(driverID string)
}

// Assignment is the confirmed driver selection for one order.
type Assignment struct {
	OrderID    string         `json:"order_id"`
	MatchID    string         `json:"match_id"`
	DriverID   string         `json:"driver_id"`
	CommandID  string         `json:"command_id,omitempty"`
	EtaMinutes int            `json:"eta_minutes"`
	Score      float64        `json:"score"`
	Quote      *pricing.Quote `json:"quote,omitempty"`
}

// Outcome bundles the ranked shortlist with the assignment, if any driver
// confirmed.
type Outcome struct {
	Result     model.MatchResult
	Assignment *Assignment
}

// Manager drives the full matching flow: rank candidates, offer the order to
// the best driver, claim the driver atomically on acknowledgment and fall
// through to the next candidate on decline or timeout.
type Manager struct {
	engine     *Engine
	offers     mqtt.Client
	registry   registry.DriverRegistry
	fairness   AssignmentTracker
	pricing    pricing.Config
	ackTimeout time.Duration
	logger     logger.Logger
	metrics    metrics.MetricsSink
	bus        eventbus.EventBus
	store      matchlog.LogStore
	mu         sync.Mutex
}

// NewManager creates a manager. offers may be nil, in which case the best
// ranked candidate is claimed directly without driver confirmation. If
// ackTimeout is zero, a default of five seconds is used.
func NewManager(engine *Engine, offers mqtt.Client, reg registry.DriverRegistry, fairness AssignmentTracker, priceCfg pricing.Config, ackTimeout time.Duration, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if engine == nil || reg == nil {
		return nil, fmt.Errorf("matching: nil parameter provided to NewManager")
	}
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	priceCfg.SetDefaults()
	if err := priceCfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &Manager{
		engine:     engine,
		offers:     offers,
		registry:   reg,
		fairness:   fairness,
		pricing:    priceCfg,
		ackTimeout: ackTimeout,
		logger:     log,
		metrics:    sink,
		bus:        bus,
	}, nil
}

// SetLogStore configures the store used to persist match decisions.
func (m *Manager) SetLogStore(store matchlog.LogStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if m.offers != nil {
		m.offers.Disconnect()
	}
	if m.bus != nil {
		m.bus.Close()
	}
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store != nil {
		return store.Close()
	}
	return nil
}

// Run processes incoming match requests until the context is canceled.
func (m *Manager) Run(ctx context.Context, requests <-chan model.MatchRequest) {
	for {
		select {
		case req := <-requests:
			if _, err := m.Process(ctx, req); err != nil && m.logger != nil {
				m.logger.Errorf("match %s failed: %v", req.OrderID, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Process runs one request through the pipeline and attempts to assign a
// driver. A request with no eligible drivers produces an empty outcome, not
// an error.
func (m *Manager) Process(ctx context.Context, req model.MatchRequest) (Outcome, error) {
	if m.bus != nil {
		m.bus.Publish(events.RequestEvent{Request: req})
	}

	result, err := m.engine.Match(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if m.bus != nil {
		m.bus.Publish(events.MatchEvent{Result: result})
	}
	if m.logger != nil {
		m.logger.Infof("order %s: %d eligible of %d candidates", req.OrderID, result.EligibleCount, result.TotalCandidates)
	}

	outcome := Outcome{Result: result}
	for _, sb := range result.Ranked {
		asn, err := m.tryCandidate(ctx, req, result, sb)
		if err != nil {
			if errors.Is(err, registry.ErrDriverTaken) || errors.Is(err, mqtt.ErrAckTimeout) {
				continue
			}
			m.record(ctx, req, result, outcome.Assignment)
			return outcome, err
		}
		if asn != nil {
			outcome.Assignment = asn
			break
		}
	}

	if outcome.Assignment == nil && len(result.Ranked) > 0 && m.logger != nil {
		m.logger.Warnf("order %s: no driver accepted among %d candidates", req.OrderID, len(result.Ranked))
	}
	m.record(ctx, req, result, outcome.Assignment)
	return outcome, nil
}

// tryCandidate claims the driver, offers the order and waits for the
// acknowledgment. It returns (nil, nil) when the driver declined and the
// loop should move on.
func (m *Manager) tryCandidate(ctx context.Context, req model.MatchRequest, result model.MatchResult, sb model.ScoreBreakdown) (*Assignment, error) {
	if err := m.registry.TryAssign(ctx, sb.DriverID); err != nil {
		if errors.Is(err, registry.ErrDriverTaken) && m.logger != nil {
			m.logger.Debugf("driver %s already taken, skipping", sb.DriverID)
		}
		return nil, err
	}

	if m.offers == nil {
		m.confirm(req, result, sb)
		return m.buildAssignment(req, result, sb, ""), nil
	}

	ack, cmdID, latency, err := m.sendAndWait(req, sb)
	m.publishOffer(sb, req, ack, err, latency)
	m.recordOffer(req, sb, cmdID, ack, err, latency)

	if err != nil || !ack {
		offerFailure.Inc()
		if rerr := m.registry.Release(ctx, sb.DriverID); rerr != nil && m.logger != nil {
			m.logger.Errorf("release %s: %v", sb.DriverID, rerr)
		}
		if err != nil && !errors.Is(err, mqtt.ErrAckTimeout) {
			return nil, err
		}
		return nil, nil
	}

	m.confirm(req, result, sb)
	return m.buildAssignment(req, result, sb, cmdID), nil
}

// sendAndWait sends the offer and waits for an acknowledgment while
// measuring the latency.
func (m *Manager) sendAndWait(req model.MatchRequest, sb model.ScoreBreakdown) (bool, string, time.Duration, error) {
	start := time.Now()
	cmdID, err := m.offers.SendOffer(sb.DriverID, mqtt.Offer{
		OrderID:    req.OrderID,
		DriverID:   sb.DriverID,
		PickupLat:  req.Pickup.Lat,
		PickupLon:  req.Pickup.Lon,
		EtaMinutes: sb.EstimatedArrivalMinutes,
		Score:      sb.CompositeScore,
		Timestamp:  start.Unix(),
	})
	if err != nil {
		return false, cmdID, time.Since(start), err
	}
	ack, err := m.offers.WaitForAck(cmdID, m.ackTimeout)
	return ack, cmdID, time.Since(start), err
}

func (m *Manager) confirm(req model.MatchRequest, result model.MatchResult, sb model.ScoreBreakdown) {
	offerSuccess.Inc()
	if m.fairness != nil {
		m.fairness.RecordAssignment(sb.DriverID)
	}
	if m.bus != nil {
		m.bus.Publish(events.AssignmentEvent{
			OrderID:  req.OrderID,
			DriverID: sb.DriverID,
			MatchID:  result.MatchID,
		})
	}
	if m.logger != nil {
		m.logger.Infof("order %s assigned to %s (score %.3f, eta %dmin)", req.OrderID, sb.DriverID, sb.CompositeScore, sb.EstimatedArrivalMinutes)
	}
}

func (m *Manager) buildAssignment(req model.MatchRequest, result model.MatchResult, sb model.ScoreBreakdown, cmdID string) *Assignment {
	asn := &Assignment{
		OrderID:    req.OrderID,
		MatchID:    result.MatchID,
		DriverID:   sb.DriverID,
		CommandID:  cmdID,
		EtaMinutes: sb.EstimatedArrivalMinutes,
		Score:      sb.CompositeScore,
	}
	if req.BaseFare > 0 {
		at := req.ScheduledAt
		if at.IsZero() {
			at = time.Now()
		}
		if q, err := m.pricing.QuoteFare(req.BaseFare, req.Tier, at); err == nil {
			asn.Quote = &q
		} else if m.logger != nil {
			m.logger.Errorf("quote for %s: %v", req.OrderID, err)
		}
	}
	return asn
}

func (m *Manager) publishOffer(sb model.ScoreBreakdown, req model.MatchRequest, ack bool, err error, latency time.Duration) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.OfferEvent{
		OrderID:      req.OrderID,
		DriverID:     sb.DriverID,
		Acknowledged: ack && err == nil,
		Err:          err,
		Latency:      latency,
	})
}

func (m *Manager) recordOffer(req model.MatchRequest, sb model.ScoreBreakdown, cmdID string, ack bool, err error, latency time.Duration) {
	ar, ok := m.metrics.(metrics.AssignmentRecorder)
	if !ok {
		return
	}
	ev := metrics.AssignmentEvent{
		OrderID:      req.OrderID,
		DriverID:     sb.DriverID,
		CommandID:    cmdID,
		Acknowledged: ack && err == nil,
		Latency:      latency,
		Time:         time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if rerr := ar.RecordAssignment(ev); rerr != nil && m.logger != nil {
		m.logger.Errorf("assignment metrics error: %v", rerr)
	}
}

// record persists the decision and forwards it to the metrics sink.
func (m *Manager) record(ctx context.Context, req model.MatchRequest, result model.MatchResult, asn *Assignment) {
	if m.metrics != nil {
		var recs []metrics.MatchEvent
		for i, sb := range result.Ranked {
			recs = append(recs, metrics.MatchEvent{
				MatchID:  result.MatchID,
				OrderID:  req.OrderID,
				DriverID: sb.DriverID,
				Rank:     i + 1,
				Score:    sb,
				Service:  req.Service,
				Tier:     req.Tier,
				Time:     result.ComputedAt,
			})
		}
		if err := m.metrics.RecordMatchResult(recs); err != nil && m.logger != nil {
			m.logger.Errorf("metrics error: %v", err)
		}
		if pr, ok := m.metrics.(metrics.PoolRecorder); ok {
			if err := pr.RecordPool(metrics.PoolEvent{
				OrderID:  req.OrderID,
				Total:    result.TotalCandidates,
				Eligible: result.EligibleCount,
				Time:     result.ComputedAt,
			}); err != nil && m.logger != nil {
				m.logger.Errorf("pool metrics error: %v", err)
			}
		}
		m.recordFairness()
	}

	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return
	}
	rec := matchlog.Record{
		Timestamp: time.Now(),
		Request:   req,
		Result:    result,
	}
	if asn != nil {
		rec.AssignedDriver = asn.DriverID
	}
	if err := store.Append(ctx, rec); err != nil && m.logger != nil {
		m.logger.Errorf("match log error: %v", err)
	}
}

func (m *Manager) recordFairness() {
	fr, ok := m.metrics.(metrics.FairnessRecorder)
	if !ok {
		return
	}
	stats, hasStats := m.fairness.(interface {
		Stats() (int, float64, float64)
	})
	if !hasStats {
		return
	}
	drivers, mean, stddev := stats.Stats()
	if drivers == 0 {
		return
	}
	if err := fr.RecordFairness(metrics.FairnessEvent{
		Drivers: drivers,
		Mean:    mean,
		StdDev:  stddev,
		Time:    time.Now(),
	}); err != nil && m.logger != nil {
		m.logger.Errorf("fairness metrics error: %v", err)
	}
}
