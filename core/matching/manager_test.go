package matching

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ridewire/matchd/core/fairness"
	"github.com/ridewire/matchd/core/matchlog"
	"github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/core/model"
	"github.com/ridewire/matchd/core/mqtt"
	"github.com/ridewire/matchd/core/pricing"
	"github.com/ridewire/matchd/internal/eventbus"
)

// fakeOffers acknowledges offers per driver ID.
type fakeOffers struct {
	mu        sync.Mutex
	acks      map[string]bool
	sent      []mqtt.Offer
	cmdDriver map[string]string
}

func newFakeOffers(acks map[string]bool) *fakeOffers {
	return &fakeOffers{acks: acks, cmdDriver: make(map[string]string)}
}

func (f *fakeOffers) SendOffer(driverID string, o mqtt.Offer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("cmd-%d", len(f.sent))
	o.CommandID = id
	f.sent = append(f.sent, o)
	f.cmdDriver[id] = driverID
	return id, nil
}

func (f *fakeOffers) WaitForAck(cmdID string, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acks[f.cmdDriver[cmdID]] {
		return true, nil
	}
	return false, mqtt.ErrAckTimeout
}

func (f *fakeOffers) Disconnect() {}

// captureSink collects everything recorded through the optional interfaces.
type captureSink struct {
	mu          sync.Mutex
	matches     []metrics.MatchEvent
	pools       []metrics.PoolEvent
	assignments []metrics.AssignmentEvent
	fairness    []metrics.FairnessEvent
}

func (s *captureSink) RecordMatchResult(evs []metrics.MatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, evs...)
	return nil
}

func (s *captureSink) RecordPool(ev metrics.PoolEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools = append(s.pools, ev)
	return nil
}

func (s *captureSink) RecordAssignment(ev metrics.AssignmentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, ev)
	return nil
}

func (s *captureSink) RecordFairness(ev metrics.FairnessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fairness = append(s.fairness, ev)
	return nil
}

func newTestManager(t *testing.T, reg *memRegistry, offers mqtt.Client, sink metrics.MetricsSink) (*Manager, *fairness.Tracker) {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), nil, reg, nil)
	require.NoError(t, err)
	tracker, err := fairness.NewTracker(fairness.Config{})
	require.NoError(t, err)
	mgr, err := NewManager(engine, offers, reg, tracker, pricing.Config{}, time.Second, sink, nil, nil)
	require.NoError(t, err)
	return mgr, tracker
}

func TestProcessAssignsBestCandidate(t *testing.T) {
	near := eligibleDriver("near")
	far := eligibleDriver("far")
	far.Latitude = 48.95
	reg := newMemRegistry(near, far)
	offers := newFakeOffers(map[string]bool{"near": true, "far": true})
	sink := &captureSink{}
	mgr, tracker := newTestManager(t, reg, offers, sink)

	out, err := mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	require.Equal(t, "near", out.Assignment.DriverID)
	require.True(t, reg.assigned["near"])
	require.False(t, reg.assigned["far"])
	require.Equal(t, 1, tracker.Count("near"))
	require.Len(t, offers.sent, 1)
	require.Len(t, sink.matches, 2)
	require.Len(t, sink.pools, 1)
	require.Len(t, sink.assignments, 1)
	require.True(t, sink.assignments[0].Acknowledged)
}

func TestProcessFallsThroughOnDecline(t *testing.T) {
	near := eligibleDriver("near")
	far := eligibleDriver("far")
	far.Latitude = 48.95
	reg := newMemRegistry(near, far)
	offers := newFakeOffers(map[string]bool{"far": true})
	sink := &captureSink{}
	mgr, _ := newTestManager(t, reg, offers, sink)

	out, err := mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	require.Equal(t, "far", out.Assignment.DriverID)
	require.Equal(t, []string{"near"}, reg.released)
	require.Len(t, offers.sent, 2)
}

func TestProcessSkipsTakenDriver(t *testing.T) {
	near := eligibleDriver("near")
	far := eligibleDriver("far")
	far.Latitude = 48.95
	reg := newMemRegistry(near, far)
	require.NoError(t, reg.TryAssign(context.Background(), "near"))
	offers := newFakeOffers(map[string]bool{"near": true, "far": true})
	mgr, _ := newTestManager(t, reg, offers, &captureSink{})

	out, err := mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	require.Equal(t, "far", out.Assignment.DriverID)
	require.Len(t, offers.sent, 1, "no offer should reach a taken driver")
}

func TestProcessNoAcks(t *testing.T) {
	reg := newMemRegistry(eligibleDriver("d1"), eligibleDriver("d2"))
	offers := newFakeOffers(nil)
	mgr, tracker := newTestManager(t, reg, offers, &captureSink{})

	out, err := mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)
	require.Nil(t, out.Assignment)
	require.Len(t, out.Result.Ranked, 2)
	require.Len(t, reg.released, 2, "every declined driver must be released")
	require.Equal(t, 0, tracker.Count("d1"))
}

func TestProcessWithoutOffersClient(t *testing.T) {
	reg := newMemRegistry(eligibleDriver("d1"))
	mgr, tracker := newTestManager(t, reg, nil, &captureSink{})

	out, err := mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	require.Equal(t, "d1", out.Assignment.DriverID)
	require.Empty(t, out.Assignment.CommandID)
	require.Equal(t, 1, tracker.Count("d1"))
}

func TestProcessQuotesPremiumFare(t *testing.T) {
	d := eligibleDriver("d1")
	d.RecentRating = 4.9
	reg := newMemRegistry(d)
	mgr, _ := newTestManager(t, reg, nil, &captureSink{})

	req := rideRequest()
	req.Tier = model.TierGold
	req.BaseFare = 25
	req.ScheduledAt = time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)

	out, err := mgr.Process(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	require.NotNil(t, out.Assignment.Quote)
	require.InDelta(t, 55.0, out.Assignment.Quote.TotalFare, 1e-9)
}

func TestProcessPersistsDecision(t *testing.T) {
	reg := newMemRegistry(eligibleDriver("d1"))
	mgr, _ := newTestManager(t, reg, nil, &captureSink{})
	store, err := matchlog.NewJSONLStore(filepath.Join(t.TempDir(), "matches.log"))
	require.NoError(t, err)
	mgr.SetLogStore(store)

	_, err = mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)

	recs, err := store.Query(context.Background(), matchlog.Query{OrderID: "order-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "d1", recs[0].AssignedDriver)
}

func TestProcessPublishesEvents(t *testing.T) {
	reg := newMemRegistry(eligibleDriver("d1"))
	engine, err := NewEngine(DefaultConfig(), nil, reg, nil)
	require.NoError(t, err)
	bus := eventbus.NewBuffered(32)
	sub := bus.Subscribe()
	mgr, err := NewManager(engine, nil, reg, nil, pricing.Config{}, time.Second, nil, bus, nil)
	require.NoError(t, err)

	_, err = mgr.Process(context.Background(), rideRequest())
	require.NoError(t, err)

	var kinds []string
	for len(sub) > 0 {
		kinds = append(kinds, fmt.Sprintf("%T", <-sub))
	}
	require.Contains(t, kinds, "events.RequestEvent")
	require.Contains(t, kinds, "events.MatchEvent")
	require.Contains(t, kinds, "events.AssignmentEvent")
}

func TestRunProcessesUntilCanceled(t *testing.T) {
	reg := newMemRegistry(eligibleDriver("d1"))
	mgr, tracker := newTestManager(t, reg, nil, &captureSink{})

	ctx, cancel := context.WithCancel(context.Background())
	requests := make(chan model.MatchRequest, 1)
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx, requests)
		close(done)
	}()
	requests <- rideRequest()
	require.Eventually(t, func() bool { return tracker.Count("d1") == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
