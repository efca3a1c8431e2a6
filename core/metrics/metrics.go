package metrics

import (
	"time"

	"github.com/ridewire/matchd/core/model"
)

// MatchEvent represents one ranked candidate of a matching pass to be
// recorded.
type MatchEvent struct {
	MatchID  string
	OrderID  string
	DriverID string
	Rank     int
	Score    model.ScoreBreakdown
	Service  model.ServiceType
	Tier     model.PremiumTier
	Time     time.Time
}

// MetricsSink records match results for observability purposes.
type MetricsSink interface {
	RecordMatchResult(events []MatchEvent) error
}

// PoolEvent captures the candidate pool sizes of one request.
type PoolEvent struct {
	OrderID  string
	Total    int
	Eligible int
	Time     time.Time
}

// PoolRecorder records candidate pool sizes.
type PoolRecorder interface {
	RecordPool(ev PoolEvent) error
}

// AssignmentEvent captures an offer acknowledgment outcome.
type AssignmentEvent struct {
	OrderID      string
	DriverID     string
	CommandID    string
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// AssignmentRecorder records offer outcomes.
type AssignmentRecorder interface {
	RecordAssignment(ev AssignmentEvent) error
}

// FairnessEvent is a snapshot of the assignment distribution across drivers.
type FairnessEvent struct {
	Drivers int
	Mean    float64
	StdDev  float64
	Time    time.Time
}

// FairnessRecorder records assignment distribution statistics.
type FairnessRecorder interface {
	RecordFairness(ev FairnessEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMatchResult([]MatchEvent) error   { return nil }
func (NopSink) RecordPool(PoolEvent) error             { return nil }
func (NopSink) RecordAssignment(AssignmentEvent) error { return nil }
func (NopSink) RecordFairness(FairnessEvent) error     { return nil }
