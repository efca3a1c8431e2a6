package metrics

import coremetrics "github.com/ridewire/matchd/core/metrics"

// MultiSink fans matching events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMatchResult forwards the events to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordMatchResult(evs []coremetrics.MatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatchResult(evs); err != nil {
			return err
		}
	}
	return nil
}

// RecordPool forwards pool events when supported by the sink.
func (m *MultiSink) RecordPool(ev coremetrics.PoolEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PoolRecorder); ok {
			if err := rec.RecordPool(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAssignment forwards offer outcomes when supported by the sink.
func (m *MultiSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AssignmentRecorder); ok {
			if err := rec.RecordAssignment(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFairness forwards distribution snapshots when supported by the sink.
func (m *MultiSink) RecordFairness(ev coremetrics.FairnessEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FairnessRecorder); ok {
			if err := rec.RecordFairness(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
