// Package fairness maintains the per-driver recent-assignment counters and
// derives the anti-starvation correction applied during scoring.
package fairness

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DecayStep reduces the boost once a driver's recent assignment count
// exceeds the previous step's ceiling.
type DecayStep struct {
	// MaxAssignments is the inclusive upper bound of the step.
	MaxAssignments int `json:"max_assignments"`
	// Factor multiplies the base boost within the step.
	Factor float64 `json:"factor"`
}

// Config defines the fairness window and decay table.
type Config struct {
	WindowHours int `json:"window_hours"`
	// BaseBoost is the boost for a driver with no recent assignments.
	BaseBoost float64 `json:"base_boost"`
	// Decay must have strictly increasing ceilings and non-increasing
	// factors so the boost stays monotonic in the assignment count.
	Decay []DecayStep `json:"decay"`
	// TailFactor applies beyond the last decay step.
	TailFactor float64 `json:"tail_factor"`
}

// SetDefaults applies the production decay table.
func (c *Config) SetDefaults() {
	if c.WindowHours == 0 {
		c.WindowHours = 24
	}
	if c.BaseBoost == 0 {
		c.BaseBoost = 1.0
	}
	if len(c.Decay) == 0 {
		c.Decay = []DecayStep{
			{MaxAssignments: 5, Factor: 1.0},
			{MaxAssignments: 10, Factor: 0.8},
			{MaxAssignments: 15, Factor: 0.6},
			{MaxAssignments: 20, Factor: 0.4},
		}
		c.TailFactor = 0.1
	}
}

// Validate rejects tables that would break boost monotonicity.
func (c Config) Validate() error {
	if c.WindowHours <= 0 {
		return fmt.Errorf("window_hours must be positive, got %d", c.WindowHours)
	}
	if c.BaseBoost <= 0 || c.BaseBoost > 1 {
		return fmt.Errorf("base_boost must be in (0,1], got %v", c.BaseBoost)
	}
	prevMax := 0
	prevFactor := c.BaseBoost
	for i, s := range c.Decay {
		if i > 0 && s.MaxAssignments <= prevMax {
			return fmt.Errorf("decay ceilings must be strictly increasing")
		}
		if s.Factor < 0 || s.Factor > prevFactor {
			return fmt.Errorf("decay factors must be non-increasing and non-negative")
		}
		prevMax = s.MaxAssignments
		prevFactor = s.Factor
	}
	if c.TailFactor < 0 || c.TailFactor > prevFactor {
		return fmt.Errorf("tail_factor must not exceed the last decay factor")
	}
	return nil
}

// Tracker counts confirmed assignments per driver over a rolling time
// window. It is the only shared mutable state of the engine; every access
// goes through the mutex so concurrent scoring passes never lose a write.
type Tracker struct {
	mu     sync.Mutex
	cfg    Config
	window time.Duration
	events map[string][]time.Time

	// now is overridable in tests.
	now func() time.Time
}

// NewTracker builds a tracker from the given config.
func NewTracker(cfg Config) (*Tracker, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fairness config: %w", err)
	}
	return &Tracker{
		cfg:    cfg,
		window: time.Duration(cfg.WindowHours) * time.Hour,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}, nil
}

// RecordAssignment increments the driver's counter. Called exactly once per
// confirmed assignment.
func (t *Tracker) RecordAssignment(driverID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.events[driverID] = append(t.pruneLocked(driverID, now), now)
}

// Count returns the driver's assignment count within the window.
func (t *Tracker) Count(driverID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	evs := t.pruneLocked(driverID, t.now())
	t.events[driverID] = evs
	return len(evs)
}

// Boost derives the fairness term for the driver: the base boost decayed by
// the configured step table. Monotonically non-increasing in the assignment
// count.
func (t *Tracker) Boost(driverID string) float64 {
	return t.boostFor(t.Count(driverID))
}

func (t *Tracker) boostFor(count int) float64 {
	for _, s := range t.cfg.Decay {
		if count <= s.MaxAssignments {
			return t.cfg.BaseBoost * s.Factor
		}
	}
	return t.cfg.BaseBoost * t.cfg.TailFactor
}

// Stats returns the mean and standard deviation of the assignment counts of
// all tracked drivers, for distribution monitoring.
func (t *Tracker) Stats() (drivers int, mean, stddev float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	counts := make([]float64, 0, len(t.events))
	for id := range t.events {
		evs := t.pruneLocked(id, now)
		if len(evs) == 0 {
			delete(t.events, id)
			continue
		}
		t.events[id] = evs
		counts = append(counts, float64(len(evs)))
	}
	if len(counts) == 0 {
		return 0, 0, 0
	}
	if len(counts) == 1 {
		return 1, counts[0], 0
	}
	return len(counts), stat.Mean(counts, nil), stat.StdDev(counts, nil)
}

// pruneLocked drops events older than the window. Callers must hold the
// mutex.
func (t *Tracker) pruneLocked(driverID string, now time.Time) []time.Time {
	evs := t.events[driverID]
	cutoff := now.Add(-t.window)
	i := 0
	for ; i < len(evs); i++ {
		if evs[i].After(cutoff) {
			break
		}
	}
	return evs[i:]
}
