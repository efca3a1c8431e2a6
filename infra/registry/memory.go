// Package registry provides the driver registry backends: an in-memory
// implementation for tests and single-node setups, and a Redis one for
// deployments where several matcher instances share the pool.
package registry

import (
	"context"
	"sync"

	"github.com/ridewire/matchd/core/model"
	coreregistry "github.com/ridewire/matchd/core/registry"
)

// MemoryRegistry keeps the driver pool in process memory.
type MemoryRegistry struct {
	mu       sync.Mutex
	drivers  map[string]model.DriverCandidate
	assigned map[string]bool
}

// NewMemoryRegistry creates a registry seeded with the given drivers.
func NewMemoryRegistry(drivers ...model.DriverCandidate) *MemoryRegistry {
	r := &MemoryRegistry{
		drivers:  make(map[string]model.DriverCandidate, len(drivers)),
		assigned: make(map[string]bool),
	}
	for _, d := range drivers {
		r.drivers[d.ID] = d
	}
	return r
}

// Upsert adds or replaces a driver profile.
func (r *MemoryRegistry) Upsert(d model.DriverCandidate) {
	r.mu.Lock()
	r.drivers[d.ID] = d
	r.mu.Unlock()
}

// Remove deletes a driver and any claim on it.
func (r *MemoryRegistry) Remove(driverID string) {
	r.mu.Lock()
	delete(r.drivers, driverID)
	delete(r.assigned, driverID)
	r.mu.Unlock()
}

// Snapshot returns a copy of the pool. Claimed drivers appear unavailable so
// a concurrent matching pass does not rank them again.
func (r *MemoryRegistry) Snapshot(ctx context.Context) ([]model.DriverCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.DriverCandidate, 0, len(r.drivers))
	for id, d := range r.drivers {
		if r.assigned[id] {
			d.Available = false
		}
		out = append(out, d)
	}
	return out, nil
}

// TryAssign claims the driver. Exactly one concurrent caller wins.
func (r *MemoryRegistry) TryAssign(ctx context.Context, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[driverID]; !ok {
		return coreregistry.ErrUnknownDriver
	}
	if r.assigned[driverID] {
		return coreregistry.ErrDriverTaken
	}
	r.assigned[driverID] = true
	return nil
}

// Release returns the driver to the available pool.
func (r *MemoryRegistry) Release(ctx context.Context, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[driverID]; !ok {
		return coreregistry.ErrUnknownDriver
	}
	delete(r.assigned, driverID)
	return nil
}
