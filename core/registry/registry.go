// Package registry defines the port to the external driver store. The
// engine only reads candidate snapshots and claims availability flags; the
// store itself lives outside the matching core.
package registry

import (
	"context"
	"errors"

	"github.com/ridewire/matchd/core/model"
)

// ErrDriverTaken is returned by TryAssign when another match request claimed
// the driver first.
var ErrDriverTaken = errors.New("driver already assigned")

// ErrUnknownDriver is returned for operations on a driver the store does not
// know.
var ErrUnknownDriver = errors.New("unknown driver")

// DriverRegistry supplies candidate snapshots and owns the availability flag.
// TryAssign must be atomic: of two concurrent calls for the same driver
// exactly one succeeds, the other receives ErrDriverTaken.
type DriverRegistry interface {
	// Snapshot returns the current pool of drivers as read-only copies.
	Snapshot(ctx context.Context) ([]model.DriverCandidate, error)
	// TryAssign flips the driver's availability flag off if it is on.
	TryAssign(ctx context.Context, driverID string) error
	// Release flips the availability flag back on after a declined or
	// abandoned offer.
	Release(ctx context.Context, driverID string) error
}
