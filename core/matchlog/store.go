// Package matchlog persists match decisions for inspection. The store keeps
// an audit trail of ranked shortlists and assignment outcomes; it is not the
// system of record for match history.
package matchlog

import (
	"context"
	"time"

	"github.com/ridewire/matchd/core/model"
)

// Record captures one matching decision and its outcome.
type Record struct {
	Timestamp      time.Time          `json:"timestamp"`
	Request        model.MatchRequest `json:"request"`
	Result         model.MatchResult  `json:"result"`
	AssignedDriver string             `json:"assigned_driver,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start    time.Time
	End      time.Time
	OrderID  string
	DriverID string
	Limit    int
}

// LogStore persists Records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
