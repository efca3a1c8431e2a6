// Package events defines the notifications published on the internal event
// bus while requests move through the matching pipeline.
package events

import (
	"time"

	"github.com/ridewire/matchd/core/model"
)

// RequestEvent is published when a match request enters the pipeline.
type RequestEvent struct {
	Request model.MatchRequest
}

// MatchEvent is published after the ranked shortlist is computed.
type MatchEvent struct {
	Result model.MatchResult
}

// OfferEvent is published for every assignment offer outcome.
type OfferEvent struct {
	OrderID      string
	DriverID     string
	Acknowledged bool
	Err          error
	Latency      time.Duration
}

// AssignmentEvent is published once a driver confirms an assignment.
type AssignmentEvent struct {
	OrderID  string
	DriverID string
	MatchID  string
}
