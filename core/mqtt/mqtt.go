// Package mqtt defines the messaging port used to offer assignments to
// drivers. The Paho-backed implementation lives in infra/mqtt.
package mqtt

import (
	"errors"
	"time"
)

// ErrAckTimeout is returned when a driver does not acknowledge an offer in
// time.
var ErrAckTimeout = errors.New("ack timeout")

// Offer is the assignment proposal published to a driver's topic.
type Offer struct {
	CommandID  string  `json:"command_id"`
	OrderID    string  `json:"order_id"`
	DriverID   string  `json:"driver_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLon  float64 `json:"pickup_lon"`
	EtaMinutes int     `json:"eta_minutes"`
	Score      float64 `json:"score"`
	Timestamp  int64   `json:"timestamp"`
}

// Client sends offers and tracks their acknowledgments.
type Client interface {
	// SendOffer publishes the offer to the driver's topic and returns the
	// command identifier used for acknowledgment tracking.
	SendOffer(driverID string, offer Offer) (string, error)
	// WaitForAck blocks until the offer is acknowledged or the timeout
	// elapses.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
	// Disconnect gracefully closes the connection.
	Disconnect()
}
