package main

import (
	"fmt"
	"math/rand"
	"time"
)

var fleetRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// FleetConfig holds parameters for bulk fleet generation.
type FleetConfig struct {
	Size       int
	DeclinePct float64
	AckLatency time.Duration
	DropRate   float64
}

// DriverTemplate allows overriding generated drivers.
type DriverTemplate struct {
	Behavior   string `json:"behavior"`
	AckDelayMs int    `json:"ack_delay_ms"`
}

// GenerateFleet creates Size drivers with IDs drv0001..drvNNNN. A DeclinePct
// fraction of the fleet never acknowledges offers; the rest use RandomAck
// with the configured latency and drop rate. Templates override behavior
// per driver ID.
func GenerateFleet(cfg FleetConfig, tmpl map[string]DriverTemplate) []SimulatedDriver {
	if cfg.Size <= 0 {
		return nil
	}
	ds := make([]SimulatedDriver, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		id := fmt.Sprintf("drv%04d", i+1)
		var strat AckStrategy = RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
		if cfg.DeclinePct > 0 && fleetRng.Float64() < cfg.DeclinePct {
			strat = DeclineAll{}
		}
		if tmpl != nil {
			if t, ok := tmpl[id]; ok {
				strat = templateStrategy(t, cfg)
			}
		}
		ds[i] = SimulatedDriver{
			ID:       id,
			Strategy: strat,
			ackCh:    make(chan string, 50),
		}
	}
	return ds
}

func templateStrategy(t DriverTemplate, cfg FleetConfig) AckStrategy {
	delay := cfg.AckLatency
	if t.AckDelayMs > 0 {
		delay = time.Duration(t.AckDelayMs) * time.Millisecond
	}
	switch t.Behavior {
	case "decline":
		return DeclineAll{}
	case "auto":
		return AutoAck{Delay: delay}
	default:
		return RandomAck{Delay: delay, DropRate: cfg.DropRate}
	}
}
