package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the driver simulator.
type Config struct {
	Broker       string
	Count        int
	AckLatency   time.Duration
	DropRate     float64
	DeclinePct   float64
	TemplateFile string
	Verbose      bool
}

// Validate checks the simulator parameters.
func (c *Config) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be in [0,1]")
	}
	if c.DeclinePct < 0 || c.DeclinePct > 1 {
		return fmt.Errorf("decline-pct must be in [0,1]")
	}
	return nil
}
