package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tmpl map[string]DriverTemplate
	if cfg.TemplateFile != "" {
		var err error
		tmpl, err = readTemplateFile(cfg.TemplateFile)
		if err != nil {
			log.Fatalf("template file: %v", err)
		}
	}

	fleetCfg := FleetConfig{
		Size:       cfg.Count,
		DeclinePct: cfg.DeclinePct,
		AckLatency: cfg.AckLatency,
		DropRate:   cfg.DropRate,
	}
	drivers := GenerateFleet(fleetCfg, tmpl)
	runDrivers(ctx, drivers, cfg)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Count, "count", 1, "number of drivers")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "offer ack latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "offer ack drop rate")
	flag.Float64Var(&cfg.DeclinePct, "decline-pct", 0, "ratio of drivers declining every offer")
	flag.StringVar(&cfg.TemplateFile, "template-file", "", "driver template overrides")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}

func readTemplateFile(path string) (map[string]DriverTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]DriverTemplate
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func runDrivers(ctx context.Context, drivers []SimulatedDriver, cfg Config) {
	var wg sync.WaitGroup
	for i := range drivers {
		d := &drivers[i]
		d.Broker = cfg.Broker
		wg.Add(1)
		go func(d *SimulatedDriver) {
			defer wg.Done()
			if err := d.Run(ctx); err != nil {
				log.Printf("%s: %v", d.ID, err)
			}
		}(d)
	}
	wg.Wait()
}
