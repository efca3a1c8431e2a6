// Package app assembles the matching service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ridewire/matchd/api/matches"
	"github.com/ridewire/matchd/config"
	"github.com/ridewire/matchd/core/fairness"
	"github.com/ridewire/matchd/core/matching"
	"github.com/ridewire/matchd/core/matchlog"
	coremetrics "github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/core/model"
	coremqtt "github.com/ridewire/matchd/core/mqtt"
	coreregistry "github.com/ridewire/matchd/core/registry"
	"github.com/ridewire/matchd/infra/logger"
	"github.com/ridewire/matchd/infra/metrics"
	"github.com/ridewire/matchd/infra/mqtt"
	"github.com/ridewire/matchd/infra/registry"
	"github.com/ridewire/matchd/internal/eventbus"
)

// Service orchestrates the match manager, the request intake and the
// observability surfaces.
type Service struct {
	Manager  *matching.Manager
	Tracker  *fairness.Tracker
	Registry coreregistry.DriverRegistry

	client      *mqtt.PahoClient
	bus         eventbus.EventBus
	log         logger.Logger
	promEnabled bool
	promPort    string
	apiCfg      config.APIConfig
	store       matchlog.LogStore
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return newService(cfg, client, reg)
}

// NewWithRegistry builds a broker-less service around the given registry.
// Assignments confirm immediately instead of being offered over MQTT.
func NewWithRegistry(cfg *config.Config, reg coreregistry.DriverRegistry) (*Service, error) {
	return newService(cfg, nil, reg)
}

func buildRegistry(cfg *config.Config) (coreregistry.DriverRegistry, error) {
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rreg, err := registry.NewRedisRegistry(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis registry: %w", err)
		}
		return rreg, nil
	}
	return registry.NewMemoryRegistry(), nil
}

func newService(cfg *config.Config, client *mqtt.PahoClient, reg coreregistry.DriverRegistry) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	tracker, err := fairness.NewTracker(cfg.Fairness)
	if err != nil {
		return nil, err
	}
	engine, err := matching.NewEngine(cfg.Matching, tracker, reg, logger.New("engine"))
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	ackTimeout := time.Duration(cfg.AckTimeoutSeconds) * time.Second
	// Keep the interface nil when client is a nil pointer; the manager
	// confirms assignments directly in that case.
	var offers coremqtt.Client
	if client != nil {
		offers = client
	}
	manager, err := matching.NewManager(engine, offers, reg, tracker, cfg.Pricing, ackTimeout, sink, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("match manager: %w", err)
	}

	store, err := matchlog.NewJSONLStore(cfg.Logging.Path)
	if err != nil {
		return nil, fmt.Errorf("match log: %w", err)
	}
	manager.SetLogStore(store)

	return &Service{
		Manager:     manager,
		Tracker:     tracker,
		Registry:    reg,
		client:      client,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		apiCfg:      cfg.API,
		store:       store,
	}, nil
}

// Run starts the request intake and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	requests := make(chan model.MatchRequest, 16)
	go s.Manager.Run(ctx, requests)

	if s.client != nil {
		if err := s.client.SubscribeRequests(func(req model.MatchRequest) {
			select {
			case requests <- req:
			default:
				s.log.Warnf("request queue full, dropping order %s", req.OrderID)
			}
		}); err != nil {
			return fmt.Errorf("subscribe requests: %w", err)
		}
	}

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.apiCfg.Enabled {
		go s.serveAPI(ctx)
	}
	<-ctx.Done()
	return nil
}

func (s *Service) serveAPI(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/api/matches", matches.NewLogHandler(s.store, s.apiCfg.Token))
	srv := &http.Server{Addr: s.apiCfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Errorf("api server: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.Manager.Close() }
