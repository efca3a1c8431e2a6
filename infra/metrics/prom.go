package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ridewire/matchd/core/metrics"
)

// PromSink records matching events in Prometheus metrics.
type PromSink struct {
	events    *prometheus.CounterVec
	composite *prometheus.HistogramVec
	offers    *prometheus.CounterVec
	ackLat    prometheus.Histogram
	poolSize  prometheus.Gauge
	fairDev   prometheus.Gauge
}

// NewPromSink registers matching metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_events_total",
		Help: "Total number of ranked match candidates",
	}, []string{"service_type", "tier"})
	composite := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "match_composite_score",
		Help:    "Composite score distribution of ranked candidates",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"service_type"})
	offers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_offers_total",
		Help: "Total number of assignment offers by outcome",
	}, []string{"acknowledged"})
	ackLat := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assignment_ack_latency_seconds",
		Help:    "Time between offer send and acknowledgment",
		Buckets: prometheus.DefBuckets,
	})
	poolSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "driver_pool_size",
		Help: "Size of the driver pool at the last snapshot",
	})
	fairDev := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fairness_assignment_stddev",
		Help: "Standard deviation of per-driver assignment counts in the window",
	})

	sink := &PromSink{}
	var err error
	if sink.events, err = registerCounterVec(reg, events); err != nil {
		return nil, err
	}
	if sink.composite, err = registerHistogramVec(reg, composite); err != nil {
		return nil, err
	}
	if sink.offers, err = registerCounterVec(reg, offers); err != nil {
		return nil, err
	}
	if err := reg.Register(ackLat); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			ackLat = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	sink.ackLat = ackLat
	if sink.poolSize, err = registerGauge(reg, poolSize); err != nil {
		return nil, err
	}
	if sink.fairDev, err = registerGauge(reg, fairDev); err != nil {
		return nil, err
	}
	return sink, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec), nil
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge), nil
		}
		return nil, err
	}
	return g, nil
}

// RecordMatchResult increments the counters for each ranked candidate.
func (s *PromSink) RecordMatchResult(evs []coremetrics.MatchEvent) error {
	for _, ev := range evs {
		s.events.WithLabelValues(string(ev.Service), string(ev.Tier)).Inc()
		s.composite.WithLabelValues(string(ev.Service)).Observe(ev.Score.CompositeScore)
	}
	return nil
}

// RecordPool sets the pool size gauge.
func (s *PromSink) RecordPool(ev coremetrics.PoolEvent) error {
	s.poolSize.Set(float64(ev.Total))
	return nil
}

// RecordAssignment counts the offer outcome and observes its latency.
func (s *PromSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	s.offers.WithLabelValues(strconv.FormatBool(ev.Acknowledged)).Inc()
	s.ackLat.Observe(ev.Latency.Seconds())
	return nil
}

// RecordFairness exposes the assignment distribution spread.
func (s *PromSink) RecordFairness(ev coremetrics.FairnessEvent) error {
	s.fairDev.Set(ev.StdDev)
	return nil
}
