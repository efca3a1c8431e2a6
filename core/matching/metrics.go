package matching

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	matchRequests   *prometheus.CounterVec
	emptyMatches    prometheus.Counter
	eligiblePool    prometheus.Histogram
	scoringDuration prometheus.Histogram
	offerSuccess    prometheus.Counter
	offerFailure    prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Histogram, prometheus.Histogram, prometheus.Counter, prometheus.Counter) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Number of match requests processed",
		},
		[]string{"service_type"},
	)
	empty := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_empty_results_total",
			Help: "Number of match requests with no eligible candidates",
		},
	)
	pool := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_eligible_pool_size",
			Help:    "Eligible candidate pool size per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_scoring_duration_seconds",
			Help:    "Time spent filtering, scoring and ranking one request",
			Buckets: prometheus.DefBuckets,
		},
	)
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_offer_success_total",
			Help: "Number of assignment offers acknowledged by drivers",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_offer_failure_total",
			Help: "Number of assignment offers declined or timed out",
		},
	)
	return req, empty, pool, dur, suc, fail
}

func init() {
	matchRequests, emptyMatches, eligiblePool, scoringDuration, offerSuccess, offerFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers matching metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(matchRequests, emptyMatches, eligiblePool, scoringDuration, offerSuccess, offerFailure)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	matchRequests, emptyMatches, eligiblePool, scoringDuration, offerSuccess, offerFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
