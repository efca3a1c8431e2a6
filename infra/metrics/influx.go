package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/infra/logger"
)

// InfluxSink writes matching events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordMatchResult writes each ranked candidate as a line protocol point.
func (s *InfluxSink) RecordMatchResult(evs []coremetrics.MatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		p := write.NewPointWithMeasurement("match_event").
			AddTag("match_id", ev.MatchID).
			AddTag("order_id", ev.OrderID).
			AddTag("driver_id", ev.DriverID).
			AddTag("service_type", string(ev.Service)).
			AddTag("tier", string(ev.Tier)).
			AddTag("component", "match_manager").
			AddField("rank", ev.Rank).
			AddField("composite", round3(ev.Score.CompositeScore)).
			AddField("eta_score", round3(ev.Score.EtaScore)).
			AddField("rating_score", round3(ev.Score.RatingScore)).
			AddField("reliability_score", round3(ev.Score.ReliabilityScore)).
			AddField("fairness_boost", round3(ev.Score.FairnessBoost)).
			AddField("vehicle_score", round3(ev.Score.VehicleMatchScore)).
			AddField("eta_minutes", ev.Score.EstimatedArrivalMinutes).
			AddField("distance_km", round3(ev.Score.DistanceKm)).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordPool persists the candidate pool sizes of one request.
func (s *InfluxSink) RecordPool(ev coremetrics.PoolEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("candidate_pool").
		AddTag("order_id", ev.OrderID).
		AddTag("component", "match_manager").
		AddField("total", ev.Total).
		AddField("eligible", ev.Eligible).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignment records an offer acknowledgment outcome.
func (s *InfluxSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment_offer").
		AddTag("order_id", ev.OrderID).
		AddTag("driver_id", ev.DriverID).
		AddTag("acknowledged", strconv.FormatBool(ev.Acknowledged)).
		AddTag("command_id", ev.CommandID).
		AddTag("component", "match_manager").
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFairness writes the assignment distribution snapshot.
func (s *InfluxSink) RecordFairness(ev coremetrics.FairnessEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fairness_distribution").
		AddTag("component", "fairness_tracker").
		AddField("drivers", ev.Drivers).
		AddField("mean", round3(ev.Mean)).
		AddField("stddev", round3(ev.StdDev)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
