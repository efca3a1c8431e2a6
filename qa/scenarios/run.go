package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ridewire/matchd/core/fairness"
	"github.com/ridewire/matchd/core/matching"
	coremetrics "github.com/ridewire/matchd/core/metrics"
	"github.com/ridewire/matchd/core/model"
	"github.com/ridewire/matchd/core/pricing"
	"github.com/ridewire/matchd/infra/metrics"
	"github.com/ridewire/matchd/infra/registry"
	"github.com/ridewire/matchd/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	promReg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, promReg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	drivers := make([]model.DriverCandidate, len(sc.Drivers))
	for i, d := range sc.Drivers {
		drivers[i] = d.ToModel()
	}
	reg := registry.NewMemoryRegistry(drivers...)

	ctx := context.Background()
	for _, id := range sc.Claimed {
		if err := reg.TryAssign(ctx, id); err != nil {
			t.Fatalf("claim %s: %v", id, err)
		}
	}

	tracker, err := fairness.NewTracker(fairness.Config{})
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	engine, err := matching.NewEngine(matching.DefaultConfig(), tracker, reg, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	mgr, err := matching.NewManager(engine, nil, reg, tracker, pricing.Config{}, time.Second, sink, eventbus.New(), nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	for i, reqDef := range sc.Requests {
		out, err := mgr.Process(ctx, reqDef.ToModel())
		if err != nil {
			t.Fatalf("scenario %s request %s: %v", sc.Name, reqDef.OrderID, err)
		}
		got := ""
		if out.Assignment != nil {
			got = out.Assignment.DriverID
		}
		if i < len(sc.Expected.Assignments) {
			if want := sc.Expected.Assignments[i]; got != want {
				t.Errorf("scenario %s request %s: expected driver %q, got %q", sc.Name, reqDef.OrderID, want, got)
			}
		}
		if sc.ReleaseAfter && got != "" {
			if err := reg.Release(ctx, got); err != nil {
				t.Fatalf("release %s: %v", got, err)
			}
		}
	}
}
