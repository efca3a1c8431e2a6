package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridewire/matchd/app"
	"github.com/ridewire/matchd/config"
	"github.com/ridewire/matchd/core/model"
	"github.com/ridewire/matchd/infra/logger"
	"github.com/ridewire/matchd/infra/registry"
)

var (
	matchLat  float64
	matchLon  float64
	matchTier string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run one match pass against a seeded test pool",
	RunE:  matchOnce,
}

func init() {
	matchCmd.Flags().Float64Var(&matchLat, "lat", 48.8566, "pickup latitude")
	matchCmd.Flags().Float64Var(&matchLon, "lon", 2.3522, "pickup longitude")
	matchCmd.Flags().StringVar(&matchTier, "tier", "", "premium tier (BRONZE, SILVER, GOLD, PLATINUM)")
	rootCmd.AddCommand(matchCmd)
}

// matchOnce wires an in-memory pool and runs a single request end to end,
// useful for smoke-testing a configuration without a broker.
func matchOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("match-command")

	reg := registry.NewMemoryRegistry(
		model.DriverCandidate{
			ID: "test-sedan", Latitude: matchLat + 0.01, Longitude: matchLon,
			VehicleType: model.VehicleSedan, Verified: true, Available: true,
			RecentRating: 4.9, CompletionRate: 0.97, AcceptanceRate: 0.92,
		},
		model.DriverCandidate{
			ID: "test-suv", Latitude: matchLat + 0.03, Longitude: matchLon,
			VehicleType: model.VehicleSUV, Verified: true, Available: true,
			RecentRating: 4.7, CompletionRate: 0.9, AcceptanceRate: 0.85,
		},
	)
	svc, err := app.NewWithRegistry(cfg, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	req := model.MatchRequest{
		OrderID: fmt.Sprintf("smoke-%d", time.Now().Unix()),
		Pickup:  model.Coordinates{Lat: matchLat, Lon: matchLon},
		Dropoff: model.Coordinates{Lat: matchLat + 0.05, Lon: matchLon + 0.05},
		Service: model.ServiceRide,
		Tier:    model.PremiumTier(matchTier),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	out, err := svc.Manager.Process(ctx, req)
	if err != nil {
		return err
	}
	for i, sb := range out.Result.Ranked {
		logg.Infof("#%d %s score=%.3f eta=%dmin dist=%.2fkm", i+1, sb.DriverID, sb.CompositeScore, sb.EstimatedArrivalMinutes, sb.DistanceKm)
	}
	if out.Assignment != nil {
		logg.Infof("assigned %s to %s", out.Assignment.OrderID, out.Assignment.DriverID)
	} else {
		logg.Warnf("no driver assigned")
	}
	return nil
}
