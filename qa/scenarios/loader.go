// Package scenarios runs YAML-defined matching scenarios against the full
// engine and manager pipeline. Each scenario seeds a driver pool, submits a
// sequence of requests and checks which driver wins each one.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ridewire/matchd/core/model"
)

type DriverDef struct {
	ID             string   `yaml:"id"`
	Lat            float64  `yaml:"lat"`
	Lon            float64  `yaml:"lon"`
	Vehicle        string   `yaml:"vehicle"`
	Verified       bool     `yaml:"verified"`
	Available      bool     `yaml:"available"`
	Rating         float64  `yaml:"rating"`
	CompletionRate float64  `yaml:"completion_rate"`
	AcceptanceRate float64  `yaml:"acceptance_rate"`
	Features       []string `yaml:"features,omitempty"`
}

func (d DriverDef) ToModel() model.DriverCandidate {
	vehicle := model.VehicleType(d.Vehicle)
	if d.Vehicle == "" {
		vehicle = model.VehicleSedan
	}
	return model.DriverCandidate{
		ID:             d.ID,
		Latitude:       d.Lat,
		Longitude:      d.Lon,
		VehicleType:    vehicle,
		Verified:       d.Verified,
		Available:      d.Available,
		RecentRating:   d.Rating,
		CompletionRate: d.CompletionRate,
		AcceptanceRate: d.AcceptanceRate,
		Features:       d.Features,
	}
}

type PointDef struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

type RequestDef struct {
	OrderID      string   `yaml:"order_id"`
	Pickup       PointDef `yaml:"pickup"`
	Dropoff      PointDef `yaml:"dropoff"`
	Service      string   `yaml:"service,omitempty"`
	Vehicle      string   `yaml:"vehicle,omitempty"`
	Tier         string   `yaml:"tier,omitempty"`
	Requirements []string `yaml:"requirements,omitempty"`
	BaseFare     float64  `yaml:"base_fare,omitempty"`
}

func (r RequestDef) ToModel() model.MatchRequest {
	service := model.ServiceType(r.Service)
	if r.Service == "" {
		service = model.ServiceRide
	}
	return model.MatchRequest{
		OrderID:      r.OrderID,
		Pickup:       model.Coordinates{Lat: r.Pickup.Lat, Lon: r.Pickup.Lon},
		Dropoff:      model.Coordinates{Lat: r.Dropoff.Lat, Lon: r.Dropoff.Lon},
		Service:      service,
		VehicleType:  model.VehicleType(r.Vehicle),
		Tier:         model.PremiumTier(r.Tier),
		Requirements: r.Requirements,
		BaseFare:     r.BaseFare,
	}
}

type Expected struct {
	// Assignments lists the winning driver ID per request, in request
	// order. An empty string means no driver was assigned.
	Assignments []string `yaml:"assignments"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Drivers     []DriverDef  `yaml:"drivers"`
	Requests    []RequestDef `yaml:"requests"`
	// Claimed drivers start the scenario already assigned to another order.
	Claimed []string `yaml:"claimed,omitempty"`
	// ReleaseAfter frees the winning driver after each request.
	ReleaseAfter bool     `yaml:"release_after,omitempty"`
	Expected     Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
