package model

import "testing"

func TestMatchRequestValidate(t *testing.T) {
	base := MatchRequest{
		OrderID: "order-1",
		Pickup:  Coordinates{Lat: 40.7128, Lon: -74.0060},
		Dropoff: Coordinates{Lat: 40.7580, Lon: -73.9855},
		Service: ServiceRide,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*MatchRequest)
	}{
		{"missing order id", func(r *MatchRequest) { r.OrderID = "" }},
		{"latitude out of range", func(r *MatchRequest) { r.Pickup.Lat = 91 }},
		{"longitude out of range", func(r *MatchRequest) { r.Dropoff.Lon = -181 }},
		{"unknown service", func(r *MatchRequest) { r.Service = "TELEPORT" }},
		{"unknown tier", func(r *MatchRequest) { r.Tier = "DIAMOND" }},
		{"negative max results", func(r *MatchRequest) { r.MaxResults = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSupportsServiceFromVehicleType(t *testing.T) {
	d := DriverCandidate{ID: "d1", VehicleType: VehicleSedan}
	if !d.SupportsService(ServiceRide) {
		t.Fatalf("sedan should serve RIDE")
	}
	if d.SupportsService(ServiceMoto) {
		t.Fatalf("sedan should not serve MOTO")
	}
}

func TestSupportsServiceExplicitList(t *testing.T) {
	d := DriverCandidate{ID: "d1", VehicleType: VehicleCar, Services: []ServiceType{ServiceFood}}
	if !d.SupportsService(ServiceFood) {
		t.Fatalf("explicit list should allow FOOD")
	}
	if d.SupportsService(ServiceGrocery) {
		t.Fatalf("explicit list should exclude GROCERY even if the vehicle fits")
	}
}

func TestHasFeatureEmptySet(t *testing.T) {
	d := DriverCandidate{ID: "d1"}
	if d.HasFeature("child_seat") {
		t.Fatalf("driver without features should not match any")
	}
}
