package model

// VehicleType classifies the vehicle a driver operates.
type VehicleType string

const (
	VehicleSedan       VehicleType = "SEDAN"
	VehicleSUV         VehicleType = "SUV"
	VehicleLuxurySedan VehicleType = "LUXURY_SEDAN"
	VehicleLuxurySUV   VehicleType = "LUXURY_SUV"
	VehicleMoto        VehicleType = "MOTO"
	VehicleScooter     VehicleType = "SCOOTER"
	VehicleCar         VehicleType = "CAR"
	VehicleVan         VehicleType = "VAN"
	VehicleTruckVan    VehicleType = "TRUCK_VAN"
)

// ServiceType identifies the kind of service a request asks for.
type ServiceType string

const (
	ServiceRide     ServiceType = "RIDE"
	ServiceMoto     ServiceType = "MOTO"
	ServiceFood     ServiceType = "FOOD"
	ServiceGrocery  ServiceType = "GROCERY"
	ServiceGoods    ServiceType = "GOODS"
	ServiceTruckVan ServiceType = "TRUCK_VAN"
)

// serviceVehicles maps each service type to the vehicle types able to serve it.
// Used when a driver does not declare an explicit supported-service list.
var serviceVehicles = map[ServiceType][]VehicleType{
	ServiceRide:     {VehicleSedan, VehicleSUV, VehicleLuxurySedan, VehicleLuxurySUV},
	ServiceMoto:     {VehicleMoto},
	ServiceFood:     {VehicleMoto, VehicleScooter, VehicleCar},
	ServiceGrocery:  {VehicleScooter, VehicleCar, VehicleVan},
	ServiceGoods:    {VehicleScooter, VehicleCar, VehicleVan, VehicleTruckVan},
	ServiceTruckVan: {VehicleTruckVan},
}

// KnownService reports whether s is one of the supported service types.
func KnownService(s ServiceType) bool {
	_, ok := serviceVehicles[s]
	return ok
}

// DriverCandidate is a read-only snapshot of a driver taken from the external
// registry for a single matching pass. The engine never mutates it.
type DriverCandidate struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	VehicleType VehicleType `json:"vehicle_type"`
	Verified    bool        `json:"verified"`
	Available   bool        `json:"available"`

	// Quality aggregates supplied by the reputation collaborator.
	// Ratings use the 1-5 scale, rates are fractions in [0,1].
	RecentRating   float64 `json:"recent_rating"`
	LifetimeRating float64 `json:"lifetime_rating"`
	CompletionRate float64 `json:"completion_rate"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	EtaAccuracy    float64 `json:"eta_accuracy"`

	// Features lists declared vehicle features and specialties such as
	// "child_seat" or "wheelchair_accessible". May be empty, never required.
	Features []string `json:"features,omitempty"`

	// Services optionally restricts the service types this driver accepts.
	// Empty means the set is derived from the vehicle type.
	Services []ServiceType `json:"services,omitempty"`
}

// HasFeature reports whether the driver declares the given feature.
func (d DriverCandidate) HasFeature(feature string) bool {
	for _, f := range d.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// SupportsService reports whether the driver can serve the given service type.
// Drivers without an explicit service list fall back to the vehicle
// compatibility table.
func (d DriverCandidate) SupportsService(s ServiceType) bool {
	if len(d.Services) > 0 {
		for _, svc := range d.Services {
			if svc == s {
				return true
			}
		}
		return false
	}
	for _, vt := range serviceVehicles[s] {
		if vt == d.VehicleType {
			return true
		}
	}
	return false
}
