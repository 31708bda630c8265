package domain

// VehicleType distinguishes power units from trailers. A trip's tractor
// reference must resolve to a tractor and its trailer reference to a
// trailer.
type VehicleType string

const (
	VehicleTractor VehicleType = "tractor"
	VehicleTrailer VehicleType = "trailer"
)

// Driver is the reference entity behind a trip's driver id.
type Driver struct {
	ID                  string
	DriverNumber        string
	Name                string
	Initials            string
	HomeOperatingCenter string
	LicenseNumber       string
	LicenseState        string
}

// Vehicle is a tractor or trailer unit.
type Vehicle struct {
	ID            string
	VehicleNumber string
	Type          VehicleType
	Make          string
	Model         string
	Year          int
	Active        bool
}

// Load is the freight attached to a trip.
type Load struct {
	ID           string
	LoadNumber   string
	Shipper      string
	Commodity    string
	WeightLbs    int
	Pieces       int
	Instructions string
}
