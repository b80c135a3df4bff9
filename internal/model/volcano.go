// Package model defines the data structures used throughout the application.
// Volcanoes are read-only reference data; everything else is user content.
package model

// PopulationBand is one of the fixed radii a population count is stored for.
type PopulationBand string

const (
	Band5km   PopulationBand = "5km"
	Band10km  PopulationBand = "10km"
	Band30km  PopulationBand = "30km"
	Band100km PopulationBand = "100km"
)

// PopulationBands lists every valid band, smallest radius first.
var PopulationBands = []PopulationBand{Band5km, Band10km, Band30km, Band100km}

// ParsePopulationBand validates a band string such as "10km".
func ParsePopulationBand(s string) (PopulationBand, bool) {
	for _, b := range PopulationBands {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Column returns the volcanoes column holding this band's count.
func (b PopulationBand) Column() string {
	return "population_" + string(b)
}

// Population holds the proximity counts. It only exists on the full record.
type Population struct {
	Population5km   int64 `json:"population_5km"`
	Population10km  int64 `json:"population_10km"`
	Population30km  int64 `json:"population_30km"`
	Population100km int64 `json:"population_100km"`
}

// Volcano is one row of the reference dataset.
//
// The embedded *Population is nil for anonymous callers; encoding/json then
// omits all four population keys.
type Volcano struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Region       string  `json:"region"`
	Subregion    string  `json:"subregion"`
	LastEruption *string `json:"last_eruption"` // e.g. "1991 CE"; nil when unknown
	Summit       int64   `json:"summit"`        // metres
	Elevation    int64   `json:"elevation"`     // feet
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	*Population
}

// VolcanoFields selects which columns a volcano read returns.
type VolcanoFields int

const (
	// RestrictedFields omits the population bands.
	RestrictedFields VolcanoFields = iota
	// AllFields includes the population bands.
	AllFields
)

// VolcanoFilter narrows a country listing.
type VolcanoFilter struct {
	Country string
	// PopulatedWithin, when set, keeps only volcanoes with a non-zero count
	// for that band.
	PopulatedWithin PopulationBand
}
