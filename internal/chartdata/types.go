package chartdata

// Series fields addressable within a Category.
const (
	FieldUsage  = "usage"
	FieldDemand = "demand"
)

// FieldTemperature names the top-level temperature series.
const FieldTemperature = "temperature"

// Category holds one metered category's series, index-aligned with the
// owning BuildingTimeSeries timestamps.
type Category struct {
	Usage  []float64 `json:"usage"`
	Demand []float64 `json:"demand"`
}

// Field returns the named series of the category, or false if the name is
// not a known field.
func (c Category) Field(name string) ([]float64, bool) {
	switch name {
	case FieldUsage:
		return c.Usage, true
	case FieldDemand:
		return c.Demand, true
	default:
		return nil, false
	}
}

// BuildingTimeSeries is the processed telemetry of one building.
//
// After processing every series has the same length as Timestamps: the raw
// sample count minus one. Values are shared with the cache and must be
// treated as read-only.
type BuildingTimeSeries struct {
	BuildingID  int                 `json:"buildingid"`
	Timestamps  []int64             `json:"createddate"`
	Temperature []float64           `json:"temperature"`
	Categories  map[string]Category `json:"categories"`

	// Series holds other top-level series by key, such as humidity.
	Series map[string][]float64 `json:"series,omitempty"`
}

// Latest returns the most recent temperature reading.
func (s *BuildingTimeSeries) Latest() (float64, bool) {
	if len(s.Temperature) == 0 {
		return 0, false
	}
	return s.Temperature[len(s.Temperature)-1], true
}

// Len returns the number of aligned samples.
func (s *BuildingTimeSeries) Len() int {
	return len(s.Timestamps)
}
