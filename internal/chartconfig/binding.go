package chartconfig

import (
	"strings"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
)

// sensorCodeSep separates category and field in a sensor code.
const sensorCodeSep = "_"

// resolve returns the series a sensor code names, or false if the series
// does not exist in s.
func resolve(s *chartdata.BuildingTimeSeries, code string) ([]float64, bool) {
	parts := strings.Split(code, sensorCodeSep)
	if len(parts) > 1 {
		cat, ok := s.Categories[parts[0]]
		if !ok {
			return nil, false
		}
		return cat.Field(parts[1])
	}

	if parts[0] == chartdata.FieldTemperature {
		return s.Temperature, true
	}
	series, ok := s.Series[parts[0]]
	return series, ok
}

// bind copies defs with each dataset's Data set from s. Codes that name no
// series get an empty series and are reported in unknown.
func bind(s *chartdata.BuildingTimeSeries, defs []DatasetDefinition) (bound []DatasetDefinition, unknown []string) {
	bound = make([]DatasetDefinition, len(defs))
	for i, def := range defs {
		data, ok := resolve(s, def.SensorCode)
		if !ok {
			unknown = append(unknown, def.SensorCode)
			data = []float64{}
		}
		def.Data = data
		bound[i] = def
	}
	return bound, unknown
}
