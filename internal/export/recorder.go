package export

import (
	"strconv"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
)

// Measurement names written for each building series.
const (
	MeasurementEnergy      = "building_energy"
	MeasurementTemperature = "building_temperature"
)

// SeriesWriter writes aligned series as points. *influxdb.Client satisfies it.
type SeriesWriter interface {
	WriteSeries(measurement string, tags map[string]string, timestamps []int64, fields map[string][]float64) int
}

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Recorder exports each newly cached building series. It implements
// chartdata.SeriesRecorder.
type Recorder struct {
	writer SeriesWriter
	site   string
	logger Logger
}

// NewRecorder creates a Recorder tagging every point with site.
func NewRecorder(writer SeriesWriter, site string) *Recorder {
	return &Recorder{writer: writer, site: site, logger: noopLogger{}}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// RecordSeries writes one building_energy point per sample and category
// (usage and demand fields) and one building_temperature point per sample.
func (r *Recorder) RecordSeries(s *chartdata.BuildingTimeSeries) {
	building := strconv.Itoa(s.BuildingID)

	points := 0
	for name, cat := range s.Categories {
		points += r.writer.WriteSeries(MeasurementEnergy,
			map[string]string{"site": r.site, "building_id": building, "category": name},
			s.Timestamps,
			map[string][]float64{chartdata.FieldUsage: cat.Usage, chartdata.FieldDemand: cat.Demand},
		)
	}
	if len(s.Temperature) > 0 {
		points += r.writer.WriteSeries(MeasurementTemperature,
			map[string]string{"site": r.site, "building_id": building},
			s.Timestamps,
			map[string][]float64{"value": s.Temperature},
		)
	}

	r.logger.Debug("series exported", "building_id", s.BuildingID, "points", points)
}
