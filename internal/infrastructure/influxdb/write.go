package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSeries writes one point per timestamp, taking field values from the
// same index of each series in fields. A field whose series is shorter than
// timestamps is omitted from the points it has no value for; points with no
// fields are skipped.
//
// Parameters:
//   - measurement: Measurement name
//   - tags: Tags shared by every point
//   - timestamps: Point times, milliseconds since the Unix epoch
//   - fields: Field name to value series
//
// Returns:
//   - int: Number of points written
func (c *Client) WriteSeries(measurement string, tags map[string]string, timestamps []int64, fields map[string][]float64) int {
	if !c.IsConnected() {
		return 0
	}

	written := 0
	for i, ms := range timestamps {
		values := make(map[string]any, len(fields))
		for name, series := range fields {
			if i < len(series) {
				values[name] = series[i]
			}
		}
		if len(values) == 0 {
			continue
		}
		c.writeAPI.WritePoint(write.NewPoint(measurement, tags, values, time.UnixMilli(ms)))
		written++
	}
	return written
}
