package export

import (
	"testing"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
)

type call struct {
	measurement string
	tags        map[string]string
	fields      map[string][]float64
}

type fakeWriter struct {
	calls []call
}

func (f *fakeWriter) WriteSeries(measurement string, tags map[string]string, timestamps []int64, fields map[string][]float64) int {
	f.calls = append(f.calls, call{measurement, tags, fields})
	return len(timestamps)
}

func TestRecordSeries(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w, "uaa")

	r.RecordSeries(&chartdata.BuildingTimeSeries{
		BuildingID:  31,
		Timestamps:  []int64{1, 2},
		Temperature: []float64{40, 41},
		Categories: map[string]chartdata.Category{
			"electrical": {Usage: []float64{16, 20}, Demand: []float64{6, 2}},
		},
	})

	if len(w.calls) != 2 {
		t.Fatalf("WriteSeries called %d times, want 2", len(w.calls))
	}

	byMeasurement := make(map[string]call)
	for _, c := range w.calls {
		byMeasurement[c.measurement] = c
	}

	energy, ok := byMeasurement[MeasurementEnergy]
	if !ok {
		t.Fatal("no building_energy write")
	}
	if energy.tags["building_id"] != "31" || energy.tags["category"] != "electrical" || energy.tags["site"] != "uaa" {
		t.Errorf("energy tags = %v", energy.tags)
	}
	if len(energy.fields["demand"]) != 2 || len(energy.fields["usage"]) != 2 {
		t.Errorf("energy fields = %v", energy.fields)
	}

	temp, ok := byMeasurement[MeasurementTemperature]
	if !ok {
		t.Fatal("no building_temperature write")
	}
	if _, hasCategory := temp.tags["category"]; hasCategory {
		t.Error("temperature tagged with a category")
	}
}

func TestRecordSeries_NoTemperature(t *testing.T) {
	w := &fakeWriter{}
	NewRecorder(w, "uaa").RecordSeries(&chartdata.BuildingTimeSeries{BuildingID: 1})

	if len(w.calls) != 0 {
		t.Errorf("WriteSeries called %d times for an empty series", len(w.calls))
	}
}
