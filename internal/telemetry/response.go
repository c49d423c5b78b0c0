package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Reserved top-level keys of a chart-data document.
const (
	keyCreatedDate = "createddate"
	keyTemperature = "temperature"
)

// Response is a decoded chart-data document.
//
// Timestamps are milliseconds since the Unix epoch. Usage maps each metered
// category (electrical, naturalgas, water, ...) to its cumulative readings.
// Series holds any other top-level numeric array (humidity, occupancy, ...)
// by key. Every series is in sample order, one entry per timestamp.
type Response struct {
	Timestamps  []int64
	Temperature []float64
	Usage       map[string][]float64
	Series      map[string][]float64
}

// categoryDoc is the per-category object; only usage is read.
type categoryDoc struct {
	Usage []float64 `json:"usage"`
}

// UnmarshalJSON decodes the dynamic-key document:
//
//	{"createddate": [...], "temperature": [...], "electrical": {"usage": [...]}, ...}
//
// Other top-level arrays of numbers are kept in Series. Anything else is
// ignored.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	created, ok := raw[keyCreatedDate]
	if !ok {
		return fmt.Errorf("missing %q", keyCreatedDate)
	}
	ts, err := decodeTimestamps(created)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", keyCreatedDate, err)
	}

	var temperature []float64
	if t, ok := raw[keyTemperature]; ok && !isNull(t) {
		if err := json.Unmarshal(t, &temperature); err != nil {
			return fmt.Errorf("decoding %s: %w", keyTemperature, err)
		}
	}

	usage := make(map[string][]float64)
	series := make(map[string][]float64)
	for key, value := range raw {
		if key == keyCreatedDate || key == keyTemperature {
			continue
		}
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var values []float64
			if json.Unmarshal(trimmed, &values) == nil {
				series[key] = values
			}
			continue
		}
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var doc categoryDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return fmt.Errorf("decoding category %q: %w", key, err)
		}
		if doc.Usage == nil {
			continue
		}
		usage[key] = doc.Usage
	}

	r.Timestamps = ts
	r.Temperature = temperature
	r.Usage = usage
	r.Series = series
	return nil
}

// Validate checks that every series has one value per timestamp.
func (r *Response) Validate() error {
	n := len(r.Timestamps)
	if r.Temperature != nil && len(r.Temperature) != n {
		return fmt.Errorf("%w: temperature has %d samples, want %d", ErrMalformedResponse, len(r.Temperature), n)
	}
	for category, usage := range r.Usage {
		if len(usage) != n {
			return fmt.Errorf("%w: %s usage has %d samples, want %d", ErrMalformedResponse, category, len(usage), n)
		}
	}
	for key, values := range r.Series {
		if len(values) != n {
			return fmt.Errorf("%w: %s has %d samples, want %d", ErrMalformedResponse, key, len(values), n)
		}
	}
	return nil
}

// decodeTimestamps accepts epoch milliseconds or RFC 3339 strings per element.
func decodeTimestamps(data []byte) ([]int64, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}

	out := make([]int64, len(elems))
	for i, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = t.UnixMilli()
			continue
		}

		var ms float64
		if err := json.Unmarshal(trimmed, &ms); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = int64(ms)
	}
	return out, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
