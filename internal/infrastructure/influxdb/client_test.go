package influxdb

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/config"
)

type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

type fakePinger struct {
	healthy bool
	err     error
	closed  bool
}

func (f *fakePinger) Ping(context.Context) (bool, error) { return f.healthy, f.err }
func (f *fakePinger) Close()                             { f.closed = true }

func newTestClient() (*Client, *fakeWriter, *fakePinger) {
	w := &fakeWriter{}
	p := &fakePinger{healthy: true}
	return newClient(p, w), w, p
}

func fieldValues(p *write.Point) map[string]any {
	out := make(map[string]any)
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestWriteSeries(t *testing.T) {
	c, w, _ := newTestClient()

	n := c.WriteSeries("building_energy",
		map[string]string{"building_id": "31", "category": "electrical"},
		[]int64{3_600_000, 7_200_000},
		map[string][]float64{"usage": {16, 20}, "demand": {6, 4}},
	)

	if n != 2 || len(w.points) != 2 {
		t.Fatalf("wrote %d points (%d recorded), want 2", n, len(w.points))
	}
	p := w.points[1]
	if p.Name() != "building_energy" {
		t.Errorf("Name() = %q", p.Name())
	}
	if !p.Time().Equal(time.UnixMilli(7_200_000)) {
		t.Errorf("Time() = %v", p.Time())
	}
	fields := fieldValues(p)
	if fields["usage"] != 20.0 || fields["demand"] != 4.0 {
		t.Errorf("fields = %v", fields)
	}
	if len(p.TagList()) != 2 {
		t.Errorf("tags = %d, want 2", len(p.TagList()))
	}
}

func TestWriteSeries_ShortField(t *testing.T) {
	c, w, _ := newTestClient()

	n := c.WriteSeries("building_temperature", nil,
		[]int64{1, 2, 3},
		map[string][]float64{"value": {40}},
	)
	if n != 1 || len(w.points) != 1 {
		t.Errorf("wrote %d points, want 1 (points without fields skipped)", n)
	}
}

func TestWriteAfterClose(t *testing.T) {
	c, w, p := newTestClient()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !p.closed || w.flushes != 1 {
		t.Errorf("Close() closed = %v, flushes = %d", p.closed, w.flushes)
	}

	if n := c.WriteSeries("m", nil, []int64{1}, map[string][]float64{"v": {1}}); n != 0 {
		t.Errorf("WriteSeries after Close wrote %d points", n)
	}
	if len(w.points) != 0 {
		t.Errorf("%d points written after Close", len(w.points))
	}

	c.Flush()
	if w.flushes != 1 {
		t.Error("Flush after Close reached the writer")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		err     error
		wantErr bool
	}{
		{"healthy", true, nil, false},
		{"unhealthy", false, nil, true},
		{"ping error", false, errors.New("refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(&fakePinger{healthy: tt.healthy, err: tt.err}, &fakeWriter{})
			err := c.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandleWriteErrors(t *testing.T) {
	c, _, _ := newTestClient()

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	errs := make(chan error, 1)
	errs <- errors.New("bucket not found")
	close(errs)
	c.handleWriteErrors(errs)

	select {
	case err := <-got:
		if !errors.Is(err, ErrWriteFailed) {
			t.Errorf("callback error = %v, want ErrWriteFailed", err)
		}
	default:
		t.Fatal("callback not invoked")
	}
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(context.Background(), config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:59999",
		Token:   "t",
		Org:     "eod",
		Bucket:  "chart",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// TestConnect_Integration runs against a local InfluxDB when RUN_INTEGRATION is set.
func TestConnect_Integration(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") == "" {
		t.Skip("RUN_INTEGRATION not set")
	}

	c, err := Connect(context.Background(), config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         os.Getenv("EODCHART_INFLUXDB_TOKEN"),
		Org:           "eod",
		Bucket:        "chart",
		FlushInterval: 1,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close() //nolint:errcheck

	c.WriteSeries("integration_test", map[string]string{"building_id": "0"},
		[]int64{time.Now().UnixMilli()}, map[string][]float64{"value": {1}})
	c.Flush()

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
