package chartconfig

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/config"
	"github.com/engineering-on-display/eod-uaa/internal/telemetry"
)

type countingFetcher struct {
	calls atomic.Int32
	err   error
	block bool
}

func (f *countingFetcher) FetchChartData(ctx context.Context, _ int, _ int) (*telemetry.Response, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &telemetry.Response{
		Timestamps:  []int64{0, 3_600_000, 10_800_000},
		Temperature: []float64{4, 5, 6},
		Usage: map[string][]float64{
			"electrical": {10, 16, 20},
		},
		Series: map[string][]float64{"humidity": {30, 31, 32}},
	}, nil
}

type fakeDatasets struct {
	calls atomic.Int32
	defs  []DatasetDefinition
	err   error
}

func (f *fakeDatasets) Datasets(context.Context, int) ([]DatasetDefinition, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.defs), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type listenerFunc func(*ChartConfiguration)

func (f listenerFunc) ConfigRebuilt(cfg *ChartConfiguration) { f(cfg) }

func defaultDefs() []DatasetDefinition {
	return []DatasetDefinition{
		{SensorCode: "electrical_usage", Label: "Electrical Usage", YAxisID: "usage"},
		{SensorCode: "electrical_demand", Label: "Electrical Demand", YAxisID: "demand"},
		{SensorCode: "temperature", Label: "Temperature", YAxisID: "temperature"},
	}
}

type fixture struct {
	fetcher  *countingFetcher
	datasets *fakeDatasets
	clock    *fakeClock
	asm      *Assembler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fetcher:  &countingFetcher{},
		datasets: &fakeDatasets{defs: defaultDefs()},
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	cache := chartdata.NewCache(f.fetcher, chartdata.Options{Timeout: time.Second})
	f.asm = NewAssembler(cache, f.datasets, NewStaticAxes(nil), Options{Now: f.clock.Now})
	return f
}

func TestAssembler_Get(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.asm.Get(context.Background(), 31)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if cfg.BuildingID != 31 || cfg.Type != "line" {
		t.Errorf("BuildingID = %d, Type = %q", cfg.BuildingID, cfg.Type)
	}
	if !slices.Equal(cfg.Data.Labels, []int64{3_600_000, 10_800_000}) {
		t.Errorf("Labels = %v", cfg.Data.Labels)
	}
	if len(cfg.Options.Scales.YAxes) != len(DefaultAxes) {
		t.Errorf("YAxes = %d, want %d", len(cfg.Options.Scales.YAxes), len(DefaultAxes))
	}
	if cfg.Options.Layout.Padding != (Padding{Left: 50, Right: 50, Top: 20, Bottom: 20}) {
		t.Errorf("Padding = %+v", cfg.Options.Layout.Padding)
	}
	if x := cfg.Options.Scales.XAxes; len(x) != 1 || x[0].Ticks.MaxTicksLimit != 10 || !x[0].Ticks.AutoSkip {
		t.Errorf("XAxes = %+v", x)
	}
	if !cfg.ExpiresAt.Equal(f.clock.Now().Add(DefaultTTL)) {
		t.Errorf("ExpiresAt = %v", cfg.ExpiresAt)
	}
}

func TestAssembler_SensorCodeBinding(t *testing.T) {
	f := newFixture(t)
	f.datasets.defs = append(defaultDefs(),
		DatasetDefinition{SensorCode: "water_usage"},
		DatasetDefinition{SensorCode: "electrical_peak"},
		DatasetDefinition{SensorCode: "humidity"},
		DatasetDefinition{SensorCode: "occupancy"},
	)

	cfg, err := f.asm.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := map[string][]float64{
		"electrical_usage":  {16, 20},
		"electrical_demand": {6, 2},
		"temperature":       {5, 6},
		"water_usage":       {},
		"electrical_peak":   {},
		"humidity":          {31, 32},
		"occupancy":         {},
	}
	for _, ds := range cfg.Data.Datasets {
		if !slices.Equal(ds.Data, want[ds.SensorCode]) {
			t.Errorf("%s Data = %v, want %v", ds.SensorCode, ds.Data, want[ds.SensorCode])
		}
		if ds.Data == nil {
			t.Errorf("%s Data is nil, want empty series", ds.SensorCode)
		}
	}
	if len(cfg.Data.Datasets) != len(want) {
		t.Errorf("Datasets = %d, want %d", len(cfg.Data.Datasets), len(want))
	}
}

func TestAssembler_TTL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.asm.Get(ctx, 31)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	f.clock.Advance(DefaultTTL - time.Second)
	second, err := f.asm.Get(ctx, 31)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second != first {
		t.Error("Get within TTL rebuilt the configuration")
	}
	if got := f.datasets.calls.Load(); got != 1 {
		t.Errorf("datasets read %d times within TTL, want 1", got)
	}

	f.clock.Advance(time.Second)
	third, err := f.asm.Get(ctx, 31)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if third == first {
		t.Error("Get after TTL returned the expired configuration")
	}
	if got := f.datasets.calls.Load(); got != 2 {
		t.Errorf("datasets read %d times, want 2 after expiry", got)
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Errorf("telemetry fetched %d times, want 1 (raw series never expires)", got)
	}
}

func TestAssembler_PerBuildingEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.asm.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}
	if _, err := f.asm.Get(ctx, 2); err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	again, err := f.asm.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get(1) error = %v", err)
	}
	if again != a {
		t.Error("building 1 config rebuilt after building 2 was assembled")
	}
}

func TestAssembler_Invalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.asm.Get(ctx, 5); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !f.asm.Invalidate(5) {
		t.Error("Invalidate() = false, want true")
	}
	if f.asm.Invalidate(5) {
		t.Error("second Invalidate() = true, want false")
	}
	if _, ok := f.asm.Lookup(5); ok {
		t.Error("Lookup() found invalidated config")
	}
	if _, err := f.asm.Get(ctx, 5); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Errorf("telemetry fetched %d times, want 1", got)
	}
}

func TestAssembler_JoinFailures(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fixture)
		wantSource string
		wantCause  error
	}{
		{
			name: "telemetry failure",
			setup: func(f *fixture) {
				f.fetcher.err = &telemetry.FetchError{BuildingID: 1, Status: 503, Message: "unavailable"}
			},
			wantSource: SourceSeries,
		},
		{
			name: "dataset failure",
			setup: func(f *fixture) {
				f.datasets.err = ErrNoDatasets
			},
			wantSource: SourceDatasets,
			wantCause:  ErrNoDatasets,
		},
		{
			name: "dataset failure while telemetry hangs",
			setup: func(f *fixture) {
				f.fetcher.block = true
				f.datasets.err = ErrNoDatasets
			},
			wantSource: SourceDatasets,
			wantCause:  ErrNoDatasets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			done := make(chan error, 1)
			go func() {
				_, err := f.asm.Get(context.Background(), 1)
				done <- err
			}()

			var err error
			select {
			case err = <-done:
			case <-time.After(3 * time.Second):
				t.Fatal("Get did not resolve")
			}

			var je *DatasetJoinError
			if !errors.As(err, &je) {
				t.Fatalf("error = %v, want *DatasetJoinError", err)
			}
			if je.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", je.Source, tt.wantSource)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("error = %v, want cause %v", err, tt.wantCause)
			}
			if _, ok := f.asm.Lookup(1); ok {
				t.Error("failed assembly was cached")
			}
		})
	}
}

func TestAssembler_Listener(t *testing.T) {
	f := newFixture(t)
	var rebuilt []int
	f.asm.AddListener(listenerFunc(func(cfg *ChartConfiguration) {
		rebuilt = append(rebuilt, cfg.BuildingID)
	}))

	ctx := context.Background()
	for range 3 {
		if _, err := f.asm.Get(ctx, 8); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if !slices.Equal(rebuilt, []int{8}) {
		t.Errorf("listener saw %v, want [8]", rebuilt)
	}
}

func TestAxesFromConfig(t *testing.T) {
	if got := AxesFromConfig(nil).AllAxes(); len(got) != len(DefaultAxes) {
		t.Errorf("empty config gave %d axes, want defaults", len(got))
	}

	got := AxesFromConfig([]config.AxisConfig{{ID: "kw", Label: "kW", Display: true}}).AllAxes()
	want := AxisDefinition{
		ID: "kw", Type: "linear", Position: "left", Display: true,
		ScaleLabel: ScaleLabel{Display: true, LabelString: "kW"},
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("AllAxes() = %+v, want [%+v]", got, want)
	}
}
