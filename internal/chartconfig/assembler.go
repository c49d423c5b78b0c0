package chartconfig

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
)

// DefaultTTL is how long an assembled configuration is served before it is rebuilt.
const DefaultTTL = 14 * time.Minute

// Logger defines the logging interface used by the Assembler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SeriesSource supplies processed building series. *chartdata.Cache satisfies it.
type SeriesSource interface {
	Fetch(ctx context.Context, buildingID int) (*chartdata.BuildingTimeSeries, error)
}

// DatasetProvider supplies the dataset definitions of a building.
type DatasetProvider interface {
	Datasets(ctx context.Context, buildingID int) ([]DatasetDefinition, error)
}

// AxisProvider supplies the y-axis definitions.
type AxisProvider interface {
	AllAxes() []AxisDefinition
}

// Listener is notified after a configuration has been rebuilt and stored.
// Implementations must not block.
type Listener interface {
	ConfigRebuilt(cfg *ChartConfiguration)
}

// Options configures an Assembler. Zero fields take their defaults.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

type entry struct {
	cfg       *ChartConfiguration
	expiresAt time.Time
}

// Assembler builds chart configurations and caches each one per building
// for a fixed TTL.
//
// Expiry is a stored deadline compared on read, so nothing runs in the
// background and nothing needs cancelling.
//
// All public methods are thread-safe.
type Assembler struct {
	series   SeriesSource
	datasets DatasetProvider
	axes     AxisProvider
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[int]entry

	logger    Logger
	listeners []Listener
}

// NewAssembler creates an Assembler.
func NewAssembler(series SeriesSource, datasets DatasetProvider, axes AxisProvider, opts Options) *Assembler {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		series:   series,
		datasets: datasets,
		axes:     axes,
		ttl:      opts.TTL,
		now:      opts.Now,
		entries:  make(map[int]entry),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the assembler.
func (a *Assembler) SetLogger(logger Logger) {
	a.logger = logger
}

// AddListener registers l for rebuild notifications.
// Must be called before the assembler is shared.
func (a *Assembler) AddListener(l Listener) {
	a.listeners = append(a.listeners, l)
}

// Get returns the chart configuration of a building.
//
// A configuration built less than the TTL ago is returned without I/O.
// Otherwise the building's series and dataset definitions are read
// concurrently, bound together and cached.
//
// Returns:
//   - *ChartConfiguration: Shared, read-only configuration
//   - error: *DatasetJoinError if either read failed
func (a *Assembler) Get(ctx context.Context, buildingID int) (*ChartConfiguration, error) {
	if cfg, ok := a.lookup(buildingID); ok {
		return cfg, nil
	}

	var (
		series *chartdata.BuildingTimeSeries
		defs   []DatasetDefinition
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.series.Fetch(gctx, buildingID)
		if err != nil {
			return &DatasetJoinError{BuildingID: buildingID, Source: SourceSeries, Err: err}
		}
		series = s
		return nil
	})
	g.Go(func() error {
		d, err := a.datasets.Datasets(gctx, buildingID)
		if err != nil {
			return &DatasetJoinError{BuildingID: buildingID, Source: SourceDatasets, Err: err}
		}
		defs = d
		return nil
	})
	if err := g.Wait(); err != nil {
		a.logger.Error("chart config join failed", "building_id", buildingID, "error", err)
		return nil, err
	}

	cfg := a.build(series, defs)
	a.store(cfg)

	a.logger.Info("chart config assembled",
		"building_id", buildingID,
		"datasets", len(cfg.Data.Datasets),
		"samples", len(cfg.Data.Labels),
		"expires_at", cfg.ExpiresAt,
	)
	for _, l := range a.listeners {
		l.ConfigRebuilt(cfg)
	}
	return cfg, nil
}

// Lookup returns the cached configuration of a building if it has not expired.
func (a *Assembler) Lookup(buildingID int) (*ChartConfiguration, bool) {
	return a.lookup(buildingID)
}

// Invalidate drops the cached configuration of a building. The building's
// raw series stays cached, so the next Get only re-reads dataset definitions.
// Reports whether a configuration was dropped.
func (a *Assembler) Invalidate(buildingID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.entries[buildingID]
	delete(a.entries, buildingID)
	return ok
}

func (a *Assembler) lookup(buildingID int) (*ChartConfiguration, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.entries[buildingID]
	if !ok || !a.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.cfg, true
}

func (a *Assembler) build(s *chartdata.BuildingTimeSeries, defs []DatasetDefinition) *ChartConfiguration {
	cfg := newTemplate(s.BuildingID)
	cfg.Data.Labels = s.Timestamps

	datasets, unknown := bind(s, defs)
	for _, code := range unknown {
		a.logger.Warn("dataset sensor code matches no series", "building_id", s.BuildingID, "sensor_code", code)
	}
	cfg.Data.Datasets = datasets
	if a.axes != nil {
		cfg.Options.Scales.YAxes = a.axes.AllAxes()
	}

	now := a.now()
	cfg.GeneratedAt = now
	cfg.ExpiresAt = now.Add(a.ttl)
	return cfg
}

// store caches cfg and prunes expired entries of other buildings.
func (a *Assembler) store(cfg *ChartConfiguration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	for id, e := range a.entries {
		if !now.Before(e.expiresAt) {
			delete(a.entries, id)
		}
	}
	a.entries[cfg.BuildingID] = entry{cfg: cfg, expiresAt: cfg.ExpiresAt}
}
