package chartdata

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/engineering-on-display/eod-uaa/internal/telemetry"
)

// DefaultTicks is one week of 15-minute samples.
const DefaultTicks = 7 * 24 * 4

// DefaultFetchTimeout bounds one Telemetry API request when Options.Timeout is unset.
const DefaultFetchTimeout = 30 * time.Second

// Logger defines the logging interface used by the Cache.
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

// Fetcher retrieves raw chart data. *telemetry.Client satisfies it.
type Fetcher interface {
	FetchChartData(ctx context.Context, buildingID, samples int) (*telemetry.Response, error)
}

// SeriesRecorder is notified once for every series newly stored in the cache.
// Implementations must not block.
type SeriesRecorder interface {
	RecordSeries(series *BuildingTimeSeries)
}

// Options configures a Cache. Zero fields take their defaults.
type Options struct {
	// Ticks is the number of aligned samples wanted; Ticks+1 raw samples are requested.
	Ticks int

	// Timeout bounds each Telemetry API request.
	Timeout time.Duration

	// Poll bounds PollTemperature.
	Poll PollPolicy
}

// Cache fetches and memoises processed time series per building.
//
// Entries never expire. Concurrent misses for the same building share one
// request. A fetch that has returned is visible to every later Lookup, Fetch
// and PollTemperature call.
//
// All public methods are thread-safe.
type Cache struct {
	fetcher Fetcher
	ticks   int
	timeout time.Duration
	poll    PollPolicy

	mu     sync.RWMutex
	series map[int]*BuildingTimeSeries
	ready  map[int]*waitSet

	group    singleflight.Group
	logger   Logger
	recorder SeriesRecorder
}

// NewCache creates an empty cache backed by fetcher.
func NewCache(fetcher Fetcher, opts Options) *Cache {
	if opts.Ticks <= 0 {
		opts.Ticks = DefaultTicks
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Poll.Attempts <= 0 || opts.Poll.Interval <= 0 {
		opts.Poll = DefaultPollPolicy
	}
	return &Cache{
		fetcher: fetcher,
		ticks:   opts.Ticks,
		timeout: opts.Timeout,
		poll:    opts.Poll,
		series:  make(map[int]*BuildingTimeSeries),
		ready:   make(map[int]*waitSet),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the cache.
func (c *Cache) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecorder sets the hook notified of newly stored series.
// Must be called before the cache is shared.
func (c *Cache) SetRecorder(recorder SeriesRecorder) {
	c.recorder = recorder
}

// Lookup returns the cached series for a building without network access.
func (c *Cache) Lookup(buildingID int) (*BuildingTimeSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[buildingID]
	return s, ok
}

// Len returns the number of cached buildings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series)
}

// Fetch returns the series for a building, requesting it from the Telemetry
// API on a miss.
//
// The request itself is not cancelled when ctx ends, so other callers waiting
// on the same building still receive it; it is bounded by Options.Timeout.
// Fetch returns ctx.Err() if ctx ends first.
//
// Returns:
//   - *BuildingTimeSeries: Processed, shared, read-only series
//   - error: *telemetry.FetchError if the request failed, or ctx.Err()
func (c *Cache) Fetch(ctx context.Context, buildingID int) (*BuildingTimeSeries, error) {
	if s, ok := c.Lookup(buildingID); ok {
		return s, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.Itoa(buildingID), func() (any, error) {
		return c.load(detached, buildingID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s, _ := res.Val.(*BuildingTimeSeries) //nolint:errcheck // load only returns *BuildingTimeSeries
		return s, nil
	}
}

// load performs the request for one building. It runs at most once at a time
// per building.
func (c *Cache) load(ctx context.Context, buildingID int) (*BuildingTimeSeries, error) {
	// A previous flight may have stored the series after our Lookup.
	if s, ok := c.Lookup(buildingID); ok {
		return s, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.fetcher.FetchChartData(ctx, buildingID, c.ticks+1)
	if err != nil {
		c.logger.Error("chart data fetch failed", "building_id", buildingID, "error", err)
		return nil, err
	}

	s := process(buildingID, resp)
	c.store(s)

	c.logger.Info("series cached",
		"building_id", buildingID,
		"samples", s.Len(),
		"categories", len(s.Categories),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if c.recorder != nil {
		c.recorder.RecordSeries(s)
	}
	return s, nil
}

// waitSet is the set of PollTemperature calls blocked on one building.
// ch is closed when the series is stored.
type waitSet struct {
	ch chan struct{}
	n  int
}

// store publishes a series and wakes any PollTemperature waiting on it.
func (c *Cache) store(s *BuildingTimeSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series[s.BuildingID] = s
	if w, ok := c.ready[s.BuildingID]; ok {
		close(w.ch)
		delete(c.ready, s.BuildingID)
	}
}

// watch registers a waiter on a building and returns a channel closed when
// its series is stored. release must be called once the caller stops
// waiting; the last release for a building drops its entry.
func (c *Cache) watch(buildingID int) (ready <-chan struct{}, release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.ready[buildingID]
	if !ok {
		w = &waitSet{ch: make(chan struct{})}
		c.ready[buildingID] = w
	}
	w.n++

	return w.ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.n--
		if w.n == 0 && c.ready[buildingID] == w {
			delete(c.ready, buildingID)
		}
	}
}

// waiters returns the number of pollers blocked on one building.
func (c *Cache) waiters(buildingID int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if w, ok := c.ready[buildingID]; ok {
		return w.n
	}
	return 0
}

// waiting returns the number of buildings with blocked pollers.
func (c *Cache) waiting() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ready)
}

// process derives demand per category and drops the first raw sample from
// every series so all of them stay index-aligned.
func process(buildingID int, resp *telemetry.Response) *BuildingTimeSeries {
	s := &BuildingTimeSeries{
		BuildingID:  buildingID,
		Timestamps:  dropFirst(resp.Timestamps),
		Temperature: dropFirst(resp.Temperature),
		Categories:  make(map[string]Category, len(resp.Usage)),
	}
	if len(resp.Series) > 0 {
		s.Series = make(map[string][]float64, len(resp.Series))
		for key, values := range resp.Series {
			s.Series[key] = dropFirst(values)
		}
	}
	for name, usage := range resp.Usage {
		demand, trimmed := DeriveDemand(usage, resp.Timestamps)
		s.Categories[name] = Category{Usage: trimmed, Demand: demand}
	}
	return s
}

func dropFirst[T any](in []T) []T {
	if len(in) < 2 {
		return []T{}
	}
	return append([]T(nil), in[1:]...)
}
