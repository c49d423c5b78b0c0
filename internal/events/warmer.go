package events

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/mqtt"
)

// Warmer defaults.
const (
	DefaultWarmConcurrency = 4
	DefaultWarmTimeout     = 30 * time.Second
)

// Subscriber is implemented by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// SeriesFetcher is implemented by *chartdata.Cache.
type SeriesFetcher interface {
	Fetch(ctx context.Context, buildingID int) (*chartdata.BuildingTimeSeries, error)
}

// WarmerOptions configures a TelemetryWarmer. Zero fields take their defaults.
type WarmerOptions struct {
	// Concurrency caps simultaneous fetches. Announcements arriving while
	// all slots are busy are skipped.
	Concurrency int64

	// Timeout bounds each fetch.
	Timeout time.Duration
}

// TelemetryWarmer fetches a building's series when the telemetry server
// announces it on MQTT. Buildings already cached are not refetched.
type TelemetryWarmer struct {
	series  SeriesFetcher
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
	logger  Logger
}

// NewTelemetryWarmer creates a warmer feeding series.
func NewTelemetryWarmer(series SeriesFetcher, opts WarmerOptions) *TelemetryWarmer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultWarmConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWarmTimeout
	}
	return &TelemetryWarmer{
		series:  series,
		sem:     semaphore.NewWeighted(opts.Concurrency),
		timeout: opts.Timeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger. Call before Subscribe.
func (w *TelemetryWarmer) SetLogger(logger Logger) {
	w.logger = logger
}

// Subscribe registers the warmer for every building's ready topic.
func (w *TelemetryWarmer) Subscribe(sub Subscriber) error {
	return sub.Subscribe(mqtt.Topics{}.AllTelemetryReady(), 1, w.HandleReady)
}

// HandleReady is the MQTT handler for eod/telemetry/{id}/ready. The fetch
// runs in the background so the MQTT client is never blocked on HTTP.
func (w *TelemetryWarmer) HandleReady(topic string, _ []byte) error {
	id, err := mqtt.ParseBuildingID(topic)
	if err != nil {
		return err
	}

	if !w.sem.TryAcquire(1) {
		w.logger.Debug("telemetry warm skipped, all slots busy", "building_id", id)
		return nil
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		s, err := w.series.Fetch(ctx, id)
		if err != nil {
			w.logger.Warn("telemetry warm failed", "building_id", id, "error", err)
			return
		}
		w.logger.Debug("telemetry warmed", "building_id", id, "samples", s.Len())
	}()
	return nil
}

// Wait blocks until every in-flight fetch has finished.
func (w *TelemetryWarmer) Wait() {
	w.wg.Wait()
}
