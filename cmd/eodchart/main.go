// EOD chart core - building energy chart service
//
// This is the main entry point for the Engineering on Display chart core.
// It fetches building telemetry, derives demand from cumulative usage, and
// assembles chart configurations for campus dashboards over REST,
// WebSocket and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/engineering-on-display/eod-uaa/migrations"

	"github.com/engineering-on-display/eod-uaa/internal/api"
	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
	"github.com/engineering-on-display/eod-uaa/internal/datasets"
	"github.com/engineering-on-display/eod-uaa/internal/events"
	"github.com/engineering-on-display/eod-uaa/internal/export"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/config"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/database"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/influxdb"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/logging"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/mqtt"
	"github.com/engineering-on-display/eod-uaa/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configPathEnv     = "EODCHART_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on a clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting EOD chart core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	health := map[string]api.HealthChecker{"database": db}

	// Raw series cache over the Telemetry API
	telemetryClient := telemetry.New(cfg.Telemetry.ServerURL, cfg.GetTelemetryTimeout())
	cache := chartdata.NewCache(telemetryClient, chartdata.Options{
		Ticks:   cfg.Telemetry.Ticks,
		Timeout: cfg.GetTelemetryTimeout(),
		Poll: chartdata.PollPolicy{
			Attempts: cfg.Chart.Poll.Attempts,
			Interval: cfg.GetPollInterval(),
		},
	})
	cache.SetLogger(log.Component("chartdata"))

	// Export derived series to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		recorder := export.NewRecorder(influxClient, cfg.Site.ID)
		recorder.SetLogger(log.Component("export"))
		cache.SetRecorder(recorder)
		health["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Chart configuration assembly
	repo := datasets.NewSQLiteRepository(db.DB)
	assembler := chartconfig.NewAssembler(cache, repo, chartconfig.AxesFromConfig(cfg.Chart.Axes), chartconfig.Options{
		TTL: cfg.GetConfigTTL(),
	})
	assembler.SetLogger(log.Component("chartconfig"))

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	assembler.AddListener(hub)

	// MQTT events (optional)
	if cfg.MQTT.Enabled {
		mqttClient, warmer, mqttErr := startMQTT(ctx, cfg, cache, assembler, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer stopMQTT(mqttClient, warmer, log)
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log.Component("api"),
		Charts:   assembler,
		Series:   cache,
		Datasets: repo,
		Health:   health,
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API server, MQTT and
	// in-flight warm-ups, InfluxDB (flushing pending points), then the database.
	return nil
}

// startMQTT connects to the broker, publishes rebuilt configurations and
// warms the series cache on telemetry announcements.
func startMQTT(
	ctx context.Context,
	cfg *config.Config,
	cache *chartdata.Cache,
	assembler *chartconfig.Assembler,
	log *logging.Logger,
) (*mqtt.Client, *events.TelemetryWarmer, error) {
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	publisher := events.NewConfigPublisher(client)
	publisher.SetLogger(log.Component("events"))
	go publisher.Run(ctx)
	assembler.AddListener(publisher)

	warmer := events.NewTelemetryWarmer(cache, events.WarmerOptions{Timeout: cfg.GetTelemetryTimeout()})
	warmer.SetLogger(log.Component("events"))
	if err := warmer.Subscribe(client); err != nil {
		client.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, nil, fmt.Errorf("subscribing to telemetry announcements: %w", err)
	}

	return client, warmer, nil
}

// stopMQTT disconnects from the broker, so no new announcements arrive, and
// waits for warm-up fetches still running. It must return before the
// InfluxDB client they export through is closed.
func stopMQTT(client interface{ Close() error }, warmer interface{ Wait() }, log *logging.Logger) {
	log.Info("disconnecting from MQTT")
	if err := client.Close(); err != nil {
		log.Error("error closing MQTT", "error", err)
	}
	warmer.Wait()
	log.Info("telemetry warm-ups finished")
}

// getConfigPath returns the configuration file path from EODCHART_CONFIG,
// or the default.
func getConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}
