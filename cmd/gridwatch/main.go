// GridWatch Core - Grid Liveness Monitoring
//
// This is the main entry point for the GridWatch Core application.
// GridWatch infers local power-grid state from reporter device
// heartbeats: devices on mains power ping while the grid is up,
// and silence beyond the staleness threshold marks the grid down.
//
// The binary wires together the HTTP API, the liveness engine with
// its background sweep, and the optional MQTT and InfluxDB sinks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gridwatch/gridwatch-core/migrations"

	"github.com/gridwatch/gridwatch-core/internal/api"
	"github.com/gridwatch/gridwatch-core/internal/auth"
	"github.com/gridwatch/gridwatch-core/internal/device"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/config"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/database"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/influxdb"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/logging"
	"github.com/gridwatch/gridwatch-core/internal/infrastructure/mqtt"
	"github.com/gridwatch/gridwatch-core/internal/liveness"
	"github.com/gridwatch/gridwatch-core/internal/notify"
	"github.com/gridwatch/gridwatch-core/internal/reading"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GridWatch Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise stores
	users := auth.NewUserRepository(db.DB)
	devices := device.NewSQLiteStore(db.DB)
	readings := reading.NewSQLiteStore(db.DB)

	// Connect to MQTT broker (optional notification sink)
	var mqttClient *mqtt.Client
	var mqttSink *notify.MQTTSink
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Set up MQTT logging callbacks
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		mqttSink = notify.NewMQTTSink(mqttClient, log)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional telemetry sink)
	var influxClient *influxdb.Client
	var metricWriters []liveness.MetricsWriter
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		metricWriters = append(metricWriters, influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}
	if mqttSink != nil {
		// The MQTT sink doubles as a telemetry writer: retained grid
		// state plus per-device heartbeat topics.
		metricWriters = append(metricWriters, mqttSink)
	}
	metrics := notify.NewMultiMetrics(metricWriters...)

	// Start the WebSocket hub. It is created here rather than inside the
	// API server because the liveness engine also delivers events
	// through it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Fan events out to every configured sink
	sinks := []liveness.Notifier{hub}
	if mqttSink != nil {
		sinks = append(sinks, mqttSink)
	}
	notifier := notify.NewMulti(sinks...)

	// Create the liveness engine and its sweep loop
	engine := liveness.NewEngine(liveness.EngineConfig{
		Devices:     devices,
		Readings:    readings,
		Users:       users,
		Notifier:    notifier,
		Metrics:     metrics,
		Logger:      log,
		PingTimeout: cfg.GetPingTimeout(),
	})
	runner := liveness.NewRunner(engine, cfg.GetSweepInterval(), log)
	go runner.Run(ctx)
	log.Info("liveness engine started",
		"ping_timeout", cfg.GetPingTimeout(),
		"sweep_interval", cfg.GetSweepInterval(),
	)

	// Start the HTTP API server
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log,
		Engine:      engine,
		Users:       users,
		Readings:    readings,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("GridWatch Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRIDWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRIDWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
