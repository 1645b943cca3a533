// Colo Planner Core - tile-space geometry and selection service
//
// This is the main entry point for the colo planner service. It serves
// colo layouts over HTTP, runs gesture sessions over WebSocket, and relays
// tile assignments and committed selections over MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/colo-planner-core/internal/api"
	"github.com/nerrad567/colo-planner-core/internal/audit"
	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/database"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/logging"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
	"github.com/nerrad567/colo-planner-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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
// It returns nil on a clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting colo planner",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := config.Path()
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

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	mqttClient, err := connectMQTT(cfg.MQTT, log)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}

	influxClient, err := connectInfluxDB(cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	deps := buildDeps(cfg, log, db, mqttClient, influxClient)

	if err := healthCheck(ctx, db, deps.MQTT, deps.Metrics); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	log.Info("colo planner stopped")
	return nil
}

// connectMQTT connects to the broker when MQTT is enabled. It returns a nil
// client when disabled.
func connectMQTT(cfg config.MQTTConfig, log *logging.Logger) (*mqtt.Client, error) {
	if !cfg.Enabled {
		log.Info("MQTT disabled")
		return nil, nil
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	client.OnConnectionChange(func(up bool, err error) {
		if up {
			log.Info("MQTT reconnected")
			return
		}
		log.Warn("MQTT disconnected", "error", err)
	})

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)
	return client, nil
}

// connectInfluxDB connects to InfluxDB when enabled. It returns a nil
// client when disabled.
func connectInfluxDB(cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(cfg)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})

	log.Info("InfluxDB connected",
		"url", cfg.URL,
		"org", cfg.Org,
		"bucket", cfg.Bucket,
	)
	return client, nil
}

// buildDeps assembles the API server's dependencies. Absent optional
// clients stay nil interfaces rather than typed nil pointers.
func buildDeps(cfg *config.Config, log *logging.Logger, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) api.Deps {
	var hooks workspace.Hooks
	deps := api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Layout:       cfg.Layout,
		Interaction:  cfg.Interaction,
		Logger:       log,
		Colos:        colo.NewSQLiteRepository(db.DB),
		Reservations: reservation.NewSQLiteRepository(db.DB),
		Audit:        audit.NewSQLiteRepository(db.DB),
		Database:     db,
		Version:      version,
	}
	if mqttClient != nil {
		hooks.MQTT = mqttClient
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		hooks.Metrics = influxClient
		deps.Metrics = influxClient
	}

	sessions := workspace.NewManager(hooks)
	sessions.SetLogger(log.Component("workspace"))
	deps.Sessions = sessions
	return deps
}

// healthCheck verifies the infrastructure connections. Nil checkers are
// disabled integrations and are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient, metrics api.HealthChecker) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if metrics != nil {
		if err := metrics.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
