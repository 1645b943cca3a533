package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/colo-planner-core/internal/audit"
	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/config"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/logging"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// MQTTClient is the part of the MQTT client the server uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	HealthCheck(ctx context.Context) error
}

// Metrics records planner measurements.
type Metrics interface {
	WriteColoPower(coloID string, deployedW, reservedW float64, unknown int)
	HealthCheck(ctx context.Context) error
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	WS           config.WebSocketConfig
	Layout       config.LayoutConfig
	Interaction  config.InteractionConfig
	Logger       *logging.Logger
	Colos        colo.Repository
	Reservations reservation.Repository
	Sessions     *workspace.Manager
	Audit        audit.Repository // optional
	Database     HealthChecker    // optional
	MQTT         MQTTClient       // optional
	Metrics      Metrics          // optional
	Version      string
}

// Server is the HTTP API server of the colo planner.
//
// It serves colo data and layouts over REST and hosts gesture sessions
// over WebSocket. Create it with New and start it with Start.
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	layoutCfg    config.LayoutConfig
	interCfg     config.InteractionConfig
	logger       *logging.Logger
	colos        colo.Repository
	reservations reservation.Repository
	sessions     *workspace.Manager
	audit        audit.Repository
	database     HealthChecker
	mqtt         MQTTClient
	metrics      Metrics
	families     *overlay.FamilyClassifier
	overlays     overlay.Flags
	version      string
	server       *http.Server
	hub          *Hub
	cancel       context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Colos == nil {
		return nil, fmt.Errorf("colo repository is required")
	}
	if deps.Reservations == nil {
		return nil, fmt.Errorf("reservation repository is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	overlays, err := overlay.ParseFlags(deps.Layout.Overlays)
	if err != nil {
		return nil, fmt.Errorf("default overlays: %w", err)
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		layoutCfg:    deps.Layout,
		interCfg:     deps.Interaction,
		logger:       deps.Logger,
		colos:        deps.Colos,
		reservations: deps.Reservations,
		sessions:     deps.Sessions,
		audit:        deps.Audit,
		database:     deps.Database,
		mqtt:         deps.MQTT,
		metrics:      deps.Metrics,
		families:     overlay.NewFamilyClassifier(),
		overlays:     overlays,
		version:      deps.Version,
		hub:          NewHub(deps.WS, deps.Logger),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, subscribes to assignment events and
// launches the HTTP listener in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	if err := s.subscribeAssignments(); err != nil {
		s.logger.Warn("failed to subscribe to assignment events", "error", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close shuts the server down. Gesture sessions are closed first so no
// commit is published after shutdown starts.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.sessions.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
