package server

import (
	"context"
	"net/http"
	"time"

	apihttp "github.com/cobaltdesk/backend/internal/api/http"
	"github.com/cobaltdesk/backend/internal/api/middleware"
	"github.com/cobaltdesk/backend/internal/bootstrap"
	"github.com/cobaltdesk/backend/internal/events"
	"github.com/cobaltdesk/backend/internal/infrastructure/config"
	"github.com/cobaltdesk/backend/internal/infrastructure/logging"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/infrastructure/resilience"
	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	logger       *logging.Logger
	router       *gin.Engine
	httpServer   *http.Server
	hub          *events.Hub
	asyncEvents  *events.Async
	panelManager *panel.Manager
	factory      *panel.ResilientFactory
}

// NewServer assembles the backend: panel manager, resilient factory,
// bootstrap builder, event hub, metrics, and the HTTP surface.
//
// The panel factory is injected so deployments (and tests) can swap the real
// renderer; pass nil to use the blueprint reference factory.
func NewServer(cfg *config.Config, logger *logging.Logger, factory panel.Factory) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewDefault()
	}

	metrics := monitoring.NewMetrics()

	if factory == nil {
		bf := panel.NewBlueprintFactory()
		seedDefaultBlueprints(bf)
		factory = bf
	}

	breakerCfg := resilience.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		RecoveryTimeout:  cfg.Breaker.RecoveryTimeout,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
	}
	resilientFactory := panel.NewResilientFactory(factory, breakerCfg, logger).WithMetrics(metrics)
	panelManager := panel.NewManager().WithMetrics(metrics)

	// Lifecycle events go to the log and the WebSocket stream; the async
	// wrapper keeps slow clients off the orchestrator's goroutine
	hub := events.NewHub(logger).WithMetrics(metrics)
	asyncEvents := events.NewAsync(
		events.NewMulti(events.NewLogPublisher(logger), hub),
		256, logger)

	builder := bootstrap.NewBuilder(resilientFactory, panelManager, logger).
		WithPublisher(asyncEvents).
		WithMetrics(metrics)

	// Load surface manifests
	manifests, errs := bootstrap.LoadDir(cfg.Bootstrap.ManifestDir)
	for _, err := range errs {
		logger.Warn("skipping manifest", zap.Error(err))
	}
	logger.Info("manifests loaded", zap.Int("count", len(manifests)))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handlers := apihttp.NewHandlers(panelManager, resilientFactory, builder, manifests, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Panel management
	router.GET("/panels", handlers.ListPanels)

	// Surface bootstrap
	router.GET("/surfaces", handlers.ListSurfaces)
	router.POST("/surfaces/:name/bootstrap", handlers.BootstrapSurface)

	// Circuit breaker diagnostics
	router.GET("/breakers", handlers.GetBreakers)
	router.POST("/breakers/reset", handlers.ResetAllBreakers)
	router.POST("/breakers/:name/reset", handlers.ResetBreaker)

	// Metrics
	router.GET("/stats", handlers.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket event stream
	router.GET("/stream", hub.HandleConnection)

	return &Server{
		cfg:          cfg,
		logger:       logger,
		router:       router,
		hub:          hub,
		asyncEvents:  asyncEvents,
		panelManager: panelManager,
		factory:      resilientFactory,
	}, nil
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.logger.Info("starting workbench backend", zap.String("addr", addr))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

// Close shuts the server down gracefully. The HTTP server drains first so
// in-flight bootstrap runs can still publish events, then the event queue
// is closed and flushed.
func (s *Server) Close() error {
	s.logger.Info("shutting down")

	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}
	s.asyncEvents.Close()
	return err
}

// seedDefaultBlueprints registers the built-in panel kinds so a fresh
// install can bootstrap a surface without any custom factory
func seedDefaultBlueprints(f *panel.BlueprintFactory) {
	defaults := []panel.Blueprint{
		{Kind: "editor", Title: "Editor", Content: map[string]interface{}{"mode": "text"}},
		{Kind: "console", Title: "Console", Content: map[string]interface{}{"scrollback": 1000}},
		{Kind: "inspector", Title: "Inspector", Content: map[string]interface{}{}},
		{Kind: "chart", Title: "Metrics Chart", Content: map[string]interface{}{"series": []string{}}},
	}
	for _, bp := range defaults {
		_ = f.Register(bp)
	}
}
