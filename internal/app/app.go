package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"popdash/internal/charts"
	"popdash/internal/config"
	apperrors "popdash/internal/errors"
	"popdash/internal/exporter"
	"popdash/internal/files"
	"popdash/internal/infrastructure"
	customMiddleware "popdash/internal/middleware"
	"popdash/internal/services"
	handlers "popdash/internal/transport/http"
	"popdash/internal/validation"
	ws "popdash/internal/websocket"
)

const (
	AppName = "popdash - Korean population dashboard"
	VERSION = config.AppVersion
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	WebSocketHub  *ws.Hub
	Watcher       *files.Watcher
	Services      *ServiceContainer
	FrontendFS    fs.FS

	errorHandler *apperrors.ErrorHandler
	validator    *customMiddleware.ValidationMiddleware

	stopBackground context.CancelFunc
	background     sync.WaitGroup
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Registry *charts.Registry
	Charts   *services.ChartService
	Sources  *services.SourceService
	Health   *services.HealthService
}

// NewApplication loads configuration from the environment and config file
// and wires the application around it.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, frontendFS)
}

// New wires every component around cfg. frontendFS may be nil, in which
// case the dashboard page answers 404 and only the API is served.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, VERSION), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
		errorHandler:  apperrors.NewErrorHandler(logger, isDevelopmentMode(cfg)),
	}
	app.validator = customMiddleware.NewValidationMiddleware(logger, app.errorHandler)

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	registry := charts.NewDefaultRegistry(a.Paths, a.Config.Charts, a.Logger)

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)

	chartService := services.NewChartService(registry, a.OTelProviders.Tracer, a.Metrics, a.Logger)
	a.Services = &ServiceContainer{
		Registry: registry,
		Charts:   chartService,
		Sources:  services.NewSourceService(a.Paths, registry, a.Logger),
		Health:   services.NewHealthService(VERSION, a.Paths, a.WebSocketHub, a.Logger),
	}

	if a.Config.Watch.Enabled {
		sources := a.Paths.SourceFiles()
		watched := make([]string, len(sources))
		for i, src := range sources {
			watched[i] = src.Path
		}
		a.Watcher = files.NewWatcher(watched, a.Config.Watch.Interval, a.onSourceChange, a.Metrics, a.Logger)
	}
}

// onSourceChange drops the cached builds that read the changed file and
// tells connected dashboards to re-fetch those panels.
func (a *Application) onSourceChange(ctx context.Context, change files.FileInfo) {
	ids := a.Services.Charts.InvalidateSource(change.Path)
	a.Logger.InfoContext(ctx, "Source changed, charts invalidated",
		slog.String("source", change.Name),
		slog.Bool("present", change.Present),
		slog.Any("charts", ids))

	for _, id := range ids {
		a.WebSocketHub.BroadcastDataUpdate(ctx, id, change.Name)
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → security → CORS → rate limit
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apperrors.RecoveryMiddleware(a.errorHandler))

	secure := customMiddleware.DefaultSecureHeaders()
	secure.DevMode = isDevelopmentMode(a.Config)
	r.Use(secure.Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.errorHandler,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Upgrades must not pass through the compressing writer
	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		a.setupAPIRoutes(r)

		dashboard := handlers.NewDashboardHandler(a.FrontendFS, a.Logger)
		r.Get("/", dashboard.ServeIndex)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		chartHandler := handlers.NewChartHandler(
			a.Services.Charts,
			exporter.NewPNGRenderer(a.Logger),
			a.validator,
			a.WebSocketHub,
			a.Config.Charts,
			a.Logger,
			a.errorHandler,
		)
		r.Mount("/charts", chartHandler.Routes())

		sourceHandler := handlers.NewSourceHandler(a.Services.Sources, a.Logger, a.errorHandler)
		r.Mount("/sources", sourceHandler.Routes())
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: append([]string(nil), a.Config.Security.AllowedOrigins...),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	if isDevelopmentMode(a.Config) {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		)
	}

	a.Logger.Info("CORS configured",
		slog.Bool("development", isDevelopmentMode(a.Config)),
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// isDevelopmentMode detects if we're running in development mode
func isDevelopmentMode(cfg *config.Config) bool {
	if env := os.Getenv("GO_ENV"); env == "development" {
		return true
	}
	return cfg.Telemetry.Environment == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// StartBackground starts the live update hub, the source watcher and the
// cache warm-up. It returns immediately; StopBackground undoes it.
func (a *Application) StartBackground(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopBackground = cancel

	a.WebSocketHub.Start()

	if a.Watcher != nil {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			_ = a.Watcher.Run(bgCtx)
		}()
	}

	a.background.Add(1)
	go func() {
		defer a.background.Done()
		a.warmCache(bgCtx)
	}()
}

// StopBackground stops what StartBackground started and waits for it
func (a *Application) StopBackground() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	a.background.Wait()
	a.WebSocketHub.Stop()
}

// warmCache builds every chart once so the first dashboard load is served
// from cache. Failures are logged; the panels report them on request.
func (a *Application) warmCache(ctx context.Context) {
	start := time.Now()
	summaries, err := a.Services.Charts.BuildAll(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "Chart warm-up interrupted", slog.String("error", err.Error()))
		return
	}

	failed := 0
	for _, s := range summaries {
		if s.Outcome == infrastructure.OutcomeSuccess {
			continue
		}
		failed++
		a.Logger.WarnContext(ctx, "Chart not built during warm-up",
			slog.String("chart", s.ID),
			slog.String("outcome", s.Outcome),
			slog.String("message", s.Message))
	}

	a.Logger.InfoContext(ctx, "Chart warm-up finished",
		slog.Int("charts", len(summaries)),
		slog.Int("not_built", failed),
		slog.Duration("duration", time.Since(start)))
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if _, err := validation.NewFileValidator(a.Logger).ValidateDataDirectory(a.Paths.DataDir); err != nil {
		a.Logger.WarnContext(ctx, "Startup data check failed", slog.String("error", err.Error()))
	}
	if err := a.Paths.ValidateSourceFiles(); err != nil {
		a.Logger.WarnContext(ctx, "Some source files are missing", slog.String("error", err.Error()))
	}

	a.StartBackground(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.StopBackground()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
