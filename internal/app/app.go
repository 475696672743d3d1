package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"nominacli/internal/catalog"
	"nominacli/internal/config"
	apperrors "nominacli/internal/errors"
	"nominacli/internal/exporter"
	"nominacli/internal/infrastructure"
	customMiddleware "nominacli/internal/middleware"
	"nominacli/internal/pipeline"
	"nominacli/internal/services"
	handlers "nominacli/internal/transport/http"
	"nominacli/pkg/contracts"
)


// Core holds the components shared by the CLI and the HTTP server.
type Core struct {
	Catalog       *catalog.Catalog
	Pipeline      *pipeline.Pipeline
	Exporter      *exporter.Exporter
	DefaultFormat exporter.Format
}

// BuildCore assembles catalog, pipeline and exporter from cfg. meter and
// tracer may be nil.
func BuildCore(cfg *config.Config, logger *slog.Logger, meter metric.Meter, tracer trace.Tracer) (*Core, error) {
	cat := catalog.Builtin()
	if cfg.Catalog.WorkbookPath != "" {
		loaded, err := catalog.LoadWorkbook(cfg.Catalog.WorkbookPath, logger)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to load catalog workbook", err).
				WithContext("path", cfg.Catalog.WorkbookPath)
		}
		cat = loaded
	}

	opts, err := cfg.Pipeline.Options()
	if err != nil {
		return nil, err
	}
	opts.Catalog = cat
	opts.Logger = logger
	opts.Meter = meter
	opts.Tracer = tracer

	p, err := pipeline.New(opts)
	if err != nil {
		return nil, err
	}

	format, err := exporter.ParseFormat(cfg.Export.DefaultFormat)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid default export format", err)
	}

	exp := exporter.New(exporter.ExcelOptions{
		SheetName:      cfg.Export.SheetName,
		StatsSheetName: cfg.Export.StatsSheetName,
		HeaderColor:    cfg.Export.HeaderColor,
		MaxColumnWidth: cfg.Export.MaxColumnWidth,
	}, logger)

	return &Core{Catalog: cat, Pipeline: p, Exporter: exp, DefaultFormat: format}, nil
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Core           *Core
	PayrollService *services.PayrollService
	HealthService  *services.HealthService

	listener       net.Listener
	runtimeMetrics metric.Registration
}

// NewApplication wires telemetry, core, services and router from cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	core, err := BuildCore(cfg, logger, providers.Meter, providers.Tracer)
	if err != nil {
		return nil, err
	}

	runtimeMetrics, err := infrastructure.RegisterRuntimeMetrics(providers.Meter, time.Now())
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:         cfg,
		Logger:         logger,
		OTelProviders:  providers,
		Core:           core,
		PayrollService: services.NewPayrollService(core.Pipeline, core.Exporter, cfg.Server.RunTimeout, logger),
		HealthService:  services.NewHealthService(contracts.Build(), cfg.Pipeline.Strategies, core.Catalog, logger),
		runtimeMetrics: runtimeMetrics,
	}

	a.setupRouter()
	a.createServer()

	logger.Info("application initialized",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("workers", core.Pipeline.Workers()),
		slog.Any("strategies", cfg.Pipeline.Strategies),
		slog.String("default_format", string(core.DefaultFormat)))
	return a, nil
}

// setupRouter follows the order RequestID → RealIP → OTel → Logger → Recoverer.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get(config.HealthEndpoint, health.HealthCheck)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/version", health.Version)

		payroll := handlers.NewPayrollHandler(
			a.PayrollService,
			a.Config.Server.MaxUploadBytes,
			a.Core.DefaultFormat,
			a.Logger,
			errorHandler,
		)
		r.Group(func(r chi.Router) {
			if a.Config.Server.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Server.RateLimit.RPS,
					a.Config.Server.RateLimit.Burst,
					a.Logger,
				).Handler)
			}
			r.Mount("/runs", payroll.Routes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(a.Config.Telemetry.MetricsPath, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listen address and serves in the background. A serve
// failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", ln.Addr().String()),
		slog.String("metrics_path", a.Config.Telemetry.MetricsPath))
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (a *Application) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.runtimeMetrics != nil {
		_ = a.runtimeMetrics.Unregister()
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("shutdown requested")

	// The run context is already done; shutdown gets a fresh one.
	return a.Stop(context.Background())
}
