package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/errors"
	"retailcli/internal/infrastructure"
	custommw "retailcli/internal/middleware"
	"retailcli/internal/services"
	handlers "retailcli/internal/transport/http"
	"retailcli/pkg/contracts"
	"retailcli/pkg/contracts/domain"
)

const (
	// AppName is the product name shown in startup logs and the dashboard
	AppName = "Retail Pulse - Superstore Sales Analytics"
)

// Application is the composition root: configuration, logger, services,
// router and HTTP server wired together.
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	Metrics          *infrastructure.Metrics
	Paths            *config.Paths
	DatasetCache     *services.DatasetCache
	AnalyticsService *services.AnalyticsService
	ChartService     *services.ChartService
	HealthService    *services.HealthService
	FrontendFS       fs.FS
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	// A missing extract is not fatal: the first query or a reload after the
	// file appears will load it.
	if !config.FileExists(cfg.GetDatasetFile()) {
		logger.Warn("dataset extract not found",
			slog.String("path", cfg.GetDatasetFile()),
			slog.String("action", "queries answer 503 until the file is in place"))
	}

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    infrastructure.NewMetrics(),
		Paths:      paths,
		FrontendFS: frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	cleanerCfg := dataset.DefaultCleanerConfig()
	cleanerCfg.DayFirst = a.Config.Analytics.DayFirstDates

	a.DatasetCache = services.NewDatasetCache(
		a.Config.GetDatasetFile(),
		dataset.DefaultLoaderConfig(),
		cleanerCfg,
		a.Logger,
	)

	a.AnalyticsService = services.NewAnalyticsService(a.DatasetCache, a.Logger)
	a.ChartService = services.NewChartService(a.DatasetCache, a.Paths.ChartsDir, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, a.Paths, a.DatasetCache, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	// API group with the full middleware chain
	r.Group(func(r chi.Router) {
		r.Use(a.Metrics.Middleware)
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus endpoint stays outside the middleware chain so scrapes are
	// never rate limited or counted as traffic.
	r.Handle("/metrics", a.Metrics.Handler())

	// Embedded dashboard with compression for the static assets
	if a.FrontendFS != nil {
		r.Group(func(r chi.Router) {
			r.Use(custommw.Compress(5))
			r.Get("/*", handlers.ServeFrontend(a.FrontendFS, a.Logger))
		})
	} else {
		a.Logger.Warn("frontend filesystem not available, serving API only")
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validation := custommw.NewValidationMiddleware(a.Logger, errorHandler)

	reloader := &meteredReloader{cache: a.DatasetCache, metrics: a.Metrics}
	charts := &meteredCharts{service: a.ChartService, metrics: a.Metrics}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(validation.ValidateRequest)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Get("/stats", healthHandler.SystemStats)

		analyticsHandler := handlers.NewAnalyticsHandler(
			a.AnalyticsService,
			reloader,
			a.Config.Analytics.TopLimit,
			a.Config.Analytics.MaxTopLimit,
			a.Logger,
			errorHandler,
		)
		r.Mount("/analytics", analyticsHandler.Routes())
		r.Post("/dataset/reload", analyticsHandler.ReloadDataset)

		chartsHandler := handlers.NewChartsHandler(charts, a.Logger, errorHandler)
		r.Mount("/charts", chartsHandler.Routes())
	})
}

// getCORSConfig returns the CORS configuration. The dashboard is served from
// the same origin, so only localhost plus any configured origins are allowed.
func (a *Application) getCORSConfig() custommw.CORSConfig {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		origins = append(origins, a.Config.Security.AllowedOrigins...)
	}

	return custommw.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
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

// Start starts the HTTP server and background loading. The cancel func is
// invoked if the server fails so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("dataset", a.Config.GetDatasetFile()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup health check warnings", slog.String("warnings", err.Error()))
	}

	// Warm the snapshot so the first dashboard query does not pay the load
	if a.Config.Analytics.AutoLoad {
		go a.warmDataset(ctx)
	}

	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	a.Logger.InfoContext(ctx, "application started", slog.String("address", url))

	go a.openBrowserWhenReady(ctx, url)

	return nil
}

// warmDataset loads the extract in the background at startup.
func (a *Application) warmDataset(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, config.DatasetLoadTimeout)
	defer cancel()

	snap, err := a.DatasetCache.Snapshot(loadCtx)
	if err != nil {
		a.Metrics.ObserveDatasetLoad(infrastructure.OutcomeError)
		a.Logger.WarnContext(ctx, "initial dataset load failed",
			slog.String("error", err.Error()),
			slog.String("path", a.DatasetCache.Path()))
		return
	}
	a.Metrics.ObserveDatasetLoad(infrastructure.OutcomeSuccess)
	a.Metrics.SetDatasetRows(len(snap.Rows))
}

// openBrowserWhenReady polls the health endpoint and opens the default
// browser once the server answers.
func (a *Application) openBrowserWhenReady(ctx context.Context, url string) {
	healthURL := url + "/api/health"

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			if err := openBrowser(url); err != nil {
				a.Logger.Warn("failed to open browser",
					slog.String("error", err.Error()),
					slog.String("url", url))
				fmt.Printf("\n%s is running at %s\n\n", AppName, url)
			}
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.Warn("server did not become ready for browser opening", slog.String("url", url))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "context cancelled")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the artifact directories are writable
// and reports anything that would make later requests fail.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"data":    a.Paths.DataDir,
		"charts":  a.Paths.ChartsDir,
		"reports": a.Paths.ReportsDir,
		"logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if !config.FileExists(a.Config.GetDatasetFile()) {
		warnings = append(warnings, fmt.Sprintf("dataset extract not found: %s", a.Config.GetDatasetFile()))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "startup health check passed")
	return nil
}

// meteredReloader records load metrics around cache reloads.
type meteredReloader struct {
	cache   *services.DatasetCache
	metrics *infrastructure.Metrics
}

func (m *meteredReloader) Reload(ctx context.Context) (*services.Snapshot, error) {
	snap, err := m.cache.Reload(ctx)
	if err != nil {
		m.metrics.ObserveDatasetLoad(infrastructure.OutcomeError)
		return nil, err
	}
	m.metrics.ObserveDatasetLoad(infrastructure.OutcomeSuccess)
	m.metrics.SetDatasetRows(len(snap.Rows))
	return snap, nil
}

// meteredCharts records render timing and outcome per chart.
type meteredCharts struct {
	service *services.ChartService
	metrics *infrastructure.Metrics
}

func (m *meteredCharts) Render(ctx context.Context, name string, filter domain.OrderFilter) (string, error) {
	start := time.Now()
	path, err := m.service.Render(ctx, name, filter)
	outcome := infrastructure.OutcomeSuccess
	if err != nil {
		outcome = infrastructure.OutcomeError
	}
	m.metrics.ObserveChartRender(name, outcome, time.Since(start))
	return path, err
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(url) {
		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{cmd: "cmd", args: []string{"/c", "start", "", url}},
			{cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
		}
	case "darwin":
		return []browserMethod{
			{cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{cmd: "xdg-open", args: []string{url}},
			{cmd: "sensible-browser", args: []string{url}},
		}
	}
}
