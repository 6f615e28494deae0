package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"
	_ "github.com/lib/pq"

	"github.com/ecombi/dashboard/config"
	"github.com/ecombi/dashboard/internal/domain"
	httpHandler "github.com/ecombi/dashboard/internal/http"
	"github.com/ecombi/dashboard/internal/http/middleware"
	"github.com/ecombi/dashboard/internal/http/response"
	"github.com/ecombi/dashboard/internal/pipeline"
	"github.com/ecombi/dashboard/internal/repository"
	"github.com/ecombi/dashboard/internal/service"
	"github.com/ecombi/dashboard/pkg/logger"
	"github.com/ecombi/dashboard/pkg/tracing"
)

// AppInterface is the lifecycle surface used by cmd/api, cmd/export and tests
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Component access
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetDatasetRepository() domain.DatasetRepository
	GetDashboardService() domain.DashboardService

	// Start signalling
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Init steps, callable one by one in tests
	InitTracing() error
	InitDB() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error
	BuildSnapshot(ctx context.Context) error

	// Drain control
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App wires the dataset repository, the dashboard service and the HTTP API
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	datasetRepo      domain.DatasetRepository
	dashboardService *service.DashboardService
	refresher        *service.SnapshotRefresher

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Shutdown state
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64
	requestWg       sync.WaitGroup
	shutdownTimeout time.Duration
}

// AppOption overrides a dependency before initialization
type AppOption func(*App)

// WithMockDB injects a database handle, e.g. from sqlmock. InitDB then keeps it.
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithLogger replaces the logger built from LOG_LEVEL
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithDatasetRepository replaces the repository chosen from DATA_SOURCE
func WithDatasetRepository(repo domain.DatasetRepository) AppOption {
	return func(a *App) {
		a.datasetRepo = repo
	}
}

// NewApp returns an uninitialized App; call Initialize before Start
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing and the pipeline views
func (a *App) InitTracing() error {
	tracingConfig := &a.config.Tracing

	if err := tracing.InitTracing(tracingConfig); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := pipeline.RegisterViews(); err != nil {
		return fmt.Errorf("failed to register pipeline views: %w", err)
	}

	if tracingConfig.Enabled {
		a.logger.WithField("trace_exporter", tracingConfig.TraceExporter).
			WithField("metrics_exporter", tracingConfig.MetricsExporter).
			WithField("sampling_rate", tracingConfig.SamplingProbability).
			Info("Tracing initialized successfully")
	}

	return nil
}

// InitDB opens the PostgreSQL connection. It does nothing for the CSV
// source or when a database was injected with WithMockDB.
func (a *App) InitDB() error {
	if a.config.Data.Source != config.DataSourcePostgres || a.db != nil {
		return nil
	}

	dbConfig := &a.config.Database
	a.logger.WithFields(map[string]interface{}{
		"host":    dbConfig.Host,
		"port":    dbConfig.Port,
		"user":    dbConfig.User,
		"dbname":  dbConfig.DBName,
		"sslmode": dbConfig.SSLMode,
	}).Info("Connecting to database")

	driverName := "postgres"
	if a.config.Tracing.Enabled {
		var err error
		driverName, err = ocsql.Register(driverName, ocsql.WithAllTraceOptions())
		if err != nil {
			return fmt.Errorf("failed to register opencensus sql driver: %w", err)
		}
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	db, err := sql.Open(driverName, config.GetPostgresDSN(dbConfig))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(dbConfig.MaxConnections)
	db.SetMaxIdleConns(dbConfig.MaxConnections)
	db.SetConnMaxLifetime(dbConfig.ConnectionMaxLifetime)

	a.db = db
	return nil
}

// InitRepositories picks the dataset repository for the configured source
func (a *App) InitRepositories() error {
	if a.datasetRepo != nil {
		return nil
	}

	switch a.config.Data.Source {
	case config.DataSourceCSV:
		a.datasetRepo = repository.NewCSVDatasetRepository(a.config.Data.Dir, a.logger)
	case config.DataSourcePostgres:
		if a.db == nil {
			return fmt.Errorf("postgres data source requires a database connection")
		}
		a.datasetRepo = repository.NewPostgresDatasetRepository(a.db, a.config.Database.Schema, a.logger)
	default:
		return fmt.Errorf("unsupported data source: %s", a.config.Data.Source)
	}

	a.logger.WithField("source", a.datasetRepo.Source()).Info("Dataset repository initialized")
	return nil
}

// InitServices creates the dashboard service and the background refresher
func (a *App) InitServices() error {
	if a.datasetRepo == nil {
		return fmt.Errorf("dataset repository not initialized")
	}

	a.dashboardService = service.NewDashboardService(a.datasetRepo, a.logger)
	a.refresher = service.NewSnapshotRefresher(a.dashboardService, a.logger, a.config.Data.RefreshInterval)
	return nil
}

// InitHandlers registers every HTTP route on the mux
func (a *App) InitHandlers() error {
	if a.dashboardService == nil {
		return fmt.Errorf("dashboard service not initialized")
	}

	a.mux = http.NewServeMux()

	dashboardHandler := httpHandler.NewDashboardHandler(a.dashboardService, a.logger)
	healthHandler := httpHandler.NewHealthHandler(a.dashboardService, tracing.MetricsHandler(), a.config.Version)

	dashboardHandler.RegisterRoutes(a.mux)
	healthHandler.RegisterRoutes(a.mux)

	return nil
}

// BuildSnapshot computes and publishes the report snapshot, bounded by the
// configured load timeout
func (a *App) BuildSnapshot(ctx context.Context) error {
	if a.dashboardService == nil {
		return fmt.Errorf("dashboard service not initialized")
	}

	if a.config.Data.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Data.LoadTimeout)
		defer cancel()
	}

	snapshot, err := a.dashboardService.Build(ctx)
	if err != nil {
		return err
	}

	a.logger.WithField("snapshot_id", snapshot.ID.String()).
		WithField("row_counts", snapshot.RowCounts).
		Info("Dashboard snapshot ready")
	return nil
}

// Handler returns the mux wrapped in the middleware chain
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = middleware.RateLimitMiddleware(a.config.HTTP.RateLimitPerMinute)(handler)
	handler = middleware.LoggingMiddleware(a.logger)(handler)
	// CORS wraps the limiter so 429 responses carry CORS headers
	handler = middleware.CORSMiddleware(a.config.HTTP.AllowOrigins)(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
	}

	handler = middleware.RequestIDMiddleware(handler)

	// outermost so rejected requests never reach the rest of the chain
	handler = a.gracefulShutdownMiddleware(handler)
	return handler
}

// Start builds the first snapshot, starts the refresher and serves HTTP
func (a *App) Start() error {
	// A failed first build leaves the API answering 503 until a refresh succeeds
	if err := a.BuildSnapshot(a.shutdownCtx); err != nil {
		a.logger.WithField("error", err.Error()).Error("Initial snapshot build failed")
	}

	handler := a.Handler()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("source", a.datasetRepo.Source()).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if a.refresher != nil && a.config.Data.RefreshInterval > 0 {
		a.logger.WithField("interval", a.config.Data.RefreshInterval.String()).Info("Starting snapshot refresher")
		go a.refresher.Start(a.GetShutdownContext())
	}

	return a.server.ListenAndServe()
}

// Shutdown stops the refresher, drains HTTP requests and closes the database
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down dashboard API")

	a.shutdownCancel()

	if a.refresher != nil {
		a.refresher.Stop()
	}

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("Server was never started")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr == nil {
		done := make(chan struct{})
		go func() {
			a.requestWg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-shutdownCtx.Done():
			a.logger.WithField("active_requests", a.getActiveRequestCount()).Warn("Some requests still active, proceeding with shutdown")
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil && shutdownErr == nil {
		shutdownErr = cleanupErr
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Shutdown complete")
	}

	return shutdownErr
}

func (a *App) cleanupResources() error {
	a.logger.Debug("Releasing resources")

	if err := tracing.Shutdown(); err != nil {
		a.logger.WithField("error", err.Error()).Error("Error flushing trace exporters")
	}

	if a.db != nil {
		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			return err
		}
	}

	return nil
}

// IsServerCreated reports whether Start has built the http.Server
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created.
// Returns false if ctx expires first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize runs every Init step in dependency order
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).
		WithField("source", a.config.Data.Source).
		Info("Starting BI dashboard")

	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.InitDB(); err != nil {
		return err
	}

	if err := a.InitRepositories(); err != nil {
		return err
	}

	if err := a.InitServices(); err != nil {
		return err
	}

	if err := a.InitHandlers(); err != nil {
		return err
	}

	a.logger.Info("Dashboard API initialized")
	return nil
}

func (a *App) GetConfig() *config.Config {
	return a.config
}

func (a *App) GetLogger() logger.Logger {
	return a.logger
}

func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

func (a *App) GetDB() *sql.DB {
	return a.db
}

func (a *App) GetDatasetRepository() domain.DatasetRepository {
	return a.datasetRepo
}

// GetDashboardService returns nil until InitServices has run
func (a *App) GetDashboardService() domain.DashboardService {
	if a.dashboardService == nil {
		return nil
	}
	return a.dashboardService
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of in-flight requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout bounds how long Shutdown waits for in-flight requests
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
}

// GetShutdownContext is cancelled when Shutdown starts
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks in-flight requests and rejects new
// ones once shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			response.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

var _ AppInterface = (*App)(nil)
