package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/materialerosion/PACK2/internal/api"
	"github.com/materialerosion/PACK2/internal/config"
	"github.com/materialerosion/PACK2/internal/coverage"
	"github.com/materialerosion/PACK2/internal/geometry"
	"github.com/materialerosion/PACK2/internal/series"
	"github.com/materialerosion/PACK2/internal/standards"
	"github.com/materialerosion/PACK2/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage   storage.Storage
	engine    geometry.Engine
	generator *series.Generator
	analyzer  *coverage.Analyzer
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage(uuid.NewString)
	if cfg.StandardsFile != "" {
		tables, err := standards.Load(cfg.StandardsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load standards tables: %w", err)
		}
		if err := store.SetStandards(tables); err != nil {
			return nil, fmt.Errorf("failed to apply standards tables: %w", err)
		}
	}

	engine := geometry.New()
	generator := series.New(engine, cfg.ScalingLimits)
	analyzer := coverage.New(cfg.GapThresholds)
	handler := api.NewHandler(engine, generator, analyzer, store,
		api.WithFillDefaults(cfg.MinFillPercent, cfg.MaxFillPercent),
	)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, router)

	return &App{
		storage:   store,
		engine:    engine,
		generator: generator,
		analyzer:  analyzer,
		handler:   handler,
		router:    router,
		logger:    logger,
		server:    server,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Router returns the HTTP handler chain, primarily for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
