package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/AxonInnova/StellarFluxOs/internal/api/http"
	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/api/ws"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/config"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/logging"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/resilience"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/tracing"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/auth"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/blob"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/profile"
)

// purgeInterval is how often expired auth sessions are deleted
const purgeInterval = time.Hour

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	db       *sql.DB
	desktops *desktop.Manager
	auth     *auth.Provider
	blobs    *blob.Provider
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	janitorCtx  context.Context
	stopJanitor context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing StellarFlux OS server",
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Bool("auth_required", cfg.Auth.Required),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("stellarflux", logger.Logger)

	db, err := persist.OpenDB(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("Database ready", zap.String("path", cfg.Storage.DatabasePath()))

	// Collaborators, each behind its own breaker
	authGuard := resilience.NewGuard("auth", logger.Logger).WithMetrics(metrics).WithTracer(tracer)
	profileGuard := resilience.NewGuard("profile", logger.Logger).WithMetrics(metrics).WithTracer(tracer)
	blobGuard := resilience.NewGuard("blob", logger.Logger).WithMetrics(metrics).WithTracer(tracer)

	authProvider := auth.NewProvider(db, cfg.Auth.TokenTTL, logger.Component("auth").Logger).WithGuard(authGuard)
	profiles := profile.NewProvider(db, logger.Component("profile").Logger).WithGuard(profileGuard)

	blobs, err := blob.NewProvider(db, blob.Config{
		Root:       cfg.Storage.BlobDir(),
		Quota:      cfg.Storage.QuotaBytes,
		SigningKey: []byte(cfg.Auth.SigningKey),
		URLTTL:     cfg.Auth.URLTTL,
	}, logger.Component("blob").Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	blobs.WithGuard(blobGuard).WithMetrics(metrics)

	// Desktops
	apps := catalog.Load(cfg.Desktop.AppsOverride, logger.Logger)

	desktops := desktop.NewManager(desktop.Options{
		Catalog:       apps,
		Store:         persist.NewSQLStore(db),
		Files:         blobs,
		AutosaveDelay: cfg.Desktop.AutosaveDelay,
		Logger:        logger.Component("desktop").Logger,
	}, persist.NewSQLWorkspaces(db)).WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Desktops: desktops,
		Catalog:  apps,
		Auth:     authProvider,
		Profiles: profiles,
		Blobs:    blobs,
		Metrics:  apihttp.NewHandlerMetrics(metrics),
		Logger:   logger.Component("http").Logger,
	})
	authn := middleware.Auth(authProvider, cfg.Auth.Required)
	handlers.Register(router, authn)

	wsHandler := ws.NewHandler(desktops, logger.Component("ws").Logger, cfg.Server.AllowedOrigins).
		WithMetrics(metrics).
		WithTracer(tracer)
	router.GET("/stream", authn, wsHandler.HandleConnection)

	aggregator := apihttp.NewMetricsAggregator(metrics, desktops,
		authGuard.Breaker(), profileGuard.Breaker(), blobGuard.Breaker())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", aggregator.GetAggregatedMetrics)

	logger.Info("Server initialized successfully")

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:       db,
		desktops: desktops,
		auth:     authProvider,
		blobs:    blobs,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,

		janitorCtx:  janitorCtx,
		stopJanitor: stopJanitor,
	}, nil
}

// Router exposes the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	go s.purgeSessions(s.janitorCtx)

	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// purgeSessions deletes expired auth sessions until ctx ends
func (s *Server) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.auth.PurgeExpired(ctx)
			if err != nil {
				s.logger.Warn("Session purge failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("Expired sessions purged", zap.Int("count", n))
			}
		}
	}
}

// Close gracefully shuts down the server, flushing every desktop
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.stopJanitor()

	var shutdownErr error
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		shutdownErr = fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.desktops.Close()
	s.blobs.Close()
	s.tracer.Close()

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
		if shutdownErr == nil {
			shutdownErr = fmt.Errorf("failed to close database: %w", err)
		}
	}

	// Sync logger before exit
	s.logger.Sync()

	return shutdownErr
}
