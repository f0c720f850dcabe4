// Package server assembles the Kollabary HTTP API: stores, services,
// middleware chain, routes and graceful lifecycle.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/kollabary/backend/internal/collab"
	"github.com/kollabary/backend/internal/config"
	"github.com/kollabary/backend/internal/health"
	"github.com/kollabary/backend/internal/idgen"
	"github.com/kollabary/backend/internal/influencer"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/metrics"
	"github.com/kollabary/backend/internal/ranking"
	"github.com/kollabary/backend/internal/ratelimit"
	"github.com/kollabary/backend/internal/realtime"
	"github.com/kollabary/backend/internal/report"
	"github.com/kollabary/backend/internal/review"
	"github.com/kollabary/backend/internal/security"
	"github.com/kollabary/backend/internal/traces"
	"github.com/kollabary/backend/internal/validation"
)

const shutdownTimeout = 15 * time.Second

// Server owns every long-lived component of the API process.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	db      *sql.DB
	router  *gin.Engine
	httpSrv *http.Server
	limiter *ratelimit.Limiter
	hub     *realtime.Hub
	worker  *ranking.Worker
	health  *health.Registry

	rankingSvc *ranking.Service

	tracesShutdown func(context.Context) error
}

// New builds a fully wired server. With DATABASE_URL set the domain stores
// run on PostgreSQL, otherwise everything lives in memory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		health: health.NewRegistry(),
		hub:    realtime.NewHub(logger),
	}

	var (
		profileStore influencer.Store
		collabStore  collab.Store
		reviewStore  review.Store
		reportStore  report.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping database %s: %w", maskDSN(cfg.DatabaseURL), err)
		}

		s.db = db
		profileStore = influencer.NewPostgresStore(db)
		collabStore = collab.NewPostgresStore(db)
		reviewStore = review.NewPostgresStore(db)
		reportStore = report.NewPostgresStore(db)
		s.health.Register("database", db.PingContext)
		logger.Info("using postgres stores", "dsn", maskDSN(cfg.DatabaseURL))
	} else {
		profileStore = influencer.NewMemoryStore()
		collabStore = collab.NewMemoryStore()
		reviewStore = review.NewMemoryStore()
		reportStore = report.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	tracesShutdown, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	s.tracesShutdown = tracesShutdown

	agg := ranking.NewAggregator(profileStore, collabStore, reviewStore, reportStore)
	s.rankingSvc = ranking.NewService(agg, ranking.NewTable(), profileStore, s.hub)
	influencerSvc := influencer.NewService(profileStore, s.rankingSvc)
	collabSvc := collab.NewService(collabStore, s.rankingSvc, s.hub)
	reviewSvc := review.NewService(reviewStore, collabStore, profileStore, s.rankingSvc)
	reportSvc := report.NewService(reportStore, s.rankingSvc)

	s.worker = ranking.NewWorker(s.rankingSvc, cfg.SweepInterval, logger)
	burst := cfg.RateLimitRPM / 4
	if burst < 5 {
		burst = 5
	}
	s.limiter = ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimitRPM,
		BurstSize:         burst,
		CleanupInterval:   time.Minute,
	})

	s.buildRouter(
		influencer.NewHandler(influencerSvc),
		collab.NewHandler(collabSvc),
		review.NewHandler(reviewSvc),
		report.NewHandler(reportSvc),
		ranking.NewHandler(s.rankingSvc),
	)

	s.httpSrv = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) buildRouter(
	influencerH *influencer.Handler,
	collabH *collab.Handler,
	reviewH *review.Handler,
	reportH *report.Handler,
	rankingH *ranking.Handler,
) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(security.HeadersMiddleware())
	r.Use(security.CORSMiddleware(nil))
	r.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))
	r.Use(s.limiter.Middleware())
	r.Use(metrics.Middleware())
	r.Use(requestContextMiddleware(s.logger))

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.healthz)
	r.GET("/metrics", metrics.Handler())
	r.GET("/ws", s.hub.HandleWebSocket)

	v1 := r.Group("/v1")
	v1.Use(identityMiddleware())

	influencerH.RegisterRoutes(v1)
	collabH.RegisterRoutes(v1)
	reviewH.RegisterRoutes(v1)
	reportH.RegisterRoutes(v1)
	rankingH.RegisterRoutes(v1)

	admin := v1.Group("/admin")
	admin.Use(s.adminGate())
	influencerH.RegisterAdminRoutes(admin)
	reportH.RegisterAdminRoutes(admin)
	rankingH.RegisterAdminRoutes(admin)

	s.router = r
}

// Run serves HTTP until ctx is cancelled, then drains connections and stops
// the background workers.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)
	s.worker.Start(ctx)
	s.health.Register("ranking_worker", func(context.Context) error {
		if !s.worker.Running() {
			return errors.New("sweep worker not running")
		}
		return nil
	})
	if s.db != nil {
		go metrics.StartDBStatsCollector(ctx, s.db, 15*time.Second)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpSrv.Addr, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}
	s.worker.Stop()
	stopHub()
	s.limiter.Stop()
	if s.tracesShutdown != nil {
		if err := s.tracesShutdown(shutdownCtx); err != nil {
			s.logger.Error("traces shutdown failed", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close failed", "error", err)
		}
	}
	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	report := s.health.Run(c.Request.Context())
	code := http.StatusOK
	if !report.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

// requestContextMiddleware assigns each request an ID and a scoped logger,
// and logs the request line when it finishes.
func requestContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.New()
		}
		c.Header("X-Request-ID", requestID)

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// identityMiddleware trusts the gateway-provided X-User-ID header as the
// caller identity. Authentication itself happens upstream.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

// adminGate requires the shared admin secret. In development with no secret
// configured the gate stays open.
func (s *Server) adminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AdminSecret == "" && s.cfg.IsDevelopment() {
			c.Next()
			return
		}
		if c.GetHeader("X-Admin-Secret") != s.cfg.AdminSecret || s.cfg.AdminSecret == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// maskDSN hides credentials in a connection string for logging.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at == -1 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	if scheme == -1 {
		return "***" + dsn[at:]
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
