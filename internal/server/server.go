// Package server exposes interview sessions and the recruiter views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spigell/recruitai/internal/admin"
	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/quota"
	"github.com/spigell/recruitai/internal/report"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// AdminHeader carries the admin secret on recruiter-only endpoints.
	AdminHeader = "X-Admin-Secret"

	shutdownTimeout = 10 * time.Second

	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 1000
)

type Config struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
	// UnlockRate is the sustained number of unlock attempts per second.
	UnlockRate  float64 `mapstructure:"unlock-rate"`
	UnlockBurst int     `mapstructure:"unlock-burst"`
	// SessionTTL is how long an untouched session stays in memory.
	SessionTTL  time.Duration `mapstructure:"session-ttl"`
	MaxSessions int           `mapstructure:"max-sessions"`
}

type QuotaLedger interface {
	CheckAndConsume(ctx context.Context, tier ai.Tier) error
	Limit(tier ai.Tier) (int, error)
	Usage(ctx context.Context) (quota.State, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, cfg *job.Configuration, turns []interview.Turn) (*report.Report, error)
}

type SummaryWriter interface {
	Generate(ctx context.Context, description, additional string, lang job.Language) (string, error)
}

type Deps struct {
	Job      *job.Configuration
	Chat     ai.Chatter
	Quota    QuotaLedger
	Location interview.LocationFetcher
	Reports  ReportGenerator
	Summary  SummaryWriter
	Gate     *admin.Gate
	Logger   *zap.Logger
	Now      func() time.Time
}

type Server struct {
	cfg      Config
	deps     Deps
	logger   *zap.Logger
	now      func() time.Time
	router   *gin.Engine
	unlock   *rate.Limiter
	sessions *registry

	mu  sync.RWMutex
	job *job.Configuration
}

func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Job == nil {
		return nil, errors.New("job configuration is required")
	}
	if deps.Chat == nil || deps.Quota == nil || deps.Reports == nil || deps.Summary == nil {
		return nil, errors.New("model, quota, report and summary dependencies are required")
	}
	if deps.Gate == nil {
		deps.Gate = admin.NewGate("")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.UnlockRate <= 0 {
		cfg.UnlockRate = 1
	}
	if cfg.UnlockBurst <= 0 {
		cfg.UnlockBurst = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger,
		now:      deps.Now,
		unlock:   rate.NewLimiter(rate.Limit(cfg.UnlockRate), cfg.UnlockBurst),
		sessions: newRegistry(cfg.SessionTTL, cfg.MaxSessions, deps.Now),
		job:      deps.Job,
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("listen", s.cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())
	r.Use(cors.New(s.corsConfig()))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.GET("/job", s.publicJob)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.POST("/sessions/:id/messages", s.sendMessage)

		api.POST("/admin/unlock", s.unlockAdmin)
	}

	adm := api.Group("", s.requireAdmin())
	{
		adm.GET("/admin/job", s.getJob)
		adm.PUT("/admin/job", s.putJob)
		adm.POST("/admin/job/summary", s.summarizeJob)
		adm.GET("/admin/quota", s.quotaStatus)

		adm.POST("/sessions/:id/report", s.generateReport)
		adm.GET("/sessions/:id/report/export", s.exportReport)
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", AdminHeader}
	config.ExposeHeaders = []string{"Content-Disposition"}

	origins := make([]string, 0, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
		if o != "" {
			origins = append(origins, o)
		}
	}

	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if status := s.checkSecret(c.GetHeader(AdminHeader)); status != http.StatusOK {
			s.abort(c, status, http.StatusText(status))
			return
		}
		c.Next()
	}
}

// checkSecret spends one attempt token per failed comparison. While the
// bucket is empty every attempt is refused, the right secret included.
func (s *Server) checkSecret(attempt string) int {
	if s.unlock.Tokens() < 1 {
		return http.StatusTooManyRequests
	}
	if s.deps.Gate.Unlock(attempt) {
		return http.StatusOK
	}
	s.unlock.Allow()
	return http.StatusUnauthorized
}

func (s *Server) currentJob() *job.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job
}

func (s *Server) setJob(cfg *job.Configuration) {
	s.mu.Lock()
	s.job = cfg
	s.mu.Unlock()
}
