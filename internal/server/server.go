// Package server exposes the resolution engine and history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/truthlens/internal/history"
	"github.com/ppiankov/truthlens/internal/model"
)

// Resolver resolves a single claim
type Resolver interface {
	Resolve(ctx context.Context, claim string) (*model.ResolutionOutcome, error)
}

// HistoryStore is the subset of history.Store used by the API
type HistoryStore interface {
	Save(claim string, outcome *model.ResolutionOutcome) (*history.Record, error)
	Get(id string) (*history.Record, error)
	List(limit int) ([]*history.Record, error)
	Delete(id string) error
	Count() (int, error)
	Clear() (int, error)
}

// Server is the TruthLens HTTP API
type Server struct {
	cfg      model.ServerConfig
	resolver Resolver
	history  HistoryStore
	router   *gin.Engine
	logger   *slog.Logger
}

// New builds the router. store may be nil, which disables the history endpoints.
func New(cfg model.ServerConfig, resolver Resolver, store HistoryStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		history:  store,
		logger:   logger,
	}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery(), requestLogger(s.logger), cors(s.cfg.AllowedOrigins))

	s.router.GET("/", s.handleHome)
	s.router.GET("/health", handleHealth)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.router.Group("/history")
	{
		h.GET("", s.handleListHistory)
		h.DELETE("", s.handleClearHistory)
		h.GET("/:id", s.handleGetHistory)
		h.DELETE("/:id", s.handleDeleteHistory)
	}
}

// Handler returns the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// cors allows cross-origin calls from the configured origins ("*" for any)
func cors(allowed []string) gin.HandlerFunc {
	wildcard := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && set[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
