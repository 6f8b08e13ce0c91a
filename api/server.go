package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/agent"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
)

const defaultPort = "8123"

// Researcher runs one research workflow to completion.
type Researcher interface {
	Run(ctx context.Context, query string, overrides *agent.RunnableConfig) (agent.OverallState, error)
}

type Server struct {
	Engine *gin.Engine

	researcher Researcher
	runs       RunStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewServer(researcher Researcher, runs RunStore, logger *zap.Logger) *Server {
	s := &Server{
		Engine:     gin.New(),
		researcher: researcher,
		runs:       runs,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
	if s.runs == nil {
		s.runs = NewMemoryRunStore()
	}

	s.Engine.Use(gin.Recovery(), s.requestLogger())
	s.Engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Engine.Group("/api")
	api.POST("/research", s.handleResearch)
	api.GET("/runs/:id", s.handleGetRun)
	return s
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) handleResearch(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query is required"})
		return
	}

	state, err := s.researcher.Run(c.Request.Context(), req.Query, req.Overrides())
	switch {
	case errors.Is(err, agent.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query is required"})
		return
	case errors.Is(err, agent.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("research run failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "research run failed"})
		return
	}

	run := NewRun(uuid.NewString(), strings.TrimSpace(req.Query), state, s.now())
	if err := s.runs.Save(c.Request.Context(), run); err != nil {
		s.logger.Warn("failed to store run", zap.String("id", run.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleGetRun(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrRunNotFound.Error()})
		return
	}

	run, err := s.runs.Get(c.Request.Context(), id)
	if errors.Is(err, ErrRunNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("failed to load run", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) SetupFrontend(buildDir string) {
	log := s.logger.With(zap.String("build_dir", buildDir))

	absBuildPath, err := filepath.Abs(buildDir)
	if err != nil {
		log.Warn("could not resolve frontend build directory", zap.Error(err))
		s.Engine.Any("/app/*path", func(c *gin.Context) {
			c.String(http.StatusServiceUnavailable, "Frontend build path could not be resolved. Check server configuration.")
		})
		return
	}

	indexPath := filepath.Join(absBuildPath, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		log.Warn("frontend build directory not found or incomplete", zap.String("path", absBuildPath), zap.Error(err))
		s.Engine.Any("/app/*path", func(c *gin.Context) {
			c.String(http.StatusServiceUnavailable, "Frontend not built or incomplete. Run 'npm run build' in the frontend directory.")
		})
		return
	}

	s.Engine.StaticFS("/app", http.Dir(absBuildPath))

	s.Engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/app/") {
			http.ServeFile(c.Writer, c.Request, indexPath)
			return
		}
		c.Status(http.StatusNotFound)
	})

	log.Info("serving frontend", zap.String("path", absBuildPath))
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	if port == "" {
		port = defaultPort
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
