// Package mockserver is an in-memory stand-in for the Book Foundry service.
// It generates placeholder text and simulates render jobs whose progress
// follows the narration time estimate, so the CLI can be exercised end to
// end without model or TTS credentials.
package mockserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"bookfoundry/internal/api"
)

// Options configure a Server.
type Options struct {
	Addr string
	// TimeScale multiplies every estimated duration. Values below 1 make
	// jobs finish faster than a real render would.
	TimeScale float64
	// QueueDelay is how long a new job reports pending.
	QueueDelay time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	opts       Options
	log        *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a new mock server with its routes registered.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8000"
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}
	if opts.QueueDelay < 0 {
		opts.QueueDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(opts.Logger))

	s := &Server{
		engine: engine,
		opts:   opts,
		log:    opts.Logger,
		jobs:   make(map[string]*job),
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.routes()
	return s
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	e := s.engine
	e.GET(api.PathHealth, s.health)
	e.POST(api.PathOutline, s.outline)
	e.POST(api.PathOutlineFeedback, s.outlineFeedback)
	e.POST(api.PathChapters, s.chapters)
	e.POST(api.PathVoicePreview, s.voicePreview)
	e.POST(api.PathRenderJobs, s.createJob)
	e.GET(api.PathRenderJobs+"/:id", s.jobStatus)
	e.GET(api.PathRenderJobs+"/:id/download", s.download)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("mock service listening", "addr", s.opts.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}

func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
