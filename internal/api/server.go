// Package api serves the latest quota segment over HTTP in watch mode.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yescode/quotaline/internal/errors"
	"github.com/yescode/quotaline/internal/logging"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
)

// Snapshot is one collection outcome.
type Snapshot struct {
	Result      models.SegmentResult
	OK          bool
	CollectedAt time.Time
}

// Board holds the most recent Snapshot. It is safe for concurrent use.
type Board struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Publish replaces the current snapshot.
func (b *Board) Publish(result models.SegmentResult, ok bool, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = &Snapshot{Result: result, OK: ok, CollectedAt: at}
}

// Latest returns the current snapshot, or false before the first Publish.
func (b *Board) Latest() (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.snap == nil {
		return Snapshot{}, false
	}
	return *b.snap, true
}

// SegmentResponse is the body of GET /segment.
type SegmentResponse struct {
	Primary     string            `json:"primary"`
	Secondary   string            `json:"secondary"`
	Metadata    map[string]string `json:"metadata"`
	CollectedAt time.Time         `json:"collected_at"`
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	board      *Board
	metrics    *metrics.Metrics
	logger     *logging.Logger
	httpServer *http.Server
}

// NewServer creates a server publishing board. m and logger may be nil.
func NewServer(board *Board, m *metrics.Metrics, logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if logger == nil {
		logger = logging.Nop()
	}
	if m == nil {
		m = metrics.NewMetrics("quotaline")
	}

	s := &Server{
		router:  gin.New(),
		board:   board,
		metrics: m,
		logger:  logger,
	}
	s.router.HandleMethodNotAllowed = true
	s.router.Use(gin.Recovery())
	s.router.Use(metrics.Middleware(m, logger))
	s.router.Use(loggingMiddleware(logger))

	s.setupRoutes()
	return s
}

// Router returns the gin router for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// loggingMiddleware attaches a correlation id and logs each request.
func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}
		ctx := logging.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-ID", correlationID)

		c.Next()

		logger.DebugWithContext(ctx, "request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_seconds", time.Since(start).Seconds(),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/segment", s.handleSegment)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = NewHTTPServer(ln.Addr().String(), s.router)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return &errors.ErrServerStart{Addr: ln.Addr().String(), Err: err}
	case <-ctx.Done():
		return GracefulShutdown(s.httpServer, 5*time.Second)
	}
}

// ListenAndServe binds addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &errors.ErrServerStart{Addr: addr, Err: err}
	}
	return s.Serve(ctx, ln)
}

// handleHealth returns health status
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	if snap, ok := s.board.Latest(); ok {
		resp["last_collection"] = snap.CollectedAt.UTC()
		if snap.OK {
			resp["segment_status"] = snap.Result.Status()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleSegment returns the latest collected segment.
func (s *Server) handleSegment(c *gin.Context) {
	snap, ok := s.board.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no collection yet"})
		return
	}
	if !snap.OK {
		c.JSON(http.StatusNotFound, gin.H{"error": "segment not available"})
		return
	}
	c.JSON(http.StatusOK, SegmentResponse{
		Primary:     snap.Result.Primary,
		Secondary:   snap.Result.Secondary,
		Metadata:    snap.Result.Metadata,
		CollectedAt: snap.CollectedAt.UTC(),
	})
}
