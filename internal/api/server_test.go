package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yescode/quotaline/internal/logging"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
)

func setupTestServer() (*Server, *Board) {
	gin.SetMode(gin.TestMode)
	board := &Board{}
	return NewServer(board, metrics.NewMetrics("apitest"), nil), board
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	server, board := setupTestServer()

	w := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotContains(t, w.Body.String(), "last_collection")

	board.Publish(models.SegmentResult{Metadata: map[string]string{"status": "offline"}}, true, time.Now())
	w = get(t, server, "/health")
	assert.Contains(t, w.Body.String(), `"segment_status":"offline"`)
	assert.Contains(t, w.Body.String(), "last_collection")
}

func TestHandleSegmentBeforeFirstCollection(t *testing.T) {
	server, _ := setupTestServer()

	w := get(t, server, "/segment")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleSegmentNotAvailable(t *testing.T) {
	server, board := setupTestServer()
	board.Publish(models.SegmentResult{}, false, time.Now())

	w := get(t, server, "/segment")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSegment(t *testing.T) {
	server, board := setupTestServer()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	board.Publish(models.SegmentResult{
		Primary:   "Used:$1.50",
		Secondary: "Left:$50.00",
		Metadata:  map[string]string{"status": "ok", "raw_spent": "1.5"},
	}, true, at)

	w := get(t, server, "/segment")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SegmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Used:$1.50", resp.Primary)
	assert.Equal(t, "Left:$50.00", resp.Secondary)
	assert.Equal(t, "1.5", resp.Metadata["raw_spent"])
	assert.True(t, at.Equal(resp.CollectedAt))
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/segment", nil)
	server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := setupTestServer()

	get(t, server, "/health")
	w := get(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "apitest_http_requests_total")
}

func TestCorrelationIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.WithOutput(&buf), logging.WithLevel(logging.LevelDebug))
	server := NewServer(&Board{}, nil, logger)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "cid-123")
	server.Router().ServeHTTP(w, req)

	assert.Equal(t, "cid-123", w.Header().Get("X-Correlation-ID"))
	assert.Contains(t, buf.String(), `"correlation_id":"cid-123"`)
	assert.Contains(t, buf.String(), "request completed")

	w = get(t, server, "/health")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	server, board := setupTestServer()
	board.Publish(models.SegmentResult{Primary: "Offline", Secondary: "Offline"}, true, time.Now())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/segment")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Offline")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	server, _ := setupTestServer()
	err := server.ListenAndServe(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}

func TestBoardConcurrentAccess(t *testing.T) {
	board := &Board{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			board.Publish(models.SegmentResult{Primary: "p"}, true, time.Now())
		}
	}()
	for i := 0; i < 100; i++ {
		board.Latest()
	}
	<-done
	snap, ok := board.Latest()
	assert.True(t, ok)
	assert.Equal(t, "p", snap.Result.Primary)
}
