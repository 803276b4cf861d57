package collector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	qerrors "github.com/yescode/quotaline/internal/errors"
	"github.com/yescode/quotaline/internal/logging"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
)

// DefaultTimeout bounds every remote request end to end.
const DefaultTimeout = 5 * time.Second

// APIKeyHeader carries the credential verbatim.
const APIKeyHeader = "X-API-Key"

// Fetcher queries the billing service. Every failure collapses to "no data"
// at the exported API; the cause is only visible in diagnostics and metrics.
type Fetcher struct {
	client  *http.Client
	catalog Catalog
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCatalog replaces the production endpoints.
func WithCatalog(c Catalog) Option {
	return func(f *Fetcher) {
		f.catalog = c.clone()
	}
}

// WithTimeout overrides DefaultTimeout on the fetcher's client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUTLS switches the transport to a Chrome TLS fingerprint.
func WithUTLS(enabled bool) Option {
	return func(f *Fetcher) {
		f.client.Transport = NewTransport(enabled)
	}
}

// WithLogger sets the diagnostic logger. Attempts are logged at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMetrics records every attempt into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a fetcher over the default catalog.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: NewTransport(false),
		},
		catalog: DefaultCatalog(),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Catalog returns a copy of the endpoints this fetcher queries.
func (f *Fetcher) Catalog() Catalog {
	return f.catalog.clone()
}

// fetch performs one GET against ep and decodes the body into T. check
// rejects bodies that parse but lack the fields the caller depends on.
func fetch[T any](ctx context.Context, f *Fetcher, ep models.Endpoint, cred models.Credential, headers map[string]string, check func(*T) error) (T, error) {
	start := time.Now()
	f.logger.DebugWithContext(ctx, "fetching", "endpoint", ep.Name, "url", ep.URL)

	out, status, err := get[T](ctx, f.client, ep, cred, headers)
	if err == nil && check != nil {
		if cerr := check(&out); cerr != nil {
			err = &qerrors.ErrDecode{Endpoint: ep.Name, Err: cerr}
		}
	}

	f.report(ctx, ep, cred, time.Since(start), status, err)
	return out, err
}

func get[T any](ctx context.Context, client *http.Client, ep models.Endpoint, cred models.Credential, headers map[string]string) (T, int, error) {
	var out T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return out, 0, &qerrors.ErrNetwork{Endpoint: ep.Name, Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(APIKeyHeader, string(cred))

	resp, err := client.Do(req)
	if err != nil {
		return out, 0, &qerrors.ErrNetwork{Endpoint: ep.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return out, resp.StatusCode, &qerrors.ErrRemoteRejected{Endpoint: ep.Name, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, resp.StatusCode, &qerrors.ErrDecode{Endpoint: ep.Name, Err: err}
	}
	return out, resp.StatusCode, nil
}

// report writes diagnostics and metrics. It must not influence the result.
func (f *Fetcher) report(ctx context.Context, ep models.Endpoint, cred models.Credential, elapsed time.Duration, status int, err error) {
	outcome := outcomeOf(err)
	f.metrics.RecordFetch(ep.Name, outcome, elapsed.Seconds())

	if !f.logger.Enabled(logging.LevelDebug) {
		return
	}
	fields := []interface{}{
		"endpoint", ep.Name,
		"elapsed_ms", elapsed.Milliseconds(),
		"ok", err == nil,
		"outcome", outcome,
		"key_fingerprint", cred.Fingerprint(),
	}
	if status != 0 {
		fields = append(fields, "status_code", status)
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
		f.logger.DebugWithContext(ctx, "fetch failed", fields...)
		return
	}
	f.logger.DebugWithContext(ctx, "fetch succeeded", fields...)
}

func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return metrics.OutcomeOK
	case *qerrors.ErrRemoteRejected:
		return metrics.OutcomeRejected
	case *qerrors.ErrDecode:
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeNetwork
	}
}
