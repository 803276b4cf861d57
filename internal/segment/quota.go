// Package segment implements the quota statusline segment.
package segment

import (
	"context"

	"github.com/yescode/quotaline/internal/collector"
	"github.com/yescode/quotaline/internal/config"
	"github.com/yescode/quotaline/internal/credential"
	"github.com/yescode/quotaline/internal/logging"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
)

// CredentialResolver yields the API key, or false when none is configured.
type CredentialResolver interface {
	Resolve() (models.Credential, bool)
}

type sourceResolver interface {
	ResolveWithSource() (models.Credential, string, bool)
}

// QuotaFetcher queries usage and balance. Neither call may fail loudly.
type QuotaFetcher interface {
	DetectUsage(ctx context.Context, cred models.Credential) (collector.UsageDetection, bool)
	FetchBalance(ctx context.Context, cred models.Credential) (models.BalanceResponse, bool)
}

// Segment is the quota segment. It is stateless between collections.
type Segment struct {
	enabled   bool
	secondary string
	resolver  CredentialResolver
	fetcher   QuotaFetcher
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// Option configures a Segment.
type Option func(*Segment)

// WithEnabled turns the segment on or off. A disabled segment never produces output.
func WithEnabled(enabled bool) Option {
	return func(s *Segment) {
		s.enabled = enabled
	}
}

// WithSecondary selects config.SecondaryBalance or config.SecondaryWeekly.
func WithSecondary(mode string) Option {
	return func(s *Segment) {
		s.secondary = mode
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Segment) {
		s.logger = l
	}
}

// WithMetrics records outcomes into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Segment) {
		s.metrics = m
	}
}

// New creates a segment over explicit collaborators.
func New(resolver CredentialResolver, fetcher QuotaFetcher, opts ...Option) *Segment {
	s := &Segment{
		enabled:   true,
		secondary: config.SecondaryBalance,
		resolver:  resolver,
		fetcher:   fetcher,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromConfig wires the production resolver and fetcher from cfg. Extra
// fetcher options are applied after the configured ones.
func FromConfig(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics, extra ...collector.Option) *Segment {
	resolver := credential.NewResolver(credential.OSSources(cfg.Credentials.SettingsPath, cfg.Credentials.KeyFile))
	fetcher := collector.NewFetcher(append([]collector.Option{
		collector.WithUTLS(cfg.Transport.UTLS),
		collector.WithLogger(logger),
		collector.WithMetrics(m),
	}, extra...)...)
	return New(resolver, fetcher,
		WithEnabled(cfg.Enabled),
		WithSecondary(cfg.Display.Secondary),
		WithLogger(logger),
		WithMetrics(m),
	)
}

// NewLogger builds the diagnostic logger for cfg: debug when diagnostics are
// requested, otherwise the configured level. Output defaults to stderr;
// opts apply after the level.
func NewLogger(cfg *config.Config, opts ...logging.LoggerOption) *logging.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.DiagnosticsEnabled() {
		level = logging.LevelDebug
	}
	return logging.NewLogger(append([]logging.LoggerOption{logging.WithLevel(level)}, opts...)...)
}

// Collect produces the segment output. ok is false when the segment is
// disabled or no credential can be resolved; every other path, including
// total network failure, yields a displayable result.
func (s *Segment) Collect(ctx context.Context, input models.InputData) (models.SegmentResult, bool) {
	if !s.enabled {
		return models.SegmentResult{}, false
	}
	ctx = logging.EnsureCorrelationID(ctx)

	cred, ok := s.resolve()
	if !ok {
		s.logger.DebugWithContext(ctx, "no credential resolved", "session_id", input.SessionID)
		s.metrics.RecordSegment("no_credential")
		return models.SegmentResult{}, false
	}

	var usage *collector.UsageDetection
	if d, ok := s.fetcher.DetectUsage(ctx, cred); ok {
		usage = &d
		if cost, ok := TodayCost(d.Response); ok {
			s.metrics.SetTodaySpent(cost)
		}
	}

	var balance *models.BalanceResponse
	if b, ok := s.fetcher.FetchBalance(ctx, cred); ok {
		balance = &b
		s.metrics.SetTotalBalance(b.TotalBalance)
	}

	result := Build(usage, balance, s.secondary)
	s.metrics.RecordSegment(result.Status())
	s.logger.DebugWithContext(ctx, "segment collected",
		"status", result.Status(),
		"session_id", input.SessionID,
		"key_fingerprint", cred.Fingerprint(),
	)
	return result, true
}

func (s *Segment) resolve() (models.Credential, bool) {
	if sr, ok := s.resolver.(sourceResolver); ok {
		cred, source, found := sr.ResolveWithSource()
		if found {
			s.metrics.RecordCredentialLookup(source)
		}
		return cred, found
	}
	return s.resolver.Resolve()
}
