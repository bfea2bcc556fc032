package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bryanwahyu/loglens/internal/application"
	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
	"github.com/bryanwahyu/loglens/internal/infra/ai/prompt"
)

const (
	DefaultModelTimeout   = 60 * time.Second
	DefaultArchiveTimeout = 5 * time.Second
)

// Service implements the analysis use case. It is safe for concurrent use.
type Service struct {
	generator domain.Generator
	latest    *LatestStore
	archive   domain.Archive
	history   domain.HistoryReader
	clock     application.Clock

	modelTimeout   time.Duration
	archiveTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithArchive records every successful analysis in a. If a can also list
// records, it backs History.
func WithArchive(a domain.Archive) Option {
	return func(s *Service) {
		s.archive = a
		if h, ok := a.(domain.HistoryReader); ok {
			s.history = h
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(c application.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithModelTimeout bounds each remote call. Zero keeps the default.
func WithModelTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.modelTimeout = d
		}
	}
}

// NewService builds the service. A nil generator puts it in degraded mode:
// Analyze then always fails with ErrModelUnavailable.
func NewService(gen domain.Generator, opts ...Option) *Service {
	s := &Service{
		generator:      gen,
		latest:         NewLatestStore(),
		clock:          application.SystemClock{},
		modelTimeout:   DefaultModelTimeout,
		archiveTimeout: DefaultArchiveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether a model client is configured.
func (s *Service) Ready() bool { return s.generator != nil }

// ModelName is empty in degraded mode.
func (s *Service) ModelName() string {
	if s.generator == nil {
		return ""
	}
	return s.generator.Name()
}

// Latest returns the most recent successful analysis, if any.
func (s *Service) Latest() (domain.Result, bool) { return s.latest.Get() }

// Analyze validates logEntry, asks the model to classify it and records the
// result as the latest analysis. On any error the latest analysis is left
// untouched.
func (s *Service) Analyze(ctx context.Context, logEntry string) (*domain.Result, error) {
	req, err := domain.NewRequest(logEntry)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, domain.ErrModelUnavailable
	}

	slog.Info("received log for analysis", "log_entry", req.LogEntry)

	start := s.clock.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	text, err := s.generator.Generate(callCtx, prompt.ThreatAnalysis(req.LogEntry))
	if err != nil {
		slog.Error("model generation failed", "model", s.generator.Name(), "error", err)
		var remote *domain.RemoteModelError
		if errors.As(err, &remote) {
			return nil, err
		}
		return nil, &domain.RemoteModelError{Provider: s.generator.Name(), Err: err}
	}

	now := s.clock.Now()
	res := domain.Result{
		ID:        domain.NewID(),
		LogEntry:  req.LogEntry,
		Analysis:  text,
		Report:    domain.ParseReport(text),
		Model:     s.generator.Name(),
		CreatedAt: now,
		Duration:  now.Sub(start),
	}
	s.latest.Set(res)

	slog.Info("generated analysis", "id", res.ID, "risk_score", res.Report.RiskScore, "analysis", text)

	s.record(ctx, &res)
	return &res, nil
}

// History lists archived analyses, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.Record, error) {
	if s.history == nil {
		return nil, domain.ErrNoHistory
	}
	recs, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list analysis history: %w", err)
	}
	return recs, nil
}

// record archives best-effort; the caller's response never depends on it.
func (s *Service) record(ctx context.Context, res *domain.Result) {
	if s.archive == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.archiveTimeout)
	defer cancel()
	if err := s.archive.Save(actx, res.ToRecord()); err != nil {
		slog.Warn("archive analysis failed", "id", res.ID, "error", err)
	}
}
