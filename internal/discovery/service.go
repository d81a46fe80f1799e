package discovery

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"carelink/internal/platform/metrics"
)

// Page is one page of ranked results. Total counts every match.
type Page struct {
	Results  []Candidate `json:"results"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type Service struct {
	source  CandidateSource
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(source CandidateSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		tracer: otel.Tracer("carelink/discovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search validates and normalizes f, loads the requested kinds in parallel
// and returns the requested page. Source errors are returned unmodified.
func (s *Service) Search(ctx context.Context, f Filter) (_ *Page, err error) {
	start := time.Now()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.Normalize()
	kinds := f.kinds()

	ctx, span := s.tracer.Start(ctx, "discovery.Search", trace.WithAttributes(
		attribute.Int("discovery.kinds", len(kinds)),
		attribute.Bool("discovery.text", f.Text != ""),
		attribute.Bool("discovery.geo", f.Box != nil || f.Radius != nil),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
		}
		span.End()
	}()

	loaded := make([][]Candidate, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			cs, err := s.source.Candidates(gctx, kind)
			if err != nil {
				return err
			}
			loaded[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to load search candidates", "error", err)
		}
		return nil, err
	}

	var all []Candidate
	for _, cs := range loaded {
		all = append(all, cs...)
	}
	ranked := Search(all, f)

	span.SetAttributes(attribute.Int("discovery.matched", len(ranked)))
	s.metrics.ObserveSearch(start, len(ranked))
	return paginate(ranked, f.Page, f.PageSize), nil
}

func paginate(ranked []Candidate, page, size int) *Page {
	p := &Page{Results: []Candidate{}, Total: len(ranked), Page: page, PageSize: size}
	from := (page - 1) * size
	if from >= len(ranked) {
		return p
	}
	to := min(from+size, len(ranked))
	p.Results = ranked[from:to]
	return p
}
