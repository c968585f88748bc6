package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"popdash/internal/charts"
	apperrors "popdash/internal/errors"
	"popdash/internal/infrastructure"
	api "popdash/pkg/contracts/api/v1"
)

// builtChart is a cached successful build.
type builtChart struct {
	result  *charts.Result
	json    []byte
	builtAt time.Time
}

// ChartService builds and caches dashboard figures
type ChartService struct {
	registry *charts.Registry
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]*builtChart
	// gens counts invalidations per chart; a build only stores its result
	// while the generation it started under is current
	gens  map[string]uint64
	group singleflight.Group
}

// NewChartService creates a chart service. tracer and metrics may be nil.
func NewChartService(registry *charts.Registry, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	return &ChartService{
		registry: registry,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "chart_service")),
		cache:    make(map[string]*builtChart),
		gens:     make(map[string]uint64),
	}
}

// List returns every chart in panel order
func (s *ChartService) List() []api.ChartInfo {
	routines := s.registry.List()
	out := make([]api.ChartInfo, 0, len(routines))
	for _, r := range routines {
		out = append(out, api.ChartInfo{ID: r.ID(), Title: r.Title(), Source: r.Source()})
	}
	return out
}

// Build returns the built chart, from cache when the source is unchanged.
// Failed builds are not cached.
func (s *ChartService) Build(ctx context.Context, id string) (*charts.Result, error) {
	built, err := s.build(ctx, id)
	if err != nil {
		return nil, err
	}
	return built.result, nil
}

// FigureJSON returns the encoded figure of chart id
func (s *ChartService) FigureJSON(ctx context.Context, id string) ([]byte, error) {
	built, err := s.build(ctx, id)
	if err != nil {
		return nil, err
	}
	return built.json, nil
}

func (s *ChartService) build(ctx context.Context, id string) (*builtChart, error) {
	routine, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChartNotFound, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, ok := s.cache[id]
	gen := s.gens[id]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// The shared build outlives any single caller
	buildCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flightKey(id, gen), func() (interface{}, error) {
		return s.run(buildCtx, routine, gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "chart build shared", slog.String("chart", id))
		}
		return res.Val.(*builtChart), nil
	}
}

func flightKey(id string, gen uint64) string {
	return fmt.Sprintf("%s@%d", id, gen)
}

// run builds one routine inside a span and records the outcome.
func (s *ChartService) run(ctx context.Context, routine charts.Routine, gen uint64) (*builtChart, error) {
	ctx, span := s.tracer.Start(ctx, "chart.build",
		trace.WithAttributes(
			attribute.String("chart.id", routine.ID()),
			attribute.String("chart.source", routine.Source()),
		))
	defer span.End()

	logger := infrastructure.WithChart(s.logger, routine.ID())
	start := time.Now()

	result, err := routine.Build(ctx)
	duration := time.Since(start)
	outcome := Outcome(err)

	infrastructure.RecordChartBuild(ctx, s.metrics, routine.ID(), outcome, duration, result.Rows())

	switch outcome {
	case infrastructure.OutcomeSuccess:
	case infrastructure.OutcomeEmpty, infrastructure.OutcomeNotice:
		span.SetAttributes(attribute.String("chart.outcome", outcome))
		logger.InfoContext(ctx, "chart has nothing to draw",
			slog.String("outcome", outcome),
			slog.String("reason", err.Error()))
		return nil, err
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "chart build failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	data, err := result.Figure.JSON()
	if err != nil {
		err = apperrors.NewRenderError(fmt.Sprintf("encode %s figure", routine.ID()), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("chart.rows", result.Rows()))
	logger.InfoContext(ctx, "chart built",
		slog.Int("rows", result.Rows()),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", duration))

	built := &builtChart{result: result, json: data, builtAt: time.Now()}
	s.mu.Lock()
	current := s.gens[routine.ID()] == gen
	if current {
		s.cache[routine.ID()] = built
	}
	s.mu.Unlock()
	if !current {
		logger.DebugContext(ctx, "chart invalidated during build, result not cached")
	}
	return built, nil
}

// Invalidate drops the cached builds of ids, or of every chart when ids is
// empty. Builds already running for those ids are not cached when they
// finish, and later callers start a fresh build.
func (s *ChartService) Invalidate(ids ...string) {
	if len(ids) == 0 {
		ids = s.registry.IDs()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.group.Forget(flightKey(id, s.gens[id]))
		s.gens[id]++
		delete(s.cache, id)
	}
}

// InvalidateSource drops the builds of every chart reading path and
// returns their ids.
func (s *ChartService) InvalidateSource(path string) []string {
	routines := s.registry.BySource(path)
	ids := make([]string, 0, len(routines))
	for _, r := range routines {
		ids = append(ids, r.ID())
	}
	if len(ids) > 0 {
		s.Invalidate(ids...)
	}
	return ids
}

// Cached reports whether chart id has a cached build and when it was made
func (s *ChartService) Cached(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	built, ok := s.cache[id]
	if !ok {
		return time.Time{}, false
	}
	return built.builtAt, true
}

// BuildAll builds every chart concurrently and reports one summary per
// chart in panel order. A failing chart does not stop the others; the
// returned error is only set when ctx ends first.
func (s *ChartService) BuildAll(ctx context.Context) ([]api.BuildSummary, error) {
	routines := s.registry.List()
	summaries := make([]api.BuildSummary, len(routines))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, routine := range routines {
		g.Go(func() error {
			start := time.Now()
			result, err := s.Build(ctx, routine.ID())
			summaries[i] = Summarize(routine.ID(), result, err, time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	return summaries, ctx.Err()
}

// Summarize describes one build result
func Summarize(id string, result *charts.Result, err error, duration time.Duration) api.BuildSummary {
	summary := api.BuildSummary{
		ID:       id,
		Outcome:  Outcome(err),
		Rows:     result.Rows(),
		Duration: duration,
	}
	var notice apperrors.Notice
	switch {
	case err == nil:
	case errors.As(err, &notice):
		summary.Message = notice.Notice()
	default:
		summary.Message = err.Error()
	}
	return summary
}

// Outcome classifies a build error for metrics and summaries
func Outcome(err error) string {
	var notice apperrors.Notice
	switch {
	case err == nil:
		return infrastructure.OutcomeSuccess
	case errors.Is(err, charts.ErrEmptyTable):
		return infrastructure.OutcomeEmpty
	case errors.As(err, &notice):
		return infrastructure.OutcomeNotice
	default:
		return infrastructure.OutcomeError
	}
}
