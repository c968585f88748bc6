package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popdash/internal/charts"
	"popdash/internal/config"
	"popdash/internal/infrastructure"
	"popdash/internal/shared/testutil"
)

func TestChartService_List(t *testing.T) {
	svc := NewChartService(newRegistry(t,
		&stubRoutine{id: "b", source: "/data/b.csv"},
		&stubRoutine{id: "a", source: "/data/a.csv"},
	), nil, nil, testLogger(t))

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "Title b", list[0].Title)
	assert.Equal(t, "/data/b.csv", list[0].Source)
	assert.Equal(t, "a", list[1].ID)
}

func TestChartService_FigureJSONIsCached(t *testing.T) {
	stub := &stubRoutine{id: "bar", source: "/data/bar.csv"}
	svc := NewChartService(newRegistry(t, stub), nil, nil, testLogger(t))
	ctx := context.Background()

	first, err := svc.FigureJSON(ctx, "bar")
	require.NoError(t, err)
	second, err := svc.FigureJSON(ctx, "bar")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), stub.builds.Load())
	_, cached := svc.Cached("bar")
	assert.True(t, cached)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(first, &doc))
	assert.Equal(t, "bar", doc["id"])

	svc.Invalidate("bar")
	_, cached = svc.Cached("bar")
	assert.False(t, cached)

	_, err = svc.FigureJSON(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.builds.Load())
}

func TestChartService_UnknownChart(t *testing.T) {
	svc := NewChartService(newRegistry(t), nil, nil, testLogger(t))

	_, err := svc.Build(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrChartNotFound)
}

func TestChartService_FailuresAreNotCached(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"empty", charts.ErrEmptyTable, infrastructure.OutcomeEmpty},
		{"notice", &charts.NoticeError{Chart: "x", Message: "표시할 연도가 없습니다"}, infrastructure.OutcomeNotice},
		{"failure", errors.New("boom"), infrastructure.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRoutine{id: "x", err: tt.err}
			svc := NewChartService(newRegistry(t, stub), nil, nil, testLogger(t))

			for i := 0; i < 2; i++ {
				_, err := svc.FigureJSON(context.Background(), "x")
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.outcome, Outcome(err))
			}
			assert.Equal(t, int32(2), stub.builds.Load())
		})
	}
}

func TestChartService_InvalidateSource(t *testing.T) {
	a := &stubRoutine{id: "a", source: "/data/shared.xlsx"}
	b := &stubRoutine{id: "b", source: "/data/shared.xlsx"}
	c := &stubRoutine{id: "c", source: "/data/other.csv"}
	svc := NewChartService(newRegistry(t, a, b, c), nil, nil, testLogger(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Build(ctx, id)
		require.NoError(t, err)
	}

	ids := svc.InvalidateSource("/data/./shared.xlsx")
	assert.Equal(t, []string{"a", "b"}, ids)

	_, cached := svc.Cached("a")
	assert.False(t, cached)
	_, cached = svc.Cached("c")
	assert.True(t, cached)

	assert.Empty(t, svc.InvalidateSource("/data/unknown.csv"))
}

type buildOutcome struct {
	result *charts.Result
	err    error
}

func buildAsync(ctx context.Context, svc *ChartService, id string) <-chan buildOutcome {
	out := make(chan buildOutcome, 1)
	go func() {
		result, err := svc.Build(ctx, id)
		out <- buildOutcome{result, err}
	}()
	return out
}

func waitOutcome(t *testing.T, ch <-chan buildOutcome) buildOutcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		require.FailNow(t, "build did not finish")
		return buildOutcome{}
	}
}

func TestChartService_InvalidateDuringBuild(t *testing.T) {
	gated := newGatedRoutine("gated", "/data/gated.xlsx")
	svc := NewChartService(newRegistry(t, gated), nil, nil, testLogger(t))
	ctx := context.Background()

	stale := buildAsync(ctx, svc, "gated")
	<-gated.started

	// The source changes while the first build is still reading it
	gated.version.Store(1)
	assert.Equal(t, []string{"gated"}, svc.InvalidateSource("/data/gated.xlsx"))

	fresh := waitOutcome(t, buildAsync(ctx, svc, "gated"))
	require.NoError(t, fresh.err)
	assert.Equal(t, "1", drawnVersion(t, fresh.result), "a build after invalidation does not join the old one")

	close(gated.release)
	old := waitOutcome(t, stale)
	require.NoError(t, old.err)
	assert.Equal(t, "0", drawnVersion(t, old.result))

	current, err := svc.Build(ctx, "gated")
	require.NoError(t, err)
	assert.Equal(t, "1", drawnVersion(t, current), "the invalidated build must not overwrite the cache")
	assert.Equal(t, int32(2), gated.builds.Load())
}

func TestChartService_InvalidateBeforeStaleBuildFinishes(t *testing.T) {
	gated := newGatedRoutine("gated", "/data/gated.xlsx")
	svc := NewChartService(newRegistry(t, gated), nil, nil, testLogger(t))
	ctx := context.Background()

	stale := buildAsync(ctx, svc, "gated")
	<-gated.started
	gated.version.Store(1)
	svc.Invalidate()
	close(gated.release)

	old := waitOutcome(t, stale)
	require.NoError(t, old.err)
	_, cached := svc.Cached("gated")
	assert.False(t, cached)

	next, err := svc.Build(ctx, "gated")
	require.NoError(t, err)
	assert.Equal(t, "1", drawnVersion(t, next))
}

func TestChartService_CallerCancelDoesNotFailSharedBuild(t *testing.T) {
	gated := newGatedRoutine("gated", "/data/gated.xlsx")
	svc := NewChartService(newRegistry(t, gated), nil, nil, testLogger(t))

	callerCtx, cancel := context.WithCancel(context.Background())
	first := buildAsync(callerCtx, svc, "gated")
	<-gated.started
	second := buildAsync(context.Background(), svc, "gated")

	cancel()
	gone := waitOutcome(t, first)
	assert.ErrorIs(t, gone.err, context.Canceled)

	close(gated.release)
	kept := waitOutcome(t, second)
	require.NoError(t, kept.err)
	assert.Equal(t, "0", drawnVersion(t, kept.result))

	_, cached := svc.Cached("gated")
	assert.True(t, cached, "the shared build finishes and is cached")
	assert.Equal(t, int32(1), gated.builds.Load())
}

func TestChartService_BuildAll(t *testing.T) {
	svc := NewChartService(newRegistry(t,
		&stubRoutine{id: "ok"},
		&stubRoutine{id: "empty", err: charts.ErrEmptyTable},
		&stubRoutine{id: "notice", err: &charts.NoticeError{Chart: "notice", Message: "연도 없음"}},
		&stubRoutine{id: "broken", err: errors.New("boom")},
	), nil, nil, testLogger(t))

	summaries, err := svc.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	assert.Equal(t, "ok", summaries[0].ID)
	assert.Equal(t, infrastructure.OutcomeSuccess, summaries[0].Outcome)
	assert.Equal(t, 1, summaries[0].Rows)

	assert.Equal(t, infrastructure.OutcomeEmpty, summaries[1].Outcome)
	assert.Equal(t, infrastructure.OutcomeNotice, summaries[2].Outcome)
	assert.Equal(t, "연도 없음", summaries[2].Message)
	assert.Equal(t, infrastructure.OutcomeError, summaries[3].Outcome)
	assert.Equal(t, "boom", summaries[3].Message)
}

func TestChartService_BuildAllCancelled(t *testing.T) {
	svc := NewChartService(newRegistry(t, &stubRoutine{id: "ok"}), nil, nil, testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := svc.BuildAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, summaries, 1)
	assert.Equal(t, infrastructure.OutcomeError, summaries[0].Outcome)
}

func TestChartService_DefaultRegistry(t *testing.T) {
	paths := testutil.SourceSet(t, t.TempDir())
	logger := testLogger(t)
	registry := charts.NewDefaultRegistry(paths, config.Default().Charts, logger)
	svc := NewChartService(registry, nil, nil, logger)

	summaries, err := svc.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 6)
	for _, s := range summaries {
		assert.Equal(t, infrastructure.OutcomeSuccess, s.Outcome, "%s: %s", s.ID, s.Message)
		assert.Positive(t, s.Rows, s.ID)
	}
}
