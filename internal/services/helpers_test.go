package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"popdash/internal/charts"
	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
	"popdash/internal/shared/testutil"
)

// stubRoutine returns err, or a one row figure, and counts its builds.
type stubRoutine struct {
	id     string
	source string
	err    error
	builds atomic.Int32
}

func (r *stubRoutine) ID() string     { return r.id }
func (r *stubRoutine) Title() string  { return "Title " + r.id }
func (r *stubRoutine) Source() string { return r.source }

func (r *stubRoutine) Build(ctx context.Context) (*charts.Result, error) {
	r.builds.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	fig := chartspec.NewFigure(r.id, r.Title())
	fig.AddTrace(chartspec.BarTrace("", chartspec.Labels{"2020"}, chartspec.NumberSlice([]float64{1})))
	t := dataprocessing.FromRecords([][]string{{"년도", "값"}, {"2020", "1"}})
	return &charts.Result{Figure: fig, Table: &t}, nil
}

// gatedRoutine draws its current version. The first build waits for
// release after signalling started.
type gatedRoutine struct {
	id      string
	source  string
	version atomic.Int32
	builds  atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newGatedRoutine(id, source string) *gatedRoutine {
	return &gatedRoutine{
		id:      id,
		source:  source,
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (r *gatedRoutine) ID() string     { return r.id }
func (r *gatedRoutine) Title() string  { return "Title " + r.id }
func (r *gatedRoutine) Source() string { return r.source }

func (r *gatedRoutine) Build(ctx context.Context) (*charts.Result, error) {
	version := strconv.Itoa(int(r.version.Load()))
	if r.builds.Add(1) == 1 {
		r.started <- struct{}{}
		<-r.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fig := chartspec.NewFigure(r.id, r.Title())
	t := dataprocessing.FromRecords([][]string{{"년도", "값"}, {"2020", version}})
	return &charts.Result{Figure: fig, Table: &t}, nil
}

// drawnVersion returns the version a gatedRoutine result was built from
func drawnVersion(t *testing.T, result *charts.Result) string {
	t.Helper()
	require.NotNil(t, result)
	values, err := result.Table.Strings("값")
	require.NoError(t, err)
	require.Len(t, values, 1)
	return values[0]
}

func newRegistry(t *testing.T, routines ...charts.Routine) *charts.Registry {
	t.Helper()
	r, err := charts.NewRegistry(routines...)
	require.NoError(t, err)
	return r
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

// MockHub is a mock for ClientCounter
type MockHub struct {
	mock.Mock
}

func (m *MockHub) ClientCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockHub) Running() bool {
	args := m.Called()
	return args.Bool(0)
}
