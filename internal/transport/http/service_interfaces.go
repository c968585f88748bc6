package http

import (
	"context"

	"popdash/internal/charts"
	api "popdash/pkg/contracts/api/v1"
)

// ChartService defines the chart operations the handlers need
type ChartService interface {
	List() []api.ChartInfo
	Build(ctx context.Context, id string) (*charts.Result, error)
	FigureJSON(ctx context.Context, id string) ([]byte, error)
	Invalidate(ids ...string)
	BuildAll(ctx context.Context) ([]api.BuildSummary, error)
}

// SourceService defines the source file operations the handlers need
type SourceService interface {
	List(ctx context.Context) (api.SourceListResponse, error)
	Get(ctx context.Context, name string) (api.SourceInfo, error)
}

// UpdateNotifier tells connected dashboards that a chart changed
type UpdateNotifier interface {
	BroadcastDataUpdate(ctx context.Context, chartID, source string)
}
