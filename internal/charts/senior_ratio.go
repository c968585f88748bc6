package charts

import (
	"context"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
)

// SeniorRatioID identifies the elderly population share chart.
const SeniorRatioID = "senior-ratio"

// SeniorRatioRows is the number of years drawn.
const SeniorRatioRows = 17

const (
	colSeniorYear  = "년도"
	colSeniorRatio = "노인인구 비율(%)"
)

// SeniorRatio draws the share of the population aged 65 and over per year.
type SeniorRatio struct {
	base
}

// NewSeniorRatio creates the routine reading the elderly population
// workbook at source.
func NewSeniorRatio(source string, logger *slog.Logger) *SeniorRatio {
	return &SeniorRatio{base: newBase(SeniorRatioID, "노인 인구 변화 추이", source, logger)}
}

// Transform keeps the first SeniorRatioRows years.
func (r *SeniorRatio) Transform(t dataprocessing.Table) dataprocessing.Table {
	return t.
		Head(SeniorRatioRows).
		Select(colSeniorYear, colSeniorRatio).
		CoerceNumeric(colSeniorRatio)
}

// Figure draws the transformed table.
func (r *SeniorRatio) Figure(t dataprocessing.Table) (*chartspec.Figure, error) {
	years, ratios, err := columns(t, colSeniorYear, colSeniorRatio)
	if err != nil {
		return nil, err
	}

	trace := chartspec.BarTrace("", years, ratios)
	trace.HoverTemplate = "년도=%{x}<br>노인인구 비율(%)=%{y}<extra></extra>"

	fig := chartspec.NewFigure(r.id, r.title).AddTrace(trace)
	fig.Layout.XAxis = chartspec.AxisTitle(colSeniorYear)
	fig.Layout.YAxis = chartspec.AxisTitle(colSeniorRatio)
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *SeniorRatio) Build(ctx context.Context) (*Result, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	t = r.Transform(t)
	if err := r.transformed(ctx, t); err != nil {
		return nil, err
	}
	fig, err := r.Figure(t)
	if err != nil {
		return nil, err
	}
	return r.result(fig, t), nil
}
