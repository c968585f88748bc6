package charts

import (
	"context"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
)

// BirthRateID identifies the total fertility rate chart.
const BirthRateID = "birth-rate"

// Birth rate pipeline constants
const (
	BirthRateRows      = 55
	LowFertilityLine   = 1.3
	lowFertilityLabel  = "초저출산 기준 (1.3명)"
	colBirthRateYear   = "년도"
	colBirthRateValue  = "합계출산율"
	colBirthRateSource = "통계표명:"
)

// BirthRate draws the yearly total fertility rate with the lowest-low
// fertility threshold.
type BirthRate struct {
	base
}

// NewBirthRate creates the routine reading the fertility workbook at source.
func NewBirthRate(source string, logger *slog.Logger) *BirthRate {
	return &BirthRate{base: newBase(BirthRateID, "출산율 변동 추이", source, logger)}
}

// Transform drops the unit row and the repeated header row and keeps the
// first BirthRateRows years.
func (r *BirthRate) Transform(t dataprocessing.Table) dataprocessing.Table {
	return t.
		Rename(map[string]string{colBirthRateSource: colBirthRateYear}).
		Exclude(colBirthRateYear, "단위:").
		Exclude(colBirthRateValue, colBirthRateValue).
		Head(BirthRateRows).
		Select(colBirthRateYear, colBirthRateValue).
		CoerceNumeric(colBirthRateValue)
}

// Figure draws the transformed table.
func (r *BirthRate) Figure(t dataprocessing.Table) (*chartspec.Figure, error) {
	years, rates, err := columns(t, colBirthRateYear, colBirthRateValue)
	if err != nil {
		return nil, err
	}

	trace := chartspec.LineTrace("", years, rates)
	trace.HoverTemplate = "년도=%{x}<br>합계출산율=%{y}<extra></extra>"

	fig := chartspec.NewFigure(r.id, r.title).AddTrace(trace)
	fig.AddHLine(chartspec.HLine{
		Y:     LowFertilityLine,
		Color: "red",
		Dash:  "dot",
		Label: lowFertilityLabel,
	})

	fig.Layout.XAxis = chartspec.YearAxis(3)
	fig.Layout.XAxis.Title = &chartspec.Title{Text: colBirthRateYear}
	fig.Layout.YAxis = chartspec.AxisTitle(colBirthRateValue)
	fig.Layout.HoverMode = "x unified"
	fig.Layout.Font = chartspec.DefaultFont("black")
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *BirthRate) Build(ctx context.Context) (*Result, error) {
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
