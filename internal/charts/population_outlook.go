package charts

import (
	"context"
	"fmt"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
	apperrors "popdash/internal/errors"
)

// PopulationOutlookID identifies the long range population projection chart.
const PopulationOutlookID = "population-outlook"

const (
	colOutlookIndicator = "인구구조"
	colOutlookYear      = "년도"
	colOutlookCount     = "인구수"
	totalPopulationRow  = "총인구(명)"
)

// PopulationOutlook draws the projected total population per year.
type PopulationOutlook struct {
	base
}

// NewPopulationOutlook creates the routine reading the population
// indicator CSV at source.
func NewPopulationOutlook(source string, logger *slog.Logger) *PopulationOutlook {
	return &PopulationOutlook{base: newBase(PopulationOutlookID, "대한민국 미래 인구 예측 추이", source, logger)}
}

// Transform keeps the total population row and turns it into year and
// count rows. Only the first matching row is used.
func (r *PopulationOutlook) Transform(ctx context.Context, t dataprocessing.Table) (dataprocessing.Table, error) {
	t = t.
		Rename(map[string]string{"인구구조,부양비별": colOutlookIndicator}).
		FilterEq(colOutlookIndicator, totalPopulationRow)
	if t.Err != nil {
		return t, nil
	}

	switch n := t.Nrow(); {
	case n == 0:
		return t, apperrors.NewParsingError(
			fmt.Sprintf("transform %s table", r.id),
			fmt.Errorf("%w: %s == %q", ErrNoMatchingRows, colOutlookIndicator, totalPopulationRow))
	case n > 1:
		r.logger.WarnContext(ctx, "several total population rows, using the first", slog.Int("rows", n))
		t = t.Head(1)
	}

	return t.
		Drop("가정별").
		Transpose(colOutlookYear).
		Rename(map[string]string{"0": colOutlookCount}).
		Exclude(colOutlookYear, colOutlookIndicator).
		CoerceNumeric(colOutlookCount), nil
}

// Figure draws the transformed table with Korean unit hover text.
func (r *PopulationOutlook) Figure(t dataprocessing.Table) (*chartspec.Figure, error) {
	years, counts, err := columns(t, colOutlookYear, colOutlookCount)
	if err != nil {
		return nil, err
	}

	hover := make(chartspec.Labels, len(counts))
	for i, c := range counts {
		hover[i] = chartspec.FormatKoreanCount(c)
	}

	trace := chartspec.LineTrace("", years, counts)
	trace.Text = hover
	trace.HoverTemplate = "%{text}<extra></extra>"

	fig := chartspec.NewFigure(r.id, r.title).AddTrace(trace)
	fig.Layout.HoverMode = "x unified"
	fig.Layout.Font = chartspec.DefaultFont("black")
	fig.Layout.XAxis = chartspec.YearAxis(3)
	fig.Layout.XAxis.Title = &chartspec.Title{Text: colOutlookYear}
	fig.Layout.YAxis = chartspec.AxisTitle("인구 수")
	fig.Layout.YAxis.TickFormat = ","
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *PopulationOutlook) Build(ctx context.Context) (*Result, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	t, err = r.Transform(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := r.transformed(ctx, t); err != nil {
		return nil, err
	}
	fig, err := r.Figure(t)
	if err != nil {
		return nil, err
	}
	return r.result(fig, t), nil
}
