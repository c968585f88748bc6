package charts

import (
	"context"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
)

// BirthReasonsID identifies the reasons for giving up childbirth chart.
const BirthReasonsID = "birth-reasons"

const (
	colReasonPercent = "백분율"
	colReasonKind    = "종류별"
	colReasonRegion  = "구분별(1)"
)

// BirthReasons draws the survey reasons for giving up childbirth in Seoul
// as horizontal bars coloured by share.
type BirthReasons struct {
	base
}

// NewBirthReasons creates the routine reading the survey CSV at source.
func NewBirthReasons(source string, logger *slog.Logger) *BirthReasons {
	return &BirthReasons{base: newBase(BirthReasonsID, "출산 포기 요인", source, logger)}
}

// Transform keeps the Seoul rows without subtotal and other categories,
// leaving the kind and percentage columns sorted by percentage.
func (r *BirthReasons) Transform(t dataprocessing.Table) dataprocessing.Table {
	return t.
		Rename(map[string]string{"2011": colReasonPercent, "종류별(2)": colReasonKind}).
		FilterEq(colReasonRegion, "서울시").
		Exclude(colReasonKind, "소계", "기타").
		Drop("종류별(1)", colReasonRegion, "구분별(2)").
		CoerceNumeric(colReasonPercent).
		Replace(colReasonKind, "자녀 양육의 경제적 부담", "경제적부담").
		SortBy(colReasonPercent, true)
}

// Figure draws the transformed table.
func (r *BirthReasons) Figure(t dataprocessing.Table) (*chartspec.Figure, error) {
	kinds, percents, err := columns(t, colReasonKind, colReasonPercent)
	if err != nil {
		return nil, err
	}

	trace := chartspec.HorizontalBarTrace("", percents, kinds)
	trace.Marker = &chartspec.Marker{
		Color:      percents,
		ColorScale: "Plasma",
		ShowScale:  true,
		ColorBar:   &chartspec.ColorBar{Title: &chartspec.Title{Text: "백분율 (%)"}},
	}
	trace.HoverTemplate = "문제 종류=%{y}<br>백분율 (%)=%{x}<extra></extra>"

	fig := chartspec.NewFigure(r.id, r.title).AddTrace(trace)
	fig.Layout.XAxis = chartspec.AxisTitle("백분율 (%)")
	fig.Layout.YAxis = chartspec.AxisTitle("문제 종류")
	fig.Layout.YAxis.CategoryOrder = "total ascending"
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *BirthReasons) Build(ctx context.Context) (*Result, error) {
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
