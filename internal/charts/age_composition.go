package charts

import (
	"context"
	"log/slog"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
)

// AgeCompositionID identifies the 2070 age composition donut chart.
const AgeCompositionID = "age-composition"

const (
	colAgeGroup = "인구 구분"
	colAgeShare = "2070년 예상 비율"
)

// AgeGroupColors are the fixed colours of the known age groups.
var AgeGroupColors = map[string]string{
	"어린이":   "blue",
	"청년":    "skyblue",
	"노인 인구": "red",
}

// agePieHole is the donut hole fraction.
const agePieHole = 0.5

// AgeComposition draws the projected 2070 age group shares as a donut.
type AgeComposition struct {
	base
	colors *ColorMap
}

// NewAgeComposition creates the routine reading the age group workbook at
// source.
func NewAgeComposition(source string, logger *slog.Logger) *AgeComposition {
	return &AgeComposition{
		base:   newBase(AgeCompositionID, "2070년 대한민국 인구 연령별 구성비 예측", source, logger),
		colors: NewColorMap(AgeGroupColors, nil),
	}
}

// Transform keeps the group and share columns.
func (r *AgeComposition) Transform(t dataprocessing.Table) dataprocessing.Table {
	return t.
		Select(colAgeGroup, colAgeShare).
		CoerceNumeric(colAgeShare)
}

// Figure draws the transformed table.
func (r *AgeComposition) Figure(ctx context.Context, t dataprocessing.Table) (*chartspec.Figure, error) {
	groups, shares, err := columns(t, colAgeGroup, colAgeShare)
	if err != nil {
		return nil, err
	}

	colors, unmapped := r.colors.Assign(groups)
	if len(unmapped) > 0 {
		r.logger.WarnContext(ctx, "age groups without a fixed colour",
			slog.Any("groups", unmapped))
	}

	trace := chartspec.PieTrace(groups, shares, agePieHole)
	trace.Marker = &chartspec.Marker{Colors: colors}
	trace.TextPosition = "inside"
	trace.TextInfo = "percent+label"
	trace.Pull = chartspec.Zeros(len(groups))
	trace.Sort = chartspec.Bool(false)
	trace.HoverTemplate = "인구 구분=%{label}<br>2070년 예상 비율=%{value}<extra></extra>"

	fig := chartspec.NewFigure(r.id, r.title).AddTrace(trace)
	fig.Layout.Font = &chartspec.Font{Family: chartspec.DefaultFontFamily, Size: chartspec.DefaultFontSize}
	fig.Layout.Legend = &chartspec.Legend{
		Orientation: "v",
		X:           1.05,
		XAnchor:     "left",
		Y:           1,
		YAnchor:     "top",
	}
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *AgeComposition) Build(ctx context.Context) (*Result, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	t = r.Transform(t)
	if err := r.transformed(ctx, t); err != nil {
		return nil, err
	}
	fig, err := r.Figure(ctx, t)
	if err != nil {
		return nil, err
	}
	return r.result(fig, t), nil
}
