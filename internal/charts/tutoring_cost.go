package charts

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"popdash/internal/chartspec"
	"popdash/internal/dataprocessing"
)

// TutoringCostID identifies the animated private tutoring cost chart.
const TutoringCostID = "tutoring-cost"

// MsgNoYearColumns is shown when the workbook has no usable year column.
const MsgNoYearColumns = "연도 컬럼을 찾을 수 없습니다. 컬럼 이름을 확인해 주세요."

const (
	colTutoringIncome = "월급 분류"
	colTutoringYear   = "년도"
	colTutoringAmount = "금액"
)

// Tutoring chart defaults
const (
	DefaultTutoringYearMin = 2020
	DefaultTutoringYearMax = 2024
	DefaultFrameDuration   = 500 * time.Millisecond
	tutoringRangeMax       = 70
)

// TutoringOptions bounds the year columns and sets the animation speed.
type TutoringOptions struct {
	YearMin       int
	YearMax       int
	FrameDuration time.Duration
}

func (o TutoringOptions) withDefaults() TutoringOptions {
	if o.YearMin == 0 && o.YearMax == 0 {
		o.YearMin, o.YearMax = DefaultTutoringYearMin, DefaultTutoringYearMax
	}
	if o.FrameDuration <= 0 {
		o.FrameDuration = DefaultFrameDuration
	}
	return o
}

// TutoringCost draws monthly tutoring cost per child by household income,
// one animation frame per year.
type TutoringCost struct {
	base
	opts TutoringOptions
}

// NewTutoringCost creates the routine reading the tutoring cost workbook
// at source.
func NewTutoringCost(source string, opts TutoringOptions, logger *slog.Logger) *TutoringCost {
	return &TutoringCost{
		base: newBase(TutoringCostID, "사교육 비용 추이 (자녀 1명당)", source, logger),
		opts: opts.withDefaults(),
	}
}

// YearColumns returns the names that are four ASCII digits within the
// configured year range, in column order, and the four digit names that
// fall outside it.
func (r *TutoringCost) YearColumns(names []string) (years, outside []string) {
	for _, name := range names {
		year, ok := parseYear(name)
		if !ok {
			continue
		}
		if year < r.opts.YearMin || year > r.opts.YearMax {
			outside = append(outside, name)
			continue
		}
		years = append(years, name)
	}
	return years, outside
}

func parseYear(name string) (int, bool) {
	if len(name) != 4 {
		return 0, false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(name)
	return year, err == nil
}

// Transform fills missing cells with zero and melts the year columns into
// income, year and amount rows. It returns ErrEmptyTable when there are no
// rows and a NoticeError when no year column is present.
func (r *TutoringCost) Transform(ctx context.Context, t dataprocessing.Table) (dataprocessing.Table, error) {
	t = t.FillNA("0")
	if t.Err != nil {
		return t, nil
	}
	if t.Nrow() == 0 {
		r.logger.WarnContext(ctx, "tutoring cost table is empty")
		return t, ErrEmptyTable
	}

	years, outside := r.YearColumns(t.Names())
	if len(outside) > 0 {
		r.logger.WarnContext(ctx, "year columns outside the configured range ignored",
			slog.Any("columns", outside),
			slog.Int("year_min", r.opts.YearMin),
			slog.Int("year_max", r.opts.YearMax))
	}
	if len(years) == 0 {
		r.logger.WarnContext(ctx, "no year columns found", slog.Any("columns", t.Names()))
		return t, &NoticeError{Chart: r.id, Message: MsgNoYearColumns}
	}

	return t.
		Melt(colTutoringIncome, years, colTutoringYear, colTutoringAmount).
		CoerceNumeric(colTutoringAmount), nil
}

// Figure draws the melted table: one bar trace per income class and one
// frame per year.
func (r *TutoringCost) Figure(t dataprocessing.Table) (*chartspec.Figure, error) {
	incomes, err := t.Strings(colTutoringIncome)
	if err != nil {
		return nil, err
	}
	years, err := t.Strings(colTutoringYear)
	if err != nil {
		return nil, err
	}
	amounts, err := t.Floats(colTutoringAmount)
	if err != nil {
		return nil, err
	}

	frameNames := uniqueInOrder(years)
	categories := uniqueInOrder(incomes)
	colors, _ := NewColorMap(nil, nil).Assign(categories)

	frames := make([]chartspec.Frame, len(frameNames))
	for i, year := range frameNames {
		traces := make([]chartspec.Trace, len(categories))
		for j, category := range categories {
			var x chartspec.Labels
			var y chartspec.Numbers
			for row := range incomes {
				if years[row] == year && incomes[row] == category {
					x = append(x, category)
					y = append(y, amounts[row])
				}
			}
			trace := chartspec.BarTrace(category, x, y)
			trace.Marker = &chartspec.Marker{Color: colors[j]}
			trace.LegendGroup = category
			trace.OffsetGroup = category
			trace.ShowLegend = chartspec.Bool(true)
			trace.HoverTemplate = "월급 분류=%{x}<br>년도=" + year + "<br>금액=%{y}<extra></extra>"
			traces[j] = trace
		}
		frames[i] = chartspec.Frame{Name: year, Data: traces}
	}

	fig := chartspec.NewFigure(r.id, r.title)
	if len(frames) > 0 {
		fig.AddTrace(frames[0].Data...)
	}
	fig.Animate(frames, chartspec.AnimationOptions{
		FrameDuration:      r.opts.FrameDuration,
		TransitionDuration: r.opts.FrameDuration,
		SliderPrefix:       colTutoringYear + "=",
	})

	fig.Layout.BarMode = "relative"
	fig.Layout.XAxis = chartspec.AxisTitle(colTutoringIncome)
	fig.Layout.YAxis = chartspec.AxisTitle(colTutoringAmount)
	fig.Layout.YAxis.Range = []float64{0, tutoringRangeMax}
	fig.Layout.Legend = &chartspec.Legend{
		Title:   &chartspec.Title{Text: colTutoringIncome},
		X:       1.02,
		XAnchor: "left",
		Y:       1,
		YAnchor: "top",
	}
	return fig, nil
}

// Build loads the source and draws the chart.
func (r *TutoringCost) Build(ctx context.Context) (*Result, error) {
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

func uniqueInOrder(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
