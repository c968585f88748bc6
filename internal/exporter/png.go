package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"popdash/internal/chartspec"
	"popdash/internal/config"
)

// PNG export errors
var (
	ErrInvalidSize       = errors.New("image size out of range")
	ErrUnsupportedFigure = errors.New("figure has no drawable traces")
)

// pngDPI is the resolution vgimg renders at.
const pngDPI = 96

// PNGRenderer draws figures as static images. Bar and line figures go
// through gonum/plot and donut figures through go-chart. Only the first
// animation frame of an animated figure is drawn.
type PNGRenderer struct {
	logger *slog.Logger
}

// NewPNGRenderer creates a PNG renderer
func NewPNGRenderer(logger *slog.Logger) *PNGRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PNGRenderer{logger: logger.With(slog.String("component", "png_renderer"))}
}

// ValidateSize checks an image size against the configured bounds
func ValidateSize(width, height int) error {
	if width < config.MinImageSize || width > config.MaxImageSize ||
		height < config.MinImageSize || height > config.MaxImageSize {
		return fmt.Errorf("%w: %dx%d, allowed %d to %d", ErrInvalidSize,
			width, height, config.MinImageSize, config.MaxImageSize)
	}
	return nil
}

// Render writes fig as a width x height pixel PNG to w
func (r *PNGRenderer) Render(ctx context.Context, w io.Writer, fig *chartspec.Figure, width, height int) error {
	if err := ValidateSize(width, height); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	kind := figureKind(fig)
	r.logger.DebugContext(ctx, "rendering png",
		slog.String("chart", fig.ID),
		slog.String("kind", kind),
		slog.Int("width", width),
		slog.Int("height", height))

	switch kind {
	case chartspec.TypePie:
		return renderDonut(w, fig, width, height)
	case chartspec.TypeBar:
		p, err := barPlot(fig)
		if err != nil {
			return err
		}
		return savePlot(w, p, width, height)
	case chartspec.TypeScatter:
		p, err := linePlot(fig)
		if err != nil {
			return err
		}
		return savePlot(w, p, width, height)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFigure, fig.ID)
	}
}

// figureKind returns the type of the first trace.
func figureKind(fig *chartspec.Figure) string {
	if fig == nil || len(fig.Data) == 0 {
		return ""
	}
	return fig.Data[0].Type
}

func savePlot(w io.Writer, p *plot.Plot, width, height int) error {
	wt, err := p.WriterTo(pixels(width), pixels(height), "png")
	if err != nil {
		return fmt.Errorf("create png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / pngDPI
}

func newPlot(fig *chartspec.Figure) *plot.Plot {
	p := plot.New()
	p.Title.Text = fig.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	if ax := fig.Layout.XAxis; ax != nil && ax.Title != nil {
		p.X.Label.Text = ax.Title.Text
	}
	if ax := fig.Layout.YAxis; ax != nil && ax.Title != nil {
		p.Y.Label.Text = ax.Title.Text
	}
	p.Legend.Top = true
	return p
}

// bar is one drawable bar of a figure.
type bar struct {
	trace    int
	category int
	value    float64
	color    drawing.Color
}

func barPlot(fig *chartspec.Figure) (*plot.Plot, error) {
	p := newPlot(fig)

	var (
		categories []string
		index      = map[string]int{}
		bars       []bar
		horizontal bool
	)

	for ti, tr := range fig.Data {
		if tr.Type != chartspec.TypeBar {
			continue
		}
		cats, vals := tr.X, tr.Y
		if tr.Orientation == "h" {
			horizontal = true
			cats, vals = tr.Y, tr.X
		}
		labels := labelsOf(cats)
		values := numbersOf(vals)
		n := min(len(labels), len(values))
		colors := markerColors(tr.Marker, n, ti)

		for i := 0; i < n; i++ {
			if math.IsNaN(values[i]) {
				continue
			}
			idx, ok := index[labels[i]]
			if !ok {
				idx = len(categories)
				index[labels[i]] = idx
				categories = append(categories, labels[i])
			}
			bars = append(bars, bar{trace: ti, category: idx, value: values[i], color: colors[i]})
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFigure, fig.ID)
	}

	// bars sharing a category sit side by side
	slots := make([]int, len(categories))
	for _, b := range bars {
		slots[b.category]++
	}
	taken := make([]int, len(categories))
	width := vg.Points(14)
	legended := map[int]bool{}

	for _, b := range bars {
		chartBar, err := plotter.NewBarChart(plotter.Values{b.value}, width)
		if err != nil {
			return nil, fmt.Errorf("bar chart: %w", err)
		}
		chartBar.XMin = float64(b.category)
		chartBar.Offset = width * vg.Length(2*taken[b.category]-slots[b.category]+1) / 2
		chartBar.Horizontal = horizontal
		chartBar.LineStyle.Width = vg.Length(0)
		chartBar.Color = b.color
		taken[b.category]++
		p.Add(chartBar)

		if name := fig.Data[b.trace].Name; name != "" && !legended[b.trace] {
			p.Legend.Add(name, chartBar)
			legended[b.trace] = true
		}
	}

	if horizontal {
		p.NominalY(categories...)
	} else {
		p.NominalX(categories...)
		if len(categories) > 8 {
			p.X.Tick.Label.Rotation = math.Pi / 3
			p.X.Tick.Label.YAlign = draw.YCenter
			p.X.Tick.Label.XAlign = draw.XRight
		}
		if ax := fig.Layout.YAxis; ax != nil && len(ax.Range) == 2 {
			p.Y.Min, p.Y.Max = ax.Range[0], ax.Range[1]
		}
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

func linePlot(fig *chartspec.Figure) (*plot.Plot, error) {
	p := newPlot(fig)

	var labels []string
	numeric := true
	for _, tr := range fig.Data {
		for _, x := range labelsOf(tr.X) {
			if _, err := strconv.ParseFloat(x, 64); err != nil {
				numeric = false
			}
		}
		if len(labels) == 0 {
			labels = labelsOf(tr.X)
		}
	}

	drawn := 0
	for ti, tr := range fig.Data {
		if tr.Type != chartspec.TypeScatter {
			continue
		}
		xs := labelsOf(tr.X)
		ys := numbersOf(tr.Y)
		n := min(len(xs), len(ys))

		points := make(plotter.XYs, 0, n)
		for i := 0; i < n; i++ {
			if math.IsNaN(ys[i]) {
				continue
			}
			x := float64(i)
			if numeric {
				x, _ = strconv.ParseFloat(xs[i], 64)
			}
			points = append(points, plotter.XY{X: x, Y: ys[i]})
		}
		if len(points) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(points)
		if err != nil {
			return nil, fmt.Errorf("line chart: %w", err)
		}
		c := paletteColor(ti)
		if tr.Line != nil {
			c = colorOr(tr.Line.Color, c)
		}
		line.Color = c
		line.Width = vg.Points(2)
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(2)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, scatter)
		if tr.Name != "" {
			p.Legend.Add(tr.Name, line)
		}
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFigure, fig.ID)
	}

	for _, shape := range fig.Layout.Shapes {
		if shape.Type != "line" || shape.YRef != "y" || shape.Y0 != shape.Y1 {
			continue
		}
		y := shape.Y0
		ref := plotter.NewFunction(func(float64) float64 { return y })
		ref.Color = shapeColor(shape.Line)
		ref.Width = vg.Points(1.5)
		if shape.Line != nil && shape.Line.Dash != "" {
			ref.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(ref)
		for _, a := range fig.Layout.Annotations {
			if a.YRef == "y" && a.Y == y && a.Text != "" {
				p.Legend.Add(a.Text, ref)
			}
		}
	}

	if !numeric {
		p.NominalX(labels...)
	} else if ax := fig.Layout.XAxis; ax != nil && ax.Type == "date" {
		p.X.Tick.Marker = yearTicks{}
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// shapeColor returns the colour of a shape line, black when unset.
func shapeColor(l *chartspec.Line) drawing.Color {
	if l == nil {
		return chart.ColorBlack
	}
	return colorOr(l.Color, chart.ColorBlack)
}

// yearTicks labels whole years without decimals.
type yearTicks struct{}

func (yearTicks) Ticks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	span := hi - lo
	step := 1.0
	switch {
	case span > 60:
		step = 10
	case span > 20:
		step = 5
	case span > 8:
		step = 3
	}
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}

func renderDonut(w io.Writer, fig *chartspec.Figure, width, height int) error {
	tr := fig.Data[0]
	n := min(len(tr.Labels), len(tr.Values))
	colors := markerColors(tr.Marker, n, 0)

	values := make([]chart.Value, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(tr.Values[i]) || tr.Values[i] <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: tr.Labels[i],
			Value: tr.Values[i],
			Style: chart.Style{FillColor: colors[i], StrokeColor: chart.ColorWhite},
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFigure, fig.ID)
	}

	donut := chart.DonutChart{
		Title:  fig.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	if err := donut.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render donut: %w", err)
	}
	return nil
}

// labelsOf reads trace coordinates holding text.
func labelsOf(v any) []string {
	switch x := v.(type) {
	case chartspec.Labels:
		return x
	case []string:
		return x
	case chartspec.Numbers:
		out := make([]string, len(x))
		for i, f := range x {
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return out
	}
	return nil
}

// numbersOf reads trace coordinates holding numbers.
func numbersOf(v any) []float64 {
	switch x := v.(type) {
	case chartspec.Numbers:
		return x
	case []float64:
		return x
	}
	return nil
}
