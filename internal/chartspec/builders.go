package chartspec

import (
	"strconv"
	"time"
)

// Default styling shared by the dashboard figures.
const (
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 12
)

// NewFigure returns an empty figure whose layout title is title.
func NewFigure(id, title string) *Figure {
	return &Figure{
		ID:     id,
		Title:  title,
		Data:   []Trace{},
		Layout: Layout{Title: &Title{Text: title}},
	}
}

// AddTrace appends traces to the figure.
func (f *Figure) AddTrace(traces ...Trace) *Figure {
	f.Data = append(f.Data, traces...)
	return f
}

// BarTrace returns a vertical bar trace.
func BarTrace(name string, x, y any) Trace {
	return Trace{Type: TypeBar, Name: name, X: x, Y: y}
}

// HorizontalBarTrace returns a bar trace with categories on the y axis.
func HorizontalBarTrace(name string, values Numbers, categories Labels) Trace {
	return Trace{Type: TypeBar, Name: name, X: values, Y: categories, Orientation: "h"}
}

// LineTrace returns a scatter trace drawn as lines with markers.
func LineTrace(name string, x, y any) Trace {
	return Trace{Type: TypeScatter, Name: name, X: x, Y: y, Mode: "lines+markers"}
}

// PieTrace returns a pie trace. A hole above zero makes it a donut.
func PieTrace(labels Labels, values Numbers, hole float64) Trace {
	return Trace{Type: TypePie, Labels: labels, Values: values, Hole: hole}
}

// Bool returns a pointer to b for optional layout flags.
func Bool(b bool) *bool {
	return &b
}

// AxisTitle returns an axis with only its title set.
func AxisTitle(text string) *Axis {
	return &Axis{Title: &Title{Text: text}}
}

// YearAxis returns a date axis ticking every dtickYears years and
// labelling ticks with the year only. Year labels such as "1970" are
// parsed by Plotly as dates on this axis.
func YearAxis(dtickYears int) *Axis {
	if dtickYears < 1 {
		dtickYears = 1
	}
	return &Axis{
		Type:       "date",
		DTick:      "M" + strconv.Itoa(12*dtickYears),
		TickFormat: "%Y",
	}
}

// DefaultFont returns the dashboard font in the given colour.
func DefaultFont(color string) *Font {
	return &Font{Family: DefaultFontFamily, Size: DefaultFontSize, Color: color}
}

// HLine describes a horizontal reference line across the plot width.
type HLine struct {
	Y     float64
	Color string
	Dash  string
	Label string
}

// AddHLine draws a line at y spanning the plot width and, when a label is
// set, annotates it at the bottom right of the line.
func (f *Figure) AddHLine(h HLine) *Figure {
	f.Layout.Shapes = append(f.Layout.Shapes, Shape{
		Type: "line",
		XRef: "paper",
		YRef: "y",
		X0:   0,
		X1:   1,
		Y0:   h.Y,
		Y1:   h.Y,
		Line: &Line{Color: h.Color, Dash: h.Dash, Width: 2},
	})
	if h.Label != "" {
		f.Layout.Annotations = append(f.Layout.Annotations, Annotation{
			Text:      h.Label,
			XRef:      "paper",
			YRef:      "y",
			X:         1,
			Y:         h.Y,
			XAnchor:   "right",
			YAnchor:   "top",
			ShowArrow: false,
		})
	}
	return f
}

// AnimationOptions configures the play controls of an animated figure.
type AnimationOptions struct {
	FrameDuration      time.Duration
	TransitionDuration time.Duration
	SliderPrefix       string
}

// Animate attaches frames to the figure with play and pause buttons and a
// slider with one step per frame. The figure's data should hold the traces
// of the first frame.
func (f *Figure) Animate(frames []Frame, opts AnimationOptions) *Figure {
	f.Frames = frames
	if len(frames) == 0 {
		return f
	}

	frameMs := int(opts.FrameDuration / time.Millisecond)
	transitionMs := int(opts.TransitionDuration / time.Millisecond)

	play := AnimateArgs{
		Frame:       FrameArgs{Duration: frameMs, Redraw: true},
		Mode:        "immediate",
		FromCurrent: true,
		Transition:  TransitionArgs{Duration: transitionMs, Easing: "linear"},
	}
	pause := AnimateArgs{
		Frame:      FrameArgs{Duration: 0, Redraw: false},
		Mode:       "immediate",
		Transition: TransitionArgs{Duration: 0},
	}

	f.Layout.UpdateMenus = []UpdateMenu{{
		Type:       "buttons",
		Direction:  "left",
		ShowActive: false,
		X:          0.1,
		XAnchor:    "right",
		Y:          0,
		YAnchor:    "top",
		Pad:        &Pad{T: 87, R: 10},
		Buttons: []Button{
			{Label: "▶", Method: "animate", Args: []any{nil, play}},
			{Label: "◼", Method: "animate", Args: []any{[]any{nil}, pause}},
		},
	}}

	steps := make([]SliderStep, len(frames))
	for i, fr := range frames {
		steps[i] = SliderStep{
			Label:  fr.Name,
			Method: "animate",
			Args: []any{[]string{fr.Name}, AnimateArgs{
				Frame:      FrameArgs{Duration: 0, Redraw: true},
				Mode:       "immediate",
				Transition: TransitionArgs{Duration: 0, Easing: "linear"},
			}},
		}
	}
	f.Layout.Sliders = []Slider{{
		Active:       0,
		X:            0.1,
		XAnchor:      "left",
		Y:            0,
		YAnchor:      "top",
		Len:          0.9,
		Pad:          &Pad{T: 60, B: 10},
		CurrentValue: &CurrentValue{Prefix: opts.SliderPrefix, Visible: true, XAnchor: "right"},
		Steps:        steps,
	}}
	return f
}

// FrameDuration returns the play button's frame duration, or zero when the
// figure is not animated.
func (f *Figure) FrameDuration() time.Duration {
	for _, menu := range f.Layout.UpdateMenus {
		for _, b := range menu.Buttons {
			if len(b.Args) < 2 {
				continue
			}
			if args, ok := b.Args[1].(AnimateArgs); ok && args.FromCurrent {
				return time.Duration(args.Frame.Duration) * time.Millisecond
			}
		}
	}
	return 0
}
