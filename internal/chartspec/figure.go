package chartspec

import (
	"encoding/json"
	"fmt"
)

// Trace types
const (
	TypeBar     = "bar"
	TypeScatter = "scatter"
	TypePie     = "pie"
)

// Figure is a Plotly figure document plus the identity the dashboard uses
// to place it.
type Figure struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames,omitempty"`
}

// Trace is one Plotly trace. X and Y hold Labels or Numbers.
type Trace struct {
	Type          string   `json:"type"`
	Name          string   `json:"name,omitempty"`
	X             any      `json:"x,omitempty"`
	Y             any      `json:"y,omitempty"`
	Labels        Labels   `json:"labels,omitempty"`
	Values        Numbers  `json:"values,omitempty"`
	Text          Labels   `json:"text,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	Orientation   string   `json:"orientation,omitempty"`
	Marker        *Marker  `json:"marker,omitempty"`
	Line          *Line    `json:"line,omitempty"`
	Hole          float64  `json:"hole,omitempty"`
	Pull          Numbers  `json:"pull,omitempty"`
	Sort          *bool    `json:"sort,omitempty"`
	TextPosition  string   `json:"textposition,omitempty"`
	TextInfo      string   `json:"textinfo,omitempty"`
	HoverTemplate string   `json:"hovertemplate,omitempty"`
	LegendGroup   string   `json:"legendgroup,omitempty"`
	ShowLegend    *bool    `json:"showlegend,omitempty"`
	OffsetGroup   string   `json:"offsetgroup,omitempty"`
	TextTemplate  string   `json:"texttemplate,omitempty"`
	CustomData    []Labels `json:"customdata,omitempty"`
}

// Marker styles trace points, bars or slices. Color is a single colour
// name, Numbers for a continuous scale, or Labels per point.
type Marker struct {
	Color      any       `json:"color,omitempty"`
	Colors     Labels    `json:"colors,omitempty"`
	ColorScale string    `json:"colorscale,omitempty"`
	ShowScale  bool      `json:"showscale,omitempty"`
	ColorBar   *ColorBar `json:"colorbar,omitempty"`
	Size       float64   `json:"size,omitempty"`
}

// ColorBar labels a continuous colour scale.
type ColorBar struct {
	Title *Title `json:"title,omitempty"`
}

// Line styles lines of traces and shapes.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Font is a Plotly font object.
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Layout is the subset of Plotly layout attributes the dashboard uses.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	BarMode     string       `json:"barmode,omitempty"`
	Font        *Font        `json:"font,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
	Sliders     []Slider     `json:"sliders,omitempty"`
}

// Axis is a Plotly cartesian axis.
type Axis struct {
	Title         *Title    `json:"title,omitempty"`
	Type          string    `json:"type,omitempty"`
	DTick         string    `json:"dtick,omitempty"`
	TickFormat    string    `json:"tickformat,omitempty"`
	Range         []float64 `json:"range,omitempty"`
	AutoRange     *bool     `json:"autorange,omitempty"`
	CategoryOrder string    `json:"categoryorder,omitempty"`
}

// Legend positions the legend. X and Y are in paper coordinates.
type Legend struct {
	Title       *Title  `json:"title,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	X           float64 `json:"x"`
	XAnchor     string  `json:"xanchor,omitempty"`
	Y           float64 `json:"y"`
	YAnchor     string  `json:"yanchor,omitempty"`
}

// Shape is a layout shape such as a reference line.
type Shape struct {
	Type string  `json:"type"`
	XRef string  `json:"xref"`
	YRef string  `json:"yref"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	Line *Line   `json:"line,omitempty"`
}

// Annotation is a text label placed on the plot.
type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

// Frame is one animation step.
type Frame struct {
	Name   string  `json:"name"`
	Data   []Trace `json:"data"`
	Layout *Layout `json:"layout,omitempty"`
}

// UpdateMenu is a row of buttons, used for play and pause.
type UpdateMenu struct {
	Type       string   `json:"type"`
	Direction  string   `json:"direction,omitempty"`
	ShowActive bool     `json:"showactive"`
	X          float64  `json:"x"`
	XAnchor    string   `json:"xanchor,omitempty"`
	Y          float64  `json:"y"`
	YAnchor    string   `json:"yanchor,omitempty"`
	Pad        *Pad     `json:"pad,omitempty"`
	Buttons    []Button `json:"buttons"`
}

// Button triggers a Plotly method with Args.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Slider scrubs through animation frames.
type Slider struct {
	Active       int           `json:"active"`
	X            float64       `json:"x"`
	XAnchor      string        `json:"xanchor,omitempty"`
	Y            float64       `json:"y"`
	YAnchor      string        `json:"yanchor,omitempty"`
	Len          float64       `json:"len,omitempty"`
	Pad          *Pad          `json:"pad,omitempty"`
	CurrentValue *CurrentValue `json:"currentvalue,omitempty"`
	Steps        []SliderStep  `json:"steps"`
}

// CurrentValue shows the selected frame above a slider.
type CurrentValue struct {
	Prefix  string `json:"prefix,omitempty"`
	Visible bool   `json:"visible"`
	XAnchor string `json:"xanchor,omitempty"`
}

// SliderStep selects one frame.
type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Pad is padding in pixels.
type Pad struct {
	T int `json:"t,omitempty"`
	R int `json:"r,omitempty"`
	B int `json:"b,omitempty"`
	L int `json:"l,omitempty"`
}

// AnimateArgs configures a Plotly.animate call.
type AnimateArgs struct {
	Frame       FrameArgs      `json:"frame"`
	Mode        string         `json:"mode"`
	FromCurrent bool           `json:"fromcurrent,omitempty"`
	Transition  TransitionArgs `json:"transition"`
}

// FrameArgs sets the per-frame duration in milliseconds.
type FrameArgs struct {
	Duration int  `json:"duration"`
	Redraw   bool `json:"redraw"`
}

// TransitionArgs sets the transition between frames.
type TransitionArgs struct {
	Duration int    `json:"duration"`
	Easing   string `json:"easing,omitempty"`
}

// JSON encodes the figure.
func (f *Figure) JSON() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal figure %s: %w", f.ID, err)
	}
	return data, nil
}

// Clone returns a deep copy of the figure. Interface typed fields (trace
// coordinates, marker colours and button arguments) keep their concrete
// types.
func (f *Figure) Clone() (*Figure, error) {
	data, err := f.JSON()
	if err != nil {
		return nil, err
	}
	var out Figure
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone figure %s: %w", f.ID, err)
	}
	for i := range out.Data {
		restoreTrace(&out.Data[i], &f.Data[i])
	}
	for i := range out.Frames {
		for j := range out.Frames[i].Data {
			restoreTrace(&out.Frames[i].Data[j], &f.Frames[i].Data[j])
		}
	}
	for i := range out.Layout.UpdateMenus {
		for j := range out.Layout.UpdateMenus[i].Buttons {
			out.Layout.UpdateMenus[i].Buttons[j].Args = append([]any(nil), f.Layout.UpdateMenus[i].Buttons[j].Args...)
		}
	}
	for i := range out.Layout.Sliders {
		for j := range out.Layout.Sliders[i].Steps {
			out.Layout.Sliders[i].Steps[j].Args = append([]any(nil), f.Layout.Sliders[i].Steps[j].Args...)
		}
	}
	return &out, nil
}

// restoreTrace re-types the interface fields of dst, which json decoded as
// []any, using the types held by src.
func restoreTrace(dst, src *Trace) {
	dst.X = copySeries(src.X)
	dst.Y = copySeries(src.Y)
	if src.Marker != nil && dst.Marker != nil {
		dst.Marker.Color = copySeries(src.Marker.Color)
	}
}

func copySeries(v any) any {
	switch s := v.(type) {
	case Labels:
		return append(Labels(nil), s...)
	case Numbers:
		return append(Numbers(nil), s...)
	default:
		return v
	}
}
