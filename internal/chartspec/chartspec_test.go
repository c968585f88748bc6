package chartspec

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumbersMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Numbers
		want string
	}{
		{name: "plain", in: Numbers{1, 2.5, 1234}, want: `[1,2.5,1234]`},
		{name: "missing", in: Numbers{1, math.NaN(), math.Inf(1)}, want: `[1,null,null]`},
		{name: "large", in: Numbers{51672400}, want: `[51672400]`},
		{name: "empty", in: Numbers{}, want: `[]`},
		{name: "nil", in: nil, want: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestNumbersUnmarshal(t *testing.T) {
	var n Numbers
	require.NoError(t, json.Unmarshal([]byte(`[1,null,3]`), &n))
	require.Len(t, n, 3)
	assert.Equal(t, 1.0, n[0])
	assert.True(t, math.IsNaN(n[1]))
	assert.Equal(t, 2, n.Valid())
}

func TestNumberSliceCopies(t *testing.T) {
	src := []float64{1, 2}
	n := NumberSlice(src)
	src[0] = 9
	assert.Equal(t, Numbers{1, 2}, n)
}

func TestFormatKoreanCount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{51672400, "5,167만 2,400명"},
		{51836239, "5,183만 6,239명"},
		{36222000, "3,622만 2,000명"},
		{10000, "1만명"},
		{9999, "9,999명"},
		{120000000, "1억 2,000만명"},
		{0, "0명"},
		{-25000, "-2만 5,000명"},
		{1234.6, "1,235명"},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKoreanCount(tt.in), "FormatKoreanCount(%v)", tt.in)
	}
}

func TestYearAxis(t *testing.T) {
	axis := YearAxis(3)
	assert.Equal(t, "date", axis.Type)
	assert.Equal(t, "M36", axis.DTick)
	assert.Equal(t, "%Y", axis.TickFormat)

	assert.Equal(t, "M12", YearAxis(0).DTick)
}

func TestAddHLine(t *testing.T) {
	fig := NewFigure("birth-rate", "출산율 변동 추이")
	fig.AddHLine(HLine{Y: 1.3, Color: "red", Dash: "dot", Label: "초저출산 기준 (1.3명)"})

	require.Len(t, fig.Layout.Shapes, 1)
	shape := fig.Layout.Shapes[0]
	assert.Equal(t, "line", shape.Type)
	assert.Equal(t, "paper", shape.XRef)
	assert.Equal(t, 0.0, shape.X0)
	assert.Equal(t, 1.0, shape.X1)
	assert.Equal(t, 1.3, shape.Y0)
	assert.Equal(t, 1.3, shape.Y1)
	assert.Equal(t, "red", shape.Line.Color)
	assert.Equal(t, "dot", shape.Line.Dash)

	require.Len(t, fig.Layout.Annotations, 1)
	note := fig.Layout.Annotations[0]
	assert.Equal(t, "초저출산 기준 (1.3명)", note.Text)
	assert.Equal(t, "right", note.XAnchor)
	assert.Equal(t, "top", note.YAnchor)

	data, err := fig.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"x0":0,"x1":1,"y0":1.3,"y1":1.3`)
}

func TestAnimate(t *testing.T) {
	frames := []Frame{
		{Name: "2020", Data: []Trace{BarTrace("A", Labels{"A"}, Numbers{1})}},
		{Name: "2021", Data: []Trace{BarTrace("A", Labels{"A"}, Numbers{2})}},
	}
	fig := NewFigure("tutoring-cost", "t").AddTrace(frames[0].Data...)
	fig.Animate(frames, AnimationOptions{FrameDuration: 500 * time.Millisecond, SliderPrefix: "년도="})

	assert.Len(t, fig.Frames, 2)
	assert.Equal(t, 500*time.Millisecond, fig.FrameDuration())

	require.Len(t, fig.Layout.Sliders, 1)
	steps := fig.Layout.Sliders[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, "2020", steps[0].Label)
	assert.Equal(t, "2021", steps[1].Label)

	data, err := fig.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frame":{"duration":500,"redraw":true}`)
}

func TestAnimateWithoutFrames(t *testing.T) {
	fig := NewFigure("x", "x").Animate(nil, AnimationOptions{FrameDuration: time.Second})
	assert.Empty(t, fig.Layout.UpdateMenus)
	assert.Zero(t, fig.FrameDuration())
}

func TestFigureJSONShape(t *testing.T) {
	fig := NewFigure("senior-ratio", "노인 인구 변화 추이").
		AddTrace(BarTrace("", Labels{"2000", "2001"}, Numbers{7.2, math.NaN()}))

	data, err := fig.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "senior-ratio", decoded["id"])
	assert.NotContains(t, decoded, "frames")

	traces := decoded["data"].([]any)
	require.Len(t, traces, 1)
	trace := traces[0].(map[string]any)
	assert.Equal(t, "bar", trace["type"])
	assert.Equal(t, []any{"2000", "2001"}, trace["x"])
	assert.Equal(t, []any{7.2, nil}, trace["y"])

	layout := decoded["layout"].(map[string]any)
	assert.Equal(t, map[string]any{"text": "노인 인구 변화 추이"}, layout["title"])
}

func TestFigureJSONDeterministic(t *testing.T) {
	build := func() []byte {
		fig := NewFigure("r", "r").AddTrace(PieTrace(Labels{"a", "b"}, Numbers{1, 2}, 0.5))
		fig.AddHLine(HLine{Y: 1, Label: "l"})
		data, err := fig.JSON()
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, build(), build())
}

func TestClone(t *testing.T) {
	fig := NewFigure("r", "r").AddTrace(LineTrace("", Labels{"2020"}, Numbers{1}))
	fig.Data[0].Marker = &Marker{Color: Numbers{1}}
	fig.Animate([]Frame{{Name: "2020", Data: []Trace{LineTrace("", Labels{"2020"}, Numbers{1})}}},
		AnimationOptions{FrameDuration: 300 * time.Millisecond})

	clone, err := fig.Clone()
	require.NoError(t, err)

	assert.Equal(t, Labels{"2020"}, clone.Data[0].X)
	assert.Equal(t, Numbers{1}, clone.Data[0].Y)
	assert.Equal(t, Numbers{1}, clone.Data[0].Marker.Color)
	assert.Equal(t, 300*time.Millisecond, clone.FrameDuration())

	clone.Data[0].Y.(Numbers)[0] = 5
	assert.Equal(t, Numbers{1}, fig.Data[0].Y)

	a, _ := fig.JSON()
	b, _ := clone.JSON()
	assert.NotEqual(t, a, b)
}
