package exporter

import (
	"image/color"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette/moreland"

	"popdash/internal/chartspec"
)

// namedColors covers the colour names used by the dashboard figures.
var namedColors = map[string]string{
	"black":   "000000",
	"white":   "ffffff",
	"red":     "ff0000",
	"blue":    "0000ff",
	"skyblue": "87ceeb",
	"green":   "008000",
	"gray":    "808080",
	"grey":    "808080",
	"orange":  "ffa500",
}

// fallbackPalette colours traces without an explicit colour.
var fallbackPalette = []string{
	"636efa", "EF553B", "00cc96", "ab63fa", "FFA15A",
	"19d3f3", "FF6692", "B6E880", "FF97FF", "FECB52",
}

// parseColor reads a "#rrggbb", "#rgb" or named colour. ok is false for
// anything else.
func parseColor(s string) (drawing.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		return drawing.ColorFromHex(hex), true
	}
	if !strings.HasPrefix(s, "#") {
		return drawing.Color{}, false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.Color{}, false
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return drawing.Color{}, false
		}
	}
	return drawing.ColorFromHex(hex), true
}

// paletteColor returns the i-th fallback colour.
func paletteColor(i int) drawing.Color {
	return drawing.ColorFromHex(fallbackPalette[i%len(fallbackPalette)])
}

// colorOr parses s or returns fallback.
func colorOr(s string, fallback drawing.Color) drawing.Color {
	if c, ok := parseColor(s); ok {
		return c
	}
	return fallback
}

// markerColors resolves one colour per point of a trace with n points.
// A numeric marker colour is mapped onto a continuous scale.
func markerColors(m *chartspec.Marker, n, traceIndex int) []drawing.Color {
	out := make([]drawing.Color, n)
	fallback := paletteColor(traceIndex)
	for i := range out {
		out[i] = fallback
	}
	if m == nil {
		return out
	}

	switch c := m.Color.(type) {
	case string:
		single := colorOr(c, fallback)
		for i := range out {
			out[i] = single
		}
	case chartspec.Labels:
		for i := 0; i < n && i < len(c); i++ {
			out[i] = colorOr(c[i], fallback)
		}
	case []string:
		for i := 0; i < n && i < len(c); i++ {
			out[i] = colorOr(c[i], fallback)
		}
	case chartspec.Numbers:
		scaleColors(out, c)
	case []float64:
		scaleColors(out, c)
	}

	for i := 0; i < n && i < len(m.Colors); i++ {
		out[i] = colorOr(m.Colors[i], out[i])
	}
	return out
}

// scaleColors maps values onto a black body scale between their minimum
// and maximum.
func scaleColors(out []drawing.Color, values []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		return
	}
	if hi == lo {
		hi = lo + 1
	}

	scale := moreland.ExtendedBlackBody()
	scale.SetMin(lo)
	scale.SetMax(hi)
	for i := 0; i < len(out) && i < len(values); i++ {
		if math.IsNaN(values[i]) {
			out[i] = chart.ColorAlternateGray
			continue
		}
		if c, err := scale.At(values[i]); err == nil {
			out[i] = toDrawing(c)
		}
	}
}

func toDrawing(c color.Color) drawing.Color {
	r, g, b, a := c.RGBA()
	return drawing.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
