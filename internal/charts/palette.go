package charts

// qualitativePalette is the default Plotly discrete colour sequence.
var qualitativePalette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// ColorMap assigns a colour to each category. Fixed entries win; other
// categories take the next palette colour in first appearance order.
type ColorMap struct {
	fixed   map[string]string
	palette []string
}

// NewColorMap creates a colour map with fixed assignments.
func NewColorMap(fixed map[string]string, palette []string) *ColorMap {
	if len(palette) == 0 {
		palette = qualitativePalette
	}
	return &ColorMap{fixed: fixed, palette: palette}
}

// Assign returns one colour per element of categories and the categories
// that had no fixed colour, each listed once.
func (m *ColorMap) Assign(categories []string) (colors []string, unmapped []string) {
	assigned := make(map[string]string, len(categories))
	next := 0
	colors = make([]string, len(categories))

	for i, category := range categories {
		if color, ok := assigned[category]; ok {
			colors[i] = color
			continue
		}
		color, ok := m.fixed[category]
		if !ok {
			color = m.palette[next%len(m.palette)]
			next++
			unmapped = append(unmapped, category)
		}
		assigned[category] = color
		colors[i] = color
	}
	return colors, unmapped
}
