// Package chartspec models Plotly figure documents.
//
// A Figure marshals with encoding/json into the object plotly.js takes in
// Plotly.newPlot: data, layout and optional frames. Field order is fixed by
// the struct definitions and no maps are used, so the same inputs always
// encode to the same bytes.
//
// Numeric sequences are Numbers, which encode NaN as null so missing values
// show as gaps. Category sequences are Labels.
//
//	fig := chartspec.NewFigure("senior-ratio", "노인 인구 변화 추이")
//	fig.AddTrace(chartspec.BarTrace("", chartspec.Labels(years), chartspec.NumberSlice(ratios)))
//	data, err := fig.JSON()
package chartspec
