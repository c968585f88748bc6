// Package exporter writes chart results out of the process.
//
// EncodeTable and CSVWriter write transformed tables as UTF-8 CSV with a
// byte order mark. PNGRenderer draws a figure as a static image: bar and
// line figures through gonum/plot, donut figures through go-chart. Files
// combines both for the render command, writing <id>.json, <id>.png and
// <id>.csv into one directory.
//
// The bundled fonts of both plotting libraries have no Hangul glyphs, so
// Korean labels in PNG output are drawn as placeholder boxes.
package exporter
