package api

import "time"

// ChartInfo describes one dashboard chart
type ChartInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// ChartListResponse is the body of GET /api/charts
type ChartListResponse struct {
	Charts []ChartInfo `json:"charts"`
	Count  int         `json:"count"`
}

// SourceInfo describes one source file
type SourceInfo struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Present  bool       `json:"present"`
	Size     int64      `json:"size,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
	Charts   []string   `json:"charts"`
}

// SourceListResponse is the body of GET /api/sources
type SourceListResponse struct {
	Sources []SourceInfo `json:"sources"`
	Missing int          `json:"missing"`
}

// BuildSummary reports the outcome of building one chart
type BuildSummary struct {
	ID       string        `json:"id"`
	Outcome  string        `json:"outcome"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration_ns"`
	Message  string        `json:"message,omitempty"`
}
