// Package api contains the v1 HTTP API contracts of the dashboard.
package api

// ImageRequest is the query of GET /api/charts/{id}/image.png. Zero values
// take the configured default size.
type ImageRequest struct {
	Width  int `json:"width" validate:"omitempty,min=200,max=4000"`
	Height int `json:"height" validate:"omitempty,min=200,max=4000"`
}

// RefreshRequest is the body of POST /api/charts/refresh. An empty list
// rebuilds every chart.
type RefreshRequest struct {
	Charts []string `json:"charts,omitempty" validate:"omitempty,max=16,dive,required,chartid"`
}

// RefreshResponse reports the rebuilt charts
type RefreshResponse struct {
	Charts []BuildSummary `json:"charts"`
	Count  int            `json:"count"`
}
