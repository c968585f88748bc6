package http

import (
	"io/fs"
	"log/slog"
	"net/http"
)

// dashboardIndex is the page served at /.
const dashboardIndex = "index.html"

// DashboardHandler serves the dashboard page from the embedded frontend
type DashboardHandler struct {
	frontend fs.FS
	logger   *slog.Logger
}

// NewDashboardHandler creates a dashboard handler over frontend, which must
// hold index.html at its root.
func NewDashboardHandler(frontend fs.FS, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		frontend: frontend,
		logger:   logger.With(slog.String("component", "dashboard_handler")),
	}
}

// ServeIndex handles GET /
func (h *DashboardHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	if h.frontend == nil {
		http.Error(w, "Dashboard page not available", http.StatusNotFound)
		return
	}
	if _, err := fs.Stat(h.frontend, dashboardIndex); err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard page missing",
			slog.String("error", err.Error()))
		http.Error(w, "Dashboard page not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, h.frontend, dashboardIndex)
}
