package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "popdash/internal/errors"
	"popdash/internal/services"
)

// SourceHandler reports the dashboard source files
type SourceHandler struct {
	service      SourceService
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewSourceHandler creates a source handler
func NewSourceHandler(service SourceService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *SourceHandler {
	return &SourceHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "source_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the source routes
func (h *SourceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSources)
	r.Get("/{name}", h.GetSource)
	return r
}

// ListSources handles GET /api/sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list sources",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetSource handles GET /api/sources/{name}
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	info, err := h.service.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrSourceNotFound) {
			h.errorHandler.HandleError(w, r, apperrors.NewWithDetails(
				http.StatusNotFound,
				"NOT_FOUND",
				"Source file not found",
				name,
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}
