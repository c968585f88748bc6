package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"popdash/internal/charts"
	"popdash/internal/config"
	apperrors "popdash/internal/errors"
	"popdash/internal/exporter"
	"popdash/internal/middleware"
	"popdash/internal/services"
	api "popdash/pkg/contracts/api/v1"
)

// ChartHandler serves built charts as figure JSON, CSV and PNG
type ChartHandler struct {
	service      ChartService
	renderer     *exporter.PNGRenderer
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	notifier     UpdateNotifier
	charts       config.ChartsConfig
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewChartHandler creates a chart handler. notifier may be nil.
func NewChartHandler(
	service ChartService,
	renderer *exporter.PNGRenderer,
	validator *middleware.ValidationMiddleware,
	notifier UpdateNotifier,
	chartsCfg config.ChartsConfig,
	logger *slog.Logger,
	errorHandler *apperrors.ErrorHandler,
) *ChartHandler {
	return &ChartHandler{
		service:      service,
		renderer:     renderer,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		notifier:     notifier,
		charts:       chartsCfg,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListCharts)
	r.With(h.validator.ValidateRequest).Post("/refresh", h.Refresh)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.ChartCtx)
		r.Get("/", h.GetFigure)
		r.Get("/data.csv", h.GetCSV)
		r.Get("/image.png", h.GetImage)
	})

	return r
}

// ChartCtx rejects malformed chart ids before any service call
func (h *ChartHandler) ChartCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !middleware.IsChartID(id) {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("id", "Invalid chart id"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListCharts handles GET /api/charts
func (h *ChartHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	list := h.service.List()
	render.JSON(w, r, api.ChartListResponse{Charts: list, Count: len(list)})
}

// GetFigure handles GET /api/charts/{id}
func (h *ChartHandler) GetFigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.service.FigureJSON(r.Context(), id)
	if err != nil {
		h.handleBuildError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetCSV handles GET /api/charts/{id}/data.csv
func (h *ChartHandler) GetCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.service.Build(r.Context(), id)
	if err != nil {
		h.handleBuildError(w, r, id, err)
		return
	}

	var buf bytes.Buffer
	if result.Table != nil {
		if err := exporter.EncodeTable(&buf, result.Table.Records()); err != nil {
			h.errorHandler.HandleError(w, r, apperrors.RenderError(exporter.FormatCSV, err))
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.csv"`)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetImage handles GET /api/charts/{id}/image.png
func (h *ChartHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	width, ok := h.query.ParseInt(w, r, "width")
	if !ok {
		return
	}
	height, ok := h.query.ParseInt(w, r, "height")
	if !ok {
		return
	}
	req := api.ImageRequest{Width: width, Height: height}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Width == 0 {
		req.Width = h.charts.ImageWidth
	}
	if req.Height == 0 {
		req.Height = h.charts.ImageHeight
	}

	result, err := h.service.Build(r.Context(), id)
	if err != nil {
		h.handleBuildError(w, r, id, err)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.Render(r.Context(), &buf, result.Figure, req.Width, req.Height); err != nil {
		if errors.Is(err, exporter.ErrUnsupportedFigure) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.ErrorContext(r.Context(), "png render failed",
			slog.String("chart", id),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apperrors.RenderError(exporter.FormatPNG, err))
		return
	}

	h.logger.DebugContext(r.Context(), "png rendered",
		slog.String("chart", id),
		slog.Int("bytes", buf.Len()),
		slog.Duration("duration", time.Since(start)))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Refresh handles POST /api/charts/refresh. Cached builds are dropped and
// rebuilt, then connected dashboards are told to re-fetch each panel.
func (h *ChartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sources := make(map[string]string)
	for _, c := range h.service.List() {
		sources[c.ID] = c.Source
	}
	for _, id := range req.Charts {
		if _, ok := sources[id]; !ok {
			h.errorHandler.HandleError(w, r, apperrors.ChartNotFoundError(id))
			return
		}
	}

	var (
		summaries []api.BuildSummary
		err       error
	)
	if len(req.Charts) == 0 {
		h.service.Invalidate()
		summaries, err = h.service.BuildAll(r.Context())
	} else {
		h.service.Invalidate(req.Charts...)
		summaries, err = h.rebuild(r, req.Charts)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if h.notifier != nil {
		for _, s := range summaries {
			h.notifier.BroadcastDataUpdate(r.Context(), s.ID, sources[s.ID])
		}
	}

	h.logger.InfoContext(r.Context(), "charts refreshed",
		slog.Int("count", len(summaries)),
		slog.String("request_id", middleware.GetRequestID(r.Context())))
	render.JSON(w, r, api.RefreshResponse{Charts: summaries, Count: len(summaries)})
}

func (h *ChartHandler) rebuild(r *http.Request, ids []string) ([]api.BuildSummary, error) {
	summaries := make([]api.BuildSummary, 0, len(ids))
	for _, id := range ids {
		start := time.Now()
		result, err := h.service.Build(r.Context(), id)
		if ctxErr := r.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		summaries = append(summaries, services.Summarize(id, result, err, time.Since(start)))
	}
	return summaries, nil
}

// handleBuildError maps chart build errors onto responses
func (h *ChartHandler) handleBuildError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, services.ErrChartNotFound):
		h.errorHandler.HandleError(w, r, apperrors.ChartNotFoundError(id))
	case errors.Is(err, charts.ErrEmptyTable):
		w.WriteHeader(http.StatusNoContent)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
