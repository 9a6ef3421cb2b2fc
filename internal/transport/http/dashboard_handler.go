package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"festivalpulse/internal/dataprocessing"
	apierrors "festivalpulse/internal/errors"
	"festivalpulse/internal/services"
	"festivalpulse/internal/session"
	ws "festivalpulse/internal/websocket"
	apiv1 "festivalpulse/pkg/contracts/api/v1"
	"festivalpulse/pkg/contracts/domain"
)

// DashboardHandler handles dataset and chart HTTP requests with
// RFC 7807 error responses
type DashboardHandler struct {
	service       *services.DashboardService
	hub           *ws.Hub
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
	validate      *validator.Validate
	maxUploadSize int64
	defaultTopN   int
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService, hub *ws.Hub, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadSize int64, defaultTopN int) *DashboardHandler {
	return &DashboardHandler{
		service:       service,
		hub:           hub,
		logger:        logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:  errorHandler,
		validate:      validator.New(),
		maxUploadSize: maxUploadSize,
		defaultTopN:   defaultTopN,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/dataset", h.UploadDataset)
	r.Get("/dataset", h.GetRows)
	r.Get("/filters", h.GetFilters)
	r.Get("/summary", h.GetSummary)
	r.Get("/charts", h.GetCharts)
	r.Get("/charts/{chart}", h.GetChart)
	r.Get("/export/csv", h.ExportCSV)

	return r
}

// UploadDataset handles POST /api/dataset. The workbook arrives as a
// multipart form file named "file"; a session cookie is issued when
// the request does not carry one.
func (h *DashboardHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.logger.WarnContext(ctx, "upload rejected",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook file part named 'file' is required"))
		return
	}
	defer file.Close()

	req := apiv1.DatasetUploadRequest{Filename: header.Filename}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "Invalid upload filename"))
		return
	}

	sessionID := h.ensureSession(w, r)

	ds, err := h.service.LoadDataset(ctx, sessionID, header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	if h.hub != nil {
		h.hub.BroadcastDataUpdate("dataset_loaded", ds.Len())
	}

	resp := apiv1.DatasetUploadResponse{
		Source:           ds.Source,
		Posts:            ds.Len(),
		SyntheticColumns: ds.SyntheticColumns,
		LoadedAt:         ds.LoadedAt,
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, apiv1.NewSuccessResponse(resp))
}

// GetRows handles GET /api/dataset
func (h *DashboardHandler) GetRows(w http.ResponseWriter, r *http.Request) {
	sel := parseFilter(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	rows, err := h.service.Rows(h.sessionID(r), sel, page, perPage)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, &apiv1.SuccessResponse{
		Status: "success",
		Data:   rows.Posts,
		Count:  len(rows.Posts),
		Meta: &apiv1.Meta{
			Empty:   rows.Total == 0,
			Page:    rows.Page,
			PerPage: rows.PerPage,
			Total:   rows.Total,
		},
	})
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Filters(h.sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, apiv1.NewSuccessResponse(opts))
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sel := parseFilter(r)

	summary, err := h.service.Summary(h.sessionID(r), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, &apiv1.SuccessResponse{
		Status: "success",
		Data:   summary,
		Meta:   &apiv1.Meta{Empty: summary.TotalPosts == 0},
	})
}

// GetCharts handles GET /api/charts
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	req, err := h.chartRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	specs, svcErr := h.service.ChartSpecs(r.Context(), h.sessionID(r), selection(req.FilterRequest), req.TopN)
	if svcErr != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(svcErr))
		return
	}

	empty := len(specs) > 0 && specs[0].Empty
	render.JSON(w, r, &apiv1.SuccessResponse{
		Status: "success",
		Data:   specs,
		Count:  len(specs),
		Meta:   &apiv1.Meta{Empty: empty},
	})
}

// GetChart handles GET /api/charts/{chart}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chartID := chi.URLParam(r, "chart")
	if chartID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("chart", "Chart ID is required"))
		return
	}

	req, err := h.chartRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	spec, svcErr := h.service.ChartSpec(r.Context(), h.sessionID(r), chartID, selection(req.FilterRequest), req.TopN)
	if svcErr != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(svcErr))
		return
	}

	render.JSON(w, r, &apiv1.SuccessResponse{
		Status: "success",
		Data:   spec,
		Meta:   &apiv1.Meta{Empty: spec.Empty},
	})
}

// ExportCSV handles GET /api/export/csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sel := parseFilter(r)
	sessionID := h.sessionID(r)

	// Probe for the dataset before writing headers
	if _, err := h.service.Dataset(sessionID); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="festival_posts.csv"`)

	if err := h.service.ExportCSV(w, sessionID, sel); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}

// chartRequest parses and validates common chart query parameters
func (h *DashboardHandler) chartRequest(r *http.Request) (*apiv1.ChartRequest, error) {
	req := apiv1.ChartRequest{
		FilterRequest: filterRequest(r),
		TopN:          h.defaultTopN,
	}

	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierrors.ErrValidation("top_n", "top_n must be an integer")
		}
		req.TopN = n
	}

	if err := h.validate.Struct(req); err != nil {
		return nil, apierrors.ErrValidation("top_n", fmt.Sprintf("top_n must be between 1 and %d", dataprocessing.MaxTopN))
	}

	return &req, nil
}

// sessionID returns the session cookie value, or "" when absent
func (h *DashboardHandler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ensureSession returns the existing session ID or issues a new cookie
func (h *DashboardHandler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := h.sessionID(r); id != "" {
		return id
	}

	id := session.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// filterRequest reads filter query parameters. Both repeated params
// and comma-separated values are accepted.
func filterRequest(r *http.Request) apiv1.FilterRequest {
	q := r.URL.Query()
	return apiv1.FilterRequest{
		Festivals:  splitParams(q["festival"]),
		Sentiments: splitParams(q["sentiment"]),
	}
}

func parseFilter(r *http.Request) domain.FilterSelection {
	return selection(filterRequest(r))
}

func selection(req apiv1.FilterRequest) domain.FilterSelection {
	return domain.FilterSelection{
		Festivals:  req.Festivals,
		Sentiments: req.Sentiments,
	}
}

func splitParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// mapServiceError converts pipeline and service errors to API errors
func mapServiceError(err error) error {
	var loadErr *dataprocessing.LoadError
	if errors.As(err, &loadErr) {
		return apierrors.LoadFailedError(loadErr)
	}

	var schemaErr *dataprocessing.SchemaError
	if errors.As(err, &schemaErr) {
		return apierrors.SchemaInvalidError(schemaErr.Missing)
	}

	if errors.Is(err, services.ErrNoDataset) {
		return apierrors.ErrDatasetNotFound
	}

	if errors.Is(err, services.ErrUnknownChart) {
		return apierrors.ErrChartNotFound
	}

	return err
}
