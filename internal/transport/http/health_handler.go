package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"festivalpulse/internal/services"
)

// HealthHandler handles health and version endpoints
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetHealth)
	r.Get("/version", h.GetVersion)

	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health(r.Context())
	render.JSON(w, r, status)
}

// GetVersion handles GET /api/health/version
func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
