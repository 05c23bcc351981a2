package transport

import (
	"net/http"
	"strconv"
	"time"

	"smartmart/internal/domain"
	"smartmart/internal/middleware"
	"smartmart/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for the dashboard analytics
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers the dashboard route
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Get)
}

// Get builds the aggregated dashboard payload. All query filters are
// optional and apply uniformly to every aggregation; an unparseable filter
// is a bad request, never silently ignored.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSaleFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.dashboardService.BuildDashboard(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, data)
}

func parseSaleFilter(r *http.Request) (domain.SaleFilter, error) {
	filter := domain.SaleFilter{}
	query := r.URL.Query()

	if raw := query.Get("start_date"); raw != "" {
		date, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return filter, &filterError{"invalid start_date, expected YYYY-MM-DD"}
		}
		normalized := date.Format(domain.DateLayout)
		filter.StartDate = &normalized
	}

	if raw := query.Get("end_date"); raw != "" {
		date, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return filter, &filterError{"invalid end_date, expected YYYY-MM-DD"}
		}
		normalized := date.Format(domain.DateLayout)
		filter.EndDate = &normalized
	}

	if raw := query.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, &filterError{"invalid category_id"}
		}
		filter.CategoryID = &id
	}

	if brand := query.Get("brand"); brand != "" {
		filter.Brand = &brand
	}

	return filter, nil
}

type filterError struct {
	message string
}

func (e *filterError) Error() string {
	return e.message
}
