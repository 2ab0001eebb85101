// Package handlers provides HTTP handlers for API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/middleware"
	"github.com/checkfix-tools/surveypulse_backend/internal/models"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
	"github.com/checkfix-tools/surveypulse_backend/internal/services"
)

// maxMappingBodyBytes caps the category mapping request body
const maxMappingBodyBytes = 1 << 20

// AnalyticsHandler handles analytics endpoints
// #INTEGRATION_POINT: Dashboard frontend reads rollups and edits category mappings through these endpoints
type AnalyticsHandler struct {
	analyticsService     services.AnalyticsService
	defaultGranularities []analytics.Granularity
	refreshLimiter       gin.HandlerFunc
	log                  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
// refreshLimiter may be nil to leave the refresh endpoint unthrottled.
func NewAnalyticsHandler(analyticsService services.AnalyticsService, defaultGranularities []analytics.Granularity, refreshLimiter gin.HandlerFunc, log *logger.Logger) *AnalyticsHandler {
	if len(defaultGranularities) == 0 {
		defaultGranularities = []analytics.Granularity{analytics.GranularityDay, analytics.GranularityWeek, analytics.GranularityMonth}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AnalyticsHandler{
		analyticsService:     analyticsService,
		defaultGranularities: defaultGranularities,
		refreshLimiter:       refreshLimiter,
		log:                  log.With("component", "analytics_handler"),
	}
}

// RefreshRequest represents the optional refresh request body
type RefreshRequest struct {
	Granularities []string `json:"granularities,omitempty" example:"day,week"`
}

// QuestionnaireSummary represents a questionnaire in list responses
type QuestionnaireSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaginatedQuestionnairesResponse represents paginated questionnaires
type PaginatedQuestionnairesResponse struct {
	Items      []QuestionnaireSummary `json:"items"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// ListQuestionnaires handles GET /api/v1/analytics/questionnaires
// @Summary List questionnaires
// @Description Lists the questionnaires of the caller's organization
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} PaginatedQuestionnairesResponse
// @Failure 401 {object} ErrorResponse
// @Router /analytics/questionnaires [get]
func (h *AnalyticsHandler) ListQuestionnaires(c *gin.Context) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		respondInvalidSession(c)
		return
	}

	opts := repository.DefaultPaginationOptions()
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = limit
	}

	result, err := h.analyticsService.ListQuestionnaires(c.Request.Context(), orgID, opts)
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to list questionnaires")
		return
	}

	items := make([]QuestionnaireSummary, len(result.Items))
	for i, q := range result.Items {
		items[i] = QuestionnaireSummary{
			ID:        q.ID.Hex(),
			Title:     q.Title,
			Status:    strings.ToLower(string(q.Status)),
			CreatedAt: q.CreatedAt,
			UpdatedAt: q.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, PaginatedQuestionnairesResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// RefreshAnalytics handles POST /api/v1/analytics/questionnaires/:id/refresh
// @Summary Refresh analytics rollups
// @Description Recomputes KPI, trend and breakdown rollups for the refresh window. Bucket failures are reported in the summary.
// @Tags Analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body RefreshRequest false "Granularities to refresh"
// @Success 200 {object} services.RefreshSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /analytics/questionnaires/{id}/refresh [post]
func (h *AnalyticsHandler) RefreshAnalytics(c *gin.Context) {
	orgID, questionnaireID, ok := h.scope(c)
	if !ok {
		return
	}

	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
	}

	granularities := h.defaultGranularities
	if len(req.Granularities) > 0 {
		parsed, err := analytics.ParseGranularities(req.Granularities)
		if err != nil {
			h.handleAnalyticsError(c, err, "")
			return
		}
		granularities = parsed
	}

	summary, err := h.analyticsService.RefreshAnalytics(c.Request.Context(), orgID, questionnaireID, granularities)
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to refresh analytics")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetDashboard handles GET /api/v1/analytics/questionnaires/:id/dashboard
// @Summary Get dashboard data
// @Description Returns the current KPI, the KPI history, trends and the category breakdown of the refresh window
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param granularity query string false "day, week, month or year" default(day)
// @Success 200 {object} services.DashboardData
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/questionnaires/{id}/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	orgID, questionnaireID, ok := h.scope(c)
	if !ok {
		return
	}

	query := services.DashboardQuery{Granularity: analytics.GranularityDay}
	if raw := c.Query("granularity"); raw != "" {
		g, err := analytics.ParseGranularity(raw)
		if err != nil {
			h.handleAnalyticsError(c, err, "")
			return
		}
		query.Granularity = g
	}

	data, err := h.analyticsService.GetDashboardData(c.Request.Context(), orgID, questionnaireID, query)
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetCategoryMapping handles GET /api/v1/analytics/questionnaires/:id/category-mapping
// @Summary Get category mapping
// @Description Returns the sanitized category mapping with every default filled in
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.CategoryMapping
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/questionnaires/{id}/category-mapping [get]
func (h *AnalyticsHandler) GetCategoryMapping(c *gin.Context) {
	orgID, questionnaireID, ok := h.scope(c)
	if !ok {
		return
	}

	mapping, err := h.analyticsService.GetCategoryMapping(c.Request.Context(), orgID, questionnaireID)
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to load category mapping")
		return
	}

	c.JSON(http.StatusOK, mapping)
}

// UpdateCategoryMapping handles PUT /api/v1/analytics/questionnaires/:id/category-mapping
// @Summary Update category mapping
// @Description Stores a category mapping. Out-of-range or malformed fields are clamped or replaced by defaults; the stored result is returned.
// @Tags Analytics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param request body models.CategoryMapping true "Category mapping (camelCase keys accepted)"
// @Success 200 {object} models.CategoryMapping
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /analytics/questionnaires/{id}/category-mapping [put]
func (h *AnalyticsHandler) UpdateCategoryMapping(c *gin.Context) {
	orgID, questionnaireID, ok := h.scope(c)
	if !ok {
		return
	}

	// #IMPLEMENTATION_DECISION: Syntactically broken JSON is a 400; any well-formed document is sanitized
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMappingBodyBytes)
	body, err := c.GetRawData()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: "Category mapping exceeds the maximum body size",
		})
		return
	}
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be a JSON document",
		})
		return
	}

	mapping, err := h.analyticsService.UpdateCategoryMapping(c.Request.Context(), orgID, questionnaireID, json.RawMessage(body))
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to update category mapping")
		return
	}

	c.JSON(http.StatusOK, mapping)
}

// GetCategoryPerformance handles GET /api/v1/analytics/questionnaires/:id/category-performance
// @Summary Get category performance
// @Description Scores every response of the date range with the current category mapping
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Questionnaire ID"
// @Param from query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param to query string false "End date, inclusive (YYYY-MM-DD or RFC3339)"
// @Success 200 {object} services.CategoryPerformanceReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/questionnaires/{id}/category-performance [get]
func (h *AnalyticsHandler) GetCategoryPerformance(c *gin.Context) {
	orgID, questionnaireID, ok := h.scope(c)
	if !ok {
		return
	}

	var query services.PerformanceQuery
	if raw := c.Query("from"); raw != "" {
		from, err := analytics.ParseDate(raw)
		if err != nil {
			h.handleAnalyticsError(c, err, "")
			return
		}
		query.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := analytics.ParseDate(raw)
		if err != nil {
			h.handleAnalyticsError(c, err, "")
			return
		}
		query.To = to
	}

	report, err := h.analyticsService.GetCategoryPerformance(c.Request.Context(), orgID, questionnaireID, query)
	if err != nil {
		h.handleAnalyticsError(c, err, "Failed to compute category performance")
		return
	}

	c.JSON(http.StatusOK, report)
}

// scope extracts the caller's organization and the questionnaire ID path parameter
func (h *AnalyticsHandler) scope(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, ok := middleware.GetOrgID(c)
	if !ok {
		respondInvalidSession(c)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	questionnaireID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid questionnaire ID",
		})
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return orgID, questionnaireID, true
}

// handleAnalyticsError maps service errors to HTTP responses
func (h *AnalyticsHandler) handleAnalyticsError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrQuestionnaireNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Questionnaire not found",
		})
	case errors.Is(err, models.ErrInvalidGranularity):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_granularity",
			Message: err.Error(),
		})
	case errors.Is(err, models.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_date_range",
			Message: err.Error(),
		})
	case models.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		h.log.Error("analytics request failed",
			"request_id", middleware.GetRequestID(c),
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: fallback,
		})
	}
}

// RegisterRoutes registers analytics handler routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	questionnaires := rg.Group("/analytics/questionnaires")
	questionnaires.Use(authMiddleware)
	{
		questionnaires.GET("", h.ListQuestionnaires)
		questionnaires.GET("/:id/dashboard", h.GetDashboard)
		questionnaires.GET("/:id/category-mapping", h.GetCategoryMapping)
		questionnaires.GET("/:id/category-performance", h.GetCategoryPerformance)
		questionnaires.PUT("/:id/category-mapping", middleware.RequireWriter(), h.UpdateCategoryMapping)

		refresh := []gin.HandlerFunc{middleware.RequireWriter()}
		if h.refreshLimiter != nil {
			refresh = append(refresh, h.refreshLimiter)
		}
		refresh = append(refresh, h.RefreshAnalytics)
		questionnaires.POST("/:id/refresh", refresh...)
	}
}
