package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/middleware"
	"github.com/checkfix-tools/surveypulse_backend/internal/models"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
	"github.com/checkfix-tools/surveypulse_backend/internal/services"
)

// mockAnalyticsService records calls and returns canned results
type mockAnalyticsService struct {
	err error

	gotOrg           primitive.ObjectID
	gotID            primitive.ObjectID
	gotGranularities []analytics.Granularity
	gotDashboard     services.DashboardQuery
	gotPerformance   services.PerformanceQuery
	gotMapping       interface{}
}

func (m *mockAnalyticsService) ListQuestionnaires(_ context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error) {
	m.gotOrg = orgID
	if m.err != nil {
		return nil, m.err
	}
	return &repository.PaginatedResult[models.Questionnaire]{
		Items:      []models.Questionnaire{{ID: primitive.NewObjectID(), OwnerID: orgID, Title: "Guest feedback", Status: models.QuestionnaireStatusActive}},
		TotalCount: 1,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *mockAnalyticsService) RefreshAnalytics(_ context.Context, orgID, id primitive.ObjectID, granularities []analytics.Granularity) (*services.RefreshSummary, error) {
	m.gotOrg, m.gotID, m.gotGranularities = orgID, id, granularities
	if m.err != nil {
		return nil, m.err
	}
	return &services.RefreshSummary{RunID: "run-1", QuestionnaireID: id, KPIs: services.UpsertCounts{Created: 3}}, nil
}

func (m *mockAnalyticsService) GetDashboardData(_ context.Context, orgID, id primitive.ObjectID, query services.DashboardQuery) (*services.DashboardData, error) {
	m.gotOrg, m.gotID, m.gotDashboard = orgID, id, query
	if m.err != nil {
		return nil, m.err
	}
	return &services.DashboardData{QuestionnaireID: id, Granularity: query.Granularity.String(), KPIHistory: []models.KPIRollup{}}, nil
}

func (m *mockAnalyticsService) GetCategoryMapping(_ context.Context, orgID, id primitive.ObjectID) (*models.CategoryMapping, error) {
	m.gotOrg, m.gotID = orgID, id
	if m.err != nil {
		return nil, m.err
	}
	mapping := models.NewCategoryMapping()
	return &mapping, nil
}

func (m *mockAnalyticsService) UpdateCategoryMapping(_ context.Context, orgID, id primitive.ObjectID, raw interface{}) (*models.CategoryMapping, error) {
	m.gotOrg, m.gotID, m.gotMapping = orgID, id, raw
	if m.err != nil {
		return nil, m.err
	}
	mapping := analytics.ValidateCategoryMapping(raw)
	return &mapping, nil
}

func (m *mockAnalyticsService) GetCategoryPerformance(_ context.Context, orgID, id primitive.ObjectID, query services.PerformanceQuery) (*services.CategoryPerformanceReport, error) {
	m.gotOrg, m.gotID, m.gotPerformance = orgID, id, query
	if m.err != nil {
		return nil, m.err
	}
	return &services.CategoryPerformanceReport{QuestionnaireID: id, Insights: []analytics.Insight{}}, nil
}

// fakeAuth stands in for the JWT middleware
func fakeAuth(orgID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if orgID != "" {
			c.Set(middleware.ContextKeyOrgID, orgID)
		}
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

func newAnalyticsRouter(svc services.AnalyticsService, orgID, role string) *gin.Engine {
	router := gin.New()
	h := NewAnalyticsHandler(svc, []analytics.Granularity{analytics.GranularityDay}, nil, nil)
	h.RegisterRoutes(router.Group("/api/v1"), fakeAuth(orgID, role))
	return router
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// endlessJSON is a request body that never ends and counts what was read from it
type endlessJSON struct {
	read int
}

func (r *endlessJSON) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	if r.read == 0 && len(p) > 0 {
		p[0] = '['
	}
	r.read += len(p)
	return len(p), nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal error response: %v", err)
	}
	return resp
}

func TestAnalyticsHandler_GetDashboard(t *testing.T) {
	orgID := primitive.NewObjectID()
	qid := primitive.NewObjectID()

	tests := []struct {
		name         string
		path         string
		svcErr       error
		expectedCode int
		expectedErr  string
	}{
		{"default granularity", "/dashboard", nil, http.StatusOK, ""},
		{"week granularity", "/dashboard?granularity=WEEK", nil, http.StatusOK, ""},
		{"invalid granularity", "/dashboard?granularity=hour", nil, http.StatusBadRequest, "invalid_granularity"},
		{"foreign questionnaire", "/dashboard", models.ErrQuestionnaireNotFound, http.StatusNotFound, "not_found"},
		{"store failure", "/dashboard", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalyticsService{err: tt.svcErr}
			router := newAnalyticsRouter(svc, orgID.Hex(), middleware.RoleViewer)

			w := doRequest(router, "GET", fmt.Sprintf("/api/v1/analytics/questionnaires/%s%s", qid.Hex(), tt.path), nil)
			if w.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, w.Code, w.Body.String())
			}
			if tt.expectedErr != "" {
				if got := decodeError(t, w).Error; got != tt.expectedErr {
					t.Errorf("Expected error %q, got %q", tt.expectedErr, got)
				}
				return
			}
			if svc.gotOrg != orgID || svc.gotID != qid {
				t.Errorf("Service called with wrong scope")
			}
		})
	}
}

func TestAnalyticsHandler_GetDashboard_ParsesGranularity(t *testing.T) {
	svc := &mockAnalyticsService{}
	router := newAnalyticsRouter(svc, primitive.NewObjectID().Hex(), middleware.RoleViewer)

	w := doRequest(router, "GET", "/api/v1/analytics/questionnaires/"+primitive.NewObjectID().Hex()+"/dashboard?granularity=Month", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.gotDashboard.Granularity != analytics.GranularityMonth {
		t.Errorf("Expected month granularity, got %q", svc.gotDashboard.Granularity)
	}

	var data services.DashboardData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if data.Granularity != "month" {
		t.Errorf("Expected granularity 'month', got %q", data.Granularity)
	}
}

func TestAnalyticsHandler_ScopeErrors(t *testing.T) {
	tests := []struct {
		name         string
		orgID        string
		path         string
		expectedCode int
	}{
		{"missing organization", "", "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/dashboard", http.StatusUnauthorized},
		{"malformed organization", "not-hex", "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/dashboard", http.StatusUnauthorized},
		{"malformed questionnaire id", primitive.NewObjectID().Hex(), "/api/v1/analytics/questionnaires/xyz/dashboard", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAnalyticsRouter(&mockAnalyticsService{}, tt.orgID, middleware.RoleViewer)
			w := doRequest(router, "GET", tt.path, nil)
			if w.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, w.Code)
			}
		})
	}
}

func TestAnalyticsHandler_Refresh(t *testing.T) {
	orgID := primitive.NewObjectID().Hex()
	path := "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/refresh"

	tests := []struct {
		name         string
		role         string
		body         []byte
		expectedCode int
		expected     []analytics.Granularity
	}{
		{"viewer forbidden", middleware.RoleViewer, nil, http.StatusForbidden, nil},
		{"defaults without body", middleware.RoleAnalyst, nil, http.StatusOK, []analytics.Granularity{analytics.GranularityDay}},
		{"explicit granularities", middleware.RoleAdmin, []byte(`{"granularities":["week","Month","week"]}`), http.StatusOK,
			[]analytics.Granularity{analytics.GranularityWeek, analytics.GranularityMonth}},
		{"invalid granularity", middleware.RoleAdmin, []byte(`{"granularities":["hour"]}`), http.StatusBadRequest, nil},
		{"malformed body", middleware.RoleAdmin, []byte(`{"granularities":`), http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalyticsService{}
			router := newAnalyticsRouter(svc, orgID, tt.role)

			w := doRequest(router, "POST", path, tt.body)
			if w.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, w.Code, w.Body.String())
			}
			if tt.expected == nil {
				return
			}
			if fmt.Sprint(svc.gotGranularities) != fmt.Sprint(tt.expected) {
				t.Errorf("Expected granularities %v, got %v", tt.expected, svc.gotGranularities)
			}

			var summary services.RefreshSummary
			if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if summary.KPIs.Created != 3 {
				t.Errorf("Expected 3 created KPIs, got %d", summary.KPIs.Created)
			}
		})
	}
}

func TestAnalyticsHandler_RefreshRateLimited(t *testing.T) {
	router := gin.New()
	limiter := middleware.NewRateLimiter(1, time.Minute)
	h := NewAnalyticsHandler(&mockAnalyticsService{}, nil, limiter.RateLimit(), nil)
	h.RegisterRoutes(router.Group("/api/v1"), fakeAuth(primitive.NewObjectID().Hex(), middleware.RoleAdmin))

	path := "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/refresh"
	if w := doRequest(router, "POST", path, nil); w.Code != http.StatusOK {
		t.Fatalf("First refresh: expected %d, got %d", http.StatusOK, w.Code)
	}
	if w := doRequest(router, "POST", path, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("Second refresh: expected %d, got %d", http.StatusTooManyRequests, w.Code)
	}
}

func TestAnalyticsHandler_UpdateCategoryMapping(t *testing.T) {
	orgID := primitive.NewObjectID().Hex()
	path := "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/category-mapping"

	t.Run("sanitized result returned", func(t *testing.T) {
		svc := &mockAnalyticsService{}
		router := newAnalyticsRouter(svc, orgID, middleware.RoleAnalyst)

		body := []byte(`{"categories":{"Service":{"weight":12,"targetScore":4.5}},"settings":{"aggregationMethod":"median"}}`)
		w := doRequest(router, "PUT", path, body)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		if _, ok := svc.gotMapping.(json.RawMessage); !ok {
			t.Errorf("Expected raw JSON to reach the service, got %T", svc.gotMapping)
		}

		var mapping models.CategoryMapping
		if err := json.Unmarshal(w.Body.Bytes(), &mapping); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if mapping.Categories["Service"].Weight != models.MaxMappingWeight {
			t.Errorf("Expected clamped weight %v, got %v", models.MaxMappingWeight, mapping.Categories["Service"].Weight)
		}
		if mapping.Settings.AggregationMethod != models.AggregationMedian {
			t.Errorf("Expected median aggregation, got %q", mapping.Settings.AggregationMethod)
		}
	})

	t.Run("broken JSON rejected", func(t *testing.T) {
		svc := &mockAnalyticsService{}
		router := newAnalyticsRouter(svc, orgID, middleware.RoleAnalyst)

		w := doRequest(router, "PUT", path, []byte(`{"categories":`))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		if svc.gotMapping != nil {
			t.Error("Service must not be called for broken JSON")
		}
	})

	t.Run("oversized body stops reading at the limit", func(t *testing.T) {
		svc := &mockAnalyticsService{}
		router := newAnalyticsRouter(svc, orgID, middleware.RoleAnalyst)

		body := &endlessJSON{}
		req := httptest.NewRequest("PUT", path, body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected status %d, got %d", http.StatusRequestEntityTooLarge, w.Code)
		}
		if body.read > maxMappingBodyBytes+64<<10 {
			t.Errorf("Expected reading to stop near %d bytes, read %d", maxMappingBodyBytes, body.read)
		}
		if svc.gotMapping != nil {
			t.Error("Service must not be called for an oversized body")
		}
	})

	t.Run("viewer forbidden", func(t *testing.T) {
		router := newAnalyticsRouter(&mockAnalyticsService{}, orgID, middleware.RoleViewer)
		w := doRequest(router, "PUT", path, []byte(`{}`))
		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})
}

func TestAnalyticsHandler_GetCategoryMapping(t *testing.T) {
	router := newAnalyticsRouter(&mockAnalyticsService{}, primitive.NewObjectID().Hex(), middleware.RoleViewer)

	w := doRequest(router, "GET", "/api/v1/analytics/questionnaires/"+primitive.NewObjectID().Hex()+"/category-mapping", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var mapping models.CategoryMapping
	if err := json.Unmarshal(w.Body.Bytes(), &mapping); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if mapping.Settings.DefaultCategory != models.DefaultCategoryName {
		t.Errorf("Expected default category %q, got %q", models.DefaultCategoryName, mapping.Settings.DefaultCategory)
	}
}

func TestAnalyticsHandler_GetCategoryPerformance(t *testing.T) {
	orgID := primitive.NewObjectID().Hex()
	base := "/api/v1/analytics/questionnaires/" + primitive.NewObjectID().Hex() + "/category-performance"

	tests := []struct {
		name         string
		query        string
		svcErr       error
		expectedCode int
	}{
		{"no range", "", nil, http.StatusOK},
		{"date range", "?from=2024-03-01&to=2024-03-31", nil, http.StatusOK},
		{"malformed date", "?from=March", nil, http.StatusBadRequest},
		{"inverted range", "?from=2024-03-31&to=2024-03-01", models.ErrInvalidDateRange, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalyticsService{err: tt.svcErr}
			router := newAnalyticsRouter(svc, orgID, middleware.RoleViewer)

			w := doRequest(router, "GET", base+tt.query, nil)
			if w.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, w.Code, w.Body.String())
			}
		})
	}

	svc := &mockAnalyticsService{}
	router := newAnalyticsRouter(svc, orgID, middleware.RoleViewer)
	doRequest(router, "GET", base+"?from=2024-03-01&to=2024-03-31", nil)
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !svc.gotPerformance.From.Equal(want) {
		t.Errorf("Expected from %v, got %v", want, svc.gotPerformance.From)
	}
	if want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC); !svc.gotPerformance.To.Equal(want) {
		t.Errorf("Expected to %v, got %v", want, svc.gotPerformance.To)
	}
}

func TestAnalyticsHandler_ListQuestionnaires(t *testing.T) {
	svc := &mockAnalyticsService{}
	router := newAnalyticsRouter(svc, primitive.NewObjectID().Hex(), middleware.RoleViewer)

	w := doRequest(router, "GET", "/api/v1/analytics/questionnaires?page=2&limit=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp PaginatedQuestionnairesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Page != 2 || resp.Limit != 5 {
		t.Errorf("Expected page 2 limit 5, got page %d limit %d", resp.Page, resp.Limit)
	}
	if len(resp.Items) != 1 || resp.Items[0].Status != "active" {
		t.Errorf("Unexpected items %+v", resp.Items)
	}
}

var _ services.AnalyticsService = (*mockAnalyticsService)(nil)
