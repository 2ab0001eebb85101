package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/cache"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/models"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
)

// DefaultCacheTTL is how long dashboard reads stay cached
const DefaultCacheTTL = 5 * time.Minute

// DashboardQuery selects the dashboard granularity
type DashboardQuery struct {
	Granularity analytics.Granularity
}

// DashboardData is the dashboard payload of one questionnaire and granularity
type DashboardData struct {
	QuestionnaireID primitive.ObjectID       `json:"questionnaire_id"`
	Granularity     string                   `json:"granularity"`
	PeriodDate      string                   `json:"period_date"`
	KPI             *models.KPIRollup        `json:"kpi"`
	KPIHistory      []models.KPIRollup       `json:"kpi_history"`
	Trends          []models.TrendRollup     `json:"trends"`
	Breakdown       []models.BreakdownRollup `json:"breakdown"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Cached          bool                     `json:"cached"`
}

// PerformanceQuery selects the date range of a live category performance report.
// Zero values default to the refresh window ending today.
type PerformanceQuery struct {
	From time.Time
	To   time.Time
}

// CategoryPerformanceReport is a live category performance report over a date range
type CategoryPerformanceReport struct {
	QuestionnaireID primitive.ObjectID                       `json:"questionnaire_id"`
	From            string                                   `json:"from"`
	To              string                                   `json:"to"`
	TotalResponses  int                                      `json:"total_responses"`
	OverallScore    *float64                                 `json:"overall_score"`
	ScoredResponses int                                      `json:"scored_responses"`
	Categories      map[string]analytics.CategoryPerformance `json:"categories"`
	Insights        []analytics.Insight                      `json:"insights"`
	Cached          bool                                     `json:"cached"`
}

// AnalyticsConfig configures the analytics service
type AnalyticsConfig struct {
	CacheTTL time.Duration
	Window   time.Duration
	Now      func() time.Time
}

// AnalyticsService serves dashboards and category configuration for an organization.
// A questionnaire owned by another organization is reported as not found.
// #INTEGRATION_POINT: Used by the analytics handler
type AnalyticsService interface {
	// ListQuestionnaires lists the organization's questionnaires
	ListQuestionnaires(ctx context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error)

	// RefreshAnalytics recomputes the rollups of a questionnaire
	RefreshAnalytics(ctx context.Context, orgID, questionnaireID primitive.ObjectID, granularities []analytics.Granularity) (*RefreshSummary, error)

	// GetDashboardData returns the stored rollups of the current window
	GetDashboardData(ctx context.Context, orgID, questionnaireID primitive.ObjectID, query DashboardQuery) (*DashboardData, error)

	// GetCategoryMapping returns the sanitized category mapping
	GetCategoryMapping(ctx context.Context, orgID, questionnaireID primitive.ObjectID) (*models.CategoryMapping, error)

	// UpdateCategoryMapping sanitizes and stores a new category mapping
	UpdateCategoryMapping(ctx context.Context, orgID, questionnaireID primitive.ObjectID, raw interface{}) (*models.CategoryMapping, error)

	// GetCategoryPerformance computes category performance over a date range from raw answers
	GetCategoryPerformance(ctx context.Context, orgID, questionnaireID primitive.ObjectID, query PerformanceQuery) (*CategoryPerformanceReport, error)
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	questionnaireRepo repository.QuestionnaireRepository
	questionRepo      repository.QuestionRepository
	responseRepo      repository.ResponseRepository
	answerRepo        repository.AnswerRepository
	rollupRepo        repository.RollupRepository
	refresher         RefreshService
	cache             cache.Cache
	log               *logger.Logger

	ttl    time.Duration
	window time.Duration
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repos repository.Repositories, refresher RefreshService, c cache.Cache, log *logger.Logger, cfg AnalyticsConfig) AnalyticsService {
	if log == nil {
		log = logger.NewNop()
	}
	if c == nil {
		c = cache.NewMemoryCache(0)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRefreshWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &analyticsService{
		questionnaireRepo: repos.Questionnaires,
		questionRepo:      repos.Questions,
		responseRepo:      repos.Responses,
		answerRepo:        repos.Answers,
		rollupRepo:        repos.Rollups,
		refresher:         refresher,
		cache:             c,
		log:               log.With("component", "analytics"),
		ttl:               cfg.CacheTTL,
		window:            cfg.Window,
		now:               cfg.Now,
	}
}

// authorize loads the questionnaire and checks that orgID owns it
// #SECURITY_ASSUMPTION: Foreign questionnaires read as not found so IDs cannot be probed
func (s *analyticsService) authorize(ctx context.Context, orgID, questionnaireID primitive.ObjectID) (*models.Questionnaire, error) {
	q, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, models.ErrQuestionnaireNotFound) {
			return nil, models.ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}
	if !q.IsOwnedBy(orgID) {
		return nil, models.ErrQuestionnaireNotFound
	}
	return q, nil
}

// ListQuestionnaires lists the organization's questionnaires
func (s *analyticsService) ListQuestionnaires(ctx context.Context, orgID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error) {
	result, err := s.questionnaireRepo.ListByOwner(ctx, orgID, opts.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}
	return result, nil
}

// RefreshAnalytics recomputes the rollups of an owned questionnaire
func (s *analyticsService) RefreshAnalytics(ctx context.Context, orgID, questionnaireID primitive.ObjectID, granularities []analytics.Granularity) (*RefreshSummary, error) {
	if _, err := s.authorize(ctx, orgID, questionnaireID); err != nil {
		return nil, err
	}
	return s.refresher.RefreshAnalytics(ctx, questionnaireID, granularities)
}

// GetDashboardData reads the rollups of the current bucket and of the window
// #QUERY_PATTERN: Cache-aside; the refresh run invalidates the questionnaire prefix
func (s *analyticsService) GetDashboardData(ctx context.Context, orgID, questionnaireID primitive.ObjectID, query DashboardQuery) (*DashboardData, error) {
	g := query.Granularity
	if g == "" {
		g = analytics.GranularityDay
	}
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidGranularity, g)
	}
	if _, err := s.authorize(ctx, orgID, questionnaireID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	periodDate := analytics.PeriodKey(now, g)

	key := cache.DashboardKey(questionnaireID, g.String(), periodDate)
	if cached, ok := cache.GetJSON[DashboardData](ctx, s.cache, key); ok {
		cached.Cached = true
		return &cached, nil
	}

	fromDate := analytics.PeriodKey(now.Add(-s.window), g)

	data := &DashboardData{
		QuestionnaireID: questionnaireID,
		Granularity:     g.String(),
		PeriodDate:      periodDate,
		GeneratedAt:     now,
	}

	kpi, err := s.rollupRepo.GetKPI(ctx, questionnaireID, g.String(), periodDate)
	switch {
	case err == nil:
		data.KPI = kpi
	case errors.Is(err, models.ErrRollupNotFound):
	default:
		return nil, fmt.Errorf("failed to get kpi: %w", err)
	}

	if data.KPIHistory, err = s.rollupRepo.ListKPIs(ctx, questionnaireID, g.String(), fromDate); err != nil {
		return nil, fmt.Errorf("failed to list kpis: %w", err)
	}
	if data.Trends, err = s.rollupRepo.ListTrends(ctx, questionnaireID, g.String(), fromDate); err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	if data.Breakdown, err = s.rollupRepo.ListBreakdown(ctx, questionnaireID, g.String(), periodDate); err != nil {
		return nil, fmt.Errorf("failed to list breakdown: %w", err)
	}

	if data.KPIHistory == nil {
		data.KPIHistory = []models.KPIRollup{}
	}
	if data.Trends == nil {
		data.Trends = []models.TrendRollup{}
	}
	if data.Breakdown == nil {
		data.Breakdown = []models.BreakdownRollup{}
	}

	if err := cache.SetJSON(ctx, s.cache, key, data, s.ttl); err != nil {
		s.log.Warn("failed to cache dashboard", "questionnaire_id", questionnaireID.Hex(), "error", err)
	}
	return data, nil
}

// GetCategoryMapping returns the stored mapping after sanitization
func (s *analyticsService) GetCategoryMapping(ctx context.Context, orgID, questionnaireID primitive.ObjectID) (*models.CategoryMapping, error) {
	if _, err := s.authorize(ctx, orgID, questionnaireID); err != nil {
		return nil, err
	}
	raw, err := s.questionnaireRepo.GetCategoryMapping(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, models.ErrQuestionnaireNotFound) {
			return nil, models.ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to get category mapping: %w", err)
	}
	mapping := analytics.ValidateCategoryMapping(raw)
	return &mapping, nil
}

// UpdateCategoryMapping sanitizes raw and stores the result. Malformed input is never rejected.
func (s *analyticsService) UpdateCategoryMapping(ctx context.Context, orgID, questionnaireID primitive.ObjectID, raw interface{}) (*models.CategoryMapping, error) {
	if _, err := s.authorize(ctx, orgID, questionnaireID); err != nil {
		return nil, err
	}

	mapping := analytics.ValidateCategoryMapping(raw)
	if err := s.questionnaireRepo.UpdateCategoryMapping(ctx, questionnaireID, mapping); err != nil {
		if errors.Is(err, models.ErrQuestionnaireNotFound) {
			return nil, models.ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to update category mapping: %w", err)
	}

	// #BUSINESS_RULE: Stored rollups keep their old categories until the next refresh; live reads change now
	if err := s.cache.DeletePrefix(ctx, cache.QuestionnairePrefix(questionnaireID)); err != nil {
		s.log.Warn("cache invalidation failed", "questionnaire_id", questionnaireID.Hex(), "error", err)
	}

	s.log.Info("category mapping updated",
		"questionnaire_id", questionnaireID.Hex(),
		"questions", len(mapping.Questions),
		"categories", len(mapping.Categories),
	)
	return &mapping, nil
}

// GetCategoryPerformance scores every response of the range with the current mapping
func (s *analyticsService) GetCategoryPerformance(ctx context.Context, orgID, questionnaireID primitive.ObjectID, query PerformanceQuery) (*CategoryPerformanceReport, error) {
	r, err := s.performanceRange(query)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.authorize(ctx, orgID, questionnaireID)
	if err != nil {
		return nil, err
	}

	key := cache.PerformanceKey(questionnaireID, r.Start, r.End)
	if cached, ok := cache.GetJSON[CategoryPerformanceReport](ctx, s.cache, key); ok {
		cached.Cached = true
		return &cached, nil
	}

	questions, err := s.questionRepo.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	responses, err := s.responseRepo.ListByQuestionnaireInRange(ctx, questionnaireID, repository.DateRange{From: r.Start, To: r.End})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	var answers []models.Answer
	if len(responses) > 0 {
		ids := make([]primitive.ObjectID, len(responses))
		for i := range responses {
			ids[i] = responses[i].ID
		}
		answers, err = s.answerRepo.List(ctx, repository.AnswerFilter{ResponseIDs: ids, ExcludeSkipped: true})
		if err != nil {
			return nil, fmt.Errorf("failed to list answers: %w", err)
		}
	}

	mapping := analytics.ValidateCategoryMapping(questionnaire.CategoryMapping)
	computed := analytics.ComputeCategoryPerformance(responses, answers, questions, mapping)

	report := &CategoryPerformanceReport{
		QuestionnaireID: questionnaireID,
		From:            r.Start.Format(analytics.PeriodKeyLayout),
		To:              r.End.Format(analytics.PeriodKeyLayout),
		TotalResponses:  len(responses),
		OverallScore:    computed.OverallScore,
		ScoredResponses: computed.ScoredResponses,
		Categories:      computed.Categories,
		Insights:        computed.Insights,
	}

	if err := cache.SetJSON(ctx, s.cache, key, report, s.ttl); err != nil {
		s.log.Warn("failed to cache category performance", "questionnaire_id", questionnaireID.Hex(), "error", err)
	}
	return report, nil
}

// performanceRange resolves the query into a half-open day range.
// #DATA_ASSUMPTION: To is inclusive on input, so the range ends at the start of the following day
func (s *analyticsService) performanceRange(query PerformanceQuery) (analytics.DateRange, error) {
	to := query.To
	if to.IsZero() {
		to = s.now()
	}
	end := analytics.PeriodStart(to, analytics.GranularityDay).AddDate(0, 0, 1)

	start := analytics.PeriodStart(end.Add(-s.window), analytics.GranularityDay)
	if !query.From.IsZero() {
		start = analytics.PeriodStart(query.From, analytics.GranularityDay)
	}

	r := analytics.DateRange{Start: start, End: end}
	if !r.IsValid() {
		return r, fmt.Errorf("%w: from must not be after to", models.ErrInvalidDateRange)
	}
	return r, nil
}

var _ AnalyticsService = (*analyticsService)(nil)
