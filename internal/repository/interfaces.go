// Package repository defines interfaces for data access and their MongoDB implementations
// #ORM_PATTERN: Repository pattern with interfaces for testability and abstraction
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// PaginationOptions contains pagination parameters
type PaginationOptions struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir int // 1 for ascending, -1 for descending
}

// DefaultPaginationOptions returns default pagination settings
// #DATA_ASSUMPTION: Pagination defaults to 20 items per page
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		Page:    1,
		Limit:   20,
		SortBy:  "created_at",
		SortDir: -1,
	}
}

// Normalize clamps page and limit into usable values
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 20
	}
	if o.SortBy == "" {
		o.SortBy = "created_at"
	}
	if o.SortDir != 1 {
		o.SortDir = -1
	}
	return o
}

// PaginatedResult contains paginated query results
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// QuestionnaireRepository defines the questionnaire reads and the category mapping write
// #QUERY_INTERFACE: Questionnaire data access patterns needed by analytics
type QuestionnaireRepository interface {
	// Create creates a new questionnaire
	Create(ctx context.Context, questionnaire *models.Questionnaire) error

	// GetByID finds a questionnaire by ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Questionnaire, error)

	// GetCategoryMapping returns the raw stored category mapping
	GetCategoryMapping(ctx context.Context, id primitive.ObjectID) (interface{}, error)

	// UpdateCategoryMapping replaces the stored category mapping
	UpdateCategoryMapping(ctx context.Context, id primitive.ObjectID, mapping models.CategoryMapping) error

	// ListIDs lists the IDs of every questionnaire
	ListIDs(ctx context.Context) ([]primitive.ObjectID, error)

	// ListByOwner lists questionnaires of an organization with pagination
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Questionnaire], error)
}

// QuestionRepository defines operations for questions
// #QUERY_INTERFACE: Question data access patterns
type QuestionRepository interface {
	// CreateMany creates multiple questions
	CreateMany(ctx context.Context, questions []models.Question) error

	// ListByQuestionnaire lists questions of a questionnaire ordered by position
	ListByQuestionnaire(ctx context.Context, questionnaireID primitive.ObjectID) ([]models.Question, error)
}

// DateRange is a half-open [From, To) interval on response_date
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResponseRepository defines operations for responses
// #QUERY_INTERFACE: Response data access patterns
type ResponseRepository interface {
	// CreateMany creates multiple responses
	CreateMany(ctx context.Context, responses []models.Response) error

	// ListByQuestionnaireInRange lists responses whose response_date falls in the range
	ListByQuestionnaireInRange(ctx context.Context, questionnaireID primitive.ObjectID, r DateRange) ([]models.Response, error)
}

// AnswerFilter selects answers either by response IDs or by question ID
type AnswerFilter struct {
	ResponseIDs    []primitive.ObjectID
	QuestionID     *primitive.ObjectID
	ExcludeSkipped bool
	RequireRating  bool
}

// AnswerRepository defines operations for answers
// #QUERY_INTERFACE: Answer data access patterns
type AnswerRepository interface {
	// CreateMany creates multiple answers
	CreateMany(ctx context.Context, answers []models.Answer) error

	// List lists answers matching the filter
	List(ctx context.Context, filter AnswerFilter) ([]models.Answer, error)
}

// RollupRepository defines operations for the derived analytics rollups
// #QUERY_INTERFACE: Rollups are written by the refresh run and read by dashboards
type RollupRepository interface {
	// UpsertKPI inserts or replaces a KPI row keyed by (questionnaire, period type, period date)
	UpsertKPI(ctx context.Context, row *models.KPIRollup) (created bool, err error)

	// UpsertTrend inserts or replaces a trend row keyed by (questionnaire, period type, period date, date)
	UpsertTrend(ctx context.Context, row *models.TrendRollup) (created bool, err error)

	// UpsertBreakdown inserts or replaces a breakdown row keyed by (questionnaire, period type, period date, category)
	UpsertBreakdown(ctx context.Context, row *models.BreakdownRollup) (created bool, err error)

	// DeleteBreakdownsExcept removes breakdown rows of a bucket whose category is not in keep
	DeleteBreakdownsExcept(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string, keep []string) (int64, error)

	// GetKPI finds the KPI row of one bucket
	GetKPI(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) (*models.KPIRollup, error)

	// ListKPIs lists KPI rows with period_date >= fromDate in chronological order
	ListKPIs(ctx context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.KPIRollup, error)

	// ListTrends lists trend rows with date >= fromDate in chronological order
	ListTrends(ctx context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.TrendRollup, error)

	// ListBreakdown lists the breakdown rows of one bucket ordered by category
	ListBreakdown(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) ([]models.BreakdownRollup, error)
}
