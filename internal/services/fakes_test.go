package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// fakeQuestionnaireRepo is an in-memory QuestionnaireRepository
type fakeQuestionnaireRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Questionnaire
}

func newFakeQuestionnaireRepo() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{items: map[primitive.ObjectID]*models.Questionnaire{}}
}

func (r *fakeQuestionnaireRepo) Create(_ context.Context, q *models.Questionnaire) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.BeforeCreate()
	cp := *q
	r.items[q.ID] = &cp
	return nil
}

func (r *fakeQuestionnaireRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return nil, models.ErrQuestionnaireNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionnaireRepo) GetCategoryMapping(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return q.CategoryMapping, nil
}

func (r *fakeQuestionnaireRepo) UpdateCategoryMapping(_ context.Context, id primitive.ObjectID, mapping models.CategoryMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return models.ErrQuestionnaireNotFound
	}
	q.CategoryMapping = mapping
	return nil
}

func (r *fakeQuestionnaireRepo) ListIDs(context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids, nil
}

func (r *fakeQuestionnaireRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID, opts repository.PaginationOptions) (*repository.PaginatedResult[models.Questionnaire], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []models.Questionnaire
	for _, q := range r.items {
		if q.OwnerID == ownerID {
			items = append(items, *q)
		}
	}
	return &repository.PaginatedResult[models.Questionnaire]{
		Items:      items,
		TotalCount: int64(len(items)),
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: 1,
	}, nil
}

// fakeQuestionRepo is an in-memory QuestionRepository
type fakeQuestionRepo struct {
	mu      sync.Mutex
	items   []models.Question
	failFor map[primitive.ObjectID]bool
	calls   int
}

func (r *fakeQuestionRepo) CreateMany(_ context.Context, questions []models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, questions...)
	return nil
}

func (r *fakeQuestionRepo) ListByQuestionnaire(_ context.Context, questionnaireID primitive.ObjectID) ([]models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failFor[questionnaireID] {
		return nil, errStoreDown
	}
	var out []models.Question
	for _, q := range r.items {
		if q.QuestionnaireID == questionnaireID {
			out = append(out, q)
		}
	}
	return out, nil
}

// fakeResponseRepo is an in-memory ResponseRepository.
// failFrom makes range queries starting at that instant fail.
// A non-nil gate holds every range query until it is closed; entered receives one value per held query.
type fakeResponseRepo struct {
	mu       sync.Mutex
	items    []models.Response
	failFrom time.Time
	calls    int
	gate     chan struct{}
	entered  chan struct{}
}

func (r *fakeResponseRepo) CreateMany(_ context.Context, responses []models.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, responses...)
	return nil
}

func (r *fakeResponseRepo) ListByQuestionnaireInRange(_ context.Context, questionnaireID primitive.ObjectID, dr repository.DateRange) ([]models.Response, error) {
	if r.gate != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if !r.failFrom.IsZero() && dr.From.Equal(r.failFrom) {
		return nil, errStoreDown
	}
	var out []models.Response
	for _, resp := range r.items {
		if resp.QuestionnaireID != questionnaireID {
			continue
		}
		if resp.ResponseDate.Before(dr.From) || !resp.ResponseDate.Before(dr.To) {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

// fakeAnswerRepo is an in-memory AnswerRepository
type fakeAnswerRepo struct {
	mu    sync.Mutex
	items []models.Answer
}

func (r *fakeAnswerRepo) CreateMany(_ context.Context, answers []models.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, answers...)
	return nil
}

func (r *fakeAnswerRepo) List(_ context.Context, filter repository.AnswerFilter) ([]models.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[primitive.ObjectID]bool, len(filter.ResponseIDs))
	for _, id := range filter.ResponseIDs {
		ids[id] = true
	}
	var out []models.Answer
	for _, a := range r.items {
		if len(ids) > 0 && !ids[a.ResponseID] {
			continue
		}
		if filter.QuestionID != nil && a.QuestionID != *filter.QuestionID {
			continue
		}
		if filter.ExcludeSkipped && a.IsSkipped {
			continue
		}
		if filter.RequireRating && a.RatingScore == nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// fakeRollupRepo is an in-memory RollupRepository keyed by the composite rollup keys
type fakeRollupRepo struct {
	mu         sync.Mutex
	kpis       map[string]models.KPIRollup
	trends     map[string]models.TrendRollup
	breakdowns map[string]models.BreakdownRollup
}

func newFakeRollupRepo() *fakeRollupRepo {
	return &fakeRollupRepo{
		kpis:       map[string]models.KPIRollup{},
		trends:     map[string]models.TrendRollup{},
		breakdowns: map[string]models.BreakdownRollup{},
	}
}

func rollupKey(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "|"
	}
	return key
}

func (r *fakeRollupRepo) UpsertKPI(_ context.Context, row *models.KPIRollup) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rollupKey(row.QuestionnaireID.Hex(), row.PeriodType, row.PeriodDate)
	_, exists := r.kpis[key]
	r.kpis[key] = *row
	return !exists, nil
}

func (r *fakeRollupRepo) UpsertTrend(_ context.Context, row *models.TrendRollup) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rollupKey(row.QuestionnaireID.Hex(), row.PeriodType, row.PeriodDate, row.Date)
	_, exists := r.trends[key]
	r.trends[key] = *row
	return !exists, nil
}

func (r *fakeRollupRepo) UpsertBreakdown(_ context.Context, row *models.BreakdownRollup) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rollupKey(row.QuestionnaireID.Hex(), row.PeriodType, row.PeriodDate, row.Category)
	_, exists := r.breakdowns[key]
	r.breakdowns[key] = *row
	return !exists, nil
}

func (r *fakeRollupRepo) DeleteBreakdownsExcept(_ context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	var removed int64
	for key, row := range r.breakdowns {
		if row.QuestionnaireID == questionnaireID && row.PeriodType == periodType && row.PeriodDate == periodDate && !kept[row.Category] {
			delete(r.breakdowns, key)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeRollupRepo) GetKPI(_ context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) (*models.KPIRollup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.kpis[rollupKey(questionnaireID.Hex(), periodType, periodDate)]
	if !ok {
		return nil, models.ErrRollupNotFound
	}
	return &row, nil
}

func (r *fakeRollupRepo) ListKPIs(_ context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.KPIRollup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.KPIRollup
	for _, row := range r.kpis {
		if row.QuestionnaireID == questionnaireID && row.PeriodType == periodType && row.PeriodDate >= fromDate {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodDate < out[j].PeriodDate })
	return out, nil
}

func (r *fakeRollupRepo) ListTrends(_ context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.TrendRollup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TrendRollup
	for _, row := range r.trends {
		if row.QuestionnaireID == questionnaireID && row.PeriodType == periodType && row.Date >= fromDate {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeRollupRepo) ListBreakdown(_ context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) ([]models.BreakdownRollup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BreakdownRollup
	for _, row := range r.breakdowns {
		if row.QuestionnaireID == questionnaireID && row.PeriodType == periodType && row.PeriodDate == periodDate {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// snapshot copies every stored row for equality checks
func (r *fakeRollupRepo) snapshot() (map[string]models.KPIRollup, map[string]models.TrendRollup, map[string]models.BreakdownRollup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := make(map[string]models.KPIRollup, len(r.kpis))
	for key, v := range r.kpis {
		k[key] = v
	}
	t := make(map[string]models.TrendRollup, len(r.trends))
	for key, v := range r.trends {
		t[key] = v
	}
	b := make(map[string]models.BreakdownRollup, len(r.breakdowns))
	for key, v := range r.breakdowns {
		b[key] = v
	}
	return k, t, b
}

var (
	_ repository.QuestionnaireRepository = (*fakeQuestionnaireRepo)(nil)
	_ repository.QuestionRepository      = (*fakeQuestionRepo)(nil)
	_ repository.ResponseRepository      = (*fakeResponseRepo)(nil)
	_ repository.AnswerRepository        = (*fakeAnswerRepo)(nil)
	_ repository.RollupRepository        = (*fakeRollupRepo)(nil)
)
