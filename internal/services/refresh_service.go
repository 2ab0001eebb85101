// Package services provides business logic implementations.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/cache"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/metrics"
	"github.com/checkfix-tools/surveypulse_backend/internal/models"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
)

// Rollup kinds used in metrics and logs
const (
	rollupKindKPI       = "kpi"
	rollupKindTrend     = "trend"
	rollupKindBreakdown = "breakdown"
)

// Refresh defaults
const (
	DefaultRefreshWindow      = 30 * 24 * time.Hour
	DefaultRefreshConcurrency = 4
)

// BucketState is the lifecycle state of one refresh bucket
// #IMPLEMENTATION_DECISION: pending -> computing -> upserted, or failed on any error
type BucketState string

const (
	BucketPending   BucketState = "pending"
	BucketComputing BucketState = "computing"
	BucketUpserted  BucketState = "upserted"
	BucketFailed    BucketState = "failed"
)

// UpsertCounts counts rollup rows by whether they were inserted or replaced
type UpsertCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

func (c *UpsertCounts) record(created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}

func (c *UpsertCounts) add(o UpsertCounts) {
	c.Created += o.Created
	c.Updated += o.Updated
}

// BucketResult reports the outcome of one (granularity, period) bucket
type BucketResult struct {
	Granularity       string      `json:"granularity"`
	PeriodDate        string      `json:"period_date"`
	State             BucketState `json:"state"`
	TotalResponses    int         `json:"total_responses"`
	Categories        int         `json:"categories"`
	RemovedBreakdowns int64       `json:"removed_breakdowns,omitempty"`
}

// BucketError describes a bucket that could not be refreshed
type BucketError struct {
	Granularity string `json:"granularity"`
	PeriodDate  string `json:"period_date"`
	Error       string `json:"error"`
}

// RefreshSummary is the result of refreshing one questionnaire
type RefreshSummary struct {
	RunID           string             `json:"run_id"`
	QuestionnaireID primitive.ObjectID `json:"questionnaire_id"`
	Granularities   []string           `json:"granularities"`
	KPIs            UpsertCounts       `json:"kpis"`
	Trends          UpsertCounts       `json:"trends"`
	Breakdown       UpsertCounts       `json:"breakdown"`
	Buckets         []BucketResult     `json:"buckets"`
	Errors          []BucketError      `json:"errors"`
	DurationMillis  int64              `json:"duration_ms"`
}

// QuestionnaireFailure records a questionnaire that RefreshAll could not refresh
type QuestionnaireFailure struct {
	QuestionnaireID primitive.ObjectID `json:"questionnaire_id"`
	Error           string             `json:"error"`
}

// RefreshAllSummary is the result of refreshing every questionnaire
type RefreshAllSummary struct {
	Questionnaires int                    `json:"questionnaires"`
	Summaries      []*RefreshSummary      `json:"summaries"`
	Failures       []QuestionnaireFailure `json:"failures"`
}

// RefreshConfig configures the refresh orchestrator
type RefreshConfig struct {
	// Window is how far back buckets are recomputed
	Window time.Duration
	// Concurrency bounds the questionnaires refreshed in parallel by RefreshAll
	Concurrency int
	// Now overrides the clock; nil means time.Now
	Now func() time.Time
}

// RefreshService recomputes the analytics rollups of questionnaires
// #INTEGRATION_POINT: Used by the analytics handler and the surveypulse CLI
type RefreshService interface {
	// RefreshAnalytics recomputes every bucket of the window for the given granularities
	RefreshAnalytics(ctx context.Context, questionnaireID primitive.ObjectID, granularities []analytics.Granularity) (*RefreshSummary, error)

	// RefreshAll refreshes every questionnaire
	RefreshAll(ctx context.Context, granularities []analytics.Granularity) (*RefreshAllSummary, error)
}

// refreshService implements RefreshService
type refreshService struct {
	questionnaireRepo repository.QuestionnaireRepository
	questionRepo      repository.QuestionRepository
	responseRepo      repository.ResponseRepository
	answerRepo        repository.AnswerRepository
	rollupRepo        repository.RollupRepository
	cache             cache.Cache
	log               *logger.Logger

	window      time.Duration
	concurrency int
	now         func() time.Time

	inflight singleflight.Group
}

// NewRefreshService creates a new refresh service
func NewRefreshService(repos repository.Repositories, c cache.Cache, log *logger.Logger, cfg RefreshConfig) RefreshService {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRefreshWindow
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultRefreshConcurrency
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &refreshService{
		questionnaireRepo: repos.Questionnaires,
		questionRepo:      repos.Questions,
		responseRepo:      repos.Responses,
		answerRepo:        repos.Answers,
		rollupRepo:        repos.Rollups,
		cache:             c,
		log:               log.With("component", "refresh"),
		window:            cfg.Window,
		concurrency:       cfg.Concurrency,
		now:               cfg.Now,
	}
}

// granularityResult is the share of a summary produced by one granularity
type granularityResult struct {
	KPIs      UpsertCounts
	Trends    UpsertCounts
	Breakdown UpsertCounts
	Buckets   []BucketResult
	Errors    []BucketError
}

// refreshInput is what every bucket of a questionnaire needs besides its responses
type refreshInput struct {
	questionnaireID primitive.ObjectID
	questions       []models.Question
	mapping         models.CategoryMapping
	now             time.Time
}

// RefreshAnalytics recomputes the rollups of one questionnaire.
// A failing bucket is reported in the summary and does not stop the others.
func (s *refreshService) RefreshAnalytics(ctx context.Context, questionnaireID primitive.ObjectID, granularities []analytics.Granularity) (*RefreshSummary, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := s.log.With("run_id", runID, "questionnaire_id", questionnaireID.Hex())

	if len(granularities) == 0 {
		return nil, fmt.Errorf("%w: no granularity requested", models.ErrInvalidGranularity)
	}
	for _, g := range granularities {
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidGranularity, g)
		}
	}

	questionnaire, err := s.questionnaireRepo.GetByID(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, models.ErrQuestionnaireNotFound) {
			return nil, models.ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	questions, err := s.questionRepo.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	in := refreshInput{
		questionnaireID: questionnaireID,
		questions:       questions,
		mapping:         analytics.ValidateCategoryMapping(questionnaire.CategoryMapping),
		now:             s.now().UTC(),
	}

	summary := &RefreshSummary{
		RunID:           runID,
		QuestionnaireID: questionnaireID,
		Granularities:   make([]string, 0, len(granularities)),
		Buckets:         []BucketResult{},
		Errors:          []BucketError{},
	}

	var runErr error
	for _, g := range granularities {
		summary.Granularities = append(summary.Granularities, g.String())

		// #IMPLEMENTATION_DECISION: Concurrent refreshes of the same questionnaire and granularity
		// share one run; the joining caller receives the leader's result
		key := questionnaireID.Hex() + ":" + g.String()
		led := false
		v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
			led = true
			return s.refreshGranularity(ctx, log, in, g)
		})
		// singleflight reports shared to the leader too
		if shared && !led {
			metrics.ObserveCollapsedRefresh()
		}
		if res, ok := v.(*granularityResult); ok && res != nil {
			summary.KPIs.add(res.KPIs)
			summary.Trends.add(res.Trends)
			summary.Breakdown.add(res.Breakdown)
			summary.Buckets = append(summary.Buckets, res.Buckets...)
			summary.Errors = append(summary.Errors, res.Errors...)
		}
		if err != nil {
			runErr = err
			break
		}
	}

	s.invalidate(ctx, log, questionnaireID)
	summary.DurationMillis = time.Since(started).Milliseconds()

	log.Info("refresh finished",
		"granularities", summary.Granularities,
		"kpis_created", summary.KPIs.Created,
		"kpis_updated", summary.KPIs.Updated,
		"trends_created", summary.Trends.Created,
		"trends_updated", summary.Trends.Updated,
		"breakdown_created", summary.Breakdown.Created,
		"breakdown_updated", summary.Breakdown.Updated,
		"bucket_errors", len(summary.Errors),
		"duration_ms", summary.DurationMillis,
	)

	if runErr != nil {
		return summary, fmt.Errorf("refresh interrupted: %w", runErr)
	}
	return summary, nil
}

// refreshGranularity walks the buckets of one granularity oldest first.
// It only returns an error when the context is done.
func (s *refreshService) refreshGranularity(ctx context.Context, log *logger.Logger, in refreshInput, g analytics.Granularity) (*granularityResult, error) {
	started := time.Now()
	defer func() {
		metrics.ObserveRefresh(g.String(), time.Since(started).Seconds())
	}()

	starts := analytics.BucketStarts(in.now.Add(-s.window), in.now, g)
	res := &granularityResult{Buckets: make([]BucketResult, 0, len(starts))}
	for _, start := range starts {
		res.Buckets = append(res.Buckets, BucketResult{
			Granularity: g.String(),
			PeriodDate:  analytics.PeriodKey(start, g),
			State:       BucketPending,
		})
	}

	for i, start := range starts {
		// #IMPLEMENTATION_DECISION: Cancellation is honored between buckets only; a started bucket finishes
		if err := ctx.Err(); err != nil {
			return res, err
		}

		bucket := &res.Buckets[i]
		bucket.State = BucketComputing
		if err := s.refreshBucket(ctx, in, g, start, bucket, res); err != nil {
			bucket.State = BucketFailed
			res.Errors = append(res.Errors, BucketError{
				Granularity: g.String(),
				PeriodDate:  bucket.PeriodDate,
				Error:       err.Error(),
			})
			metrics.ObserveBucket(g.String(), metrics.OutcomeFailed)
			log.Error("bucket refresh failed", "granularity", g.String(), "period_date", bucket.PeriodDate, "error", err)
			continue
		}
		bucket.State = BucketUpserted
		metrics.ObserveBucket(g.String(), metrics.OutcomeUpserted)
	}
	return res, nil
}

// refreshBucket computes and writes every rollup row of one bucket
// #QUERY_PATTERN: One response query and one answer query per bucket
func (s *refreshService) refreshBucket(ctx context.Context, in refreshInput, g analytics.Granularity, start time.Time, bucket *BucketResult, res *granularityResult) error {
	r := analytics.PeriodRange(start, g)
	periodType := g.String()
	periodDate := bucket.PeriodDate

	responses, err := s.responseRepo.ListByQuestionnaireInRange(ctx, in.questionnaireID, repository.DateRange{From: r.Start, To: r.End})
	if err != nil {
		return fmt.Errorf("failed to list responses: %w", err)
	}

	var answers []models.Answer
	if len(responses) > 0 {
		ids := make([]primitive.ObjectID, len(responses))
		for i := range responses {
			ids[i] = responses[i].ID
		}
		answers, err = s.answerRepo.List(ctx, repository.AnswerFilter{ResponseIDs: ids, ExcludeSkipped: true})
		if err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}
	}

	kpi := analytics.ComputeKPI(responses, answers)
	trends := analytics.ComputeTrends(r, responses, answers)
	report := analytics.ComputeCategoryPerformance(responses, answers, in.questions, in.mapping)
	bucket.TotalResponses = kpi.TotalResponses

	created, err := s.rollupRepo.UpsertKPI(ctx, &models.KPIRollup{
		QuestionnaireID:   in.questionnaireID,
		PeriodType:        periodType,
		PeriodDate:        periodDate,
		TotalResponses:    kpi.TotalResponses,
		AvgRating:         kpi.AvgRating,
		ResponseRate:      kpi.ResponseRate,
		PositiveSentiment: kpi.PositiveSentiment,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert kpi: %w", err)
	}
	res.KPIs.record(created)
	metrics.ObserveUpsert(rollupKindKPI, created)

	for _, p := range trends {
		created, err := s.rollupRepo.UpsertTrend(ctx, &models.TrendRollup{
			QuestionnaireID: in.questionnaireID,
			PeriodType:      periodType,
			PeriodDate:      periodDate,
			Date:            p.Date,
			AvgRating:       p.AvgRating,
			ResponseRate:    p.ResponseRate,
			TrendValue:      p.TrendValue,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert trend %s: %w", p.Date, err)
		}
		res.Trends.record(created)
		metrics.ObserveUpsert(rollupKindTrend, created)
	}

	categories := report.Sorted()
	keep := make([]string, 0, len(categories))
	for _, cp := range categories {
		created, err := s.rollupRepo.UpsertBreakdown(ctx, &models.BreakdownRollup{
			QuestionnaireID: in.questionnaireID,
			PeriodType:      periodType,
			PeriodDate:      periodDate,
			Category:        cp.Category,
			AvgRating:       cp.AverageScore,
			TargetScore:     cp.TargetScore,
			Gap:             cp.Gap,
			TargetStatus:    cp.Status,
			Status:          cp.BreakdownStatus,
			ResponseCount:   cp.ResponseCount,
			AnswerCount:     cp.AnswerCount,
			Color:           cp.Color,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert breakdown %s: %w", cp.Category, err)
		}
		res.Breakdown.record(created)
		metrics.ObserveUpsert(rollupKindBreakdown, created)
		keep = append(keep, cp.Category)
	}
	bucket.Categories = len(keep)

	// #BUSINESS_RULE: A category that no longer appears in the bucket loses its breakdown row
	removed, err := s.rollupRepo.DeleteBreakdownsExcept(ctx, in.questionnaireID, periodType, periodDate, keep)
	if err != nil {
		return fmt.Errorf("failed to prune breakdown: %w", err)
	}
	bucket.RemovedBreakdowns = removed
	return nil
}

// invalidate drops every cached read of the questionnaire
func (s *refreshService) invalidate(ctx context.Context, log *logger.Logger, questionnaireID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(context.WithoutCancel(ctx), cache.QuestionnairePrefix(questionnaireID)); err != nil {
		log.Warn("cache invalidation failed", "error", err)
	}
}

// RefreshAll refreshes every questionnaire with bounded parallelism.
// A questionnaire that fails is reported and does not stop the others.
func (s *refreshService) RefreshAll(ctx context.Context, granularities []analytics.Granularity) (*RefreshAllSummary, error) {
	ids, err := s.questionnaireRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}

	out := &RefreshAllSummary{
		Questionnaires: len(ids),
		Summaries:      make([]*RefreshSummary, len(ids)),
		Failures:       []QuestionnaireFailure{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			summary, err := s.RefreshAnalytics(gctx, id, granularities)
			out.Summaries[i] = summary
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				out.Failures = append(out.Failures, QuestionnaireFailure{QuestionnaireID: id, Error: err.Error()})
				mu.Unlock()
			}
			return nil
		})
	}
	waitErr := g.Wait()

	summaries := out.Summaries[:0]
	for _, sm := range out.Summaries {
		if sm != nil {
			summaries = append(summaries, sm)
		}
	}
	out.Summaries = summaries

	if waitErr != nil {
		return out, fmt.Errorf("refresh all interrupted: %w", waitErr)
	}
	return out, nil
}

var _ RefreshService = (*refreshService)(nil)
