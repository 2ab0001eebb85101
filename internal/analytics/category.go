package analytics

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// Breakdown status thresholds, independent of a category's target score
// #BUSINESS_RULE: >= 4.0 Good, < 3.0 Urgent, Monitor in between
const (
	GoodThreshold   = 4.0
	UrgentThreshold = 3.0
)

// Insight types and priorities
const (
	InsightImprovementNeeded    = "improvement_needed"
	InsightExcellentPerformance = "excellent_performance"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// BreakdownStatus maps an average rating to its dashboard status label
func BreakdownStatus(avg float64) string {
	switch {
	case avg >= GoodThreshold:
		return models.BreakdownStatusGood
	case avg < UrgentThreshold:
		return models.BreakdownStatusUrgent
	default:
		return models.BreakdownStatusMonitor
	}
}

// CategoryScore is the aggregate of one category inside a single response
type CategoryScore struct {
	AverageScore float64 `json:"average_score"`
	TotalWeight  float64 `json:"total_weight"`
	AnswerCount  int     `json:"answer_count"`
}

// ResponseScore is the scored form of one response
type ResponseScore struct {
	ResponseID   primitive.ObjectID       `json:"response_id"`
	OverallScore *float64                 `json:"overall_score"`
	PerCategory  map[string]CategoryScore `json:"per_category"`
}

type scoredAnswer struct {
	score  float64
	weight float64
}

// Scorer scores responses of one questionnaire against its sanitized category mapping
type Scorer struct {
	mapping  models.CategoryMapping
	resolved map[primitive.ObjectID]ResolvedQuestion
}

// NewScorer resolves every question once so responses can be scored repeatedly
func NewScorer(questions []models.Question, mapping models.CategoryMapping) *Scorer {
	s := &Scorer{
		mapping:  mapping,
		resolved: make(map[primitive.ObjectID]ResolvedQuestion, len(questions)),
	}
	for _, q := range questions {
		s.resolved[q.ID] = ResolveQuestionCategory(q, mapping)
	}
	return s
}

// ScoreResponse scores the answers of one response. Answers of other responses,
// skipped answers, answers to unknown questions and answers with no derivable score
// are excluded.
func ScoreResponse(responseID primitive.ObjectID, answers []models.Answer, questions []models.Question, mapping models.CategoryMapping) ResponseScore {
	return NewScorer(questions, mapping).Score(responseID, answers)
}

// Score scores the answers of one response
func (s *Scorer) Score(responseID primitive.ObjectID, answers []models.Answer) ResponseScore {
	perCategory := make(map[string][]scoredAnswer)
	var all []scoredAnswer

	for i := range answers {
		a := &answers[i]
		if a.IsSkipped || a.ResponseID != responseID {
			continue
		}
		res, ok := s.resolved[a.QuestionID]
		if !ok {
			continue
		}
		score, ok := answerScore(a, res)
		if !ok {
			continue
		}
		entry := scoredAnswer{score: score, weight: EffectiveWeight(res, s.mapping)}
		perCategory[res.Category] = append(perCategory[res.Category], entry)
		all = append(all, entry)
	}

	result := ResponseScore{
		ResponseID:  responseID,
		PerCategory: make(map[string]CategoryScore, len(perCategory)),
	}
	method := s.mapping.Settings.AggregationMethod
	for name, entries := range perCategory {
		// #BUSINESS_RULE: Simple averages weigh every answer as 1
		totalWeight := float64(len(entries))
		if method == models.AggregationWeightedAverage {
			totalWeight = 0
			for _, e := range entries {
				totalWeight += e.weight
			}
		}
		result.PerCategory[name] = CategoryScore{
			AverageScore: aggregate(entries, method),
			TotalWeight:  totalWeight,
			AnswerCount:  len(entries),
		}
	}
	if len(all) > 0 {
		result.OverallScore = floatPtr(aggregate(all, method))
	}
	return result
}

// answerScore prefers a positive rating, then the mean of mapped option scores
func answerScore(a *models.Answer, res ResolvedQuestion) (float64, bool) {
	if a.RatingScore != nil && *a.RatingScore > 0 {
		return *a.RatingScore, true
	}
	if len(res.Options) == 0 || len(a.SelectedOptions) == 0 {
		return 0, false
	}
	var sum float64
	n := 0
	for _, opt := range a.SelectedOptions {
		if v, ok := res.Options[opt]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func aggregate(entries []scoredAnswer, method models.AggregationMethod) float64 {
	if len(entries) == 0 {
		return 0
	}
	switch method {
	case models.AggregationSimpleAverage:
		var sum float64
		for _, e := range entries {
			sum += e.score
		}
		return sum / float64(len(entries))
	case models.AggregationMedian:
		scores := make([]float64, len(entries))
		for i, e := range entries {
			scores[i] = e.score
		}
		sort.Float64s(scores)
		mid := len(scores) / 2
		if len(scores)%2 == 0 {
			return (scores[mid-1] + scores[mid]) / 2
		}
		return scores[mid]
	default:
		var sum, weights float64
		for _, e := range entries {
			sum += e.score * e.weight
			weights += e.weight
		}
		if weights == 0 {
			return 0
		}
		return sum / weights
	}
}

// CategoryPerformance is the performance of one category over a set of responses
type CategoryPerformance struct {
	Category        string  `json:"category"`
	AverageScore    float64 `json:"average_score"`
	TargetScore     float64 `json:"target_score"`
	Gap             float64 `json:"gap"`
	Status          string  `json:"status"`
	BreakdownStatus string  `json:"breakdown_status"`
	ResponseCount   int     `json:"response_count"`
	AnswerCount     int     `json:"answer_count"`
	Weight          float64 `json:"weight"`
	Color           string  `json:"color"`
	Description     string  `json:"description,omitempty"`
}

// Insight is a generated observation about a category
type Insight struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Priority string  `json:"priority"`
	Gap      float64 `json:"gap"`
	Message  string  `json:"message"`
}

// CategoryReport is the outcome of scoring a set of responses by category
type CategoryReport struct {
	Categories      map[string]CategoryPerformance `json:"categories"`
	Insights        []Insight                      `json:"insights"`
	OverallScore    *float64                       `json:"overall_score"`
	ScoredResponses int                            `json:"scored_responses"`
}

// Sorted returns the categories ordered by name
func (r CategoryReport) Sorted() []CategoryPerformance {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]CategoryPerformance, 0, len(names))
	for _, name := range names {
		out = append(out, r.Categories[name])
	}
	return out
}

// ComputeCategoryPerformance scores every response and averages the response-level category
// averages per category, then compares each against its target score.
func ComputeCategoryPerformance(responses []models.Response, answers []models.Answer, questions []models.Question, mapping models.CategoryMapping) CategoryReport {
	scorer := NewScorer(questions, mapping)

	byResponse := make(map[primitive.ObjectID][]models.Answer, len(responses))
	for _, a := range answers {
		byResponse[a.ResponseID] = append(byResponse[a.ResponseID], a)
	}

	type accumulator struct {
		sum       float64
		responses int
		answers   int
	}
	acc := make(map[string]*accumulator)
	var overallSum float64
	scored := 0

	for _, r := range responses {
		rs := scorer.Score(r.ID, byResponse[r.ID])
		if rs.OverallScore == nil {
			continue
		}
		overallSum += *rs.OverallScore
		scored++
		for name, cs := range rs.PerCategory {
			a, ok := acc[name]
			if !ok {
				a = &accumulator{}
				acc[name] = a
			}
			a.sum += cs.AverageScore
			a.responses++
			a.answers += cs.AnswerCount
		}
	}

	report := CategoryReport{
		Categories:      make(map[string]CategoryPerformance, len(acc)),
		Insights:        []Insight{},
		ScoredResponses: scored,
	}
	if scored > 0 {
		report.OverallScore = floatPtr(round2(overallSum / float64(scored)))
	}

	for name, a := range acc {
		settings, _ := mapping.Category(name)
		avg := round2(a.sum / float64(a.responses))
		gap := round2(avg - settings.TargetScore)
		status := models.TargetStatusAbove
		if gap < 0 {
			status = models.TargetStatusBelow
		}
		report.Categories[name] = CategoryPerformance{
			Category:        name,
			AverageScore:    avg,
			TargetScore:     settings.TargetScore,
			Gap:             gap,
			Status:          status,
			BreakdownStatus: BreakdownStatus(avg),
			ResponseCount:   a.responses,
			AnswerCount:     a.answers,
			Weight:          settings.Weight,
			Color:           settings.Color,
			Description:     settings.Description,
		}
	}

	for _, cp := range report.Sorted() {
		if insight, ok := insightFor(cp); ok {
			report.Insights = append(report.Insights, insight)
		}
	}
	return report
}

func insightFor(cp CategoryPerformance) (Insight, bool) {
	switch {
	case cp.Gap < 0:
		priority := PriorityMedium
		if cp.Gap < -1 {
			priority = PriorityHigh
		}
		return Insight{
			Type:     InsightImprovementNeeded,
			Category: cp.Category,
			Priority: priority,
			Gap:      cp.Gap,
			Message: fmt.Sprintf("%s scores %.2f, %.2f below its target of %.2f",
				cp.Category, cp.AverageScore, -cp.Gap, cp.TargetScore),
		}, true
	case cp.Gap > 1:
		return Insight{
			Type:     InsightExcellentPerformance,
			Category: cp.Category,
			Priority: PriorityLow,
			Gap:      cp.Gap,
			Message: fmt.Sprintf("%s scores %.2f, %.2f above its target of %.2f",
				cp.Category, cp.AverageScore, cp.Gap, cp.TargetScore),
		}, true
	}
	return Insight{}, false
}
