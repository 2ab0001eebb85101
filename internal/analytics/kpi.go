package analytics

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// PositiveSentimentThreshold is the rating at or above which an answer counts as positive
// #BUSINESS_RULE: Fixed constant on the 1-5 rating scale
const PositiveSentimentThreshold = 4.0

// KPISnapshot holds the scalar metrics of a set of responses.
// Nil pointers mean "no data" and serialize as JSON null.
type KPISnapshot struct {
	TotalResponses    int      `json:"total_responses"`
	AvgRating         *float64 `json:"avg_rating"`
	ResponseRate      *int     `json:"response_rate"`
	PositiveSentiment *int     `json:"positive_sentiment"`
}

// ComputeKPI derives the KPI of the given responses. Answers belonging to other responses,
// skipped answers and answers without a rating are ignored.
func ComputeKPI(responses []models.Response, answers []models.Answer) KPISnapshot {
	snap := KPISnapshot{TotalResponses: len(responses)}
	if len(responses) == 0 {
		return snap
	}

	ids := make(map[primitive.ObjectID]struct{}, len(responses))
	complete := 0
	for _, r := range responses {
		ids[r.ID] = struct{}{}
		if r.IsComplete {
			complete++
		}
	}
	snap.ResponseRate = percent(complete, len(responses))
	snap.AvgRating, snap.PositiveSentiment = ratingStats(ids, answers)
	return snap
}

// ratingStats returns the rounded mean rating and the positive share of the scored answers
// that belong to ids
func ratingStats(ids map[primitive.ObjectID]struct{}, answers []models.Answer) (*float64, *int) {
	var sum float64
	scored, positive := 0, 0
	for i := range answers {
		a := &answers[i]
		if !a.HasRating() {
			continue
		}
		if _, ok := ids[a.ResponseID]; !ok {
			continue
		}
		score := *a.RatingScore
		sum += score
		scored++
		if score >= PositiveSentimentThreshold {
			positive++
		}
	}
	if scored == 0 {
		return nil, nil
	}
	return floatPtr(round2(sum / float64(scored))), percent(positive, scored)
}
