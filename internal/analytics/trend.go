package analytics

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// TrendPoint is one day of a trend series
type TrendPoint struct {
	Date         string   `json:"date"`
	AvgRating    *float64 `json:"avg_rating"`
	ResponseRate *int     `json:"response_rate"`
	TrendValue   *int     `json:"trend_value"`
}

// ComputeTrends produces one point per calendar day of r, in chronological order.
// TrendValue is the percent change against the closest earlier day that has a rating.
func ComputeTrends(r DateRange, responses []models.Response, answers []models.Answer) []TrendPoint {
	byDay := make(map[string][]models.Response)
	for _, resp := range responses {
		if !r.Contains(resp.ResponseDate) {
			continue
		}
		key := PeriodKey(resp.ResponseDate, GranularityDay)
		byDay[key] = append(byDay[key], resp)
	}

	days := r.Days()
	points := make([]TrendPoint, 0, len(days))
	var prev *float64
	for _, day := range days {
		key := day.Format(PeriodKeyLayout)
		point := TrendPoint{Date: key}

		dayResponses := byDay[key]
		if len(dayResponses) > 0 {
			ids := make(map[primitive.ObjectID]struct{}, len(dayResponses))
			complete := 0
			for _, resp := range dayResponses {
				ids[resp.ID] = struct{}{}
				if resp.IsComplete {
					complete++
				}
			}
			point.ResponseRate = percent(complete, len(dayResponses))
			point.AvgRating, _ = ratingStats(ids, answers)
		}

		if point.AvgRating != nil {
			if prev != nil && *prev != 0 {
				point.TrendValue = intPtr(int(roundHalfUp((*point.AvgRating - *prev) / *prev * 100)))
			}
			prev = point.AvgRating
		}
		points = append(points, point)
	}
	return points
}
