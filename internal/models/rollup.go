package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Breakdown status labels used for dashboard coloring
const (
	BreakdownStatusGood    = "Good"
	BreakdownStatusMonitor = "Monitor"
	BreakdownStatusUrgent  = "Urgent"
)

// Target status labels
const (
	TargetStatusAbove = "above_target"
	TargetStatusBelow = "below_target"
)

// KPIRollup holds the per-period scalar metrics of a questionnaire
// #DATA_ASSUMPTION: Derived state, always reproducible from responses and answers
// #INDEX: unique (questionnaire_id, period_type, period_date)
type KPIRollup struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	QuestionnaireID   primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`
	PeriodType        string             `bson:"period_type" json:"period_type"`
	PeriodDate        string             `bson:"period_date" json:"period_date"`
	TotalResponses    int                `bson:"total_responses" json:"total_responses"`
	AvgRating         *float64           `bson:"avg_rating" json:"avg_rating"`
	ResponseRate      *int               `bson:"response_rate" json:"response_rate"`
	PositiveSentiment *int               `bson:"positive_sentiment" json:"positive_sentiment"`
	CreatedAt         time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for KPI rollups
func (KPIRollup) CollectionName() string {
	return "analytics_kpis"
}

// TrendRollup holds one day of the trend series inside a period bucket
// #INDEX: unique (questionnaire_id, period_type, period_date, date)
type TrendRollup struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`
	PeriodType      string             `bson:"period_type" json:"period_type"`
	PeriodDate      string             `bson:"period_date" json:"period_date"`
	Date            string             `bson:"date" json:"date"`
	AvgRating       *float64           `bson:"avg_rating" json:"avg_rating"`
	ResponseRate    *int               `bson:"response_rate" json:"response_rate"`
	TrendValue      *int               `bson:"trend_value" json:"trend_value"`
	CreatedAt       time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for trend rollups
func (TrendRollup) CollectionName() string {
	return "analytics_trends"
}

// BreakdownRollup holds the performance of one category inside a period bucket
// #INDEX: unique (questionnaire_id, period_type, period_date, category)
type BreakdownRollup struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`
	PeriodType      string             `bson:"period_type" json:"period_type"`
	PeriodDate      string             `bson:"period_date" json:"period_date"`
	Category        string             `bson:"category" json:"category"`
	AvgRating       float64            `bson:"avg_rating" json:"avg_rating"`
	TargetScore     float64            `bson:"target_score" json:"target_score"`
	Gap             float64            `bson:"gap" json:"gap"`
	TargetStatus    string             `bson:"target_status" json:"target_status"`
	Status          string             `bson:"status" json:"status"`
	ResponseCount   int                `bson:"response_count" json:"response_count"`
	AnswerCount     int                `bson:"answer_count" json:"answer_count"`
	Color           string             `bson:"color" json:"color"`
	CreatedAt       time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// CollectionName returns the MongoDB collection name for breakdown rollups
func (BreakdownRollup) CollectionName() string {
	return "analytics_breakdowns"
}
