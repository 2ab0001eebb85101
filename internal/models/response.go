package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response represents one respondent's submission to a questionnaire
// #DATA_ASSUMPTION: ResponseDate never changes after submission (append-only)
// #CARDINALITY_ASSUMPTION: Questionnaire 1:N Responses
type Response struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`
	IsComplete      bool               `bson:"is_complete" json:"is_complete"`
	ResponseDate    time.Time          `bson:"response_date" json:"response_date"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection name for responses
func (Response) CollectionName() string {
	return "responses"
}

// BeforeCreate sets default values before inserting a new response
func (r *Response) BeforeCreate() {
	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.ResponseDate.IsZero() {
		r.ResponseDate = now
	}
	r.CreatedAt = now
}

// Answer represents the answer to a single question inside a response
// #DATA_ASSUMPTION: Skipped answers and answers without any value are excluded from every aggregate
// #CARDINALITY_ASSUMPTION: Response 1:N Answers, Question 1:N Answers
type Answer struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResponseID      primitive.ObjectID `bson:"response_id" json:"response_id"`
	QuestionID      primitive.ObjectID `bson:"question_id" json:"question_id"`
	RatingScore     *float64           `bson:"rating_score,omitempty" json:"rating_score,omitempty"`
	SelectedOptions []string           `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
	TextAnswer      string             `bson:"text_answer,omitempty" json:"text_answer,omitempty"`
	IsSkipped       bool               `bson:"is_skipped" json:"is_skipped"`
}

// CollectionName returns the MongoDB collection name for answers
func (Answer) CollectionName() string {
	return "answers"
}

// BeforeCreate sets default values before inserting a new answer
func (a *Answer) BeforeCreate() {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
}

// HasRating returns true if the answer carries a usable rating score
func (a *Answer) HasRating() bool {
	return !a.IsSkipped && a.RatingScore != nil
}

// HasSelections returns true if the answer selected at least one option
func (a *Answer) HasSelections() bool {
	return !a.IsSkipped && len(a.SelectedOptions) > 0
}
