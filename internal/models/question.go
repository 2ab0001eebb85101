package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionType represents the type of question
// #IMPLEMENTATION_DECISION: Rating-like types carry a numeric score, choice types carry selected options
type QuestionType string

const (
	QuestionTypeRating         QuestionType = "RATING"
	QuestionTypeNPS            QuestionType = "NPS"
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeYesNo          QuestionType = "YES_NO"
	QuestionTypeText           QuestionType = "TEXT"
)

// MarshalJSON converts QuestionType to lowercase with underscores for JSON serialization
func (qt QuestionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qt)))
}

// UnmarshalJSON converts lowercase JSON to QuestionType
func (qt *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qt = QuestionType(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionType is a valid value
func (qt QuestionType) IsValid() bool {
	switch qt {
	case QuestionTypeRating, QuestionTypeNPS, QuestionTypeSingleChoice,
		QuestionTypeMultipleChoice, QuestionTypeYesNo, QuestionTypeText:
		return true
	}
	return false
}

// IsChoiceType returns true if this is a choice-based question
func (qt QuestionType) IsChoiceType() bool {
	return qt == QuestionTypeSingleChoice || qt == QuestionTypeMultipleChoice || qt == QuestionTypeYesNo
}

// IsRatingType returns true if answers carry a rating score
func (qt QuestionType) IsRatingType() bool {
	return qt == QuestionTypeRating || qt == QuestionTypeNPS
}

// Question represents an individual survey question
// #DATA_ASSUMPTION: Category is a free-form label; the category mapping may override it
// #CARDINALITY_ASSUMPTION: Questionnaire 1:N Questions
type Question struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionnaireID primitive.ObjectID `bson:"questionnaire_id" json:"questionnaire_id"`

	Text     string       `bson:"text" json:"text"`
	Category string       `bson:"category,omitempty" json:"category,omitempty"`
	Type     QuestionType `bson:"question_type" json:"question_type"`
	Order    int          `bson:"order" json:"order"`

	// Ordered option labels for choice questions
	Options []string `bson:"options,omitempty" json:"options,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questions
func (Question) CollectionName() string {
	return "questions"
}

// BeforeCreate sets default values before inserting a new question
func (q *Question) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Options == nil {
		q.Options = []string{}
	}
}

// HasOption returns true if label is one of the question's options
func (q *Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt == label {
			return true
		}
	}
	return false
}
