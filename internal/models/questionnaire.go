package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireStatus represents the lifecycle status of a questionnaire
// #IMPLEMENTATION_DECISION: DRAFT -> ACTIVE -> CLOSED lifecycle, owned by the survey editor
type QuestionnaireStatus string

const (
	QuestionnaireStatusDraft  QuestionnaireStatus = "DRAFT"
	QuestionnaireStatusActive QuestionnaireStatus = "ACTIVE"
	QuestionnaireStatusClosed QuestionnaireStatus = "CLOSED"
)

// MarshalJSON converts QuestionnaireStatus to lowercase for JSON serialization
func (qs QuestionnaireStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(qs)))
}

// UnmarshalJSON converts lowercase JSON to QuestionnaireStatus
func (qs *QuestionnaireStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*qs = QuestionnaireStatus(strings.ToUpper(s))
	return nil
}

// IsValid checks if the QuestionnaireStatus is a valid value
func (qs QuestionnaireStatus) IsValid() bool {
	switch qs {
	case QuestionnaireStatusDraft, QuestionnaireStatusActive, QuestionnaireStatusClosed:
		return true
	}
	return false
}

// Questionnaire represents a survey owned by an organization
// #DATA_ASSUMPTION: CategoryMapping is stored exactly as the owner last saved it and may be malformed
// #CARDINALITY_ASSUMPTION: Organization 1:N Questionnaires
// #INTEGRATION_POINT: Analytics engine only reads the mapping and writes it through UpdateCategoryMapping
type Questionnaire struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	Title   string              `bson:"title" json:"title"`
	Status  QuestionnaireStatus `bson:"status" json:"status"`

	// Free-form category configuration, sanitized on every read
	CategoryMapping interface{} `bson:"category_mapping,omitempty" json:"category_mapping,omitempty"`

	// Audit fields
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionName returns the MongoDB collection name for questionnaires
func (Questionnaire) CollectionName() string {
	return "questionnaires"
}

// BeforeCreate sets default values before inserting a new questionnaire
func (q *Questionnaire) BeforeCreate() {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = QuestionnaireStatusDraft
	}
}

// BeforeUpdate sets the UpdatedAt timestamp
func (q *Questionnaire) BeforeUpdate() {
	q.UpdatedAt = time.Now().UTC()
}

// IsOwnedBy returns true if the questionnaire belongs to the given organization
func (q *Questionnaire) IsOwnedBy(orgID primitive.ObjectID) bool {
	return q.OwnerID == orgID
}

// IsActive returns true if the questionnaire is collecting responses
func (q *Questionnaire) IsActive() bool {
	return q.Status == QuestionnaireStatusActive
}
