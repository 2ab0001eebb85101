package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// DemoQuestionnaireID is the fixed ID of the seeded demo survey
var DemoQuestionnaireID, _ = primitive.ObjectIDFromHex("65f000000000000000000001")

// SeedOptions controls the generated demo data
type SeedOptions struct {
	OwnerID         primitive.ObjectID
	Days            int
	ResponsesPerDay int
	Now             time.Time
	RandSeed        int64
}

// SeedResult reports what the seeder inserted
type SeedResult struct {
	QuestionnaireID primitive.ObjectID `json:"questionnaire_id"`
	Skipped         bool               `json:"skipped"`
	Questions       int                `json:"questions"`
	Responses       int                `json:"responses"`
	Answers         int                `json:"answers"`
}

// Seeder handles database seeding operations
// #SEED_DATA: One demo customer-satisfaction survey with a category mapping and generated responses
type Seeder struct {
	db  *mongo.Database
	log *logger.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(db *mongo.Database, log *logger.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// SeedDemo inserts the demo survey unless it already exists
// #IMPLEMENTATION_DECISION: Only seeds if data doesn't exist (idempotent)
func (s *Seeder) SeedDemo(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.ResponsesPerDay <= 0 {
		opts.ResponsesPerDay = 5
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.OwnerID.IsZero() {
		opts.OwnerID = primitive.NewObjectID()
	}

	result := &SeedResult{QuestionnaireID: DemoQuestionnaireID}

	questionnaires := s.db.Collection(CollectionQuestionnaires)
	count, err := questionnaires.CountDocuments(ctx, bson.M{"_id": DemoQuestionnaireID})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		s.log.Info("demo questionnaire already exists, skipping seeding", "questionnaire_id", DemoQuestionnaireID.Hex())
		result.Skipped = true
		return result, nil
	}

	questions := demoQuestions()
	questionnaire := &models.Questionnaire{
		ID:              DemoQuestionnaireID,
		OwnerID:         opts.OwnerID,
		Title:           "Customer Satisfaction (demo)",
		Status:          models.QuestionnaireStatusActive,
		CategoryMapping: demoMapping(questions),
	}
	questionnaire.BeforeCreate()
	if _, err := questionnaires.InsertOne(ctx, questionnaire); err != nil {
		return nil, fmt.Errorf("failed to insert questionnaire: %w", err)
	}

	questionDocs := make([]interface{}, len(questions))
	for i := range questions {
		questions[i].BeforeCreate()
		questionDocs[i] = questions[i]
	}
	if _, err := s.db.Collection(CollectionQuestions).InsertMany(ctx, questionDocs); err != nil {
		return nil, fmt.Errorf("failed to insert questions: %w", err)
	}
	result.Questions = len(questions)

	responses, answers := generateResponses(questions, opts)
	if len(responses) > 0 {
		docs := make([]interface{}, len(responses))
		for i := range responses {
			docs[i] = responses[i]
		}
		if _, err := s.db.Collection(CollectionResponses).InsertMany(ctx, docs); err != nil {
			return nil, fmt.Errorf("failed to insert responses: %w", err)
		}
	}
	if len(answers) > 0 {
		docs := make([]interface{}, len(answers))
		for i := range answers {
			docs[i] = answers[i]
		}
		if _, err := s.db.Collection(CollectionAnswers).InsertMany(ctx, docs); err != nil {
			return nil, fmt.Errorf("failed to insert answers: %w", err)
		}
	}
	result.Responses = len(responses)
	result.Answers = len(answers)

	s.log.Info("seeded demo questionnaire",
		"questionnaire_id", DemoQuestionnaireID.Hex(),
		"questions", result.Questions,
		"responses", result.Responses,
		"answers", result.Answers,
	)
	return result, nil
}

func demoQuestions() []models.Question {
	mk := func(order int, text, category string, qt models.QuestionType, options ...string) models.Question {
		return models.Question{
			ID:              primitive.NewObjectID(),
			QuestionnaireID: DemoQuestionnaireID,
			Text:            text,
			Category:        category,
			Type:            qt,
			Order:           order,
			Options:         options,
		}
	}
	return []models.Question{
		mk(1, "How friendly was our staff?", "service", models.QuestionTypeRating),
		mk(2, "How quickly was your request handled?", "service", models.QuestionTypeRating),
		mk(3, "How satisfied are you with the product?", "product", models.QuestionTypeRating),
		mk(4, "How did your order arrive?", "", models.QuestionTypeSingleChoice, "Early", "On time", "Late", "Damaged"),
		mk(5, "Anything else you want to tell us?", "", models.QuestionTypeText),
	}
}

// demoMapping is stored the way an editor would save it, including camelCase keys
func demoMapping(questions []models.Question) bson.M {
	return bson.M{
		"questions": bson.M{
			questions[3].ID.Hex(): bson.M{
				"category": "delivery",
				"weight":   1.5,
				"options":  bson.M{"Early": 5, "On time": 4, "Late": 2, "Damaged": 1},
			},
		},
		"categories": bson.M{
			"service":  bson.M{"weight": 2.0, "color": "#10B981", "targetScore": 4.0, "description": "Staff and support"},
			"product":  bson.M{"weight": 1.0, "color": "#F59E0B", "targetScore": 4.2},
			"delivery": bson.M{"weight": 1.0, "color": "#3B82F6", "targetScore": 3.5},
		},
		"settings": bson.M{
			"enableCategoryWeights": true,
			"defaultCategory":       "general",
			"aggregationMethod":     "weighted_average",
		},
	}
}

func generateResponses(questions []models.Question, opts SeedOptions) ([]models.Response, []models.Answer) {
	rng := rand.New(rand.NewSource(opts.RandSeed))
	start := opts.Now.AddDate(0, 0, -opts.Days)

	var responses []models.Response
	var answers []models.Answer
	for day := 0; day <= opts.Days; day++ {
		dayStart := time.Date(start.Year(), start.Month(), start.Day()+day, 8, 0, 0, 0, time.UTC)
		n := rng.Intn(opts.ResponsesPerDay*2 + 1)
		for i := 0; i < n; i++ {
			at := dayStart.Add(time.Duration(rng.Intn(12*60)) * time.Minute)
			if at.After(opts.Now) {
				continue
			}
			resp := models.Response{
				ID:              primitive.NewObjectID(),
				QuestionnaireID: DemoQuestionnaireID,
				IsComplete:      rng.Float64() < 0.85,
				ResponseDate:    at,
				CreatedAt:       at,
			}
			responses = append(responses, resp)

			for _, q := range questions {
				a := models.Answer{ID: primitive.NewObjectID(), ResponseID: resp.ID, QuestionID: q.ID}
				if rng.Float64() < 0.1 {
					a.IsSkipped = true
					answers = append(answers, a)
					continue
				}
				switch {
				case q.Type.IsRatingType():
					v := float64(1 + rng.Intn(5))
					a.RatingScore = &v
				case q.Type.IsChoiceType():
					a.SelectedOptions = []string{q.Options[rng.Intn(len(q.Options))]}
				default:
					a.TextAnswer = "Thanks!"
				}
				answers = append(answers, a)
			}
		}
	}
	return responses, answers
}
