package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// MongoResponseRepository implements ResponseRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoResponseRepository struct {
	collection *mongo.Collection
}

// NewMongoResponseRepository creates a new MongoDB response repository
func NewMongoResponseRepository(db *mongo.Database) *MongoResponseRepository {
	return &MongoResponseRepository{
		collection: db.Collection(models.Response{}.CollectionName()),
	}
}

// CreateMany creates multiple responses
func (r *MongoResponseRepository) CreateMany(ctx context.Context, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	docs := make([]interface{}, len(responses))
	for i := range responses {
		responses[i].BeforeCreate()
		docs[i] = responses[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// ListByQuestionnaireInRange lists responses whose response_date falls in [From, To)
// #QUERY_PATTERN: Served by the (questionnaire_id, response_date) index
func (r *MongoResponseRepository) ListByQuestionnaireInRange(ctx context.Context, questionnaireID primitive.ObjectID, dr DateRange) ([]models.Response, error) {
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"response_date": bson.M{
			"$gte": dr.From,
			"$lt":  dr.To,
		},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "response_date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []models.Response
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}

	return responses, nil
}

// MongoAnswerRepository implements AnswerRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoAnswerRepository struct {
	collection *mongo.Collection
}

// NewMongoAnswerRepository creates a new MongoDB answer repository
func NewMongoAnswerRepository(db *mongo.Database) *MongoAnswerRepository {
	return &MongoAnswerRepository{
		collection: db.Collection(models.Answer{}.CollectionName()),
	}
}

// CreateMany creates multiple answers
func (r *MongoAnswerRepository) CreateMany(ctx context.Context, answers []models.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	docs := make([]interface{}, len(answers))
	for i := range answers {
		answers[i].BeforeCreate()
		docs[i] = answers[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// List lists answers matching the filter. An empty ResponseIDs list without a QuestionID
// matches nothing.
func (r *MongoAnswerRepository) List(ctx context.Context, f AnswerFilter) ([]models.Answer, error) {
	filter := bson.M{}
	switch {
	case len(f.ResponseIDs) > 0:
		filter["response_id"] = bson.M{"$in": f.ResponseIDs}
	case f.QuestionID != nil:
		filter["question_id"] = *f.QuestionID
	default:
		return []models.Answer{}, nil
	}
	if f.QuestionID != nil && len(f.ResponseIDs) > 0 {
		filter["question_id"] = *f.QuestionID
	}
	if f.ExcludeSkipped {
		filter["is_skipped"] = bson.M{"$ne": true}
	}
	if f.RequireRating {
		filter["rating_score"] = bson.M{"$ne": nil}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "response_id", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []models.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}

	return answers, nil
}

// Ensure interface compliance
var (
	_ ResponseRepository = (*MongoResponseRepository)(nil)
	_ AnswerRepository   = (*MongoAnswerRepository)(nil)
)
