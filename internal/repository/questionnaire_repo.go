package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// MongoQuestionnaireRepository implements QuestionnaireRepository for MongoDB
// #ORM_INTEGRATION: MongoDB driver-based repository implementation
type MongoQuestionnaireRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionnaireRepository creates a new MongoDB questionnaire repository
func NewMongoQuestionnaireRepository(db *mongo.Database) *MongoQuestionnaireRepository {
	return &MongoQuestionnaireRepository{
		collection: db.Collection(models.Questionnaire{}.CollectionName()),
	}
}

// Create creates a new questionnaire
func (r *MongoQuestionnaireRepository) Create(ctx context.Context, questionnaire *models.Questionnaire) error {
	questionnaire.BeforeCreate()
	_, err := r.collection.InsertOne(ctx, questionnaire)
	return err
}

// GetByID finds a questionnaire by ID
func (r *MongoQuestionnaireRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&questionnaire)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

// GetCategoryMapping returns the raw stored category mapping
// #QUERY_PATTERN: Projection keeps the read small; a missing field yields nil, not an error
func (r *MongoQuestionnaireRepository) GetCategoryMapping(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
	var doc struct {
		CategoryMapping interface{} `bson:"category_mapping"`
	}
	findOpts := options.FindOne().SetProjection(bson.M{"category_mapping": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, findOpts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrQuestionnaireNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.CategoryMapping, nil
}

// UpdateCategoryMapping replaces the stored category mapping
func (r *MongoQuestionnaireRepository) UpdateCategoryMapping(ctx context.Context, id primitive.ObjectID, mapping models.CategoryMapping) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"category_mapping": mapping,
			"updated_at":       time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrQuestionnaireNotFound
	}
	return nil
}

// ListIDs lists the IDs of every questionnaire
func (r *MongoQuestionnaireRepository) ListIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	findOpts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ListByOwner lists questionnaires of an organization with pagination
func (r *MongoQuestionnaireRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, opts PaginationOptions) (*PaginatedResult[models.Questionnaire], error) {
	opts = opts.Normalize()
	filter := bson.M{"owner_id": ownerID}

	// Count total
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Apply pagination
	skip := int64((opts.Page - 1) * opts.Limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(opts.Limit)).
		SetSort(bson.D{{Key: opts.SortBy, Value: opts.SortDir}})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questionnaires []models.Questionnaire
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.Limit
	if int(total)%opts.Limit > 0 {
		totalPages++
	}

	return &PaginatedResult[models.Questionnaire]{
		Items:      questionnaires,
		TotalCount: total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// Ensure interface compliance
var _ QuestionnaireRepository = (*MongoQuestionnaireRepository)(nil)
