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

// MongoRollupRepository implements RollupRepository for MongoDB
// #ORM_INTEGRATION: One collection per rollup kind, each with a unique compound key
type MongoRollupRepository struct {
	kpis       *mongo.Collection
	trends     *mongo.Collection
	breakdowns *mongo.Collection
	now        func() time.Time
}

// NewMongoRollupRepository creates a new MongoDB rollup repository
func NewMongoRollupRepository(db *mongo.Database) *MongoRollupRepository {
	return &MongoRollupRepository{
		kpis:       db.Collection(models.KPIRollup{}.CollectionName()),
		trends:     db.Collection(models.TrendRollup{}.CollectionName()),
		breakdowns: db.Collection(models.BreakdownRollup{}.CollectionName()),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// upsert replaces the fields of the row matching filter, creating it when absent.
// created_at is written only on insert so a re-run leaves existing rows untouched.
// #IMPLEMENTATION_DECISION: UpdateOne + upsert instead of ReplaceOne so created_at survives
func (r *MongoRollupRepository) upsert(ctx context.Context, coll *mongo.Collection, filter bson.M, fields interface{}) (bool, error) {
	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"created_at": r.now()},
	}
	result, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// UpsertKPI inserts or replaces a KPI row
func (r *MongoRollupRepository) UpsertKPI(ctx context.Context, row *models.KPIRollup) (bool, error) {
	filter := bson.M{
		"questionnaire_id": row.QuestionnaireID,
		"period_type":      row.PeriodType,
		"period_date":      row.PeriodDate,
	}
	fields := *row
	fields.ID = primitive.NilObjectID
	fields.CreatedAt = time.Time{}
	return r.upsert(ctx, r.kpis, filter, fields)
}

// UpsertTrend inserts or replaces a trend row
func (r *MongoRollupRepository) UpsertTrend(ctx context.Context, row *models.TrendRollup) (bool, error) {
	filter := bson.M{
		"questionnaire_id": row.QuestionnaireID,
		"period_type":      row.PeriodType,
		"period_date":      row.PeriodDate,
		"date":             row.Date,
	}
	fields := *row
	fields.ID = primitive.NilObjectID
	fields.CreatedAt = time.Time{}
	return r.upsert(ctx, r.trends, filter, fields)
}

// UpsertBreakdown inserts or replaces a breakdown row
func (r *MongoRollupRepository) UpsertBreakdown(ctx context.Context, row *models.BreakdownRollup) (bool, error) {
	filter := bson.M{
		"questionnaire_id": row.QuestionnaireID,
		"period_type":      row.PeriodType,
		"period_date":      row.PeriodDate,
		"category":         row.Category,
	}
	fields := *row
	fields.ID = primitive.NilObjectID
	fields.CreatedAt = time.Time{}
	return r.upsert(ctx, r.breakdowns, filter, fields)
}

// DeleteBreakdownsExcept removes breakdown rows of a bucket whose category is not in keep
func (r *MongoRollupRepository) DeleteBreakdownsExcept(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"period_type":      periodType,
		"period_date":      periodDate,
		"category":         bson.M{"$nin": keep},
	}
	result, err := r.breakdowns.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// GetKPI finds the KPI row of one bucket
func (r *MongoRollupRepository) GetKPI(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) (*models.KPIRollup, error) {
	var row models.KPIRollup
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"period_type":      periodType,
		"period_date":      periodDate,
	}
	err := r.kpis.FindOne(ctx, filter).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrRollupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListKPIs lists KPI rows with period_date >= fromDate in chronological order
func (r *MongoRollupRepository) ListKPIs(ctx context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.KPIRollup, error) {
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"period_type":      periodType,
		"period_date":      bson.M{"$gte": fromDate},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "period_date", Value: 1}})

	cursor, err := r.kpis.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.KPIRollup{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTrends lists trend rows with date >= fromDate in chronological order
// #QUERY_PATTERN: YYYY-MM-DD strings sort chronologically
func (r *MongoRollupRepository) ListTrends(ctx context.Context, questionnaireID primitive.ObjectID, periodType, fromDate string) ([]models.TrendRollup, error) {
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"period_type":      periodType,
		"date":             bson.M{"$gte": fromDate},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.trends.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.TrendRollup{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBreakdown lists the breakdown rows of one bucket ordered by category
func (r *MongoRollupRepository) ListBreakdown(ctx context.Context, questionnaireID primitive.ObjectID, periodType, periodDate string) ([]models.BreakdownRollup, error) {
	filter := bson.M{
		"questionnaire_id": questionnaireID,
		"period_type":      periodType,
		"period_date":      periodDate,
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}})

	cursor, err := r.breakdowns.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.BreakdownRollup{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure interface compliance
var _ RollupRepository = (*MongoRollupRepository)(nil)
