package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexManager handles MongoDB index creation and management
// #INDEX_IMPLEMENTATION: Source collections are indexed for range reads, rollups for their upsert keys
type IndexManager struct {
	db *mongo.Database
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *mongo.Database) *IndexManager {
	return &IndexManager{db: db}
}

// collectionIndexes returns every index definition keyed by collection
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionQuestionnaires: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_owner_created"),
			},
		},
		CollectionQuestions: {
			{
				Keys:    bson.D{{Key: "questionnaire_id", Value: 1}, {Key: "order", Value: 1}},
				Options: options.Index().SetName("idx_questionnaire_order"),
			},
		},
		CollectionResponses: {
			{
				Keys:    bson.D{{Key: "questionnaire_id", Value: 1}, {Key: "response_date", Value: 1}},
				Options: options.Index().SetName("idx_questionnaire_response_date"),
			},
		},
		CollectionAnswers: {
			{
				Keys:    bson.D{{Key: "response_id", Value: 1}},
				Options: options.Index().SetName("idx_response"),
			},
			{
				Keys:    bson.D{{Key: "question_id", Value: 1}},
				Options: options.Index().SetName("idx_question"),
			},
		},
		// #INDEX_IMPLEMENTATION: Unique compound keys make every rollup upsert idempotent
		CollectionAnalyticsKPIs: {
			{
				Keys: bson.D{
					{Key: "questionnaire_id", Value: 1},
					{Key: "period_type", Value: 1},
					{Key: "period_date", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("idx_kpi_key_unique"),
			},
		},
		CollectionAnalyticsTrends: {
			{
				Keys: bson.D{
					{Key: "questionnaire_id", Value: 1},
					{Key: "period_type", Value: 1},
					{Key: "period_date", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("idx_trend_key_unique"),
			},
			{
				Keys: bson.D{
					{Key: "questionnaire_id", Value: 1},
					{Key: "period_type", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("idx_trend_date"),
			},
		},
		CollectionAnalyticsBreakdown: {
			{
				Keys: bson.D{
					{Key: "questionnaire_id", Value: 1},
					{Key: "period_type", Value: 1},
					{Key: "period_date", Value: 1},
					{Key: "category", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("idx_breakdown_key_unique"),
			},
		},
	}
}

// IndexedCollections lists the collections that carry managed indexes, in creation order
func IndexedCollections() []string {
	return []string{
		CollectionQuestionnaires,
		CollectionQuestions,
		CollectionResponses,
		CollectionAnswers,
		CollectionAnalyticsKPIs,
		CollectionAnalyticsTrends,
		CollectionAnalyticsBreakdown,
	}
}

// CreateAllIndexes creates all indexes for all collections
// #MIGRATION_DECISION: Indexes created at application startup if they don't exist
func (m *IndexManager) CreateAllIndexes(ctx context.Context) error {
	defs := collectionIndexes()
	for _, name := range IndexedCollections() {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, defs[name]); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}
	return nil
}
