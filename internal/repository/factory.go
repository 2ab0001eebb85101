// Package repository provides data access layer factories
// #IMPLEMENTATION_DECISION: Factory functions wrap raw MongoDB constructors for our database.Client
package repository

import (
	"github.com/checkfix-tools/surveypulse_backend/internal/database"
)

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(client *database.Client) QuestionnaireRepository {
	return NewMongoQuestionnaireRepository(client.Database())
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(client *database.Client) QuestionRepository {
	return NewMongoQuestionRepository(client.Database())
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(client *database.Client) ResponseRepository {
	return NewMongoResponseRepository(client.Database())
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(client *database.Client) AnswerRepository {
	return NewMongoAnswerRepository(client.Database())
}

// NewRollupRepository creates a new rollup repository using our database client
func NewRollupRepository(client *database.Client) RollupRepository {
	return NewMongoRollupRepository(client.Database())
}

// Repositories bundles every repository the analytics engine needs
type Repositories struct {
	Questionnaires QuestionnaireRepository
	Questions      QuestionRepository
	Responses      ResponseRepository
	Answers        AnswerRepository
	Rollups        RollupRepository
}

// NewRepositories creates all repositories from one database client
func NewRepositories(client *database.Client) Repositories {
	return Repositories{
		Questionnaires: NewQuestionnaireRepository(client),
		Questions:      NewQuestionRepository(client),
		Responses:      NewResponseRepository(client),
		Answers:        NewAnswerRepository(client),
		Rollups:        NewRollupRepository(client),
	}
}
