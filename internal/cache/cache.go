// Package cache provides the dashboard read cache: a shared Redis backend with an
// in-process fallback. Cache failures never reach callers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrClosed is returned by a cache used after Close
var ErrClosed = errors.New("cache closed")

// Cache is a byte-oriented TTL cache
// #IMPLEMENTATION_DECISION: Constructed once and injected; no package-level client
type Cache interface {
	// Get returns the value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error

	// Name identifies the backend in logs and metrics
	Name() string
}

// KeyPrefix namespaces every analytics cache key
const KeyPrefix = "analytics"

// QuestionnairePrefix returns the prefix shared by every key of a questionnaire
func QuestionnairePrefix(questionnaireID primitive.ObjectID) string {
	return fmt.Sprintf("%s:%s:", KeyPrefix, questionnaireID.Hex())
}

// DashboardKey is the key of a cached dashboard response.
// The current period is part of the key so a period rollover reads as a miss.
func DashboardKey(questionnaireID primitive.ObjectID, granularity, periodDate string) string {
	return QuestionnairePrefix(questionnaireID) + "dashboard:" + granularity + ":" + periodDate
}

// PerformanceKey is the key of a cached category performance report
func PerformanceKey(questionnaireID primitive.ObjectID, from, to time.Time) string {
	return fmt.Sprintf("%sperformance:%d:%d", QuestionnairePrefix(questionnaireID), from.Unix(), to.Unix())
}

// GetJSON reads and decodes a cached value. Any failure reads as a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// SetJSON encodes and stores a value
func SetJSON(ctx context.Context, c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}
