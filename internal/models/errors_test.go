package models

import (
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrNotFound", ErrNotFound, true},
		{"ErrQuestionnaireNotFound", ErrQuestionnaireNotFound, true},
		{"ErrQuestionNotFound", ErrQuestionNotFound, true},
		{"ErrResponseNotFound", ErrResponseNotFound, true},
		{"ErrRollupNotFound", ErrRollupNotFound, true},
		{"Wrapped ErrQuestionnaireNotFound", fmt.Errorf("failed to refresh: %w", ErrQuestionnaireNotFound), true},
		{"Non-NotFound error", ErrInvalidGranularity, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrInvalidInput", ErrInvalidInput, true},
		{"ErrInvalidGranularity", ErrInvalidGranularity, true},
		{"ErrInvalidDateRange", ErrInvalidDateRange, true},
		{"Non-validation error", ErrQuestionnaireNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.expected {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"ErrUnauthorized", ErrUnauthorized, true},
		{"ErrForbidden", ErrForbidden, true},
		{"Non-auth error", ErrQuestionnaireNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.expected {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAggregationMethod_IsValid(t *testing.T) {
	tests := []struct {
		method   AggregationMethod
		expected bool
	}{
		{AggregationWeightedAverage, true},
		{AggregationSimpleAverage, true},
		{AggregationMedian, true},
		{"mode", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			if got := tt.method.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCategoryMapping_Category(t *testing.T) {
	m := NewCategoryMapping()
	m.Categories["service"] = CategorySettings{Weight: 2, Color: "#FF0000", TargetScore: 4.5}

	cs, ok := m.Category("service")
	if !ok || cs.Weight != 2 || cs.TargetScore != 4.5 {
		t.Errorf("Category(service) = %+v, %v", cs, ok)
	}

	cs, ok = m.Category("missing")
	if ok {
		t.Error("Expected unconfigured category to report false")
	}
	if cs.Weight != DefaultMappingWeight || cs.TargetScore != DefaultTargetScore || cs.Color != DefaultCategoryColor {
		t.Errorf("Expected default settings, got %+v", cs)
	}
}
