package models

// AggregationMethod selects how per-answer scores are combined into a category score
type AggregationMethod string

const (
	AggregationWeightedAverage AggregationMethod = "weighted_average"
	AggregationSimpleAverage   AggregationMethod = "simple_average"
	AggregationMedian          AggregationMethod = "median"
)

// IsValid checks if the AggregationMethod is a valid value
func (m AggregationMethod) IsValid() bool {
	switch m {
	case AggregationWeightedAverage, AggregationSimpleAverage, AggregationMedian:
		return true
	}
	return false
}

// Category mapping bounds and defaults
// #BUSINESS_RULE: Values outside these bounds are clamped, never rejected
const (
	MinMappingWeight      = 0.1
	MaxMappingWeight      = 5.0
	DefaultMappingWeight  = 1.0
	MinOptionScore        = 0.0
	MaxOptionScore        = 10.0
	MinTargetScore        = 0.0
	MaxTargetScore        = 10.0
	DefaultTargetScore    = 4.0
	DefaultCategoryColor  = "#6366F1"
	DefaultCategoryName   = "uncategorized"
	MaxDescriptionLength  = 500
	MaxCategoryNameLength = 100
	MaxQuestionKeyLength  = 100
	MaxOptionLabelLength  = 200
)

// CategoryMapping is the sanitized form of a questionnaire's category configuration
// #NORMALIZATION_DECISION: Stored embedded on the questionnaire, keyed by question ID hex
type CategoryMapping struct {
	Questions  map[string]QuestionMapping  `bson:"questions" json:"questions"`
	Categories map[string]CategorySettings `bson:"categories" json:"categories"`
	Settings   MappingSettings             `bson:"settings" json:"settings"`
}

// QuestionMapping overrides the category, weight and option scores of one question
type QuestionMapping struct {
	Category string             `bson:"category" json:"category"`
	Weight   float64            `bson:"weight" json:"weight"`
	Options  map[string]float64 `bson:"options" json:"options"`
}

// CategorySettings configures one category
type CategorySettings struct {
	Weight      float64 `bson:"weight" json:"weight"`
	Color       string  `bson:"color" json:"color"`
	Description string  `bson:"description" json:"description"`
	TargetScore float64 `bson:"target_score" json:"target_score"`
}

// MappingSettings holds the mapping-wide defaults
type MappingSettings struct {
	EnableCategoryWeights bool              `bson:"enable_category_weights" json:"enable_category_weights"`
	DefaultCategory       string            `bson:"default_category" json:"default_category"`
	AggregationMethod     AggregationMethod `bson:"aggregation_method" json:"aggregation_method"`
}

// DefaultMappingSettings returns the settings used when none are configured
func DefaultMappingSettings() MappingSettings {
	return MappingSettings{
		EnableCategoryWeights: true,
		DefaultCategory:       DefaultCategoryName,
		AggregationMethod:     AggregationWeightedAverage,
	}
}

// DefaultCategorySettings returns the settings of a category with nothing configured
func DefaultCategorySettings() CategorySettings {
	return CategorySettings{
		Weight:      DefaultMappingWeight,
		Color:       DefaultCategoryColor,
		TargetScore: DefaultTargetScore,
	}
}

// NewCategoryMapping returns an empty mapping with default settings
func NewCategoryMapping() CategoryMapping {
	return CategoryMapping{
		Questions:  map[string]QuestionMapping{},
		Categories: map[string]CategorySettings{},
		Settings:   DefaultMappingSettings(),
	}
}

// Category returns the configured settings for name, or defaults when unconfigured
func (m CategoryMapping) Category(name string) (CategorySettings, bool) {
	if cs, ok := m.Categories[name]; ok {
		return cs, true
	}
	return DefaultCategorySettings(), false
}
