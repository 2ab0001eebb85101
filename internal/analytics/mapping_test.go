package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

func assertWithinBounds(t *testing.T, m models.CategoryMapping) {
	t.Helper()
	for id, q := range m.Questions {
		assert.GreaterOrEqual(t, q.Weight, models.MinMappingWeight, "question %s weight", id)
		assert.LessOrEqual(t, q.Weight, models.MaxMappingWeight, "question %s weight", id)
		for label, score := range q.Options {
			assert.GreaterOrEqual(t, score, models.MinOptionScore, "option %s", label)
			assert.LessOrEqual(t, score, models.MaxOptionScore, "option %s", label)
		}
	}
	for name, c := range m.Categories {
		assert.GreaterOrEqual(t, c.Weight, models.MinMappingWeight, "category %s weight", name)
		assert.LessOrEqual(t, c.Weight, models.MaxMappingWeight, "category %s weight", name)
		assert.GreaterOrEqual(t, c.TargetScore, models.MinTargetScore, "category %s target", name)
		assert.LessOrEqual(t, c.TargetScore, models.MaxTargetScore, "category %s target", name)
	}
	assert.True(t, m.Settings.AggregationMethod.IsValid())
	assert.NotEmpty(t, m.Settings.DefaultCategory)
}

func TestValidateCategoryMapping_MalformedInput(t *testing.T) {
	inputs := []struct {
		name string
		raw  interface{}
	}{
		{"nil", nil},
		{"string garbage", "not json at all"},
		{"number", 42},
		{"slice", []interface{}{1, "two", nil}},
		{"bool", true},
		{"questions is a string", map[string]interface{}{"questions": "nope"}},
		{"categories is a list", map[string]interface{}{"categories": []interface{}{"a", "b"}}},
		{"settings wrong types", map[string]interface{}{"settings": map[string]interface{}{
			"enable_category_weights": "maybe",
			"default_category":        12,
			"aggregation_method":      []interface{}{"median"},
		}}},
		{"deeply nested", map[string]interface{}{"questions": map[string]interface{}{
			"q1": map[string]interface{}{
				"weight":  map[string]interface{}{"nested": map[string]interface{}{"deeper": 3}},
				"options": map[string]interface{}{"A": map[string]interface{}{"x": 1}, "B": "7"},
			},
		}}},
		{"extreme numbers", map[string]interface{}{
			"questions": map[string]interface{}{
				"q1": map[string]interface{}{"weight": 1e308, "options": map[string]interface{}{"A": -1e308, "B": math.Inf(1)}},
				"q2": map[string]interface{}{"weight": math.NaN()},
			},
			"categories": map[string]interface{}{
				"c": map[string]interface{}{"weight": -4, "target_score": 99},
			},
		}},
		{"json bytes", []byte(`{"questions":{"q1":{"weight":"9"}}}`)},
		{"broken json bytes", []byte(`{"questions":`)},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			var m models.CategoryMapping
			require.NotPanics(t, func() { m = ValidateCategoryMapping(tt.raw) })
			assertWithinBounds(t, m)
		})
	}
}

func TestValidateCategoryMapping_EmptyYieldsDefaults(t *testing.T) {
	m := ValidateCategoryMapping(nil)
	assert.Empty(t, m.Questions)
	assert.Empty(t, m.Categories)
	assert.True(t, m.Settings.EnableCategoryWeights)
	assert.Equal(t, models.DefaultCategoryName, m.Settings.DefaultCategory)
	assert.Equal(t, models.AggregationWeightedAverage, m.Settings.AggregationMethod)
}

func TestValidateCategoryMapping_ClampsAndDefaults(t *testing.T) {
	raw := map[string]interface{}{
		"questions": map[string]interface{}{
			"q-high":    map[string]interface{}{"category": " service ", "weight": 12.0},
			"q-low":     map[string]interface{}{"weight": -2},
			"q-bad":     map[string]interface{}{"weight": "heavy"},
			"q-string":  map[string]interface{}{"weight": "2.5"},
			"q-options": map[string]interface{}{"options": map[string]interface{}{"Great": 15, "Bad": -3, "Ok": 5.5, "Junk": "x"}},
			"   ":       map[string]interface{}{"weight": 2},
			"q-scalar":  7,
		},
		"categories": map[string]interface{}{
			"service": map[string]interface{}{
				"weight":      3,
				"color":       "#abc",
				"description": "  Support quality  ",
				"targetScore": 4.5,
			},
			"product": map[string]interface{}{
				"color":        "red",
				"target_score": -1,
			},
		},
		"settings": map[string]interface{}{
			"enableCategoryWeights": false,
			"defaultCategory":       "general",
			"aggregationMethod":     "MEDIAN",
		},
	}

	m := ValidateCategoryMapping(raw)

	assert.Equal(t, "service", m.Questions["q-high"].Category)
	assert.Equal(t, models.MaxMappingWeight, m.Questions["q-high"].Weight)
	assert.Equal(t, models.MinMappingWeight, m.Questions["q-low"].Weight)
	assert.Equal(t, models.DefaultMappingWeight, m.Questions["q-bad"].Weight)
	assert.Equal(t, 2.5, m.Questions["q-string"].Weight)
	assert.Equal(t, map[string]float64{"Great": 10, "Bad": 0, "Ok": 5.5}, m.Questions["q-options"].Options)
	assert.NotContains(t, m.Questions, "q-scalar")
	assert.Len(t, m.Questions, 5)

	service := m.Categories["service"]
	assert.Equal(t, 3.0, service.Weight)
	assert.Equal(t, "#abc", service.Color)
	assert.Equal(t, "Support quality", service.Description)
	assert.Equal(t, 4.5, service.TargetScore)

	product := m.Categories["product"]
	assert.Equal(t, models.DefaultMappingWeight, product.Weight)
	assert.Equal(t, models.DefaultCategoryColor, product.Color)
	assert.Equal(t, 0.0, product.TargetScore)

	assert.False(t, m.Settings.EnableCategoryWeights)
	assert.Equal(t, "general", m.Settings.DefaultCategory)
	assert.Equal(t, models.AggregationMedian, m.Settings.AggregationMethod)
}

func TestValidateCategoryMapping_Caps(t *testing.T) {
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'x'
	}
	raw := map[string]interface{}{
		"questions": map[string]interface{}{
			string(long[:101]): map[string]interface{}{"weight": 2},
			"q1": map[string]interface{}{
				"category": string(long[:101]),
				"options":  map[string]interface{}{string(long[:201]): 3, "fine": 4},
			},
		},
		"categories": map[string]interface{}{
			"c": map[string]interface{}{"description": string(long)},
		},
	}

	m := ValidateCategoryMapping(raw)
	assert.Len(t, m.Questions, 1)
	assert.Empty(t, m.Questions["q1"].Category)
	assert.Equal(t, map[string]float64{"fine": 4}, m.Questions["q1"].Options)
	assert.Len(t, []rune(m.Categories["c"].Description), models.MaxDescriptionLength)
}

func TestValidateCategoryMapping_BSONAndJSONInputs(t *testing.T) {
	doc := primitive.D{
		{Key: "categories", Value: primitive.D{
			{Key: "service", Value: primitive.M{"weight": int32(2), "target_score": int64(4)}},
		}},
		{Key: "settings", Value: primitive.M{"aggregation_method": "simple_average"}},
	}
	m := ValidateCategoryMapping(doc)
	assert.Equal(t, 2.0, m.Categories["service"].Weight)
	assert.Equal(t, 4.0, m.Categories["service"].TargetScore)
	assert.Equal(t, models.AggregationSimpleAverage, m.Settings.AggregationMethod)

	m = ValidateCategoryMapping(`{"categories":{"product":{"weight":0.01}}}`)
	assert.Equal(t, models.MinMappingWeight, m.Categories["product"].Weight)
}

func TestValidateCategoryMapping_TypedValues(t *testing.T) {
	raw := map[string]interface{}{
		"questions": map[string]models.QuestionMapping{
			"q1": {Category: "service", Weight: 2, Options: map[string]float64{"Yes": 5}},
		},
		"categories": map[string]*models.CategorySettings{
			"service": {Weight: 3, Color: "#10B981", TargetScore: 4.5},
			"broken":  nil,
		},
	}

	m := ValidateCategoryMapping(raw)
	require.Contains(t, m.Questions, "q1")
	assert.Equal(t, "service", m.Questions["q1"].Category)
	assert.Equal(t, 2.0, m.Questions["q1"].Weight)
	assert.Equal(t, map[string]float64{"Yes": 5}, m.Questions["q1"].Options)
	require.Contains(t, m.Categories, "service")
	assert.Equal(t, 3.0, m.Categories["service"].Weight)
	assert.Equal(t, "#10B981", m.Categories["service"].Color)
	assert.Equal(t, 4.5, m.Categories["service"].TargetScore)
	assert.NotContains(t, m.Categories, "broken")

	fromPtr := ValidateCategoryMapping(&m)
	assert.Equal(t, m, fromPtr)
}

func TestValidateCategoryMapping_Idempotent(t *testing.T) {
	raw := map[string]interface{}{
		"questions":  map[string]interface{}{"q1": map[string]interface{}{"category": "a", "weight": 9}},
		"categories": map[string]interface{}{"a": map[string]interface{}{"color": "#123456"}},
	}
	once := ValidateCategoryMapping(raw)
	twice := ValidateCategoryMapping(once)
	assert.Equal(t, once, twice)
}

func TestResolveQuestionCategory(t *testing.T) {
	q := models.Question{ID: primitive.NewObjectID(), Category: "delivery"}
	bare := models.Question{ID: primitive.NewObjectID()}

	mapping := ValidateCategoryMapping(map[string]interface{}{
		"questions": map[string]interface{}{
			q.ID.Hex(): map[string]interface{}{"category": "service", "weight": 2, "options": map[string]interface{}{"Yes": 5}},
		},
	})

	res := ResolveQuestionCategory(q, mapping)
	assert.Equal(t, "service", res.Category)
	assert.Equal(t, 2.0, res.Weight)
	assert.Equal(t, map[string]float64{"Yes": 5}, res.Options)

	res = ResolveQuestionCategory(models.Question{ID: primitive.NewObjectID(), Category: "delivery"}, mapping)
	assert.Equal(t, "delivery", res.Category)
	assert.Equal(t, models.DefaultMappingWeight, res.Weight)
	assert.Empty(t, res.Options)

	res = ResolveQuestionCategory(bare, mapping)
	assert.Equal(t, models.DefaultCategoryName, res.Category)

	custom := ValidateCategoryMapping(map[string]interface{}{"settings": map[string]interface{}{"default_category": "general"}})
	assert.Equal(t, "general", ResolveQuestionCategory(bare, custom).Category)
}
