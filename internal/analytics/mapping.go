package analytics

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateCategoryMapping turns an arbitrary stored or submitted mapping into a sanitized
// CategoryMapping. It never fails: unknown keys and malformed entries are dropped, numbers
// are clamped into range and missing values take their documented defaults.
// #BUSINESS_RULE: reject nothing, default everything
func ValidateCategoryMapping(raw interface{}) models.CategoryMapping {
	out := models.NewCategoryMapping()

	root := asMap(raw)
	if root == nil {
		return out
	}

	if questions := asMap(field(root, "questions")); questions != nil {
		for key, value := range questions {
			id, ok := capKey(key, models.MaxQuestionKeyLength)
			if !ok {
				continue
			}
			qm, ok := sanitizeQuestionMapping(value)
			if !ok {
				continue
			}
			out.Questions[id] = qm
		}
	}

	if categories := asMap(field(root, "categories")); categories != nil {
		for key, value := range categories {
			name, ok := capKey(key, models.MaxCategoryNameLength)
			if !ok {
				continue
			}
			cs, ok := sanitizeCategorySettings(value)
			if !ok {
				continue
			}
			out.Categories[name] = cs
		}
	}

	if settings := asMap(field(root, "settings")); settings != nil {
		out.Settings = sanitizeSettings(settings)
	}

	return out
}

func sanitizeQuestionMapping(value interface{}) (models.QuestionMapping, bool) {
	m := asMap(value)
	if m == nil {
		return models.QuestionMapping{}, false
	}

	qm := models.QuestionMapping{
		Weight:  weightOrDefault(field(m, "weight")),
		Options: map[string]float64{},
	}
	if s, ok := asString(field(m, "category")); ok {
		if name, ok := capKey(s, models.MaxCategoryNameLength); ok {
			qm.Category = name
		}
	}
	if opts := asMap(field(m, "options")); opts != nil {
		for label, raw := range opts {
			l, ok := capKey(label, models.MaxOptionLabelLength)
			if !ok {
				continue
			}
			score, ok := asFloat(raw)
			if !ok {
				continue
			}
			qm.Options[l] = clamp(score, models.MinOptionScore, models.MaxOptionScore)
		}
	}
	return qm, true
}

func sanitizeCategorySettings(value interface{}) (models.CategorySettings, bool) {
	m := asMap(value)
	if m == nil {
		return models.CategorySettings{}, false
	}

	cs := models.DefaultCategorySettings()
	cs.Weight = weightOrDefault(field(m, "weight"))
	if s, ok := asString(field(m, "color")); ok && hexColorPattern.MatchString(s) {
		cs.Color = s
	}
	if s, ok := asString(field(m, "description")); ok {
		cs.Description = truncateRunes(s, models.MaxDescriptionLength)
	}
	if v, ok := asFloat(field(m, "target_score", "targetScore")); ok {
		cs.TargetScore = clamp(v, models.MinTargetScore, models.MaxTargetScore)
	}
	return cs, true
}

func sanitizeSettings(m map[string]interface{}) models.MappingSettings {
	s := models.DefaultMappingSettings()
	if b, ok := asBool(field(m, "enable_category_weights", "enableCategoryWeights")); ok {
		s.EnableCategoryWeights = b
	}
	if v, ok := asString(field(m, "default_category", "defaultCategory")); ok {
		if name, ok := capKey(v, models.MaxCategoryNameLength); ok {
			s.DefaultCategory = name
		}
	}
	if v, ok := asString(field(m, "aggregation_method", "aggregationMethod")); ok {
		method := models.AggregationMethod(strings.ToLower(v))
		if method.IsValid() {
			s.AggregationMethod = method
		}
	}
	return s
}

// ResolvedQuestion is the category, weight and option scores that apply to one question
type ResolvedQuestion struct {
	Category string
	Weight   float64
	Options  map[string]float64
}

// ResolveQuestionCategory applies the mapping to a question. A question override wins;
// otherwise the question's own category is used, then the mapping's default category.
func ResolveQuestionCategory(q models.Question, mapping models.CategoryMapping) ResolvedQuestion {
	res := ResolvedQuestion{
		Category: strings.TrimSpace(q.Category),
		Weight:   models.DefaultMappingWeight,
		Options:  map[string]float64{},
	}

	if qm, ok := mapping.Questions[q.ID.Hex()]; ok {
		if qm.Category != "" {
			res.Category = qm.Category
		}
		res.Weight = qm.Weight
		if qm.Options != nil {
			res.Options = qm.Options
		}
	}

	if res.Category == "" {
		res.Category = mapping.Settings.DefaultCategory
	}
	if res.Category == "" {
		res.Category = models.DefaultCategoryName
	}
	return res
}

// EffectiveWeight is the question weight, scaled by the category weight when category
// weights are enabled and the category is configured
func EffectiveWeight(res ResolvedQuestion, mapping models.CategoryMapping) float64 {
	w := res.Weight
	if !mapping.Settings.EnableCategoryWeights {
		return w
	}
	if cs, ok := mapping.Categories[res.Category]; ok {
		w *= cs.Weight
	}
	return w
}

func weightOrDefault(v interface{}) float64 {
	w, ok := asFloat(v)
	if !ok {
		return models.DefaultMappingWeight
	}
	return clamp(w, models.MinMappingWeight, models.MaxMappingWeight)
}

// field returns the first present value among the given keys
func field(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// asMap converts the shapes a mapping arrives in (decoded JSON, BSON documents, raw JSON)
// into a plain string-keyed map. Anything else yields nil.
func asMap(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return t
	case primitive.M:
		return map[string]interface{}(t)
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m
	case json.RawMessage:
		return decodeJSONMap(t)
	case []byte:
		return decodeJSONMap(t)
	case string:
		return decodeJSONMap([]byte(t))
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m
	case rv.Kind() == reflect.Struct:
		// typed values such as models.CategoryMapping or models.QuestionMapping go through their JSON form
		return decodeJSONMap(mustJSON(rv.Interface()))
	}
	return nil
}

func decodeJSONMap(data []byte) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// asFloat accepts any numeric type or numeric string; NaN and infinities are rejected
func asFloat(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// capKey trims a map key and rejects it when empty or longer than max runes
func capKey(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > max {
		return "", false
	}
	return s, true
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
