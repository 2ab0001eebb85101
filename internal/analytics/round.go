package analytics

import "math"

// roundHalfUp rounds to the nearest integer with .5 going up
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round2 rounds to two decimals with .5 going up
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// percent returns round(part / total * 100), or nil when total is zero
func percent(part, total int) *int {
	if total == 0 {
		return nil
	}
	v := int(roundHalfUp(float64(part) / float64(total) * 100))
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
