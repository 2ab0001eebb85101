// Package analytics holds the pure computations of the analytics engine:
// period bucketing, category mapping sanitization, KPI, trend and category scoring.
// Nothing in this package performs I/O.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/checkfix-tools/surveypulse_backend/internal/models"
)

// Granularity is the bucket size of a rollup time series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// PeriodKeyLayout is the canonical YYYY-MM-DD form of a period start
const PeriodKeyLayout = "2006-01-02"

// AllGranularities lists every supported granularity in ascending bucket size
var AllGranularities = []Granularity{GranularityDay, GranularityWeek, GranularityMonth, GranularityYear}

// IsValid checks if the Granularity is a supported value
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return true
	}
	return false
}

// String returns the lowercase wire form of the granularity
func (g Granularity) String() string {
	return string(g)
}

// ParseGranularity converts user input into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidGranularity, s)
	}
	return g, nil
}

// ParseGranularities parses a list of granularities, dropping duplicates while keeping order
func ParseGranularities(values []string) ([]Granularity, error) {
	seen := make(map[Granularity]bool, len(values))
	out := make([]Granularity, 0, len(values))
	for _, v := range values {
		g, err := ParseGranularity(v)
		if err != nil {
			return nil, err
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out, nil
}

// DateRange is a half-open interval [Start, End)
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// IsValid reports whether the range is non-empty
func (r DateRange) IsValid() bool {
	return r.Start.Before(r.End)
}

// Days returns the UTC midnight of every calendar day in the range, in order
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := truncateDay(r.Start); d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// PeriodStart returns the start of the bucket containing t, normalized to UTC midnight.
// Weeks start on Monday; a Sunday belongs to the week that began six days earlier.
func PeriodStart(t time.Time, g Granularity) time.Time {
	d := truncateDay(t)
	switch g {
	case GranularityWeek:
		dow := int(d.Weekday())
		diff := 1 - dow
		if dow == 0 {
			diff = -6
		}
		return d.AddDate(0, 0, diff)
	case GranularityMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case GranularityYear:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// PeriodKey returns the canonical YYYY-MM-DD key of the bucket containing t
func PeriodKey(t time.Time, g Granularity) string {
	return PeriodStart(t, g).Format(PeriodKeyLayout)
}

// NextPeriod advances a bucket start by exactly one bucket
func NextPeriod(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return start.AddDate(0, 0, 7)
	case GranularityMonth:
		return start.AddDate(0, 1, 0)
	case GranularityYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodRange returns the half-open range of the bucket starting at (or containing) start
func PeriodRange(start time.Time, g Granularity) DateRange {
	s := PeriodStart(start, g)
	return DateRange{Start: s, End: NextPeriod(s, g)}
}

// BucketStarts walks bucket starts from the bucket containing from up to and including
// the bucket containing to
func BucketStarts(from, to time.Time, g Granularity) []time.Time {
	first := PeriodStart(from, g)
	last := PeriodStart(to, g)
	var starts []time.Time
	for s := first; !s.After(last); s = NextPeriod(s, g) {
		starts = append(starts, s)
	}
	return starts
}

// ParseDate parses a YYYY-MM-DD date or an RFC3339 timestamp into UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(PeriodKeyLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidDateRange, s)
	}
	return t.UTC(), nil
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
