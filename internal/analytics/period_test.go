package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Time
		g        Granularity
		expected string
	}{
		{"day keeps date", time.Date(2024, 3, 6, 17, 45, 0, 0, time.UTC), GranularityDay, "2024-03-06"},
		{"week from wednesday", date(2024, 3, 6), GranularityWeek, "2024-03-04"},
		{"week from monday", date(2024, 3, 4), GranularityWeek, "2024-03-04"},
		{"week from sunday goes to previous monday", date(2024, 3, 10), GranularityWeek, "2024-03-04"},
		{"week across month boundary", date(2024, 3, 2), GranularityWeek, "2024-02-26"},
		{"week across year boundary", date(2025, 1, 1), GranularityWeek, "2024-12-30"},
		{"month", date(2024, 2, 29), GranularityMonth, "2024-02-01"},
		{"year", date(2024, 11, 15), GranularityYear, "2024-01-01"},
		{"non-utc input normalized", time.Date(2024, 3, 6, 1, 0, 0, 0, time.FixedZone("CET", 3600)), GranularityDay, "2024-03-06"},
		{"offset crossing midnight", time.Date(2024, 3, 6, 0, 30, 0, 0, time.FixedZone("CET", 3600)), GranularityDay, "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PeriodKey(tt.in, tt.g))
		})
	}
}

func TestPeriodStart_SundayBelongsToPreviousWeek(t *testing.T) {
	sunday := date(2024, 3, 10)
	require.Equal(t, time.Sunday, sunday.Weekday())

	start := PeriodStart(sunday, GranularityWeek)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, date(2024, 3, 4), start)
}

func TestPeriodStart_Idempotent(t *testing.T) {
	base := time.Date(2023, 12, 1, 13, 7, 0, 0, time.UTC)
	for i := 0; i < 800; i++ {
		d := base.AddDate(0, 0, i)
		for _, g := range AllGranularities {
			once := PeriodStart(d, g)
			assert.Equal(t, once, PeriodStart(once, g), "granularity %s date %s", g, d)
		}
	}
}

func TestPeriodRange_Length(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		g        Granularity
		expected time.Duration
	}{
		{"day", date(2024, 3, 6), GranularityDay, 24 * time.Hour},
		{"week", date(2024, 3, 4), GranularityWeek, 7 * 24 * time.Hour},
		{"leap february", date(2024, 2, 1), GranularityMonth, 29 * 24 * time.Hour},
		{"march", date(2024, 3, 1), GranularityMonth, 31 * 24 * time.Hour},
		{"leap year", date(2024, 1, 1), GranularityYear, 366 * 24 * time.Hour},
		{"common year", date(2023, 1, 1), GranularityYear, 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PeriodRange(tt.start, tt.g)
			assert.Equal(t, tt.expected, r.End.Sub(r.Start))
			assert.True(t, r.Contains(r.Start))
			assert.False(t, r.Contains(r.End))
			assert.True(t, r.Contains(r.End.Add(-time.Nanosecond)))
		})
	}
}

func TestPeriodRange_NormalizesStart(t *testing.T) {
	r := PeriodRange(date(2024, 3, 7), GranularityWeek)
	assert.Equal(t, date(2024, 3, 4), r.Start)
	assert.Equal(t, date(2024, 3, 11), r.End)
	assert.Len(t, r.Days(), 7)
}

func TestBucketStarts(t *testing.T) {
	now := date(2024, 3, 31)
	from := now.AddDate(0, 0, -30)

	days := BucketStarts(from, now, GranularityDay)
	assert.Len(t, days, 31)
	assert.Equal(t, date(2024, 3, 1), days[0])
	assert.Equal(t, now, days[len(days)-1])

	months := BucketStarts(from, now, GranularityMonth)
	assert.Equal(t, []time.Time{date(2024, 3, 1)}, months)

	weeks := BucketStarts(from, now, GranularityWeek)
	require.NotEmpty(t, weeks)
	assert.Equal(t, date(2024, 2, 26), weeks[0])
	assert.Equal(t, date(2024, 3, 25), weeks[len(weeks)-1])
	assert.Len(t, weeks, 5)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(" Week ")
	require.NoError(t, err)
	assert.Equal(t, GranularityWeek, g)

	_, err = ParseGranularity("hour")
	assert.Error(t, err)

	gs, err := ParseGranularities([]string{"day", "month", "day"})
	require.NoError(t, err)
	assert.Equal(t, []Granularity{GranularityDay, GranularityMonth}, gs)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 6), d)

	d, err = ParseDate("2024-03-06T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("06/03/2024")
	assert.Error(t, err)
}
