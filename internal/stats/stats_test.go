package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeledger/internal/domain"
)

var projects = []domain.Project{
	{ID: "p1", Name: "Website"},
	{ID: "p2", Name: "Backend"},
	{ID: "p3", Name: "Archive", Hidden: true},
}

func session(project, date string, durationSec int64) domain.Session {
	return domain.Session{ProjectID: project, Date: date, DurationSec: durationSec}
}

func TestCalculateDayBucket(t *testing.T) {
	sessions := []domain.Session{
		session("p1", "2024-03-10", 3600),
		session("p1", "2024-03-10", 1800),
		session("p1", "2024-03-11", 7200),
	}

	rows := Calculate(sessions, projects, "2024-03-10", BucketDay)
	require.Len(t, rows, 1)
	assert.Equal(t, "Website", rows[0].ProjectName)
	assert.InDelta(t, 1.5, rows[0].Hours, 1e-9)

	rows = Calculate(sessions, projects, "2024-03-12", BucketDay)
	assert.Empty(t, rows)
}

func TestCalculateMonthBucketSumsAcrossDays(t *testing.T) {
	sessions := []domain.Session{
		session("p1", "2024-01-05", 3600),
		session("p1", "2024-01-25", 5400),
		session("p1", "2024-02-01", 3600),
	}

	rows := Calculate(sessions, projects, "2024-01-15", BucketMonth)
	require.Len(t, rows, 1)
	assert.InDelta(t, 2.5, rows[0].Hours, 1e-9)
}

func TestCalculateMonthBucketDifferentYears(t *testing.T) {
	sessions := []domain.Session{
		session("p1", "2023-03-10", 3600),
	}
	rows := Calculate(sessions, projects, "2024-03-10", BucketMonth)
	assert.Empty(t, rows, "same month in another year must not match")
}

func TestCalculateWeekBucket(t *testing.T) {
	// 2024-03-10 is a Sunday in ISO week 10; 2024-03-04 the Monday.
	sessions := []domain.Session{
		session("p1", "2024-03-04", 3600),
		session("p1", "2024-03-10", 3600),
		session("p1", "2024-03-11", 3600), // week 11
	}
	rows := Calculate(sessions, projects, "2024-03-06", BucketWeek)
	require.Len(t, rows, 1)
	assert.InDelta(t, 2.0, rows[0].Hours, 1e-9)
}

func TestCalculateWeekBucketCrossYearCollision(t *testing.T) {
	// 2019-12-31 and 2024-12-31 both fall in ISO week 1 of the next
	// year; the year comparison must keep them apart.
	sessions := []domain.Session{
		session("p1", "2019-12-31", 3600),
	}
	rows := Calculate(sessions, projects, "2024-12-31", BucketWeek)
	assert.Empty(t, rows)
}

func TestCalculateSortsByDescendingHours(t *testing.T) {
	sessions := []domain.Session{
		session("p1", "2024-03-10", 1800),
		session("p2", "2024-03-10", 7200),
	}
	rows := Calculate(sessions, projects, "2024-03-10", BucketDay)
	require.Len(t, rows, 2)
	assert.Equal(t, "Backend", rows[0].ProjectName)
	assert.Equal(t, "Website", rows[1].ProjectName)
}

func TestCalculateIncludesHiddenProjects(t *testing.T) {
	sessions := []domain.Session{
		session("p3", "2024-03-10", 3600),
	}
	rows := Calculate(sessions, projects, "2024-03-10", BucketDay)
	require.Len(t, rows, 1)
	assert.Equal(t, "Archive", rows[0].ProjectName)
}

func TestCalculateSkipsUnknownProjects(t *testing.T) {
	sessions := []domain.Session{
		session("deleted", "2024-03-10", 3600),
	}
	rows := Calculate(sessions, projects, "2024-03-10", BucketDay)
	assert.Empty(t, rows)
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 25.0, Percent(2, 8), 1e-9)
	assert.InDelta(t, 75.0, Percent(6, 8), 1e-9)
	assert.Zero(t, Percent(5, 0), "zero total must not divide by zero")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2h 30m", FormatTime(2.5))
	assert.Equal(t, "0h 0m", FormatTime(0))
	assert.Equal(t, "1h 15m", FormatTime(1.25))
	assert.Equal(t, "0h 1m", FormatTime(1.0/60))
}

func TestParseBucket(t *testing.T) {
	for _, valid := range []string{"day", "week", "month"} {
		b, err := ParseBucket(valid)
		require.NoError(t, err)
		assert.Equal(t, Bucket(valid), b)
	}
	_, err := ParseBucket("year")
	assert.Error(t, err)
}
