// Package stats derives report views from finalized sessions. Everything
// here is pure: same inputs, same output, no side effects.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"timeledger/internal/domain"
)

// Bucket is a calendar grouping used for aggregation.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// ParseBucket validates a user-supplied bucket name.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketDay, BucketWeek, BucketMonth:
		return Bucket(s), nil
	}
	return "", fmt.Errorf("invalid bucket %q: want day, week or month", s)
}

// Calculate groups sessions whose date falls in the same bucket as refDate,
// sums hours per project, and returns rows sorted by descending hours.
// Sessions referencing an unknown project are skipped; hidden projects
// still count.
func Calculate(sessions []domain.Session, projects []domain.Project, refDate string, bucket Bucket) []domain.ProjectStat {
	ref, err := time.Parse(domain.DateLayout, refDate)
	if err != nil {
		return nil
	}

	hours := make(map[string]float64)
	for _, s := range sessions {
		if !matchBucket(s.Date, ref, refDate, bucket) {
			continue
		}
		if domain.FindProject(projects, s.ProjectID) == nil {
			continue
		}
		hours[s.ProjectID] += s.Hours()
	}

	out := make([]domain.ProjectStat, 0, len(hours))
	for id, h := range hours {
		out = append(out, domain.ProjectStat{
			ProjectID:   id,
			ProjectName: domain.FindProject(projects, id).Name,
			Hours:       h,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].ProjectName < out[j].ProjectName
	})
	return out
}

// Total sums the hours of a stat slice.
func Total(rows []domain.ProjectStat) float64 {
	var total float64
	for _, r := range rows {
		total += r.Hours
	}
	return total
}

// Percent returns hours as a percentage of total, 0 when total is 0.
// Shared between on-screen display and report export; the two must agree.
func Percent(hours, total float64) float64 {
	if total == 0 {
		return 0
	}
	return hours / total * 100
}

// FormatTime renders fractional hours as "Xh Ym", e.g. 2.5 -> "2h 30m".
func FormatTime(hours float64) string {
	h := int(math.Floor(hours))
	m := int(math.Round((hours - float64(h)) * 60))
	return fmt.Sprintf("%dh %dm", h, m)
}

func matchBucket(sessionDate string, ref time.Time, refDate string, bucket Bucket) bool {
	switch bucket {
	case BucketDay:
		return sessionDate == refDate
	case BucketWeek, BucketMonth:
		d, err := time.Parse(domain.DateLayout, sessionDate)
		if err != nil {
			return false
		}
		if bucket == BucketMonth {
			return d.Month() == ref.Month() && d.Year() == ref.Year()
		}
		// ISO week numbers wrap at year boundaries (the last days of
		// December can be week 1), so the week number alone is not a key;
		// the calendar year is compared as well.
		_, sw := d.ISOWeek()
		_, rw := ref.ISOWeek()
		return sw == rw && d.Year() == ref.Year()
	}
	return false
}
