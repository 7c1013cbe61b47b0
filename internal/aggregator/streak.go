package aggregator

import (
	"sort"
	"time"

	"github.com/projectpleasure/pleasure/internal/activity"
)

const day = 24 * time.Hour

// MaxStreak returns the longest run of consecutive calendar days that have at
// least one record. Several records on one day count once.
func MaxStreak(records []activity.Record) int {
	seen := make(map[time.Time]struct{}, len(records))
	days := make([]time.Time, 0, len(records))
	for _, rec := range records {
		d := activity.Day(rec.Date)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	maxStreak := 0
	current := 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == day {
			current++
		} else {
			current = 1
		}
		if current > maxStreak {
			maxStreak = current
		}
	}
	return maxStreak
}

// CurrentStreak counts consecutive recorded days ending today. When today has
// no record yet the run may end yesterday instead.
func CurrentStreak(records []activity.Record, today time.Time) int {
	days := make(map[time.Time]struct{}, len(records))
	for _, rec := range records {
		days[activity.Day(rec.Date)] = struct{}{}
	}

	check := activity.Day(today)
	if _, ok := days[check]; !ok {
		check = check.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[check]; !ok {
			return streak
		}
		streak++
		check = check.AddDate(0, 0, -1)
	}
}
