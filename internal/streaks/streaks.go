// Package streaks derives reading statistics from the session log.
//
// The streak functions are pure: they take a set of calendar days and an
// explicit "today" and never read the clock. Service does the I/O and the
// time zone bucketing.
package streaks

import (
	"sort"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Day is a calendar date counted in days since 1970-01-01.
type Day int64

func NewDay(year int, month time.Month, day int) Day {
	return Day(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DayOf returns the calendar date of t as seen in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return NewDay(y, m, d)
}

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// DistinctDays buckets timestamps into calendar days of loc, ascending and
// without duplicates.
func DistinctDays(starts []time.Time, loc *time.Location) []Day {
	seen := make(map[Day]bool, len(starts))
	days := make([]Day, 0, len(starts))
	for _, ts := range starts {
		d := DayOf(ts, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// CurrentStreak counts consecutive days ending today. A day without a session
// today means 0, there is no grace day.
func CurrentStreak(days []Day, today Day) int {
	set := make(map[Day]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	streak := 0
	for d := today; set[d]; d-- {
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days. Input order and
// duplicates do not matter.
func LongestStreak(days []Day) int {
	if len(days) == 0 {
		return 0
	}
	sorted := append([]Day(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		switch sorted[i] - sorted[i-1] {
		case 0:
			continue
		case 1:
			run++
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Summary is the response of the streak analyzer.
type Summary struct {
	Sessions         int64 `json:"sessions"`
	TotalDurationSec int64 `json:"totalDurationSec"`
	CurrentStreak    int   `json:"currentStreak"`
	LongestStreak    int   `json:"longestStreak"`
}
