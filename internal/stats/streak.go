// Package stats derives streaks, calendar heatmaps, mood averages and tag
// frequencies from journal entries. Every function is pure and returns zero
// values for an empty collection.
package stats

import (
	"sort"

	"github.com/sadopc/soulsync/internal/journal"
)

// distinctDates returns the set of non-zero entry dates, newest first.
func distinctDates(entries []journal.Entry) []journal.Date {
	seen := make(map[journal.Date]bool, len(entries))
	var dates []journal.Date
	for _, e := range entries {
		if e.EntryDate.IsZero() || seen[e.EntryDate] {
			continue
		}
		seen[e.EntryDate] = true
		dates = append(dates, e.EntryDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// Streak counts consecutive days with at least one entry, anchored at today
// or yesterday. A most recent entry older than yesterday gives 0.
func Streak(entries []journal.Entry, today journal.Date) int {
	dates := distinctDates(entries)
	if len(dates) == 0 {
		return 0
	}
	latest := dates[0]
	if !latest.Equal(today) && !latest.Equal(today.AddDays(-1)) {
		return 0
	}

	streak := 1
	current := latest
	for _, d := range dates[1:] {
		if !d.Before(current) {
			break
		}
		if !d.Equal(current.AddDays(-1)) {
			break
		}
		streak++
		current = d
	}
	return streak
}
