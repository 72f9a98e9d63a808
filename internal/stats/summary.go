package stats

import "github.com/sadopc/soulsync/internal/journal"

// Summary bundles the analytics shown for one year.
type Summary struct {
	TotalEntries int
	Streak       int
	Average      MoodAverage
	HasAverage   bool
	Tags         []TagCount
	Moods        []MoodPoint
	Distribution [5]int
	Calendar     Calendar
}

// Summarize computes the analytics for year. Streak always counts back from
// today; the other figures cover every entry.
func Summarize(entries []journal.Entry, today journal.Date, year int) Summary {
	avg, ok := AverageMood(entries)
	return Summary{
		TotalEntries: len(entries),
		Streak:       Streak(entries, today),
		Average:      avg,
		HasAverage:   ok,
		Tags:         TagFrequency(entries),
		Moods:        MoodSeries(entries),
		Distribution: Distribution(entries),
		Calendar:     Heatmap(entries, year),
	}
}
