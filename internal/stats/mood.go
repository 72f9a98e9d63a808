package stats

import (
	"math"
	"sort"

	"github.com/sadopc/soulsync/internal/journal"
)

// MoodAverage is the mean mood, rounded to one decimal, and the level
// closest to it.
type MoodAverage struct {
	Value float64
	Level journal.MoodLevel
	Count int
}

// AverageMood reports false when no entry has a mood.
func AverageMood(entries []journal.Entry) (MoodAverage, bool) {
	var sum, count int
	for _, e := range entries {
		if e.Mood == nil {
			continue
		}
		sum += int(*e.Mood)
		count++
	}
	if count == 0 {
		return MoodAverage{}, false
	}
	mean := math.Round(float64(sum)/float64(count)*10) / 10
	return MoodAverage{Value: mean, Level: nearestMood(mean), Count: count}, true
}

// nearestMood breaks ties toward the lower level.
func nearestMood(v float64) journal.MoodLevel {
	best := journal.MoodOptions[0].Level
	bestDist := math.Abs(v - float64(best))
	for _, o := range journal.MoodOptions[1:] {
		if d := math.Abs(v - float64(o.Level)); d < bestDist {
			best, bestDist = o.Level, d
		}
	}
	return best
}

type MoodPoint struct {
	Date        journal.Date
	Mood        journal.MoodLevel
	Description string
}

// MoodSeries returns the mood-bearing entries oldest first.
func MoodSeries(entries []journal.Entry) []MoodPoint {
	var pts []MoodPoint
	for _, e := range entries {
		if e.Mood == nil || e.EntryDate.IsZero() {
			continue
		}
		pts = append(pts, MoodPoint{Date: e.EntryDate, Mood: *e.Mood, Description: e.MoodDescription})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	return pts
}

// Distribution counts entries per mood level, index 0 being Awful.
func Distribution(entries []journal.Entry) [5]int {
	var dist [5]int
	for _, e := range entries {
		if e.Mood != nil && e.Mood.Valid() {
			dist[*e.Mood-1]++
		}
	}
	return dist
}
