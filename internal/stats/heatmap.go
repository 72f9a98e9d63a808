package stats

import (
	"time"

	"github.com/sadopc/soulsync/internal/journal"
)

// DayBucket aggregates the entries of one calendar day.
type DayBucket struct {
	Date  journal.Date
	Count int
	Mood  *journal.MoodLevel
}

// MonthLabel marks the week column in which a month starts.
type MonthLabel struct {
	Label string
	Week  int
}

// Calendar is a year laid out in Monday-first week columns.
type Calendar struct {
	Year int
	Days []DayBucket
	// Offset is the number of padding cells before January 1 (0 = Monday).
	Offset      int
	Weeks       int
	MonthLabels []MonthLabel
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// mondayIndex maps Sunday..Saturday to 6,0..5.
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// Heatmap buckets entries into every day of year. Entries dated outside the
// year are ignored. When a day has several moods the last one in entry
// order wins.
func Heatmap(entries []journal.Entry, year int) Calendar {
	n := DaysInYear(year)
	start := journal.NewDate(year, time.January, 1)

	cal := Calendar{
		Year:   year,
		Days:   make([]DayBucket, n),
		Offset: mondayIndex(start.Weekday()),
	}
	for i := range cal.Days {
		cal.Days[i].Date = start.AddDays(i)
	}
	cal.Weeks = (n + cal.Offset + 6) / 7

	for _, e := range entries {
		if e.EntryDate.IsZero() || e.EntryDate.Year != year {
			continue
		}
		b := &cal.Days[e.EntryDate.YearDay()-1]
		b.Count++
		if e.Mood != nil {
			m := *e.Mood
			b.Mood = &m
		}
	}

	last := ""
	for i, b := range cal.Days {
		if b.Date.Day != 1 {
			continue
		}
		label := b.Date.Month.String()[:3]
		if label == last {
			continue
		}
		last = label
		cal.MonthLabels = append(cal.MonthLabels, MonthLabel{Label: label, Week: (i + cal.Offset) / 7})
	}
	return cal
}

// Cell returns the bucket drawn at week column and weekday row (0 = Monday).
// Padding cells before January 1 and after December 31 report false.
func (c Calendar) Cell(week, weekday int) (DayBucket, bool) {
	if weekday < 0 || weekday > 6 {
		return DayBucket{}, false
	}
	i := week*7 + weekday - c.Offset
	if i < 0 || i >= len(c.Days) {
		return DayBucket{}, false
	}
	return c.Days[i], true
}
