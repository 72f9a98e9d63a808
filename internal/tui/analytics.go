package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/journal"
	"github.com/sadopc/soulsync/internal/stats"
	"github.com/sadopc/soulsync/internal/store"
)

var weekdayLabels = [7]string{"Mon", "", "Wed", "", "Fri", "", "Sun"}

type analyticsModel struct {
	repo   *store.Repository
	now    func() time.Time
	width  int
	height int

	year    int
	summary stats.Summary

	tagChart barchart.Model
}

func newAnalyticsModel(r *store.Repository, now func() time.Time) analyticsModel {
	return analyticsModel{
		repo:     r,
		now:      now,
		year:     now().Year(),
		tagChart: barchart.New(60, 10),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type analyticsDataMsg struct {
	summary stats.Summary
}

func (a analyticsModel) refresh() tea.Cmd {
	year := a.year
	return func() tea.Msg {
		today := journal.DateOf(a.now())
		return analyticsDataMsg{summary: stats.Summarize(a.repo.Entries(), today, year)}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.summary = msg.summary
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.year--
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			if a.year < a.now().Year() {
				a.year++
			}
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(20, a.width-8)
	chartHeight := 10
	if a.height > 40 {
		chartHeight = 14
	}

	a.tagChart = barchart.New(chartWidth, chartHeight)
	var bars []barchart.BarData
	for i, tc := range a.summary.Tags {
		color := colorPrimary
		if i%2 == 1 {
			color = colorSecondary
		}
		bars = append(bars, barchart.BarData{
			Label: truncate(tc.Tag, 8),
			Values: []barchart.BarValue{{
				Name:  tc.Tag,
				Value: float64(tc.Count),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}
	if len(bars) > 0 {
		a.tagChart.PushAll(bars)
		a.tagChart.Draw()
	}
}

func (a analyticsModel) view() string {
	w := a.width - 4
	s := a.summary

	yearLabel := mutedStyle.Render(fmt.Sprintf("%d", a.year))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Analytics"), "  ", yearLabel)

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Entries", fmt.Sprintf("%d", s.TotalEntries)),
		statCard("Streak", streakText(s.Streak)),
		statCard("Average mood", averageText(s)),
	)

	sections := []string{
		header, "",
		cards, "",
		subtitleStyle.Render("Mood over time"),
		renderMoodSparkline(s.Moods, max(20, w-8)), "",
		subtitleStyle.Render("Mood distribution"),
		renderDistribution(s.Distribution), "",
		subtitleStyle.Render("Top tags"),
	}
	if len(s.Tags) == 0 {
		sections = append(sections, mutedStyle.Render("  No tags yet"))
	} else {
		sections = append(sections, a.tagChart.View())
	}
	sections = append(sections, "",
		subtitleStyle.Render("Calendar"),
		renderHeatmap(s.Calendar),
		"",
		mutedStyle.Render("  ←/→: change year"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func statCard(label, value string) string {
	return panelStyle.Padding(0, 2).MarginRight(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), titleStyle.Render(value)),
	)
}

func streakText(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func averageText(s stats.Summary) string {
	if !s.HasAverage {
		return "N/A"
	}
	return fmt.Sprintf("%.1f %s %s", s.Average.Value, s.Average.Level.Emoji(), s.Average.Level.Label())
}

func renderMoodSparkline(points []stats.MoodPoint, width int) string {
	if len(points) == 0 {
		return mutedStyle.Render("  No moods recorded yet")
	}
	spark := sparkline.New(width, 4)
	for _, p := range points {
		spark.Push(float64(p.Mood))
	}
	spark.Draw()

	first, last := points[0].Date.String(), points[len(points)-1].Date.String()
	axis := mutedStyle.Render(first + strings.Repeat(" ", max(1, width-len(first)-len(last))) + last)
	return lipgloss.JoinVertical(lipgloss.Left, highlightStyle.Render(spark.View()), axis)
}

func renderDistribution(dist [5]int) string {
	var parts []string
	for i, o := range journal.MoodOptions {
		parts = append(parts, moodStyle(o.Level).Render(fmt.Sprintf("%s %d", o.Emoji, dist[i])))
	}
	return "  " + strings.Join(parts, "   ")
}

// renderHeatmap draws one column per week and one row per weekday, Monday
// first, with month labels above the column where each month starts.
func renderHeatmap(cal stats.Calendar) string {
	if cal.Weeks == 0 {
		return ""
	}
	const gutter = 4
	const cellWidth = 2

	labelRow := []rune(strings.Repeat(" ", gutter+cal.Weeks*cellWidth+3))
	for _, ml := range cal.MonthLabels {
		pos := gutter + ml.Week*cellWidth
		for i, r := range ml.Label {
			if pos+i < len(labelRow) {
				labelRow[pos+i] = r
			}
		}
	}

	rows := []string{mutedStyle.Render(strings.TrimRight(string(labelRow), " "))}
	for wd := 0; wd < 7; wd++ {
		var b strings.Builder
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", gutter, weekdayLabels[wd])))
		for week := 0; week < cal.Weeks; week++ {
			bucket, ok := cal.Cell(week, wd)
			if !ok {
				b.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			b.WriteString(heatCell(bucket).Render("■") + " ")
		}
		rows = append(rows, b.String())
	}

	legend := "    " + lipgloss.NewStyle().Foreground(colorEmpty).Render("■") + mutedStyle.Render(" none  ") +
		lipgloss.NewStyle().Foreground(colorSecondary).Render("■") + mutedStyle.Render(" entry  ")
	for _, o := range journal.MoodOptions {
		legend += moodStyle(o.Level).Render("■") + mutedStyle.Render(" "+o.Label+"  ")
	}
	rows = append(rows, "", legend)
	return strings.Join(rows, "\n")
}

func heatCell(b stats.DayBucket) lipgloss.Style {
	switch {
	case b.Mood != nil:
		return moodStyle(*b.Mood)
	case b.Count > 0:
		return lipgloss.NewStyle().Foreground(colorSecondary)
	default:
		return lipgloss.NewStyle().Foreground(colorEmpty)
	}
}
