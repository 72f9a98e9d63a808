package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/journal"
)

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	accent    lipgloss.Color
	muted     lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	errorC    lipgloss.Color
	fg        lipgloss.Color
	subtle    lipgloss.Color
	highlight lipgloss.Color
	empty     lipgloss.Color
}

var darkPalette = palette{
	primary:   "#6C63FF",
	secondary: "#2EC4B6",
	accent:    "#FF6B6B",
	muted:     "#666666",
	success:   "#2ECC71",
	warning:   "#F39C12",
	errorC:    "#E74C3C",
	fg:        "#C0CAF5",
	subtle:    "#414868",
	highlight: "#7AA2F7",
	empty:     "#24283B",
}

var lightPalette = palette{
	primary:   "#5A4FCF",
	secondary: "#138A7E",
	accent:    "#D64545",
	muted:     "#8A8A8A",
	success:   "#1E8E4E",
	warning:   "#B9770E",
	errorC:    "#C0392B",
	fg:        "#2E3440",
	subtle:    "#C8CCD8",
	highlight: "#2F6FD0",
	empty:     "#E6E8EF",
}

// Mood colours run from Awful to Great.
var moodColors = [5]lipgloss.Color{"#E74C3C", "#F39C12", "#F1C40F", "#7BC96F", "#2ECC71"}

// Color palette
var (
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorMuted     lipgloss.Color
	colorSubtle    lipgloss.Color
	colorEmpty     lipgloss.Color
)

// Styles
var (
	// Tabs
	activeTabStyle   lipgloss.Style
	inactiveTabStyle lipgloss.Style

	// Panels
	panelStyle       lipgloss.Style
	activePanelStyle lipgloss.Style
	bannerStyle      lipgloss.Style

	// Text
	titleStyle     lipgloss.Style
	subtitleStyle  lipgloss.Style
	accentStyle    lipgloss.Style
	successStyle   lipgloss.Style
	warningStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	mutedStyle     lipgloss.Style
	highlightStyle lipgloss.Style
	promptStyle    lipgloss.Style

	// Header/footer
	headerStyle lipgloss.Style
	footerStyle lipgloss.Style

	// List items
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style

	// Chat
	userBubbleStyle      lipgloss.Style
	assistantBubbleStyle lipgloss.Style
)

var currentTheme journal.Theme

func init() {
	applyTheme(journal.ThemeDark)
}

// applyTheme rebuilds every style for t.
func applyTheme(t journal.Theme) {
	p := darkPalette
	if t == journal.ThemeLight {
		p = lightPalette
	}
	currentTheme = t

	colorPrimary = p.primary
	colorSecondary = p.secondary
	colorMuted = p.muted
	colorSubtle = p.subtle
	colorEmpty = p.empty

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.primary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.subtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.primary).
		Padding(1, 2)

	bannerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.warning).
		Foreground(p.warning).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.fg)
	subtitleStyle = lipgloss.NewStyle().Foreground(p.muted)
	accentStyle = lipgloss.NewStyle().Foreground(p.accent)
	successStyle = lipgloss.NewStyle().Foreground(p.success)
	warningStyle = lipgloss.NewStyle().Foreground(p.warning)
	errorStyle = lipgloss.NewStyle().Foreground(p.errorC)
	mutedStyle = lipgloss.NewStyle().Foreground(p.muted)
	highlightStyle = lipgloss.NewStyle().Foreground(p.highlight)
	promptStyle = lipgloss.NewStyle().Italic(true).Foreground(p.secondary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(p.fg)

	userBubbleStyle = lipgloss.NewStyle().Foreground(p.highlight).Bold(true)
	assistantBubbleStyle = lipgloss.NewStyle().Foreground(p.secondary)
}

func moodStyle(m journal.MoodLevel) lipgloss.Style {
	if !m.Valid() {
		return mutedStyle
	}
	return lipgloss.NewStyle().Foreground(moodColors[m-1])
}
