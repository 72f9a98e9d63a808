package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/soulsync/internal/journal"
)

// viewState represents the currently active view.
type viewState int

const (
	viewJournal viewState = iota
	viewAnalytics
	viewChat
	viewSettings
)

var viewNames = []string{"Journal", "Analytics", "Chat", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	entries int
}

// entriesChangedMsg tells every view to reload from the repository.
type entriesChangedMsg struct{}

// settingsChangedMsg is sent after any settings mutation.
type settingsChangedMsg struct{}

// --- Helpers ---

func moodBadge(m *journal.MoodLevel) string {
	if m == nil {
		return "  "
	}
	return m.Emoji()
}

// truncate shortens s to at most n runes on a single line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
