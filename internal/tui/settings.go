package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/journal"
	"github.com/sadopc/soulsync/internal/store"
)

type settingsModel struct {
	repo   *store.Repository
	now    func() time.Time
	width  int
	height int

	settings   journal.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	userName    *string
	theme       *string
	showPrompts *bool
	apiKey      *string
}

func newSettingsModel(r *store.Repository, now func() time.Time) settingsModel {
	name, theme, key := "", "", ""
	show := true
	return settingsModel{
		repo:        r,
		now:         now,
		userName:    &name,
		theme:       &theme,
		showPrompts: &show,
		apiKey:      &key,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings journal.Settings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.repo.Settings()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Dismiss):
			if err := s.repo.DismissBackupReminder(); err != nil {
				return s, statusCmd(fmt.Sprintf("Settings error: %v", err), true)
			}
			return s, tea.Batch(s.refresh(), statusCmd("Backup reminder dismissed for a week", false))
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.userName = s.settings.UserName
	*s.theme = string(s.settings.Theme)
	*s.showPrompts = s.settings.ShowPrompts
	*s.apiKey = s.settings.ChatAPIKey

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Your name").Value(s.userName),
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Light", string(journal.ThemeLight)),
					huh.NewOption("Dark", string(journal.ThemeDark)),
				).Value(s.theme),
			huh.NewConfirm().Title("Show daily writing prompts").Value(s.showPrompts),
		).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("OpenRouter API key").
				Description("Stored locally and included in backups.").
				EchoMode(huh.EchoModePassword).
				Value(s.apiKey),
		).Title("Assistant"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Settings error: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), settingsChanged, statusCmd("Settings saved", false))
	}

	return s, cmd
}

func settingsChanged() tea.Msg { return settingsChangedMsg{} }

func (s settingsModel) saveSettings() error {
	if err := s.repo.SetUserName(strings.TrimSpace(*s.userName)); err != nil {
		return err
	}
	if err := s.repo.SetTheme(journal.Theme(*s.theme)); err != nil {
		return err
	}
	if err := s.repo.TogglePrompts(*s.showPrompts); err != nil {
		return err
	}
	return s.repo.SetChatAPIKey(strings.TrimSpace(*s.apiKey))
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")

	if s.settings.BackupReminderDue(s.now()) {
		rows = append(rows, bannerStyle.Width(max(20, w-6)).Render(
			"Your journal lives only on this machine. Press x to export a backup, or b to dismiss this reminder for a week."), "")
	}

	rows = append(rows,
		settingRow("Name", displayOr(s.settings.UserName, "not set")),
		settingRow("Theme", string(s.settings.Theme)),
		settingRow("Daily prompts", onOff(s.settings.ShowPrompts)),
		settingRow("API key", maskKey(s.settings.ChatAPIKey)),
		settingRow("Last backup reminder", reminderText(s.settings.LastBackupReminderDismissedTs)),
	)

	rows = append(rows, "", mutedStyle.Render("  enter: edit  T: toggle theme  x: export  i: import  b: dismiss reminder"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	l := lipgloss.NewStyle().Width(24).Render(label)
	return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
}

func displayOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// maskKey keeps the last four characters visible.
func maskKey(k string) string {
	if k == "" {
		return "not set"
	}
	if len(k) <= 4 {
		return strings.Repeat("•", len(k))
	}
	return strings.Repeat("•", 8) + k[len(k)-4:]
}

func reminderText(ts *int64) string {
	if ts == nil {
		return "never dismissed"
	}
	return "dismissed " + time.UnixMilli(*ts).Format("Jan 2, 2006 15:04")
}
