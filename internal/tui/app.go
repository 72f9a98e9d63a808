package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/chat"
	"github.com/sadopc/soulsync/internal/config"
	"github.com/sadopc/soulsync/internal/export"
	"github.com/sadopc/soulsync/internal/store"
	"go.uber.org/zap"
)

// Options configures the root model. Zero values fall back to defaults.
type Options struct {
	Chat      config.ChatConfig
	Completer chat.Completer
	Log       *zap.Logger
	Now       func() time.Time
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	repo   *store.Repository
	log    *zap.Logger
	now    func() time.Time
	width  int
	height int

	exportDir string

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	importing  bool
	importForm *huh.Form
	importPath *string

	journal   journalModel
	analytics analyticsModel
	chat      chatModel
	settings  settingsModel

	help        help.Model
	status      string
	statusIsErr bool
}

func NewApp(repo *store.Repository, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.ExportDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.ExportDir = home
		}
	}
	if opts.Chat.BaseURL == "" {
		opts.Chat = config.Default().Chat
	}
	if opts.Completer == nil {
		cfg := opts.Chat
		// The key is read per request so a new key applies immediately.
		opts.Completer = chat.CompleterFunc(func(ctx context.Context, transcript []chat.Message) (string, error) {
			client := chat.NewClient(cfg, repo.Settings().ChatAPIKey, chat.WithLogger(opts.Log))
			return client.Complete(ctx, transcript)
		})
	}

	applyTheme(repo.Settings().Theme)

	h := help.New()
	h.ShowAll = false
	path := ""

	return App{
		repo:       repo,
		log:        opts.Log,
		now:        opts.Now,
		exportDir:  opts.ExportDir,
		activeView: viewJournal,
		importPath: &path,
		journal:    newJournalModel(repo, opts.Now),
		analytics:  newAnalyticsModel(repo, opts.Now),
		chat:       newChatModel(chat.NewSession(opts.Completer)),
		settings:   newSettingsModel(repo, opts.Now),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.refreshAll()
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.journal.refresh(),
		a.analytics.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.journal.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.chat.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.importing {
			return a.updateImportForm(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.showImportForm()
		case key.Matches(msg, keys.Theme):
			if err := a.repo.ToggleTheme(); err != nil {
				return a, statusCmd(fmt.Sprintf("Theme error: %v", err), true)
			}
			applyTheme(a.repo.Settings().Theme)
			a.analytics.buildChart()
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewJournal
			return a, a.journal.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewAnalytics
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewChat
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	// Data messages go to their owner regardless of the active tab.
	case journalDataMsg:
		var cmd tea.Cmd
		a.journal, cmd = a.journal.update(msg)
		return a, cmd
	case analyticsDataMsg:
		var cmd tea.Cmd
		a.analytics, cmd = a.analytics.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	case chatReplyMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		return a, cmd

	case entriesChangedMsg:
		return a, a.refreshAll()

	case settingsChangedMsg:
		applyTheme(a.repo.Settings().Theme)
		a.analytics.buildChart()
		return a, a.refreshAll()

	case statusMsg:
		a.status = msg.text
		a.statusIsErr = msg.isError
		if msg.isError {
			a.log.Warn("tui action failed", zap.String("status", msg.text))
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusIsErr = false
		a.exportPicking = false
		return a, nil

	case importDoneMsg:
		a.status = fmt.Sprintf("Imported %d entries", msg.entries)
		a.statusIsErr = false
		return a, a.refreshAll()
	}

	if a.importing {
		return a.updateImportForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewJournal:
		a.journal, cmd = a.journal.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewChat:
		a.chat, cmd = a.chat.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewJournal:
		return a.journal.capturing()
	case viewChat:
		return a.chat.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewJournal:
		return a.journal.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewJournal:
		content = a.journal.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewChat:
		content = a.chat.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.importing && a.importForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Import Backup"), "", a.importForm.View()),
		)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("SoulSync")
	if g := greeting(a.repo.Settings().UserName, a.now()); g != "" {
		title += mutedStyle.Render("  " + g)
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func greeting(name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	part := "evening"
	switch h := now.Hour(); {
	case h < 12:
		part = "morning"
	case h < 18:
		part = "afternoon"
	}
	return fmt.Sprintf("Good %s, %s", part, name)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusIsErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(status)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

var exportFormats = []string{"JSON backup", "CSV entries"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	repo, dir, now := a.repo, a.exportDir, a.now()
	return func() tea.Msg {
		var path string
		if format == 0 {
			path = filepath.Join(dir, export.BackupFilename(now))
			if err := export.ToJSON(repo.AppState(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("soulsync-entries-%s.csv", now.Format("2006-01-02")))
			if err := export.ToCSV(repo.Entries(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

func (a App) showImportForm() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backup file").
				Description("Path to a .json backup. Existing entries will be replaced.").
				Value(a.importPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("path is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	a.importing = true
	return a, a.importForm.Init()
}

func (a App) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.importing = false
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}

	if a.importForm.State == huh.StateCompleted {
		a.importing = false
		return a, a.doImport(expandHome(strings.TrimSpace(*a.importPath)))
	}
	return a, cmd
}

func (a App) doImport(path string) tea.Cmd {
	repo := a.repo
	return func() tea.Msg {
		doc, err := export.ImportFile(path)
		if err != nil {
			var ie *export.ImportError
			if errors.As(err, &ie) {
				return statusMsg{text: "Import failed: " + ie.Message, isError: true}
			}
			return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
		}
		if err := repo.ImportAppState(doc); err != nil {
			return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
		}
		return importDoneMsg{entries: len(repo.Entries())}
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
