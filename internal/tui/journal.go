package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/soulsync/internal/journal"
	"github.com/sadopc/soulsync/internal/store"
)

type journalModel struct {
	repo   *store.Repository
	now    func() time.Time
	width  int
	height int

	entries     []journal.Entry
	visible     []journal.Entry
	allTags     []string
	cursor      int
	filter      journal.Filter
	showPrompts bool

	searching bool
	search    textinput.Model

	confirmDelete bool

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	fields *entryFields
}

type entryFields struct {
	date            string
	content         string
	mood            string
	moodDescription string
	tags            string
	moodTags        string
}

func newJournalModel(r *store.Repository, now func() time.Time) journalModel {
	si := textinput.New()
	si.Placeholder = "Search content, tags, mood notes..."
	si.CharLimit = 200
	si.Width = 40
	si.Prompt = "/ "

	return journalModel{
		repo:   r,
		now:    now,
		search: si,
		fields: &entryFields{},
	}
}

func (j *journalModel) setSize(w, h int) {
	j.width = w
	j.height = h
	j.search.Width = max(20, w/2)
}

// capturing reports whether key presses belong to this view.
func (j journalModel) capturing() bool {
	return j.formActive || j.searching || j.confirmDelete
}

type journalDataMsg struct {
	entries     []journal.Entry
	showPrompts bool
}

func (j journalModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return journalDataMsg{entries: j.repo.Entries(), showPrompts: j.repo.Settings().ShowPrompts}
	}
}

func (j *journalModel) applyFilter() {
	j.allTags = journal.AllTags(j.entries)
	j.visible = journal.FilterEntries(j.entries, j.filter)
	if j.cursor >= len(j.visible) {
		j.cursor = max(0, len(j.visible)-1)
	}
}

func (j journalModel) selected() (journal.Entry, bool) {
	if j.cursor < 0 || j.cursor >= len(j.visible) {
		return journal.Entry{}, false
	}
	return j.visible[j.cursor], true
}

func (j journalModel) update(msg tea.Msg) (journalModel, tea.Cmd) {
	if j.formActive && j.form != nil {
		return j.updateForm(msg)
	}

	switch msg := msg.(type) {
	case journalDataMsg:
		j.entries = msg.entries
		j.showPrompts = msg.showPrompts
		j.applyFilter()
		return j, nil

	case tea.KeyMsg:
		if j.searching {
			return j.updateSearch(msg)
		}
		if j.confirmDelete {
			return j.updateConfirmDelete(msg)
		}
		return j.updateList(msg)
	}
	return j, nil
}

func (j journalModel) updateList(msg tea.KeyMsg) (journalModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if j.cursor > 0 {
			j.cursor--
		}
	case key.Matches(msg, keys.Down):
		if j.cursor < len(j.visible)-1 {
			j.cursor++
		}
	case key.Matches(msg, keys.New):
		return j.showEntryForm(nil)
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		if e, ok := j.selected(); ok {
			return j.showEntryForm(&e)
		}
	case key.Matches(msg, keys.Delete):
		if _, ok := j.selected(); ok {
			j.confirmDelete = true
		}
	case key.Matches(msg, keys.Search):
		j.searching = true
		j.search.SetValue(j.filter.Search)
		return j, j.search.Focus()
	case key.Matches(msg, keys.MoodFilter):
		j.filter.Mood = nextMoodFilter(j.filter.Mood)
		j.applyFilter()
	case key.Matches(msg, keys.TagFilter):
		j.filter.Tag = nextTagFilter(j.allTags, j.filter.Tag)
		j.applyFilter()
	case key.Matches(msg, keys.Clear):
		j.filter = journal.Filter{}
		j.search.SetValue("")
		j.applyFilter()
	}
	return j, nil
}

func (j journalModel) updateSearch(msg tea.KeyMsg) (journalModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		j.searching = false
		j.search.Blur()
		return j, nil
	case "enter":
		j.searching = false
		j.search.Blur()
		return j, nil
	}
	var cmd tea.Cmd
	j.search, cmd = j.search.Update(msg)
	j.filter.Search = j.search.Value()
	j.applyFilter()
	return j, cmd
}

func (j journalModel) updateConfirmDelete(msg tea.KeyMsg) (journalModel, tea.Cmd) {
	j.confirmDelete = false
	if msg.String() != "y" {
		return j, nil
	}
	e, ok := j.selected()
	if !ok {
		return j, nil
	}
	if _, err := j.repo.DeleteEntry(e.ID); err != nil {
		return j, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
	}
	return j, tea.Batch(j.refresh(), statusCmd("Entry deleted", false), entriesChanged)
}

func entriesChanged() tea.Msg { return entriesChangedMsg{} }

// nextMoodFilter cycles none → Awful … Great → none.
func nextMoodFilter(m *journal.MoodLevel) *journal.MoodLevel {
	if m == nil {
		return journal.Mood(journal.MoodAwful)
	}
	if *m >= journal.MoodGreat {
		return nil
	}
	return journal.Mood(*m + 1)
}

// nextTagFilter cycles none → each tag in order → none.
func nextTagFilter(tags []string, current string) string {
	if len(tags) == 0 {
		return ""
	}
	if current == "" {
		return tags[0]
	}
	for i, t := range tags {
		if t == current {
			if i+1 < len(tags) {
				return tags[i+1]
			}
			return ""
		}
	}
	return ""
}

func (j journalModel) showEntryForm(e *journal.Entry) (journalModel, tea.Cmd) {
	today := journal.DateOf(j.now())
	*j.fields = entryFields{date: today.String()}
	j.editingID = ""
	if e != nil {
		j.editingID = e.ID
		*j.fields = fieldsFromEntry(*e)
	}

	moodOptions := []huh.Option[string]{huh.NewOption("No mood", "")}
	for _, o := range journal.MoodOptions {
		moodOptions = append(moodOptions, huh.NewOption(o.Emoji+" "+o.Label, strconv.Itoa(int(o.Level))))
	}

	content := huh.NewText().Title("What's on your mind?").Value(&j.fields.content)
	if j.showPrompts && e == nil {
		content = content.Placeholder(journal.PromptFor(today))
	}

	j.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date (YYYY-MM-DD)").Value(&j.fields.date).Validate(validateDate),
			content,
			huh.NewInput().Title("Tags (comma-separated)").Value(&j.fields.tags),
		).Title("Entry"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Mood").Options(moodOptions...).Value(&j.fields.mood),
			huh.NewInput().Title("Mood notes").Value(&j.fields.moodDescription),
			huh.NewInput().Title("Mood tags (comma-separated)").Value(&j.fields.moodTags),
		).Title("Mood"),
	).WithShowHelp(true).WithShowErrors(true)

	j.formActive = true
	return j, j.form.Init()
}

func validateDate(s string) error {
	if _, err := journal.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func fieldsFromEntry(e journal.Entry) entryFields {
	f := entryFields{
		date:            e.EntryDate.String(),
		content:         e.Content,
		moodDescription: e.MoodDescription,
		tags:            e.Tags.String(),
		moodTags:        e.MoodTags.String(),
	}
	if e.Mood != nil {
		f.mood = strconv.Itoa(int(*e.Mood))
	}
	return f
}

// input converts the form fields into repository input.
func (f entryFields) input() (journal.EntryInput, error) {
	date, err := journal.ParseDate(strings.TrimSpace(f.date))
	if err != nil {
		return journal.EntryInput{}, err
	}
	in := journal.EntryInput{
		EntryDate:       date,
		Content:         f.content,
		Tags:            journal.ParseTags(f.tags),
		MoodDescription: strings.TrimSpace(f.moodDescription),
		MoodTags:        journal.ParseTags(f.moodTags),
	}
	if f.mood != "" {
		n, err := strconv.Atoi(f.mood)
		if err != nil {
			return journal.EntryInput{}, fmt.Errorf("mood: %w", err)
		}
		in.Mood = journal.Mood(journal.MoodLevel(n))
	}
	return in, in.Validate()
}

func (j journalModel) updateForm(msg tea.Msg) (journalModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			j.formActive = false
			j.form = nil
			return j, nil
		}
	}

	form, cmd := j.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		j.form = f
	}

	if j.form.State == huh.StateCompleted {
		j.formActive = false
		return j, j.saveForm()
	}

	return j, cmd
}

func (j journalModel) saveForm() tea.Cmd {
	in, err := j.fields.input()
	if err != nil {
		return statusCmd(fmt.Sprintf("Not saved: %v", err), true)
	}

	if j.editingID == "" {
		if _, err := j.repo.AddEntry(in); err != nil {
			return statusCmd(fmt.Sprintf("Save error: %v", err), true)
		}
		return tea.Batch(j.refresh(), statusCmd("Entry saved", false), entriesChanged)
	}

	existing, err := j.repo.Entry(j.editingID)
	if err != nil {
		return statusCmd(fmt.Sprintf("Save error: %v", err), true)
	}
	existing.EntryDate = in.EntryDate
	existing.Content = in.Content
	existing.Tags = in.Tags
	existing.Mood = in.Mood
	existing.MoodDescription = in.MoodDescription
	existing.MoodTags = in.MoodTags
	if _, err := j.repo.UpdateEntry(existing); err != nil {
		return statusCmd(fmt.Sprintf("Save error: %v", err), true)
	}
	return tea.Batch(j.refresh(), statusCmd("Entry updated", false), entriesChanged)
}

func (j journalModel) view() string {
	w := j.width - 4

	if j.formActive && j.form != nil {
		title := titleStyle.Render("New Entry")
		if j.editingID != "" {
			title = titleStyle.Render("Edit Entry")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", j.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Journal"))
	if j.showPrompts {
		prompt := journal.PromptFor(journal.DateOf(j.now()))
		rows = append(rows, promptStyle.Render("Today's prompt: "+prompt))
	}
	rows = append(rows, "")

	if j.searching || j.filter.Search != "" {
		rows = append(rows, j.search.View())
	}
	if f := j.renderFilterLine(); f != "" {
		rows = append(rows, f)
	}

	switch {
	case len(j.entries) == 0:
		rows = append(rows, mutedStyle.Render("No entries yet. Press n to write your first one."))
	case len(j.visible) == 0:
		rows = append(rows, mutedStyle.Render("No entries match the current filters. Press c to clear them."))
	default:
		rows = append(rows, j.renderList(w)...)
		if e, ok := j.selected(); ok {
			rows = append(rows, "", j.renderDetail(e, w))
		}
	}

	rows = append(rows, "")
	if j.confirmDelete {
		rows = append(rows, warningStyle.Render("  Delete this entry? y: yes  any other key: cancel"))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  /: search  m: mood  t: tag  c: clear"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (j journalModel) renderFilterLine() string {
	var parts []string
	if j.filter.Mood != nil {
		parts = append(parts, "mood: "+j.filter.Mood.Emoji()+" "+j.filter.Mood.Label())
	}
	if j.filter.Tag != "" {
		parts = append(parts, "tag: #"+j.filter.Tag)
	}
	if len(parts) == 0 {
		return ""
	}
	count := fmt.Sprintf("  (%d of %d)", len(j.visible), len(j.entries))
	return highlightStyle.Render("  "+strings.Join(parts, "  ")) + mutedStyle.Render(count)
}

func (j journalModel) renderList(w int) []string {
	// Keep the cursor visible within the rows we can afford.
	limit := max(3, j.height-18)
	start := 0
	if j.cursor >= limit {
		start = j.cursor - limit + 1
	}
	end := min(len(j.visible), start+limit)

	var rows []string
	for i := start; i < end; i++ {
		e := j.visible[i]
		cursor := "  "
		style := normalItemStyle
		if i == j.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		tags := ""
		if e.Tags.Len() > 0 {
			tags = mutedStyle.Render(" [" + e.Tags.String() + "]")
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, e.EntryDate.String(), moodBadge(e.Mood), truncate(e.Content, max(10, w-40)))
		rows = append(rows, style.Render(line)+tags)
	}
	if end < len(j.visible) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(j.visible)-end)))
	}
	return rows
}

func (j journalModel) renderDetail(e journal.Entry, w int) string {
	var lines []string
	header := e.EntryDate.Time().Format("Monday, January 2, 2006")
	if e.Mood != nil {
		header += "  " + moodStyle(*e.Mood).Render(e.Mood.Emoji()+" "+e.Mood.Label())
	}
	lines = append(lines, titleStyle.Render(header))
	if e.MoodDescription != "" {
		lines = append(lines, subtitleStyle.Render(e.MoodDescription))
	}
	if e.MoodTags.Len() > 0 {
		lines = append(lines, accentStyle.Render("feeling: "+e.MoodTags.String()))
	}
	if e.Content != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(max(20, w-6)).Render(e.Content))
	}
	return activePanelStyle.Width(max(20, w-4)).Padding(0, 1).Render(strings.Join(lines, "\n"))
}
