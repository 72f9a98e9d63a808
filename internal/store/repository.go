package store

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/soulsync/internal/journal"
	"go.uber.org/zap"
)

// Persistence loads and saves the whole aggregate.
type Persistence interface {
	Load() (data journal.AppData, found bool, err error)
	Save(data journal.AppData) error
}

// Repository is the single source of truth for the journal. Every mutation
// goes through it and is written to the Persistence adapter before returning.
// A failed write leaves the in-memory state changed and returns the error.
type Repository struct {
	mu          sync.Mutex
	data        journal.AppData
	persist     Persistence
	now         func() time.Time
	newID       func() string
	systemTheme journal.Theme
	log         *zap.Logger
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// WithSystemTheme sets the theme used for defaults and invalid imports.
func WithSystemTheme(t journal.Theme) Option {
	return func(r *Repository) { r.systemTheme = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// Open loads the stored aggregate, or starts from defaults on first launch.
func Open(p Persistence, opts ...Option) (*Repository, error) {
	r := &Repository{
		persist:     p,
		now:         time.Now,
		newID:       uuid.NewString,
		systemTheme: journal.ThemeLight,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	data, found, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	if !found {
		data = journal.AppData{Settings: journal.DefaultSettings(r.systemTheme)}
		r.log.Info("starting with empty journal")
	}
	if data.Entries == nil {
		data.Entries = []journal.Entry{}
	}
	if !data.Settings.Theme.Valid() {
		data.Settings.Theme = r.systemTheme
	}
	sortEntries(data.Entries)
	r.data = data
	r.log.Debug("repository opened", zap.Int("entries", len(data.Entries)))
	return r, nil
}

func sortEntries(entries []journal.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return journal.LessRecent(entries[i], entries[j])
	})
}

// save must be called with r.mu held.
func (r *Repository) save(op string) error {
	if err := r.persist.Save(r.data); err != nil {
		r.log.Error("persist failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	r.log.Debug("persisted", zap.String("op", op), zap.Int("entries", len(r.data.Entries)))
	return nil
}

// AddEntry creates an entry from in, assigning an id when none is given.
func (r *Repository) AddEntry(in journal.EntryInput) (journal.Entry, error) {
	if err := in.Validate(); err != nil {
		return journal.Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	id := in.ID
	if id == "" {
		id = r.newID()
	} else if r.indexOf(id) >= 0 {
		return journal.Entry{}, &journal.ValidationError{Errors: []journal.FieldError{{Field: "id", Message: "already exists"}}}
	}
	e := journal.Entry{
		ID:              id,
		EntryDate:       in.EntryDate,
		CreatedAt:       now,
		UpdatedAt:       now,
		Content:         in.Content,
		Tags:            in.Tags.Clone(),
		MoodDescription: in.MoodDescription,
		MoodTags:        in.MoodTags.Clone(),
	}
	if in.Mood != nil {
		e.Mood = journal.Mood(*in.Mood)
	}

	r.data.Entries = append(r.data.Entries, e)
	sortEntries(r.data.Entries)
	return e.Clone(), r.save("add entry")
}

// UpdateEntry replaces the entry with the same id, keeping its createdAt.
// It reports false, without error, when no such entry exists.
func (r *Repository) UpdateEntry(e journal.Entry) (bool, error) {
	if err := e.Input().Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(e.ID)
	if i < 0 {
		r.log.Debug("update of unknown entry ignored", zap.String("id", e.ID))
		return false, nil
	}
	updated := e.Clone()
	updated.CreatedAt = r.data.Entries[i].CreatedAt
	updated.UpdatedAt = r.now().UTC()
	r.data.Entries[i] = updated
	sortEntries(r.data.Entries)
	return true, r.save("update entry")
}

// DeleteEntry reports whether an entry was removed.
func (r *Repository) DeleteEntry(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.data.Entries = slices.Delete(r.data.Entries, i, i+1)
	return true, r.save("delete entry")
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.data.Entries, func(e journal.Entry) bool { return e.ID == id })
}

// Entry returns a copy of one entry.
func (r *Repository) Entry(id string) (journal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return journal.Entry{}, fmt.Errorf("entry %q: %w", id, journal.ErrNotFound)
	}
	return r.data.Entries[i].Clone(), nil
}

// Entries returns a snapshot in display order.
func (r *Repository) Entries() []journal.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone().Entries
}

func (r *Repository) Settings() journal.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Settings.Clone()
}

// AppState returns the full aggregate for export.
func (r *Repository) AppState() journal.AppData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone()
}

func (r *Repository) updateSettings(op string, fn func(*journal.Settings)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.data.Settings)
	return r.save(op)
}

func (r *Repository) SetTheme(t journal.Theme) error {
	if !t.Valid() {
		return &journal.ValidationError{Errors: []journal.FieldError{{Field: "theme", Message: "must be light or dark"}}}
	}
	return r.updateSettings("set theme", func(s *journal.Settings) { s.Theme = t })
}

func (r *Repository) ToggleTheme() error {
	return r.updateSettings("toggle theme", func(s *journal.Settings) { s.Theme = s.Theme.Toggle() })
}

func (r *Repository) SetUserName(name string) error {
	return r.updateSettings("set user name", func(s *journal.Settings) { s.UserName = name })
}

func (r *Repository) TogglePrompts(show bool) error {
	return r.updateSettings("toggle prompts", func(s *journal.Settings) { s.ShowPrompts = show })
}

func (r *Repository) SetChatAPIKey(key string) error {
	return r.updateSettings("set chat key", func(s *journal.Settings) { s.ChatAPIKey = key })
}

// DismissBackupReminder records the current instant as the dismissal time.
func (r *Repository) DismissBackupReminder() error {
	ts := r.now().UnixMilli()
	return r.updateSettings("dismiss backup reminder", func(s *journal.Settings) {
		s.LastBackupReminderDismissedTs = &ts
	})
}
