package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sadopc/soulsync/internal/journal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClock advances one second on every call so createdAt values are distinct.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestRepo(t *testing.T) (*Repository, *Memory) {
	t.Helper()
	mem := &Memory{}
	r, err := Open(mem, WithClock(newClock().Now), WithIDGenerator(sequentialIDs()), WithSystemTheme(journal.ThemeDark))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	return r, mem
}

func day(y int, m time.Month, d int) journal.Date {
	return journal.Date{Year: y, Month: m, Day: d}
}

func mustAdd(t *testing.T, r *Repository, in journal.EntryInput) journal.Entry {
	t.Helper()
	e, err := r.AddEntry(in)
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	return e
}

func assertSorted(t *testing.T, entries []journal.Entry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		if journal.LessRecent(entries[i], entries[i-1]) {
			t.Fatalf("entries out of order at %d: %v before %v", i, entries[i-1].EntryDate, entries[i].EntryDate)
		}
	}
}

// ============================================================
// SQLite adapter
// ============================================================

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewMemory(t *testing.T) {
	s := newTestSQLite(t)

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "soulsync.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestSQLiteLoadEmpty(t *testing.T) {
	s := newTestSQLite(t)
	_, found, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("fresh database should have no app data")
	}
}

func TestSQLiteSaveLoad(t *testing.T) {
	s := newTestSQLite(t)
	data := journal.AppData{
		Entries: []journal.Entry{{
			ID:        "a",
			EntryDate: day(2024, time.May, 1),
			CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			Content:   "first",
			Tags:      journal.NewTagSet("x"),
			Mood:      journal.Mood(journal.MoodGood),
		}},
		Settings: journal.Settings{Theme: journal.ThemeDark, UserName: "Ana", ShowPrompts: true},
	}
	if err := s.Save(data); err != nil {
		t.Fatal(err)
	}
	// Overwrite in place.
	data.Settings.UserName = "Ana B"
	if err := s.Save(data); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.Load()
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, data)
	}

	var rows int
	s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&rows)
	if rows != 1 {
		t.Fatalf("expected a single kv row, got %d", rows)
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "soulsync.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Open(s)
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.June, 1), Content: "persist me"})
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	r2, err := Open(s2)
	if err != nil {
		t.Fatal(err)
	}
	entries := r2.Entries()
	if len(entries) != 1 || entries[0].Content != "persist me" {
		t.Fatalf("entries after reopen: %+v", entries)
	}
}

// ============================================================
// Repository: entries
// ============================================================

func TestOpenDefaults(t *testing.T) {
	r, mem := newTestRepo(t)
	s := r.Settings()
	if s.Theme != journal.ThemeDark || !s.ShowPrompts {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if len(r.Entries()) != 0 {
		t.Fatal("expected no entries")
	}
	if mem.Saves() != 0 {
		t.Fatal("opening should not write")
	}
}

func TestAddEntryAssignsIDAndTimestamps(t *testing.T) {
	r, mem := newTestRepo(t)
	e := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "hello"})
	if e.ID != "id-1" {
		t.Fatalf("ID = %q, want id-1", e.ID)
	}
	if e.CreatedAt.IsZero() || !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Fatalf("timestamps not stamped: %v / %v", e.CreatedAt, e.UpdatedAt)
	}
	if mem.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", mem.Saves())
	}
}

func TestAddEntryKeepsSuppliedID(t *testing.T) {
	r, _ := newTestRepo(t)
	e := mustAdd(t, r, journal.EntryInput{ID: "custom", EntryDate: day(2024, time.May, 1), Content: "x"})
	if e.ID != "custom" {
		t.Fatalf("ID = %q, want custom", e.ID)
	}
}

func TestAddEntryRejectsDuplicateID(t *testing.T) {
	r, mem := newTestRepo(t)
	mustAdd(t, r, journal.EntryInput{ID: "custom", EntryDate: day(2024, time.May, 1), Content: "first"})

	_, err := r.AddEntry(journal.EntryInput{ID: "custom", EntryDate: day(2024, time.May, 2), Content: "second"})
	var ve *journal.ValidationError
	if !errors.As(err, &ve) || ve.Errors[0].Field != "id" {
		t.Fatalf("expected id validation error, got %v", err)
	}
	if len(r.Entries()) != 1 || r.Entries()[0].Content != "first" {
		t.Fatalf("duplicate must not be stored: %+v", r.Entries())
	}
	if mem.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", mem.Saves())
	}
}

func TestAddEntryGeneratesUUID(t *testing.T) {
	r, err := Open(&Memory{})
	if err != nil {
		t.Fatal(err)
	}
	a := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "x"})
	b := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "y"})
	if len(a.ID) != 36 || a.ID == b.ID {
		t.Fatalf("expected distinct UUIDs, got %q and %q", a.ID, b.ID)
	}
}

func TestAddEntryRejectsInvalid(t *testing.T) {
	r, mem := newTestRepo(t)
	_, err := r.AddEntry(journal.EntryInput{EntryDate: day(2024, time.May, 1)})
	if !errors.Is(err, journal.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(r.Entries()) != 0 || mem.Saves() != 0 {
		t.Fatal("invalid input must not change state")
	}
}

func TestAddEntryMoodOnly(t *testing.T) {
	r, _ := newTestRepo(t)
	e := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Mood: journal.Mood(journal.MoodBad)})
	if e.Mood == nil || *e.Mood != journal.MoodBad {
		t.Fatal("mood not stored")
	}
}

func TestEntriesSortedAfterAdds(t *testing.T) {
	r, _ := newTestRepo(t)
	dates := []journal.Date{
		day(2024, time.May, 3),
		day(2024, time.May, 1),
		day(2024, time.May, 5),
		day(2024, time.May, 3),
		day(2023, time.December, 31),
	}
	for i, d := range dates {
		mustAdd(t, r, journal.EntryInput{EntryDate: d, Content: fmt.Sprint(i)})
	}

	entries := r.Entries()
	assertSorted(t, entries)
	if entries[0].EntryDate != day(2024, time.May, 5) {
		t.Fatalf("newest first expected, got %v", entries[0].EntryDate)
	}
	// Same day: later createdAt first.
	if entries[1].Content != "3" || entries[2].Content != "0" {
		t.Fatalf("same-day tie break wrong: %q then %q", entries[1].Content, entries[2].Content)
	}
}

func TestUpdateEntry(t *testing.T) {
	r, mem := newTestRepo(t)
	e := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "draft"})
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 2), Content: "other"})

	edit := e
	edit.Content = "final"
	edit.EntryDate = day(2024, time.May, 9)
	edit.CreatedAt = time.Time{} // callers cannot rewrite createdAt
	ok, err := r.UpdateEntry(edit)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	got, err := r.Entry(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "final" {
		t.Fatalf("content = %q", got.Content)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("createdAt changed: %v -> %v", e.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.After(e.UpdatedAt) {
		t.Fatal("updatedAt should be refreshed")
	}
	entries := r.Entries()
	assertSorted(t, entries)
	if entries[0].ID != e.ID {
		t.Fatal("moved entry should now sort first")
	}
	if mem.Saves() != 3 {
		t.Fatalf("expected 3 saves, got %d", mem.Saves())
	}
}

func TestUpdateUnknownEntryIsNoop(t *testing.T) {
	r, mem := newTestRepo(t)
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "x"})

	ok, err := r.UpdateEntry(journal.Entry{ID: "missing", EntryDate: day(2024, time.May, 1), Content: "y"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("update of unknown id should report false")
	}
	if mem.Saves() != 1 {
		t.Fatal("no-op update should not write")
	}
}

func TestDeleteEntry(t *testing.T) {
	r, _ := newTestRepo(t)
	e := mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "x"})

	ok, err := r.DeleteEntry(e.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if len(r.Entries()) != 0 {
		t.Fatal("entry still present")
	}
	ok, _ = r.DeleteEntry(e.ID)
	if ok {
		t.Fatal("second delete should be a no-op")
	}
	if _, err := r.Entry(e.ID); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	r, _ := newTestRepo(t)
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "x", Tags: journal.NewTagSet("a")})

	snap := r.Entries()
	snap[0].Content = "mutated"
	snap[0].Tags[0] = "mutated"

	again := r.Entries()
	if again[0].Content != "x" || again[0].Tags[0] != "a" {
		t.Fatal("snapshot mutation leaked into repository")
	}
}

func TestSaveFailureReturnsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mem := &Memory{}
	r, err := Open(mem, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	diskFull := errors.New("disk full")
	mem.Err = diskFull

	_, err = r.AddEntry(journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "x"})
	if !errors.Is(err, diskFull) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	// The change is kept in memory.
	if len(r.Entries()) != 1 {
		t.Fatal("entry should remain after a failed write")
	}
	failed := logs.FilterMessage("persist failed")
	if failed.Len() != 1 || failed.All()[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error log, got %+v", logs.All())
	}
	if failed.All()[0].ContextMap()["op"] != "add entry" {
		t.Fatalf("unexpected fields: %v", failed.All()[0].ContextMap())
	}
}

// ============================================================
// Repository: settings
// ============================================================

func TestSettingsMutations(t *testing.T) {
	r, mem := newTestRepo(t)

	if err := r.ToggleTheme(); err != nil {
		t.Fatal(err)
	}
	if r.Settings().Theme != journal.ThemeLight {
		t.Fatal("toggle from dark should give light")
	}
	if err := r.SetTheme(journal.ThemeDark); err != nil {
		t.Fatal(err)
	}
	if err := r.SetTheme("sepia"); !errors.Is(err, journal.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	r.SetUserName("Robin")
	r.TogglePrompts(false)
	r.SetChatAPIKey("sk-test")
	r.DismissBackupReminder()

	s := r.Settings()
	if s.Theme != journal.ThemeDark || s.UserName != "Robin" || s.ShowPrompts || s.ChatAPIKey != "sk-test" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.LastBackupReminderDismissedTs == nil {
		t.Fatal("dismissal timestamp not recorded")
	}
	if mem.Saves() != 6 {
		t.Fatalf("expected 6 saves, got %d", mem.Saves())
	}
}

// ============================================================
// Repository: import
// ============================================================

func TestImportReplacesEntries(t *testing.T) {
	r, _ := newTestRepo(t)
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "old"})

	in := journal.ImportData{
		Entries: []journal.Entry{
			{ID: "b", EntryDate: day(2024, time.January, 1), Content: "jan"},
			{ID: "a", EntryDate: day(2024, time.February, 1), Content: "feb"},
		},
	}
	if err := r.ImportAppState(in); err != nil {
		t.Fatal(err)
	}
	entries := r.Entries()
	if len(entries) != 2 || entries[0].ID != "a" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestImportNilEntriesBecomesEmpty(t *testing.T) {
	r, _ := newTestRepo(t)
	mustAdd(t, r, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "old"})
	if err := r.ImportAppState(journal.ImportData{}); err != nil {
		t.Fatal(err)
	}
	if entries := r.AppState().Entries; entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil entries, got %v", entries)
	}
}

func TestImportSettingsLayering(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want journal.Settings
	}{
		{
			name: "empty settings give defaults",
			raw:  map[string]string{},
			want: journal.Settings{Theme: journal.ThemeDark, ShowPrompts: true},
		},
		{
			name: "recognised fields applied",
			raw:  map[string]string{"theme": `"light"`, "userName": `"Kai"`, "showPrompts": `false`},
			want: journal.Settings{Theme: journal.ThemeLight, UserName: "Kai", ShowPrompts: false},
		},
		{
			name: "invalid theme falls back to system theme",
			raw:  map[string]string{"theme": `"purple"`},
			want: journal.Settings{Theme: journal.ThemeDark, ShowPrompts: true},
		},
		{
			name: "non-boolean showPrompts falls back to true",
			raw:  map[string]string{"showPrompts": `"no"`},
			want: journal.Settings{Theme: journal.ThemeDark, ShowPrompts: true},
		},
		{
			name: "unknown fields ignored",
			raw:  map[string]string{"fontSize": `14`},
			want: journal.Settings{Theme: journal.ThemeDark, ShowPrompts: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRepo(t)
			p := journal.PartialSettings{}
			for k, v := range tt.raw {
				p[k] = []byte(v)
			}
			if err := r.ImportAppState(journal.ImportData{Settings: p}); err != nil {
				t.Fatal(err)
			}
			if got := r.Settings(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("settings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestImportBackupTimestamp(t *testing.T) {
	r, _ := newTestRepo(t)
	p := journal.PartialSettings{"lastBackupReminderDismissedTs": []byte(`1717000000000`)}
	r.ImportAppState(journal.ImportData{Settings: p})
	ts := r.Settings().LastBackupReminderDismissedTs
	if ts == nil || *ts != 1717000000000 {
		t.Fatalf("timestamp = %v", ts)
	}
}

func TestImportRoundTrip(t *testing.T) {
	src, _ := newTestRepo(t)
	mustAdd(t, src, journal.EntryInput{EntryDate: day(2024, time.May, 1), Content: "a", Tags: journal.NewTagSet("x", "y")})
	mustAdd(t, src, journal.EntryInput{EntryDate: day(2024, time.May, 2), Mood: journal.Mood(journal.MoodGreat), MoodDescription: "sunny", MoodTags: journal.NewTagSet("calm")})
	src.SetUserName("Lee")
	src.TogglePrompts(false)
	src.DismissBackupReminder()
	state := src.AppState()

	dst, _ := newTestRepo(t)
	if err := dst.ImportAppState(state.AsImport()); err != nil {
		t.Fatal(err)
	}
	if got := dst.AppState(); !reflect.DeepEqual(got, state) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, state)
	}
}
