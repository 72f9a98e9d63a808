package store

import (
	"github.com/sadopc/soulsync/internal/journal"
	"go.uber.org/zap"
)

// ImportAppState replaces the whole aggregate. Entries are taken as given
// (nil becomes empty). Settings are rebuilt from the hard defaults, then
// every recognised field present in the document, with theme and
// showPrompts falling back to defaults when they are not well formed.
func (r *Repository) ImportAppState(in journal.ImportData) error {
	entries := make([]journal.Entry, len(in.Entries))
	for i, e := range in.Entries {
		entries[i] = e.Clone()
	}
	sortEntries(entries)
	settings := mergeSettings(in.Settings, r.systemTheme)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = journal.AppData{Entries: entries, Settings: settings}
	r.log.Info("imported app state", zap.Int("entries", len(entries)))
	return r.save("import")
}

func mergeSettings(p journal.PartialSettings, systemTheme journal.Theme) journal.Settings {
	s := journal.DefaultSettings(systemTheme)

	var name string
	if p.Lookup("userName", &name) {
		s.UserName = name
	}
	var key string
	if p.Lookup("openRouterApiKey", &key) {
		s.ChatAPIKey = key
	}
	var ts float64
	if p.Lookup("lastBackupReminderDismissedTs", &ts) {
		v := int64(ts)
		s.LastBackupReminderDismissedTs = &v
	}

	var theme string
	if p.Lookup("theme", &theme) && journal.Theme(theme).Valid() {
		s.Theme = journal.Theme(theme)
	}
	var show bool
	if p.Lookup("showPrompts", &show) {
		s.ShowPrompts = show
	}
	return s
}
