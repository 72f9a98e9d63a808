package journal

import (
	"encoding/json"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// BackupReminderInterval is how long a dismissed backup reminder stays hidden.
const BackupReminderInterval = 7 * 24 * time.Hour

type Settings struct {
	Theme    Theme  `json:"theme"`
	UserName string `json:"userName,omitempty"`
	// Milliseconds since the Unix epoch.
	LastBackupReminderDismissedTs *int64 `json:"lastBackupReminderDismissedTs,omitempty"`
	ShowPrompts                   bool   `json:"showPrompts"`
	ChatAPIKey                    string `json:"openRouterApiKey,omitempty"`
}

// DefaultSettings are the hard defaults for a first launch.
func DefaultSettings(systemTheme Theme) Settings {
	if !systemTheme.Valid() {
		systemTheme = ThemeLight
	}
	return Settings{Theme: systemTheme, ShowPrompts: true}
}

func (s Settings) Clone() Settings {
	c := s
	if s.LastBackupReminderDismissedTs != nil {
		ts := *s.LastBackupReminderDismissedTs
		c.LastBackupReminderDismissedTs = &ts
	}
	return c
}

// BackupReminderDue reports whether the backup reminder should be shown.
func (s Settings) BackupReminderDue(now time.Time) bool {
	if s.LastBackupReminderDismissedTs == nil {
		return true
	}
	dismissed := time.UnixMilli(*s.LastBackupReminderDismissedTs)
	return now.Sub(dismissed) > BackupReminderInterval
}

// Partial converts s to field-by-field form.
func (s Settings) Partial() PartialSettings {
	b, _ := json.Marshal(s)
	var p PartialSettings
	_ = json.Unmarshal(b, &p)
	return p
}

// PartialSettings holds settings fields exactly as they appeared in a
// document, keyed by their JSON names. Any subset may be present.
type PartialSettings map[string]json.RawMessage

// Lookup decodes the named field into v and reports whether it was present
// and well formed.
func (p PartialSettings) Lookup(name string, v any) bool {
	raw, ok := p[name]
	if !ok || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
