// Package journal holds the SoulSync data model: entries, settings and the
// aggregate that is persisted, exported and imported as one document.
package journal

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is one journaling record about a specific calendar day.
type Entry struct {
	ID              string     `json:"id"`
	EntryDate       Date       `json:"entryDate"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Content         string     `json:"content"`
	Tags            TagSet     `json:"tags"`
	Mood            *MoodLevel `json:"mood,omitempty"`
	MoodDescription string     `json:"moodDescription,omitempty"`
	MoodTags        TagSet     `json:"moodTags,omitempty"`
}

// MarshalJSON always writes tags as an array, never null.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	p := plain(e)
	if p.Tags == nil {
		p.Tags = TagSet{}
	}
	return json.Marshal(p)
}

func (e Entry) HasMood() bool {
	return e.Mood != nil
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	c := e
	c.Tags = e.Tags.Clone()
	c.MoodTags = e.MoodTags.Clone()
	if e.Mood != nil {
		m := *e.Mood
		c.Mood = &m
	}
	return c
}

// EntryInput is the user-supplied part of an entry. ID is optional.
type EntryInput struct {
	ID              string
	EntryDate       Date
	Content         string
	Tags            TagSet
	Mood            *MoodLevel
	MoodDescription string
	MoodTags        TagSet
}

// Input returns the editable fields of e.
func (e Entry) Input() EntryInput {
	c := e.Clone()
	return EntryInput{
		ID:              c.ID,
		EntryDate:       c.EntryDate,
		Content:         c.Content,
		Tags:            c.Tags,
		Mood:            c.Mood,
		MoodDescription: c.MoodDescription,
		MoodTags:        c.MoodTags,
	}
}

// Validate enforces the form-level rules: a date, and content or a mood.
func (in EntryInput) Validate() error {
	var errs []FieldError
	if in.EntryDate.IsZero() {
		errs = append(errs, FieldError{Field: "entryDate", Message: "required"})
	}
	if strings.TrimSpace(in.Content) == "" && in.Mood == nil {
		errs = append(errs, FieldError{Field: "content", Message: "content or mood required"})
	}
	if in.Mood != nil && !in.Mood.Valid() {
		errs = append(errs, FieldError{Field: "mood", Message: "must be between 1 and 5"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// LessRecent orders entries by entryDate descending, then createdAt descending.
func LessRecent(a, b Entry) bool {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c > 0
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// AppData is the aggregate root: the unit of persistence, export and import.
type AppData struct {
	Entries  []Entry  `json:"entries"`
	Settings Settings `json:"settings"`
}

// Clone deep-copies the aggregate.
func (d AppData) Clone() AppData {
	out := AppData{Settings: d.Settings.Clone(), Entries: make([]Entry, len(d.Entries))}
	for i, e := range d.Entries {
		out.Entries[i] = e.Clone()
	}
	return out
}

// ImportData is an aggregate read from an external document. Its settings
// are kept field by field so missing and mistyped values can be told apart.
type ImportData struct {
	Entries  []Entry
	Settings PartialSettings
}

// AsImport converts a complete aggregate into import form.
func (d AppData) AsImport() ImportData {
	c := d.Clone()
	return ImportData{Entries: c.Entries, Settings: c.Settings.Partial()}
}
