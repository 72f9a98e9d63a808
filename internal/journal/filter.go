package journal

import "strings"

// Filter narrows the journal list. Zero fields match everything.
type Filter struct {
	Search string
	Mood   *MoodLevel
	Tag    string
}

func (f Filter) IsZero() bool {
	return f.Search == "" && f.Mood == nil && f.Tag == ""
}

func (f Filter) Matches(e Entry) bool {
	if f.Search != "" && !matchesSearch(e, strings.ToLower(f.Search)) {
		return false
	}
	if f.Mood != nil && (e.Mood == nil || *e.Mood != *f.Mood) {
		return false
	}
	if f.Tag != "" && !e.Tags.Contains(f.Tag) && !e.MoodTags.Contains(f.Tag) {
		return false
	}
	return true
}

func matchesSearch(e Entry, term string) bool {
	if strings.Contains(strings.ToLower(e.Content), term) ||
		strings.Contains(strings.ToLower(e.MoodDescription), term) {
		return true
	}
	for _, set := range []TagSet{e.Tags, e.MoodTags} {
		for _, t := range set {
			if strings.Contains(strings.ToLower(t), term) {
				return true
			}
		}
	}
	return false
}

// FilterEntries keeps the order of entries.
func FilterEntries(entries []Entry, f Filter) []Entry {
	if f.IsZero() {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// AllTags lists every tag and mood tag in first-seen order.
func AllTags(entries []Entry) []string {
	var all TagSet
	for _, e := range entries {
		for _, t := range e.Tags {
			all.Add(t)
		}
		for _, t := range e.MoodTags {
			all.Add(t)
		}
	}
	return all.Values()
}
