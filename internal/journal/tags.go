package journal

import (
	"encoding/json"
	"slices"
	"strings"
)

// TagSet is a list of labels with duplicates suppressed on insertion.
type TagSet []string

// NewTagSet builds a set from tags, dropping blanks and repeats.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// ParseTags splits a comma-separated list.
func ParseTags(list string) TagSet {
	return NewTagSet(strings.Split(list, ",")...)
}

// Add inserts tag if absent. It reports whether the set changed.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.Contains(tag) {
		return false
	}
	*s = append(*s, tag)
	return true
}

func (s TagSet) Contains(tag string) bool {
	return slices.Contains(s, tag)
}

func (s TagSet) Len() int { return len(s) }

// Values returns a copy of the tags in insertion order.
func (s TagSet) Values() []string {
	return slices.Clone([]string(s))
}

// String joins the tags with ", ", the inverse of ParseTags.
func (s TagSet) String() string {
	return strings.Join(s, ", ")
}

func (s TagSet) Clone() TagSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

func (s *TagSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NewTagSet(raw...)
	return nil
}
