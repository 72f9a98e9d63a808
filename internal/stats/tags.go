package stats

import (
	"sort"

	"github.com/sadopc/soulsync/internal/journal"
)

// TopTags is how many tags TagFrequency returns.
const TopTags = 10

type TagCount struct {
	Tag   string
	Count int
}

// TagFrequency merges tags and mood tags, most frequent first. Equal counts
// keep the order in which the tags were first seen.
func TagFrequency(entries []journal.Entry) []TagCount {
	index := map[string]int{}
	var counts []TagCount
	add := func(tag string) {
		if i, ok := index[tag]; ok {
			counts[i].Count++
			return
		}
		index[tag] = len(counts)
		counts = append(counts, TagCount{Tag: tag, Count: 1})
	}
	for _, e := range entries {
		for _, t := range e.Tags {
			add(t)
		}
		for _, t := range e.MoodTags {
			add(t)
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > TopTags {
		counts = counts[:TopTags]
	}
	return counts
}
