package models

import "strings"

// ParseTags converts the comma-joined wire form into an ordered tag list.
// Entries are trimmed and empty entries dropped. Duplicates inside one
// contact are kept.
func ParseTags(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// JoinTags converts a tag list back into its comma-joined wire form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// Vocabulary flattens the tags of every contact, deduplicating while keeping
// first-seen order. Empty tags never appear.
func Vocabulary(contacts []Contact) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, c := range contacts {
		for _, t := range c.Tags {
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
