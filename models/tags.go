package models

import "encoding/json"

// JoinTags encodes a tag list for a TEXT column.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// SplitTags decodes a TEXT column written by JoinTags. Malformed input yields
// an empty list.
func SplitTags(raw string) []string {
	tags := make([]string, 0)
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return make([]string, 0)
	}
	return tags
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
