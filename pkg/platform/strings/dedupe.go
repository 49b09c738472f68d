// Package strings provides small helpers for normalizing string collections
// at the request boundary.
package strings

import "strings"

// DedupeAndTrim trims whitespace from each element, drops empties, and removes
// duplicates while preserving first-seen order.
func DedupeAndTrim(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// TrimSpacePtr trims the pointed-to string, leaving nil pointers alone.
func TrimSpacePtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
