// Package strings holds the text helpers shared by profile normalization and
// discovery matching.
package strings

import (
	"strings"
	"unicode/utf8"
)

// NormalizeSet trims each value, collapses inner runs of whitespace, drops
// empties, and removes case-insensitive duplicates. The first spelling seen
// wins and order is preserved.
//
//	NormalizeSet([]string{" Dementia care", "dementia  CARE", "", "Wound care"})
//	// []string{"Dementia care", "Wound care"}
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := strings.Join(strings.Fields(v), " ")
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, cleaned)
	}
	return result
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// AnyContainsFold reports whether any value contains needle, ignoring case.
func AnyContainsFold(values []string, needle string) bool {
	for _, v := range values {
		if ContainsFold(v, needle) {
			return true
		}
	}
	return false
}

// RuneLen counts characters rather than bytes, after trimming surrounding
// whitespace.
func RuneLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
