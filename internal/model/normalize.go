package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims surrounding whitespace and applies NFC so visually
// identical strings compare equal under uniqueness constraints.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeEmail is NormalizeText plus lower-casing.
func NormalizeEmail(s string) string {
	return strings.ToLower(NormalizeText(s))
}

// normalizeAll applies fn to every element, dropping empty results and
// duplicates while keeping first-seen order.
func normalizeAll(items []string, fn func(string) string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		n := fn(item)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
