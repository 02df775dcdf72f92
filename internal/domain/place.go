package domain

import "strings"

// NormalizePlaceName folds case and collapses whitespace so equivalent
// spellings share one cache entry.
func NormalizePlaceName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
