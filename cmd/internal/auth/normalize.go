package auth

import "strings"

// NormalizeUsername performs case-insensitive canonicalization: "Alice"
// and "alice" denote the same account. Normalization happens at lookup
// time, not only at insert time, so a mixed-case row can never shadow a
// lowercase one.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
