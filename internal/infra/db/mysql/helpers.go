package mysql

import "strings"

// escapeLikePattern escapes special characters in LIKE patterns so key
// prefixes containing _ (most of them do) match literally
func escapeLikePattern(s string) string {
	// Escape backslash first, then other LIKE special characters
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
