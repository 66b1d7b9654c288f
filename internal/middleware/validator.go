package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var (
	assessmentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
	usernamePattern     = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// ValidateAssessmentID validates assessment ID format
func ValidateAssessmentID(id string) error {
	if id == "" {
		return fmt.Errorf("assessment ID cannot be empty")
	}
	if !assessmentIDPattern.MatchString(id) {
		return fmt.Errorf("invalid assessment ID format (alphanumeric, dash, underscore only, max 128 chars)")
	}
	return nil
}

// ValidateUsername validates the username path segment
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("invalid username format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateTriageStatus checks the status against the allowed set
func ValidateTriageStatus(status string) error {
	allowed := map[string]bool{
		"negotiating": true,
		"accepted":    true,
		"dismissed":   true,
	}
	if !allowed[strings.ToLower(status)] {
		return fmt.Errorf("invalid status: %s (allowed: negotiating, accepted, dismissed)", status)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
