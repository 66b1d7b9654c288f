package assessment

import "errors"

var (
	// ErrNotFound covers both missing and tenant-hidden assessments.
	ErrNotFound = errors.New("assessment not found")
	// ErrEmptyName rejects creation/rename with a blank name.
	ErrEmptyName = errors.New("assessment name cannot be empty")
)
