package ai

import "context"

// RedraftRequest carries the finding context the suggester works from.
type RedraftRequest struct {
	Title            string
	Summary          string
	SuggestedRedraft string
	ClauseText       string
}

// Suggester produces an improved redraft for a finding's clause.
type Suggester interface {
	SuggestRedraft(ctx context.Context, req RedraftRequest) (string, error)
}
