package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/cp-analyzer/internal/domain/ai"
)

// RedraftSystemPrompt keeps the model on plain clause text, no markdown.
func RedraftSystemPrompt() string {
	return `You are a senior chartering manager reviewing charter-party clauses. Given a risk finding and its clause context, produce one improved redraft of the clause that removes the identified risk while keeping commercial intent. Output the clause text only: no markdown, no commentary, no quotation marks around the whole answer.`
}

// RedraftUserPrompt builds a compact user message from the finding.
func RedraftUserPrompt(req ai.RedraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Finding: %s\n", req.Title)
	if req.Summary != "" {
		fmt.Fprintf(&b, "Risk summary: %s\n", req.Summary)
	}
	if req.ClauseText != "" {
		fmt.Fprintf(&b, "Current clause text:\n%s\n", req.ClauseText)
	}
	if req.SuggestedRedraft != "" {
		fmt.Fprintf(&b, "Existing suggested redraft to improve:\n%s\n", req.SuggestedRedraft)
	}
	b.WriteString("Respond with the improved clause text only.")
	return b.String()
}
