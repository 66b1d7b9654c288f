package redraft

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/cp-analyzer/internal/domain/ai"
)

// Service asks the model for a fresh redraft of a clause. Model failure
// other than quota exhaustion degrades to the stored suggestion; quota
// exhaustion surfaces so the API can answer 429.
type Service struct {
	Suggester ai.Suggester
	Log       *zap.Logger
}

// Suggest returns the model's redraft, or the existing suggested
// redraft when the model is unavailable. The second return reports
// whether the text came from the model.
func (s *Service) Suggest(ctx context.Context, req ai.RedraftRequest) (string, bool, error) {
	text, err := s.Suggester.SuggestRedraft(ctx, req)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			return "", false, err
		}
		s.Log.Warn("redraft suggestion failed, using stored text", zap.Error(err))
		return req.SuggestedRedraft, false, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return req.SuggestedRedraft, false, nil
	}
	return text, true, nil
}
