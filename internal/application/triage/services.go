package triage

import (
	"context"

	"go.uber.org/zap"

	"github.com/bryanwahyu/cp-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/storage"
)

// Service owns per-user triage maps and per-item redraft overrides.
type Service struct {
	KV  storage.Store
	Log *zap.Logger
}

// StatusMap loads one user's triage map for an assessment. A corrupted
// entry is deleted and treated as empty so one bad write can't wedge
// the review screen.
func (s *Service) StatusMap(ctx context.Context, username, assessmentID string) analysis.StatusMap {
	key := storage.TriageKey(username, assessmentID)
	raw, ok := s.KV.Get(ctx, key)
	if !ok {
		return analysis.StatusMap{}
	}
	m, err := analysis.DecodeStatusMap(raw)
	if err != nil {
		s.Log.Warn("corrupted triage map, resetting", zap.String("key", key), zap.Error(err))
		_ = s.KV.Delete(ctx, key)
		return analysis.StatusMap{}
	}
	return m
}

// Toggle applies the toggle semantics and persists the result. Returns
// the item's resulting status and whether it is still marked.
func (s *Service) Toggle(ctx context.Context, username, assessmentID, itemID string, st analysis.Status) (analysis.Status, bool, error) {
	m := s.StatusMap(ctx, username, assessmentID)
	result, marked := m.Toggle(itemID, st)

	raw, err := analysis.EncodeStatusMap(m)
	if err != nil {
		return "", false, err
	}
	key := storage.TriageKey(username, assessmentID)
	if len(m) == 0 {
		// Last mark removed; drop the key rather than storing [].
		if err := s.KV.Delete(ctx, key); err != nil {
			return "", false, err
		}
		return result, marked, nil
	}
	if err := s.KV.Set(ctx, key, raw); err != nil {
		return "", false, err
	}
	return result, marked, nil
}

// Redraft returns the stored override for an item, if any.
func (s *Service) Redraft(ctx context.Context, itemID string) (string, bool) {
	raw, ok := s.KV.Get(ctx, analysis.RedraftKey(itemID))
	if !ok {
		return "", false
	}
	return string(raw), true
}

// SetRedraft stores an edited redraft. Saving text identical to the
// AI-produced original is a no-op that clears any existing override, so
// untouched items never accumulate redundant entries.
func (s *Service) SetRedraft(ctx context.Context, itemID, text, original string) (bool, error) {
	key := analysis.RedraftKey(itemID)
	if text == original {
		if err := s.KV.Delete(ctx, key); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.KV.Set(ctx, key, []byte(text)); err != nil {
		return false, err
	}
	return true, nil
}

// ClearRedraft drops an override, reverting the item to the AI text.
func (s *Service) ClearRedraft(ctx context.Context, itemID string) error {
	return s.KV.Delete(ctx, analysis.RedraftKey(itemID))
}

// Overlay decorates items with stored redraft overrides and the user's
// triage statuses before they go out the API.
func (s *Service) Overlay(ctx context.Context, username, assessmentID string, items []analysis.Item) []analysis.Item {
	statuses := s.StatusMap(ctx, username, assessmentID)
	out := make([]analysis.Item, len(items))
	for i, it := range items {
		if text, ok := s.Redraft(ctx, it.ID); ok {
			it.Resolution.SuggestedRedraft = text
			it.RedraftEdited = true
		}
		if st, ok := statuses[it.ID]; ok {
			it.TriageStatus = string(st)
		}
		out[i] = it
	}
	return out
}
