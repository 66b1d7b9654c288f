package assessments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/cp-analyzer/internal/application"
	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/assessment"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/files"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/storage"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/tenants"
)

// Service implements the assessment use-cases over the persistence
// gateway and the documents bucket.
type Service struct {
	KV    storage.Store
	Docs  files.DocumentStore
	Clock application.Clock
	Log   *zap.Logger
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name *string `json:"name"`
}

// List returns all assessments, seeding/reconciling the demo set on
// first read so deployment-time changes to demo data show up without
// discarding user-created entries.
func (s *Service) List(ctx context.Context) []domain.Assessment {
	var stored []domain.Assessment
	if raw, ok := s.KV.Get(ctx, storage.AssessmentsKey); ok {
		if err := json.Unmarshal(raw, &stored); err != nil {
			s.Log.Warn("corrupted assessment list, resetting",
				zap.String("key", storage.AssessmentsKey), zap.Error(err))
			_ = s.KV.Delete(ctx, storage.AssessmentsKey)
			stored = nil
		}
	}

	merged, changed := domain.Reconcile(stored)
	if changed {
		s.saveList(ctx, merged)
	}
	return merged
}

// ListForTenant filters by the tenant visibility rule: users without a
// tenant mapping see everything; mapped users see the tenant allow-list
// plus their own assessments.
func (s *Service) ListForTenant(ctx context.Context, username string) []domain.Assessment {
	all := s.List(ctx)
	tenant, ok := tenants.UserTenant(username)
	if !ok {
		return all
	}

	visible := make([]domain.Assessment, 0, len(all))
	for _, a := range all {
		if tenants.CanAccess(tenant, a.ID) || a.User == username {
			visible = append(visible, a)
		}
	}
	return visible
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Assessment, error) {
	for _, a := range s.List(ctx) {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Service) GetForTenant(ctx context.Context, id, username string) (*domain.Assessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tenant, ok := tenants.UserTenant(username)
	if !ok {
		return a, nil
	}
	if tenants.CanAccess(tenant, id) || a.User == username {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (s *Service) Create(ctx context.Context, name, user string) (*domain.Assessment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyName
	}
	now := s.Clock.Now()
	a := domain.Assessment{
		ID:          fmt.Sprintf("assessment_%d", now.UnixMilli()),
		Name:        name,
		User:        user,
		LastUpdated: domain.NowISO(now),
	}
	list := append(s.List(ctx), a)
	s.saveList(ctx, list)
	return &a, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Assessment, error) {
	list := s.List(ctx)
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return nil, domain.ErrEmptyName
			}
			list[i].Name = *req.Name
		}
		list[i].LastUpdated = domain.NowISO(s.Clock.Now())
		s.saveList(ctx, list)
		return &list[i], nil
	}
	return nil, domain.ErrNotFound
}

// Delete removes the record and cascades over dependent side-state:
// every user's triage map for the assessment and all redraft overrides
// keyed by the assessment's item identities.
func (s *Service) Delete(ctx context.Context, id string) error {
	list := s.List(ctx)
	kept := list[:0]
	found := false
	for _, a := range list {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return domain.ErrNotFound
	}

	// Collect item ids before the record disappears; the payload is the
	// only source of redraft key material.
	var itemIDs []string
	if data, err := s.loadData(ctx, domain.Assessment{ID: id}); err == nil {
		for _, it := range data.Items() {
			itemIDs = append(itemIDs, it.ID)
		}
	}

	s.saveList(ctx, kept)
	s.cleanupSideState(ctx, id, itemIDs)
	return nil
}

func (s *Service) cleanupSideState(ctx context.Context, assessmentID string, itemIDs []string) {
	keys, err := s.KV.Keys(ctx, "")
	if err != nil {
		s.Log.Warn("cascade cleanup: listing keys failed", zap.Error(err))
	}
	suffix := storage.TriageSuffix(assessmentID)
	for _, k := range keys {
		if strings.HasSuffix(k, suffix) {
			if err := s.KV.Delete(ctx, k); err != nil {
				s.Log.Warn("cascade cleanup: deleting triage map failed", zap.String("key", k), zap.Error(err))
			}
		}
	}
	for _, id := range itemIDs {
		if err := s.KV.Delete(ctx, storage.RedraftPrefix+id); err != nil {
			s.Log.Warn("cascade cleanup: deleting redraft failed", zap.String("item", id), zap.Error(err))
		}
	}
}

// LoadData fetches the analysis payload for a demo assessment from the
// documents bucket. Unknown assessments, fetch failures and parse
// failures all yield the empty placeholder payload; a broken payload is
// an empty view, never an error.
func (s *Service) LoadData(ctx context.Context, id string) (*domain.Data, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadData(ctx, *a)
}

func (s *Service) LoadDataForTenant(ctx context.Context, id, username string) (*domain.Data, error) {
	a, err := s.GetForTenant(ctx, id, username)
	if err != nil {
		return nil, err
	}
	return s.loadData(ctx, *a)
}

func (s *Service) loadData(ctx context.Context, a domain.Assessment) (*domain.Data, error) {
	if !domain.IsDemo(a.ID) {
		return domain.EmptyData(a), nil
	}

	raw, err := s.Docs.Get(ctx, files.PayloadKey(a.ID))
	if err != nil {
		s.Log.Warn("loading assessment payload failed", zap.String("id", a.ID), zap.Error(err))
		return domain.EmptyData(a), nil
	}
	var data domain.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		s.Log.Warn("parsing assessment payload failed", zap.String("id", a.ID), zap.Error(err))
		return domain.EmptyData(a), nil
	}
	data.Assessment = a
	return &data, nil
}

func (s *Service) saveList(ctx context.Context, list []domain.Assessment) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.Log.Error("marshaling assessment list failed", zap.Error(err))
		return
	}
	if err := s.KV.Set(ctx, storage.AssessmentsKey, raw); err != nil {
		s.Log.Error("saving assessment list failed", zap.Error(err))
	}
}
