package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/assessment"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/files"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/storage"
	"github.com/bryanwahyu/cp-analyzer/internal/infra/kv"
)

// fakeClock steps forward on every read so ids minted from the
// timestamp never collide within a test.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

type fakeDocs struct {
	objects map[string][]byte
}

func (d *fakeDocs) Stat(_ context.Context, key string) (files.ObjectInfo, error) {
	if v, ok := d.objects[key]; ok {
		return files.ObjectInfo{Size: int64(len(v)), LastModified: 1700000000}, nil
	}
	return files.ObjectInfo{}, errors.New("object not found")
}

func (d *fakeDocs) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := d.objects[key]; ok {
		return v, nil
	}
	return nil, errors.New("object not found")
}

func (d *fakeDocs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.objects[key] = data
	return nil
}

func newService(docs *fakeDocs) (*Service, *kv.MemoryStore) {
	if docs == nil {
		docs = &fakeDocs{objects: map[string][]byte{}}
	}
	store := kv.NewMemoryStore()
	svc := &Service{
		KV:    store,
		Docs:  docs,
		Clock: &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)},
		Log:   zap.NewNop(),
	}
	return svc, store
}

func TestListSeedsDemoAssessments(t *testing.T) {
	t.Parallel()

	svc, store := newService(nil)
	ctx := context.Background()

	list := svc.List(ctx)
	require.Len(t, list, len(domain.DemoAssessments))
	assert.Equal(t, domain.DemoAssessments[0].ID, list[0].ID)

	// The reconciled list is persisted.
	raw, ok := store.Get(ctx, storage.AssessmentsKey)
	require.True(t, ok)
	var stored []domain.Assessment
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Len(t, stored, len(domain.DemoAssessments))
}

func TestListResetsCorruptedStore(t *testing.T) {
	t.Parallel()

	svc, store := newService(nil)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.AssessmentsKey, []byte("garbage")))

	list := svc.List(ctx)
	assert.Len(t, list, len(domain.DemoAssessments))
}

func TestCreateUpdateDelete(t *testing.T) {
	t.Parallel()

	svc, _ := newService(nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, "MV Test - Fixture Recap", "ldc")
	require.NoError(t, err)
	assert.Equal(t, "assessment_1754049600000", a.ID)
	assert.Equal(t, "2025-08-01T12:00:00Z", a.LastUpdated)

	_, err = svc.Create(ctx, "   ", "ldc")
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	name := "MV Test - Renamed"
	updated, err := svc.Update(ctx, a.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = svc.Update(ctx, "nope", UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, a.ID), domain.ErrNotFound)
}

func TestDeleteCascadesSideState(t *testing.T) {
	t.Parallel()

	svc, store := newService(nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, "Cascade target", "ldc")
	require.NoError(t, err)

	// Two users triaged this assessment.
	require.NoError(t, store.Set(ctx, storage.TriageKey("ldc", a.ID), []byte(`[["x","accepted"]]`)))
	require.NoError(t, store.Set(ctx, storage.TriageKey("admin", a.ID), []byte(`[["x","dismissed"]]`)))
	// An unrelated triage map must survive.
	require.NoError(t, store.Set(ctx, storage.TriageKey("ldc", "other"), []byte(`[["y","accepted"]]`)))

	require.NoError(t, svc.Delete(ctx, a.ID))

	_, ok := store.Get(ctx, storage.TriageKey("ldc", a.ID))
	assert.False(t, ok)
	_, ok = store.Get(ctx, storage.TriageKey("admin", a.ID))
	assert.False(t, ok)
	_, ok = store.Get(ctx, storage.TriageKey("ldc", "other"))
	assert.True(t, ok)
}

func TestTenantVisibility(t *testing.T) {
	t.Parallel()

	svc, _ := newService(nil)
	ctx := context.Background()

	mine, err := svc.Create(ctx, "LDC own fixture", "ldc")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Someone else's", "stranger")
	require.NoError(t, err)

	// Mapped user: demo allow-list plus their own.
	visible := svc.ListForTenant(ctx, "ldc")
	ids := make([]string, 0, len(visible))
	for _, a := range visible {
		ids = append(ids, a.ID)
	}
	assert.Contains(t, ids, mine.ID)
	assert.Contains(t, ids, domain.DemoAssessments[0].ID)
	assert.Len(t, visible, len(domain.DemoAssessments)+1)

	// Unmapped user sees everything.
	all := svc.ListForTenant(ctx, "wanderer")
	assert.Len(t, all, len(domain.DemoAssessments)+2)

	// Tenant-hidden assessments read as not found.
	_, err = svc.GetForTenant(ctx, mine.ID, "ldc")
	assert.NoError(t, err)
	other := svc.List(ctx)[len(domain.DemoAssessments)+1]
	_, err = svc.GetForTenant(ctx, other.ID, "ldc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadDataFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	docs := &fakeDocs{objects: map[string][]byte{}}
	svc, _ := newService(docs)
	ctx := context.Background()

	// Non-demo assessments always get the placeholder.
	a, err := svc.Create(ctx, "No payload", "ldc")
	require.NoError(t, err)
	data, err := svc.LoadData(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, data.Items())
	assert.Equal(t, "green", data.Report.OverallTrafficLight)

	// Demo assessment with a corrupted payload degrades to the placeholder.
	demo := domain.DemoAssessments[0].ID
	docs.objects[files.PayloadKey(demo)] = []byte("not json")
	data, err = svc.LoadData(ctx, demo)
	require.NoError(t, err)
	assert.Empty(t, data.Items())

	// Missing assessment is still an error.
	_, err = svc.LoadData(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadDataParsesPayload(t *testing.T) {
	t.Parallel()

	demo := domain.DemoAssessments[0].ID
	payload := map[string]any{
		"risks": map[string]any{
			"risk_assessment_report": []map[string]any{
				{"title": "Demurrage exposure", "risk_type": "Potential Risk", "risk_summary": "unclear rate"},
			},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	docs := &fakeDocs{objects: map[string][]byte{files.PayloadKey(demo): raw}}
	svc, _ := newService(docs)

	data, err := svc.LoadData(context.Background(), demo)
	require.NoError(t, err)
	items := data.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Demurrage exposure", items[0].Title)
	// The stored record wins over whatever the payload carries.
	assert.Equal(t, demo, data.ID)
}
