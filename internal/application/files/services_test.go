package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/files"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeDocs struct {
	mu       sync.Mutex
	objects  map[string][]byte
	getCalls map[string]int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{objects: map[string][]byte{}, getCalls: map[string]int{}}
}

func (d *fakeDocs) Stat(_ context.Context, key string) (domain.ObjectInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.objects[key]; ok {
		return domain.ObjectInfo{Size: int64(len(v)), LastModified: 1700000000}, nil
	}
	return domain.ObjectInfo{}, errors.New("object not found")
}

func (d *fakeDocs) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getCalls[key]++
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
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = data
	return nil
}

func (d *fakeDocs) gets(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getCalls[key]
}

func newTestService(docs *fakeDocs) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(docs, clock, zap.NewNop()), clock
}

func TestDiscoverFromManifestDropsMissingFiles(t *testing.T) {
	t.Parallel()

	docs := newFakeDocs()
	docs.objects[domain.ObjectKey("a1", domain.ManifestFilename)] = []byte(`{
		"recap": "fixture_recap.txt",
		"baseCharterParty": "../cp.pdf",
		"riderClauses": "gone.pdf",
		"additionalDocuments": ["extra.docx"]
	}`)
	docs.objects[domain.ObjectKey("a1", "fixture_recap.txt")] = []byte("  Recap body.  ")
	docs.objects[domain.ObjectKey("a1", "cp.pdf")] = []byte("pdfdata")
	docs.objects[domain.ObjectKey("a1", "extra.docx")] = []byte("docxdata")

	svc, _ := newTestService(docs)
	d, err := svc.Discover(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "Recap body.", d.Recap)
	assert.Equal(t, "fixture_recap.txt", d.RecapFilename)

	// Filenames are sanitized before the probe.
	require.NotNil(t, d.BaseCharterParty)
	assert.Equal(t, "cp.pdf", d.BaseCharterParty.Name)
	assert.Equal(t, "application/pdf", d.BaseCharterParty.Type)

	// Listed but absent files drop out silently.
	assert.Nil(t, d.RiderClauses)

	require.Len(t, d.AdditionalDocuments, 1)
	assert.Equal(t, "extra.docx", d.AdditionalDocuments[0].Name)
}

func TestDiscoverMalformedManifestFallsBackToConvention(t *testing.T) {
	t.Parallel()

	docs := newFakeDocs()
	docs.objects[domain.ObjectKey("a1", domain.ManifestFilename)] = []byte(`["not","an","object"]`)
	docs.objects[domain.ObjectKey("a1", "a1_recap.txt")] = []byte("recap via convention")
	docs.objects[domain.ObjectKey("a1", "a1_cp.docx")] = []byte("docdata")

	svc, _ := newTestService(docs)
	d, err := svc.Discover(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "recap via convention", d.Recap)
	require.NotNil(t, d.BaseCharterParty)
	// pdf probed first, then doc, then docx.
	assert.Equal(t, "a1_cp.docx", d.BaseCharterParty.Name)
}

func TestDiscoverAdditionalSequenceStopsAtGap(t *testing.T) {
	t.Parallel()

	docs := newFakeDocs()
	docs.objects[domain.ObjectKey("a1", "a1_additional_1.pdf")] = []byte("one")
	// a1_additional_2 missing; 3 exists but must not be reached.
	docs.objects[domain.ObjectKey("a1", "a1_additional_3.pdf")] = []byte("three")

	svc, _ := newTestService(docs)
	d, err := svc.Discover(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Len(t, d.AdditionalDocuments, 1)
	assert.Equal(t, "a1_additional_1.pdf", d.AdditionalDocuments[0].Name)
}

func TestDiscoverReturnsNilWhenNothingFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newFakeDocs())
	d, err := svc.Discover(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestManifestVerdictCaching(t *testing.T) {
	t.Parallel()

	docs := newFakeDocs()
	manifestKey := domain.ObjectKey("a1", domain.ManifestFilename)
	docs.objects[manifestKey] = []byte(`{"recap": "r.txt"}`)
	docs.objects[domain.ObjectKey("a1", "r.txt")] = []byte("recap")

	svc, clock := newTestService(docs)
	ctx := context.Background()

	_, err := svc.Discover(ctx, "a1")
	require.NoError(t, err)
	_, err = svc.Discover(ctx, "a1")
	require.NoError(t, err)

	// Second discovery reuses the manifest verdict.
	assert.Equal(t, 1, docs.gets(manifestKey))

	// Past the TTL the manifest is fetched again.
	clock.Advance(ManifestCacheTTL + time.Second)
	_, err = svc.Discover(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, docs.gets(manifestKey))

	// ClearCache forces a refetch immediately.
	svc.ClearCache("a1")
	_, err = svc.Discover(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, docs.gets(manifestKey))
}

func TestUploadBatchPerFileRejection(t *testing.T) {
	t.Parallel()

	docs := newFakeDocs()
	svc, _ := newTestService(docs)
	ctx := context.Background()

	// Prime the manifest-verdict cache so the upload can invalidate it.
	_, err := svc.Discover(ctx, "a1")
	require.NoError(t, err)
	manifestKey := domain.ObjectKey("a1", domain.ManifestFilename)
	before := docs.gets(manifestKey)

	batch := []UploadFile{
		{Name: "cp.pdf", Size: 7, Reader: bytes.NewReader([]byte("pdfdata"))},
		{Name: "malware.exe", Size: 3, Reader: bytes.NewReader([]byte("bad"))},
		{Name: "big.pdf", Size: domain.MaxUploadSize + 1, Reader: bytes.NewReader(nil)},
	}
	results := svc.Upload(ctx, "a1", batch)
	require.Len(t, results, 3)

	assert.True(t, results[0].Accepted)
	require.NotNil(t, results[0].Metadata)
	assert.Equal(t, "cp.pdf", results[0].Metadata.Name)

	assert.False(t, results[1].Accepted)
	assert.Contains(t, results[1].Error, "unsupported file type")

	assert.False(t, results[2].Accepted)
	assert.Contains(t, results[2].Error, "10MB")

	// The accepted file landed in the bucket.
	_, ok := docs.objects[domain.ObjectKey("a1", "cp.pdf")]
	assert.True(t, ok)

	// Cache was invalidated: next discovery refetches the manifest.
	_, err = svc.Discover(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, before+1, docs.gets(manifestKey))
}
