package files

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/cp-analyzer/internal/application"
	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/files"
)

// ManifestCacheTTL bounds how stale a cached manifest verdict may be.
const ManifestCacheTTL = 5 * time.Minute

type cacheEntry struct {
	manifest  *domain.Manifest // nil = verdict "no usable manifest"
	fetchedAt time.Time
}

// Service resolves the document set attached to an assessment and
// handles uploads into it. Only the manifest fetch verdict is cached;
// per-file existence probes always run fresh so an upload that just
// landed shows up immediately.
type Service struct {
	Docs  domain.DocumentStore
	Clock application.Clock
	Log   *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewService(docs domain.DocumentStore, clock application.Clock, log *zap.Logger) *Service {
	return &Service{
		Docs:  docs,
		Clock: clock,
		Log:   log,
		cache: make(map[string]cacheEntry),
	}
}

// Discover resolves files for one assessment: manifest first, filename
// convention as fallback. Returns nil when nothing is found.
func (s *Service) Discover(ctx context.Context, assessmentID string) (*domain.DiscoveredFiles, error) {
	m, cached := s.cachedManifest(assessmentID)
	if !cached {
		m = s.fetchManifest(ctx, assessmentID)
		s.storeManifest(assessmentID, m)
	}

	var d *domain.DiscoveredFiles
	if m != nil {
		d = s.fromManifest(ctx, assessmentID, m)
	} else {
		d = s.byConvention(ctx, assessmentID)
	}
	if d.Empty() {
		return nil, nil
	}
	return d, nil
}

// ClearCache drops the cached manifest verdict for one assessment, or
// for all of them when id is empty.
func (s *Service) ClearCache(assessmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if assessmentID == "" {
		s.cache = make(map[string]cacheEntry)
		return
	}
	delete(s.cache, assessmentID)
}

func (s *Service) cachedManifest(assessmentID string) (*domain.Manifest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[assessmentID]
	if !ok || s.Clock.Now().Sub(e.fetchedAt) > ManifestCacheTTL {
		return nil, false
	}
	return e.manifest, true
}

func (s *Service) storeManifest(assessmentID string, m *domain.Manifest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[assessmentID] = cacheEntry{manifest: m, fetchedAt: s.Clock.Now()}
}

// fetchManifest returns nil when the manifest is absent or malformed;
// both verdicts fall through to convention-based discovery.
func (s *Service) fetchManifest(ctx context.Context, assessmentID string) *domain.Manifest {
	raw, err := s.Docs.Get(ctx, domain.ObjectKey(assessmentID, domain.ManifestFilename))
	if err != nil {
		return nil
	}
	m, err := domain.ParseManifest(raw)
	if err != nil {
		s.Log.Warn("malformed manifest, falling back to convention",
			zap.String("assessment", assessmentID), zap.Error(err))
		return nil
	}
	return m
}

func (s *Service) fromManifest(ctx context.Context, assessmentID string, m *domain.Manifest) *domain.DiscoveredFiles {
	d := &domain.DiscoveredFiles{}

	if name := domain.SanitizeFilename(m.Recap); name != "" {
		if text, ok := s.fetchRecap(ctx, assessmentID, name); ok {
			d.Recap = text
			d.RecapFilename = name
		}
	}
	if name := domain.SanitizeFilename(m.BaseCharterParty); name != "" {
		d.BaseCharterParty = s.metadataFor(ctx, assessmentID, name)
	}
	if name := domain.SanitizeFilename(m.RiderClauses); name != "" {
		d.RiderClauses = s.metadataFor(ctx, assessmentID, name)
	}
	for _, entry := range m.AdditionalDocuments {
		name := domain.SanitizeFilename(entry)
		if name == "" {
			continue
		}
		if md := s.metadataFor(ctx, assessmentID, name); md != nil {
			d.AdditionalDocuments = append(d.AdditionalDocuments, *md)
		}
	}
	return d
}

func (s *Service) byConvention(ctx context.Context, assessmentID string) *domain.DiscoveredFiles {
	d := &domain.DiscoveredFiles{}

	recapName := assessmentID + "_recap.txt"
	if text, ok := s.fetchRecap(ctx, assessmentID, recapName); ok {
		d.Recap = text
		d.RecapFilename = recapName
	}

	d.BaseCharterParty = s.probeDocument(ctx, assessmentID, assessmentID+"_cp")
	d.RiderClauses = s.probeDocument(ctx, assessmentID, assessmentID+"_rider")

	// Contiguous prefix only: the first gap ends the additional sequence.
	for n := 1; n <= domain.MaxAdditionalAutoDiscovery; n++ {
		md := s.probeDocument(ctx, assessmentID, assessmentID+"_additional_"+strconv.Itoa(n))
		if md == nil {
			break
		}
		d.AdditionalDocuments = append(d.AdditionalDocuments, *md)
	}
	return d
}

// probeDocument tries each document extension in order for a base name.
func (s *Service) probeDocument(ctx context.Context, assessmentID, base string) *domain.FileMetadata {
	for _, ext := range domain.DocumentExtensions {
		if md := s.metadataFor(ctx, assessmentID, base+"."+ext); md != nil {
			return md
		}
	}
	return nil
}

// metadataFor stats an object without downloading it; a missing or
// unreachable object is simply dropped from the result.
func (s *Service) metadataFor(ctx context.Context, assessmentID, filename string) *domain.FileMetadata {
	info, err := s.Docs.Stat(ctx, domain.ObjectKey(assessmentID, filename))
	if err != nil {
		return nil
	}
	return &domain.FileMetadata{
		Name:         filename,
		Size:         info.Size,
		Type:         domain.MimeType(filename),
		LastModified: time.Unix(info.LastModified, 0).UTC(),
	}
}

func (s *Service) fetchRecap(ctx context.Context, assessmentID, filename string) (string, bool) {
	raw, err := s.Docs.Get(ctx, domain.ObjectKey(assessmentID, filename))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

// UploadFile is one member of an upload batch.
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// UploadResult reports per-file acceptance; a rejected file never fails
// the batch.
type UploadResult struct {
	Name     string               `json:"name"`
	Accepted bool                 `json:"accepted"`
	Error    string               `json:"error,omitempty"`
	Metadata *domain.FileMetadata `json:"metadata,omitempty"`
}

// Upload stores a batch of documents for an assessment and invalidates
// the cached manifest verdict so the next discovery sees them.
func (s *Service) Upload(ctx context.Context, assessmentID string, batch []UploadFile) []UploadResult {
	results := make([]UploadResult, 0, len(batch))
	stored := false
	for _, f := range batch {
		name := domain.SanitizeFilename(f.Name)
		if err := domain.ValidateUpload(name, f.Size); err != nil {
			results = append(results, UploadResult{Name: f.Name, Error: err.Error()})
			continue
		}
		key := domain.ObjectKey(assessmentID, name)
		if err := s.Docs.Put(ctx, key, f.Reader, f.Size, domain.MimeType(name)); err != nil {
			s.Log.Error("storing upload failed", zap.String("key", key), zap.Error(err))
			results = append(results, UploadResult{Name: f.Name, Error: "storing file failed"})
			continue
		}
		stored = true
		results = append(results, UploadResult{
			Name:     name,
			Accepted: true,
			Metadata: s.metadataFor(ctx, assessmentID, name),
		})
	}
	if stored {
		s.ClearCache(assessmentID)
	}
	return results
}
