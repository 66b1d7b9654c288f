package files

import (
	"context"
	"io"
)

// ObjectInfo is the minimal stat result used to build file metadata.
type ObjectInfo struct {
	Size         int64
	LastModified int64 // unix seconds
}

// DocumentStore port over the assessment-files bucket. Stat must be a
// lightweight probe that never downloads object bodies; only recap text
// and analysis payloads are fully fetched.
type DocumentStore interface {
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// ObjectKey builds the bucket key for one assessment file.
func ObjectKey(assessmentID, filename string) string {
	return "assessment-files/" + assessmentID + "/" + filename
}

// PayloadKey builds the bucket key for an assessment's analysis payload.
func PayloadKey(assessmentID string) string {
	return assessmentID + ".json"
}
