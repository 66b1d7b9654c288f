package files

import (
	"path/filepath"
	"strings"
	"time"
)

// FileMetadata describes one discovered or uploaded document.
type FileMetadata struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	LastModified time.Time `json:"lastModified"`
}

// DiscoveredFiles is the resolved per-assessment document set.
type DiscoveredFiles struct {
	Recap               string         `json:"recap,omitempty"`
	RecapFilename       string         `json:"recapFilename,omitempty"`
	BaseCharterParty    *FileMetadata  `json:"baseCharterParty,omitempty"`
	RiderClauses        *FileMetadata  `json:"riderClauses,omitempty"`
	AdditionalDocuments []FileMetadata `json:"additionalDocuments"`
}

// Empty reports whether discovery found literally nothing.
func (d *DiscoveredFiles) Empty() bool {
	return d.Recap == "" &&
		d.BaseCharterParty == nil &&
		d.RiderClauses == nil &&
		len(d.AdditionalDocuments) == 0
}

// Manifest is the explicit per-assessment file listing. All fields
// optional; unknown fields are ignored.
type Manifest struct {
	Recap               string   `json:"recap,omitempty"`
	BaseCharterParty    string   `json:"baseCharterParty,omitempty"`
	RiderClauses        string   `json:"riderClauses,omitempty"`
	AdditionalDocuments []string `json:"additionalDocuments,omitempty"`
}

const ManifestFilename = "manifest.json"

// Document extensions probed by convention-based discovery, in order.
var DocumentExtensions = []string{"pdf", "doc", "docx"}

// MaxAdditionalAutoDiscovery bounds the `{id}_additional_{n}` probe; the
// sequence is contiguous-prefix only, a gap stops discovery.
const MaxAdditionalAutoDiscovery = 3

// SanitizeFilename strips path separators and parent-directory
// references so manifest entries cannot traverse outside the assessment
// folder.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return strings.ReplaceAll(name, "..", "")
}

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
}

// MimeType maps a filename to its content type.
func MimeType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
