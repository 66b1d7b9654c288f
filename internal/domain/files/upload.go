package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Upload acceptance rules.
const MaxUploadSize = 10 * 1024 * 1024 // 10MB per file

var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// ValidateUpload checks one file against the acceptance rules. Rejection
// is per-file; other files in the same batch are unaffected.
func ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !acceptedExtensions[ext] {
		return fmt.Errorf("unsupported file type %q (allowed: .pdf, .doc, .docx, .txt)", ext)
	}
	if size > MaxUploadSize {
		return fmt.Errorf("file %q exceeds the 10MB limit", filename)
	}
	return nil
}
