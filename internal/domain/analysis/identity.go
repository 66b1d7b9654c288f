package analysis

import (
	"strconv"
	"unicode/utf16"
)

// StableID derives a short deterministic identifier for a finding from
// its content. The hash walks UTF-16 code units with h = h*31 + unit and
// 32-bit wraparound, then renders the absolute value in base-36. Triage
// maps, redraft overrides and feedback keys all hang off this id, so the
// algorithm must not change once data is persisted.
//
// Collisions silently merge two items' side-state; acceptable for report
// sized lists, never for anything adversarial.
func StableID(assessmentID, title, summary string) string {
	content := assessmentID + "_" + title + "_" + summary
	var h int32
	for _, cu := range utf16.Encode([]rune(content)) {
		h = h*31 + int32(cu)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// RedraftKey is the storage key for a per-item redraft override.
func RedraftKey(itemID string) string {
	return "redraft_" + itemID
}
