package analysis

import "encoding/json"

// Report-shaped payloads are objects whose every value is an array of
// findings. The browser app detected that structurally at read time; here
// the check is an explicit validator applied once at ingestion.

// Canonical report keys used by the two producers.
const (
	RiskReportKey     = "risk_assessment_report"
	ConflictReportKey = "conflicts_report"
)

// IsReport reports whether raw is a non-array JSON object whose values
// are all arrays.
func IsReport(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	for _, v := range obj {
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err != nil {
			return false
		}
	}
	return true
}

// ItemsFromReport extracts and normalizes the item array stored under key
// in a report-shaped object. A missing key, a malformed report or a
// malformed array all yield an empty slice; findings payloads degrade,
// they never error out a view.
func ItemsFromReport(assessmentID string, raw json.RawMessage, key string) []Item {
	if !IsReport(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	arr, ok := obj[key]
	if !ok {
		return nil
	}
	items, err := NormalizeItems(assessmentID, arr)
	if err != nil {
		return nil
	}
	return items
}
