package assessment

// Demo assessments matching the datasets shipped in the documents bucket.
var DemoAssessments = []Assessment{
	{
		ID:          "photo_inspection_mv_crystalya",
		Name:        "MV Crystalia - Photo Inspection",
		User:        "LDC Operations",
		LastUpdated: "2025-05-19T10:30:00Z",
	},
	{
		ID:          "cleaning_report_mv_crystalya",
		Name:        "MV Crystalia - Cleaning Report",
		User:        "LDC Operations",
		LastUpdated: "2025-07-09T14:20:00Z",
	},
}

// IsDemo reports whether id belongs to the demo set. Only demo
// assessments have analysis payloads in the documents bucket.
func IsDemo(id string) bool {
	for _, a := range DemoAssessments {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Reconcile refreshes the demo set inside a stored assessment list while
// preserving user-created entries. When the stored list's overlap with
// the demo set no longer matches the demo set's size (a deployment added
// or removed demo data), the demo set is prepended fresh. Returns the
// resulting list and whether it changed.
func Reconcile(stored []Assessment) ([]Assessment, bool) {
	overlap := 0
	for _, s := range stored {
		if IsDemo(s.ID) {
			overlap++
		}
	}
	if len(stored) > 0 && overlap == len(DemoAssessments) {
		return stored, false
	}

	merged := make([]Assessment, 0, len(DemoAssessments)+len(stored))
	merged = append(merged, DemoAssessments...)
	for _, s := range stored {
		if !IsDemo(s.ID) {
			merged = append(merged, s)
		}
	}
	return merged, true
}
