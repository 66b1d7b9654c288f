package storage

// Key schema carried over from the browser app so persisted triage and
// redraft state stays addressable.

const (
	AssessmentsKey   = "cpanalyzer_assessments"
	RedraftPrefix    = "redraft_"
	ActiveViewPrefix = "cpanalyzer_active_view_"
	SessionPrefix    = "cpanalyzer_session_"
	triageInfix      = "_triage_status_"
)

// TriageKey builds the per-(user, assessment) triage map key.
func TriageKey(username, assessmentID string) string {
	return username + triageInfix + assessmentID
}

// TriageSuffix is used to sweep all users' triage maps for one
// assessment: every triage key for it ends with this suffix.
func TriageSuffix(assessmentID string) string {
	return triageInfix + assessmentID
}

// ActiveViewKey builds the session-scoped requested-view key.
func ActiveViewKey(username string) string {
	return ActiveViewPrefix + username
}

// SessionKey builds the session-token key.
func SessionKey(token string) string {
	return SessionPrefix + token
}
