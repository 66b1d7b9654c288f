package analysis

import "encoding/json"

// RiskType enum
type RiskType string

const (
	TypePotentialRisk RiskType = "Potential Risk"
	TypeAmbiguity     RiskType = "Ambiguity"
	TypeMissingInfo   RiskType = "Missing Info"
	TypeConflict      RiskType = "Conflict"
	TypeNearConflict  RiskType = "Near-Conflict"
)

// Evidence is one supporting quote or clause excerpt for a finding.
type Evidence struct {
	Clause string `json:"clause,omitempty"`
	Body   string `json:"body,omitempty"`
}

// Action is an owner/action pair suggested by the analysis.
type Action struct {
	Owner  string `json:"owner,omitempty"`
	Action string `json:"action"`
}

// Resolution carries the suggested contract fix for a finding.
type Resolution struct {
	Action           string `json:"action,omitempty"`
	SuggestedRedraft string `json:"suggested_redraft,omitempty"`
}

// Item is the canonical shape of a single analysis finding. Upstream
// payloads come from two producers with drifting field names; rawItem
// absorbs the variance and Normalize produces this one shape so nothing
// downstream ever looks at fallback chains again.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Type       RiskType   `json:"type"`
	Summary    string     `json:"summary"`
	Resolution Resolution `json:"resolution"`
	Actions    []Action   `json:"actions,omitempty"`
	Evidence   []Evidence `json:"evidence,omitempty"`

	// Per-user overlay, filled in by the triage service; never persisted
	// with the payload itself.
	TriageStatus  string `json:"triageStatus,omitempty"`
	RedraftEdited bool   `json:"redraftEdited,omitempty"`
}

// rawItem mirrors the upstream JSON, both producer dialects at once.
type rawItem struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	RiskType    string `json:"risk_type"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	RiskSummary string `json:"risk_summary"`
	Resolution  *struct {
		Action           string `json:"action"`
		SuggestedRedraft string `json:"suggested_redraft"`
	} `json:"resolution"`
	Actions []struct {
		Owner  string `json:"owner"`
		Action string `json:"action"`
	} `json:"actions"`
	Evidence         []rawEvidence `json:"evidence"`
	ClauseReferences []rawEvidence `json:"clause_references"`
}

type rawEvidence struct {
	Clause          string `json:"clause"`
	ClauseReference string `json:"clause_reference"`
	Highlight       string `json:"highlight"`
	FullText        string `json:"full_text"`
	Description     string `json:"description"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalize collapses the producer dialects into a canonical Item and
// derives its stable identity.
func (r rawItem) normalize(assessmentID string) Item {
	it := Item{
		ID:      StableID(assessmentID, r.Title, firstNonEmpty(r.RiskSummary, r.Summary, r.Description)),
		Title:   r.Title,
		Type:    RiskType(firstNonEmpty(r.Type, r.RiskType)),
		Summary: firstNonEmpty(r.Summary, r.Description, r.RiskSummary),
	}
	if r.Resolution != nil {
		it.Resolution = Resolution{Action: r.Resolution.Action, SuggestedRedraft: r.Resolution.SuggestedRedraft}
	}
	for _, a := range r.Actions {
		it.Actions = append(it.Actions, Action{Owner: a.Owner, Action: a.Action})
	}
	for _, e := range append(r.Evidence, r.ClauseReferences...) {
		ev := Evidence{
			Clause: firstNonEmpty(e.Clause, e.ClauseReference),
			Body:   firstNonEmpty(e.Highlight, e.FullText, e.Description),
		}
		if ev.Clause == "" && ev.Body == "" {
			continue
		}
		it.Evidence = append(it.Evidence, ev)
	}
	return it
}

// NormalizeItems decodes an upstream item array and normalizes every entry.
func NormalizeItems(assessmentID string, raw json.RawMessage) ([]Item, error) {
	var rows []rawItem
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.normalize(assessmentID))
	}
	return out, nil
}
