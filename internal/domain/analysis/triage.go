package analysis

import "encoding/json"

// Status is a user's disposition of a finding. Absence means "to review".
type Status string

const (
	StatusNegotiating Status = "negotiating"
	StatusAccepted    Status = "accepted"
	StatusDismissed   Status = "dismissed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNegotiating, StatusAccepted, StatusDismissed:
		return true
	}
	return false
}

// StatusMap maps item identity to triage status for one (user, assessment).
type StatusMap map[string]Status

// Toggle applies a triage action: picking the recorded status again clears
// it (back to "to review"), anything else replaces it. At most one status
// per item. Returns the resulting status and whether one is recorded.
func (m StatusMap) Toggle(itemID string, s Status) (Status, bool) {
	if m[itemID] == s {
		delete(m, itemID)
		return "", false
	}
	m[itemID] = s
	return s, true
}

// The browser app persisted triage maps as an array of [id, status] pairs
// (Map entries). Keep that encoding so keys stay interchangeable.

func EncodeStatusMap(m StatusMap) ([]byte, error) {
	pairs := make([][2]string, 0, len(m))
	for id, s := range m {
		pairs = append(pairs, [2]string{id, string(s)})
	}
	return json.Marshal(pairs)
}

func DecodeStatusMap(data []byte) (StatusMap, error) {
	var pairs [][2]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}
	m := make(StatusMap, len(pairs))
	for _, p := range pairs {
		m[p[0]] = Status(p[1])
	}
	return m, nil
}
