package files

import (
	"encoding/json"
	"errors"
)

var errMalformedManifest = errors.New("malformed manifest")

// ParseManifest validates a manifest document structurally: it must be a
// JSON object, the three filename fields must be strings when present,
// and additionalDocuments must be an array of strings. Extra fields are
// ignored. A failure here triggers convention-based discovery, never an
// error to the caller's caller.
func ParseManifest(raw []byte) (*Manifest, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errMalformedManifest
	}

	var m Manifest
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"recap", &m.Recap},
		{"baseCharterParty", &m.BaseCharterParty},
		{"riderClauses", &m.RiderClauses},
	} {
		v, ok := obj[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return nil, errMalformedManifest
		}
	}

	if v, ok := obj["additionalDocuments"]; ok {
		if err := json.Unmarshal(v, &m.AdditionalDocuments); err != nil {
			return nil, errMalformedManifest
		}
	}
	return &m, nil
}
