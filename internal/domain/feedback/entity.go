package feedback

import (
	"encoding/json"
	"time"
)

// Rating enum
type Rating string

const (
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
)

func (r Rating) Valid() bool {
	return r == RatingPositive || r == RatingNegative
}

// Feedback is one user's thumbs up/down on a finding. Uniqueness is
// enforced on (AssessmentID, Title, UserID): a later submission for the
// same triple overwrites the earlier one.
type Feedback struct {
	ID           string          `json:"id"`
	AssessmentID string          `json:"assessmentId"`
	Title        string          `json:"title"`
	Rating       Rating          `json:"rating"`
	Comment      string          `json:"comment,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	UserID       string          `json:"userId"`
	ItemData     json.RawMessage `json:"itemData,omitempty"`

	// Soft-delete markers; reads exclude rows with DeletedAt set unless
	// the caller explicitly asks for the deleted set.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy string     `json:"deletedBy,omitempty"`
}
