package feedback

import "context"

// Repository port for the remote feedback table.
type Repository interface {
	// Save upserts on (assessmentID, title, userID) and clears any prior
	// soft-delete markers.
	Save(ctx context.Context, f *Feedback) error
	// SoftDeleteByKey marks the row deleted; only rows not already
	// deleted are affected.
	SoftDeleteByKey(ctx context.Context, assessmentID, title, userID string) error
	// SoftDeleteByID is the admin variant.
	SoftDeleteByID(ctx context.Context, id, deletedBy string) error
	// RestoreByID clears the soft-delete markers, only on rows that are
	// currently deleted.
	RestoreByID(ctx context.Context, id string) error

	GetByKey(ctx context.Context, assessmentID, title, userID string) (*Feedback, error)
	All(ctx context.Context) ([]*Feedback, error)
	ByAssessment(ctx context.Context, assessmentID string) ([]*Feedback, error)
	AllIncludingDeleted(ctx context.Context) ([]*Feedback, error)
}
