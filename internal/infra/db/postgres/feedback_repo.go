package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/feedback"
)

type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

const feedbackColumns = `id, assessment_id, title, rating, comment, user_id, item_data, timestamp, deleted_at, deleted_by`

// Save upserts on the (assessment_id, title, user_id) uniqueness triple.
// Saving always clears the soft-delete markers so re-rating a previously
// removed item resurrects it.
func (r *FeedbackRepository) Save(ctx context.Context, f *domain.Feedback) error {
	const q = `
INSERT INTO feedback
  (id, assessment_id, title, rating, comment, user_id, item_data, timestamp, deleted_at, deleted_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULL,NULL)
ON CONFLICT (assessment_id, title, user_id) DO UPDATE SET
  rating=EXCLUDED.rating,
  comment=EXCLUDED.comment,
  item_data=EXCLUDED.item_data,
  timestamp=EXCLUDED.timestamp,
  deleted_at=NULL,
  deleted_by=NULL;
`
	id := f.ID
	if id == "" {
		id = uuid.New().String()
	}
	ts := f.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	item := f.ItemData
	if len(item) == 0 {
		item = []byte("{}")
	}
	var comment sql.NullString
	if f.Comment != "" {
		comment = sql.NullString{String: f.Comment, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q, id, f.AssessmentID, f.Title, f.Rating, comment, f.UserID, []byte(item), ts)
	if err != nil {
		return eris.Wrap(err, "saving feedback")
	}
	f.ID = id
	f.Timestamp = ts
	f.DeletedAt = nil
	f.DeletedBy = ""
	return nil
}

// SoftDeleteByKey marks the user's own row deleted; rows already deleted
// are left untouched.
func (r *FeedbackRepository) SoftDeleteByKey(ctx context.Context, assessmentID, title, userID string) error {
	const q = `
UPDATE feedback
SET deleted_at=$1, deleted_by=$2
WHERE assessment_id=$3 AND title=$4 AND user_id=$5 AND deleted_at IS NULL;`
	_, err := r.db.ExecContext(ctx, q, time.Now().UTC(), userID, assessmentID, title, userID)
	if err != nil {
		return eris.Wrap(err, "soft deleting feedback by key")
	}
	return nil
}

func (r *FeedbackRepository) SoftDeleteByID(ctx context.Context, id, deletedBy string) error {
	const q = `
UPDATE feedback
SET deleted_at=$1, deleted_by=$2
WHERE id=$3 AND deleted_at IS NULL;`
	_, err := r.db.ExecContext(ctx, q, time.Now().UTC(), deletedBy, id)
	if err != nil {
		return eris.Wrap(err, "soft deleting feedback by id")
	}
	return nil
}

// RestoreByID clears soft-delete markers, only on already-deleted rows.
func (r *FeedbackRepository) RestoreByID(ctx context.Context, id string) error {
	const q = `
UPDATE feedback
SET deleted_at=NULL, deleted_by=NULL
WHERE id=$1 AND deleted_at IS NOT NULL;`
	_, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return eris.Wrap(err, "restoring feedback")
	}
	return nil
}

func (r *FeedbackRepository) GetByKey(ctx context.Context, assessmentID, title, userID string) (*domain.Feedback, error) {
	const q = `
SELECT ` + feedbackColumns + `
FROM feedback
WHERE assessment_id=$1 AND title=$2 AND user_id=$3 AND deleted_at IS NULL
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, assessmentID, title, userID)
	f, err := scanFeedback(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "getting feedback by key")
	}
	return f, nil
}

func (r *FeedbackRepository) All(ctx context.Context) ([]*domain.Feedback, error) {
	const q = `
SELECT ` + feedbackColumns + `
FROM feedback
WHERE deleted_at IS NULL
ORDER BY timestamp DESC;`
	return r.queryFeedback(ctx, q)
}

func (r *FeedbackRepository) ByAssessment(ctx context.Context, assessmentID string) ([]*domain.Feedback, error) {
	const q = `
SELECT ` + feedbackColumns + `
FROM feedback
WHERE assessment_id=$1 AND deleted_at IS NULL
ORDER BY timestamp DESC;`
	return r.queryFeedback(ctx, q, assessmentID)
}

// AllIncludingDeleted is the admin view of the full table.
func (r *FeedbackRepository) AllIncludingDeleted(ctx context.Context) ([]*domain.Feedback, error) {
	const q = `
SELECT ` + feedbackColumns + `
FROM feedback
ORDER BY timestamp DESC;`
	return r.queryFeedback(ctx, q)
}

func (r *FeedbackRepository) queryFeedback(ctx context.Context, q string, args ...any) ([]*domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "querying feedback")
	}
	defer rows.Close()

	var out []*domain.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scanning feedback row")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (*domain.Feedback, error) {
	var f domain.Feedback
	var comment, deletedBy sql.NullString
	var deletedAt sql.NullTime
	var item []byte
	if err := row.Scan(
		&f.ID, &f.AssessmentID, &f.Title, &f.Rating, &comment, &f.UserID,
		&item, &f.Timestamp, &deletedAt, &deletedBy,
	); err != nil {
		return nil, err
	}
	if comment.Valid {
		f.Comment = comment.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		f.DeletedAt = &t
	}
	if deletedBy.Valid {
		f.DeletedBy = deletedBy.String
	}
	f.ItemData = item
	return &f, nil
}
