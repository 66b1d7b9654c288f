package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bryanwahyu/cp-analyzer/internal/application"
	domain "github.com/bryanwahyu/cp-analyzer/internal/domain/feedback"
)

var (
	ErrInvalidRating = errors.New("rating must be positive or negative")
	ErrMissingFields = errors.New("assessment_id and title are required")
	ErrMissingID     = errors.New("feedback id is required")
	ErrAdminOnly     = errors.New("admin access required")
)

// Service fronts the feedback repository with validation and the admin
// views.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// SubmitRequest is the API shape for rating a finding.
type SubmitRequest struct {
	AssessmentID string          `json:"assessment_id"`
	Title        string          `json:"title"`
	Rating       string          `json:"rating"`
	Comment      string          `json:"comment"`
	ItemData     json.RawMessage `json:"item_data"`
}

// Submit upserts a rating for one (assessment, finding, user) triple.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest) (*domain.Feedback, error) {
	if strings.TrimSpace(req.AssessmentID) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, ErrMissingFields
	}
	rating := domain.Rating(req.Rating)
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	f := &domain.Feedback{
		AssessmentID: req.AssessmentID,
		Title:        req.Title,
		Rating:       rating,
		Comment:      req.Comment,
		UserID:       userID,
		ItemData:     req.ItemData,
		Timestamp:    s.Clock.Now().UTC(),
	}
	if err := s.Repo.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Withdraw soft-deletes the caller's own rating for a finding.
func (s *Service) Withdraw(ctx context.Context, userID, assessmentID, title string) error {
	if strings.TrimSpace(assessmentID) == "" || strings.TrimSpace(title) == "" {
		return ErrMissingFields
	}
	return s.Repo.SoftDeleteByKey(ctx, assessmentID, title, userID)
}

// Remove soft-deletes any row by id; admin only.
func (s *Service) Remove(ctx context.Context, adminUser, id string, isAdmin bool) error {
	if !isAdmin {
		return ErrAdminOnly
	}
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	return s.Repo.SoftDeleteByID(ctx, id, adminUser)
}

// Restore resurrects a soft-deleted row; admin only.
func (s *Service) Restore(ctx context.Context, id string, isAdmin bool) error {
	if !isAdmin {
		return ErrAdminOnly
	}
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	return s.Repo.RestoreByID(ctx, id)
}

// Get returns the caller's live rating for a finding, nil when none.
func (s *Service) Get(ctx context.Context, userID, assessmentID, title string) (*domain.Feedback, error) {
	return s.Repo.GetByKey(ctx, assessmentID, title, userID)
}

func (s *Service) List(ctx context.Context, assessmentID string) ([]*domain.Feedback, error) {
	if assessmentID != "" {
		return s.Repo.ByAssessment(ctx, assessmentID)
	}
	return s.Repo.All(ctx)
}

// ListAll is the admin table view including soft-deleted rows.
func (s *Service) ListAll(ctx context.Context, isAdmin bool) ([]*domain.Feedback, error) {
	if !isAdmin {
		return nil, ErrAdminOnly
	}
	return s.Repo.AllIncludingDeleted(ctx)
}

// Export serializes all live feedback for download. The filename is
// date-stamped so repeated exports don't clobber each other.
func (s *Service) Export(ctx context.Context) (string, []byte, error) {
	rows, err := s.Repo.All(ctx)
	if err != nil {
		return "", nil, err
	}
	if rows == nil {
		rows = []*domain.Feedback{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", nil, eris.Wrap(err, "marshaling feedback export")
	}
	name := fmt.Sprintf("cpanalyzer_feedback_%s.json", s.Clock.Now().UTC().Format("2006-01-02"))
	return name, data, nil
}
