package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appassess "github.com/bryanwahyu/cp-analyzer/internal/application/assessments"
	appauth "github.com/bryanwahyu/cp-analyzer/internal/application/auth"
	appfeedback "github.com/bryanwahyu/cp-analyzer/internal/application/feedback"
	appfiles "github.com/bryanwahyu/cp-analyzer/internal/application/files"
	appredraft "github.com/bryanwahyu/cp-analyzer/internal/application/redraft"
	apptriage "github.com/bryanwahyu/cp-analyzer/internal/application/triage"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/analysis"
	domassess "github.com/bryanwahyu/cp-analyzer/internal/domain/assessment"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/tenants"
	"github.com/bryanwahyu/cp-analyzer/internal/middleware"
)

type Router struct {
	assessSvc   *appassess.Service
	triageSvc   *apptriage.Service
	filesSvc    *appfiles.Service
	feedbackSvc *appfeedback.Service
	redraftSvc  *appredraft.Service
	authSvc     *appauth.Service
}

func NewRouter(
	assessSvc *appassess.Service,
	triageSvc *apptriage.Service,
	filesSvc *appfiles.Service,
	feedbackSvc *appfeedback.Service,
	redraftSvc *appredraft.Service,
	authSvc *appauth.Service,
	healthHandler http.HandlerFunc,
) http.Handler {
	r := &Router{
		assessSvc:   assessSvc,
		triageSvc:   triageSvc,
		filesSvc:    filesSvc,
		feedbackSvc: feedbackSvc,
		redraftSvc:  redraftSvc,
		authSvc:     authSvc,
	}
	mux := chi.NewRouter()

	mux.Get("/health", healthHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/v1/auth/login", r.wrap(r.handleLogin))
	mux.Post("/v1/auth/logout", r.wrap(r.handleLogout))

	mux.Route("/v1/{user}", func(rt chi.Router) {
		rt.Get("/assessments", r.wrap(r.handleListAssessments))
		rt.Post("/assessments", r.wrap(r.handleCreateAssessment))
		rt.Get("/assessments/{id}", r.wrap(r.handleGetAssessment))
		rt.Patch("/assessments/{id}", r.wrap(r.handleUpdateAssessment))
		rt.Delete("/assessments/{id}", r.wrap(r.handleDeleteAssessment))

		rt.Get("/assessments/{id}/data", r.wrap(r.handleAssessmentData))
		rt.Get("/assessments/{id}/analysis", r.wrap(r.handleAnalysis))
		rt.Post("/assessments/{id}/triage", r.wrap(r.handleTriage))
		rt.Get("/assessments/{id}/redraft", r.wrap(r.handleGetRedraft))
		rt.Put("/assessments/{id}/redraft", r.wrap(r.handleRedraft))
		rt.Post("/assessments/{id}/redraft-suggest", r.wrap(r.handleRedraftSuggest))

		rt.Get("/assessments/{id}/files", r.wrap(r.handleDiscoverFiles))
		rt.Post("/assessments/{id}/files", r.wrap(r.handleUploadFiles))

		rt.Get("/active-view", r.wrap(r.handleGetActiveView))
		rt.Put("/active-view", r.wrap(r.handleSetActiveView))
		rt.Delete("/active-view", r.wrap(r.handleClearActiveView))
	})

	mux.Route("/v1/feedback", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleSubmitFeedback))
		rt.Get("/", r.wrap(r.handleListFeedback))
		rt.Delete("/", r.wrap(r.handleWithdrawFeedback))
		rt.Get("/mine", r.wrap(r.handleGetOwnFeedback))
		rt.Get("/export", r.wrap(r.handleExportFeedback))
		rt.Get("/assessment/{id}", r.wrap(r.handleFeedbackByAssessment))
		rt.Get("/admin/all", r.wrap(r.handleAdminFeedback))
		rt.Delete("/{id}", r.wrap(r.handleRemoveFeedback))
		rt.Post("/{id}/restore", r.wrap(r.handleRestoreFeedback))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

var errForbidden = errors.New("forbidden")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows), errors.Is(err, domassess.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, ai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, appauth.ErrInvalidCredentials):
				http.Error(w, err.Error(), http.StatusUnauthorized)
			case errors.Is(err, errForbidden), errors.Is(err, appfeedback.ErrAdminOnly):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, domassess.ErrEmptyName),
				errors.Is(err, appfeedback.ErrInvalidRating),
				errors.Is(err, appfeedback.ErrMissingFields),
				errors.Is(err, appfeedback.ErrMissingID):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// pathUser checks the {user} segment against the session identity so one
// user can't read or write another's triage state.
func pathUser(req *http.Request) (string, error) {
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUsername(user); err != nil {
		return "", err
	}
	if auth := middleware.GetUserFromContext(req.Context()); auth != "" && auth != user {
		return "", errForbidden
	}
	return user, nil
}

// POST /v1/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	token, err := r.authSvc.Login(req.Context(), body.Username, body.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"token":    token,
		"username": body.Username,
		"is_admin": tenants.IsAdmin(body.Username),
	})
}

// POST /v1/auth/logout
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	auth := req.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	if err := r.authSvc.Logout(req.Context(), token); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/{user}/assessments
func (r *Router) handleListAssessments(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	return writeJSON(w, r.assessSvc.ListForTenant(req.Context(), user))
}

// POST /v1/{user}/assessments
func (r *Router) handleCreateAssessment(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	a, err := r.assessSvc.Create(req.Context(), middleware.SanitizeString(body.Name), user)
	if err != nil {
		return err
	}
	middleware.IncrementAssessments()
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, a)
}

// GET /v1/{user}/assessments/{id}
func (r *Router) handleGetAssessment(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	a, err := r.assessSvc.GetForTenant(req.Context(), id, user)
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// PATCH /v1/{user}/assessments/{id}
func (r *Router) handleUpdateAssessment(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}
	var body appassess.UpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	a, err := r.assessSvc.Update(req.Context(), id, body)
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// DELETE /v1/{user}/assessments/{id}
func (r *Router) handleDeleteAssessment(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}
	if err := r.assessSvc.Delete(req.Context(), id); err != nil {
		return err
	}
	r.filesSvc.ClearCache(id)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/{user}/assessments/{id}/data
func (r *Router) handleAssessmentData(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	data, err := r.assessSvc.LoadDataForTenant(req.Context(), id, user)
	if err != nil {
		return err
	}
	return writeJSON(w, data)
}

// GET /v1/{user}/assessments/{id}/analysis?tab=&types=&q=
// Returns the filtered finding list plus the tab badge counts and the
// categories available for the type filter.
func (r *Router) handleAnalysis(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	data, err := r.assessSvc.LoadDataForTenant(req.Context(), id, user)
	if err != nil {
		return err
	}

	items := data.Items()
	statuses := r.triageSvc.StatusMap(req.Context(), user, id)

	q := analysis.Query{
		Tab:    analysis.Tab(req.URL.Query().Get("tab")),
		Search: middleware.SanitizeString(req.URL.Query().Get("q")),
	}
	if raw := req.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Types = append(q.Types, t)
			}
		}
	}

	filtered := analysis.Filter(items, q, statuses)
	filtered = r.triageSvc.Overlay(req.Context(), user, id, filtered)

	return writeJSON(w, map[string]any{
		"items":          filtered,
		"tabCounts":      analysis.TabCounts(items, statuses),
		"availableTypes": analysis.AvailableTypes(items),
	})
}

// POST /v1/{user}/assessments/{id}/triage
// Body: {"item_id": "...", "status": "negotiating|accepted|dismissed"}
func (r *Router) handleTriage(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	var body struct {
		ItemID string `json:"item_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}
	if err := middleware.ValidateTriageStatus(body.Status); err != nil {
		return err
	}

	result, marked, err := r.triageSvc.Toggle(req.Context(), user, id, body.ItemID, analysis.Status(body.Status))
	if err != nil {
		return err
	}
	resp := map[string]any{"item_id": body.ItemID, "marked": marked}
	if marked {
		resp["status"] = string(result)
	} else {
		resp["status"] = "to-review"
	}
	return writeJSON(w, resp)
}

// GET /v1/{user}/assessments/{id}/redraft?item_id=
func (r *Router) handleGetRedraft(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}
	itemID := req.URL.Query().Get("item_id")
	if itemID == "" {
		return fmt.Errorf("item_id is required")
	}
	text, ok := r.triageSvc.Redraft(req.Context(), itemID)
	return writeJSON(w, map[string]any{"item_id": itemID, "text": text, "edited": ok})
}

// PUT /v1/{user}/assessments/{id}/redraft
// Body: {"item_id": "...", "text": "...", "original": "..."}
// Saving text equal to the original clears any stored override.
func (r *Router) handleRedraft(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}
	var body struct {
		ItemID   string `json:"item_id"`
		Text     string `json:"text"`
		Original string `json:"original"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}

	stored, err := r.triageSvc.SetRedraft(req.Context(), body.ItemID, body.Text, body.Original)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"item_id": body.ItemID, "stored": stored})
}

// POST /v1/{user}/assessments/{id}/redraft-suggest
// Body: {"item_id": "..."}
func (r *Router) handleRedraftSuggest(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	var body struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}

	data, err := r.assessSvc.LoadDataForTenant(req.Context(), id, user)
	if err != nil {
		return err
	}
	var target *analysis.Item
	for _, it := range data.Items() {
		if it.ID == body.ItemID {
			target = &it
			break
		}
	}
	if target == nil {
		return sql.ErrNoRows
	}

	var clause string
	if len(target.Evidence) > 0 {
		clause = target.Evidence[0].Body
	}
	text, fromModel, err := r.redraftSvc.Suggest(req.Context(), ai.RedraftRequest{
		Title:            target.Title,
		Summary:          target.Summary,
		SuggestedRedraft: target.Resolution.SuggestedRedraft,
		ClauseText:       clause,
	})
	if err != nil {
		middleware.IncrementRedraftsFailed()
		return err
	}
	if fromModel {
		middleware.IncrementRedrafts()
	} else {
		middleware.IncrementRedraftsFailed()
	}
	return writeJSON(w, map[string]any{
		"item_id":    body.ItemID,
		"text":       text,
		"from_model": fromModel,
	})
}

// GET /v1/{user}/assessments/{id}/files
func (r *Router) handleDiscoverFiles(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}
	d, err := r.filesSvc.Discover(req.Context(), id)
	if err != nil {
		return err
	}
	if d == nil {
		return writeJSON(w, map[string]any{"files": nil})
	}
	return writeJSON(w, map[string]any{"files": d})
}

// POST /v1/{user}/assessments/{id}/files (multipart, field "files")
func (r *Router) handleUploadFiles(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	if _, err := r.assessSvc.GetForTenant(req.Context(), id, user); err != nil {
		return err
	}

	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return err
	}
	headers := req.MultipartForm.File["files"]
	if len(headers) == 0 {
		return fmt.Errorf("no files in request")
	}

	var batch []appfiles.UploadFile
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		batch = append(batch, appfiles.UploadFile{Name: h.Filename, Size: h.Size, Reader: f})
	}

	results := r.filesSvc.Upload(req.Context(), id, batch)
	for _, res := range results {
		if res.Accepted {
			middleware.IncrementUploads()
		}
	}
	return writeJSON(w, map[string]any{"results": results})
}

// GET /v1/{user}/active-view (one-shot: reading clears the flag)
func (r *Router) handleGetActiveView(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	id, ok, err := r.authSvc.ActiveView(req.Context(), user)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"assessment_id": id, "set": ok})
}

// PUT /v1/{user}/active-view
func (r *Router) handleSetActiveView(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	var body struct {
		AssessmentID string `json:"assessment_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateAssessmentID(body.AssessmentID); err != nil {
		return err
	}
	if err := r.authSvc.SetActiveView(req.Context(), user, body.AssessmentID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DELETE /v1/{user}/active-view
func (r *Router) handleClearActiveView(w http.ResponseWriter, req *http.Request) error {
	user, err := pathUser(req)
	if err != nil {
		return err
	}
	if _, _, err := r.authSvc.ActiveView(req.Context(), user); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/feedback
func (r *Router) handleSubmitFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	var body appfeedback.SubmitRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	f, err := r.feedbackSvc.Submit(req.Context(), user, body)
	if err != nil {
		return err
	}
	middleware.IncrementFeedback()
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, f)
}

// GET /v1/feedback?assessment_id=
func (r *Router) handleListFeedback(w http.ResponseWriter, req *http.Request) error {
	rows, err := r.feedbackSvc.List(req.Context(), req.URL.Query().Get("assessment_id"))
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

// GET /v1/feedback/mine?assessment_id=&title=
func (r *Router) handleGetOwnFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	f, err := r.feedbackSvc.Get(req.Context(),
		user,
		req.URL.Query().Get("assessment_id"),
		req.URL.Query().Get("title"),
	)
	if err != nil {
		return err
	}
	return writeJSON(w, f)
}

// GET /v1/feedback/assessment/{id}
func (r *Router) handleFeedbackByAssessment(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return err
	}
	rows, err := r.feedbackSvc.List(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

// DELETE /v1/feedback
// Body: {"assessment_id": "...", "title": "..."} — soft delete of the
// caller's own rating.
func (r *Router) handleWithdrawFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	var body struct {
		AssessmentID string `json:"assessment_id"`
		Title        string `json:"title"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := r.feedbackSvc.Withdraw(req.Context(), user, body.AssessmentID, body.Title); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/feedback/export
func (r *Router) handleExportFeedback(w http.ResponseWriter, req *http.Request) error {
	name, data, err := r.feedbackSvc.Export(req.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, err = w.Write(data)
	return err
}

// GET /v1/feedback/admin/all
func (r *Router) handleAdminFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	rows, err := r.feedbackSvc.ListAll(req.Context(), tenants.IsAdmin(user))
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

// DELETE /v1/feedback/{id}
func (r *Router) handleRemoveFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	id := chi.URLParam(req, "id")
	if err := r.feedbackSvc.Remove(req.Context(), user, id, tenants.IsAdmin(user)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/feedback/{id}/restore
func (r *Router) handleRestoreFeedback(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	id := chi.URLParam(req, "id")
	if err := r.feedbackSvc.Restore(req.Context(), id, tenants.IsAdmin(user)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
