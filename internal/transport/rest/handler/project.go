package handler

import (
	"context"
	"ftareview/internal/model"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProjectService is what the project endpoints need from the service layer
type ProjectService interface {
	Create(ctx context.Context, project *model.Project) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, id string, update *model.ProjectUpdate) (*model.Project, error)
	Delete(ctx context.Context, id string) error
	SubmitAnswers(ctx context.Context, id string, answers model.AnswerSet) (*model.ApplicabilityResult, error)
	GetAnswers(ctx context.Context, id string) (*model.ProjectAnswers, error)
	ApplicableSubAreas(ctx context.Context, id string) (*model.ApplicabilityResult, error)
	LOESummary(ctx context.Context, id string) (*model.LOESummary, error)
}

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projects ProjectService
	logger   *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GranteeName string `json:"grantee_name"`
	GrantNumber string `json:"grant_number"`
	ReviewType  string `json:"review_type"`
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), &model.Project{
		Name:        req.Name,
		Description: req.Description,
		GranteeName: req.GranteeName,
		GrantNumber: req.GrantNumber,
		ReviewType:  req.ReviewType,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Update handles PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update model.ProjectUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	project, err := h.projects.Update(r.Context(), mux.Vars(r)["id"], &update)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswers handles POST /api/projects/{id}/answers
func (h *ProjectHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	answers, err := req.answerSet()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.projects.SubmitAnswers(r.Context(), mux.Vars(r)["id"], model.AnswerSet(answers))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAnswers handles GET /api/projects/{id}/answers
func (h *ProjectHandler) GetAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.projects.GetAnswers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

// ApplicableSubAreas handles GET /api/projects/{id}/applicable-sub-areas
func (h *ProjectHandler) ApplicableSubAreas(w http.ResponseWriter, r *http.Request) {
	result, err := h.projects.ApplicableSubAreas(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LOESummary handles GET /api/projects/{id}/loe-summary
func (h *ProjectHandler) LOESummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.projects.LOESummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
