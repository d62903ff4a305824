package handler

import (
	"ftareview/internal/model"
	"ftareview/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AssessHandler handles stateless assessments
type AssessHandler struct {
	assessor *service.AssessmentService
	logger   *zap.Logger
}

// NewAssessHandler creates a new assess handler
func NewAssessHandler(assessor *service.AssessmentService, logger *zap.Logger) *AssessHandler {
	return &AssessHandler{assessor: assessor, logger: logger}
}

// Assess handles POST /api/assess
func (h *AssessHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	answers, err := req.answerSet()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.assessor.Assess(r.Context(), model.AnswerSet(answers))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
