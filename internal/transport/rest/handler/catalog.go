package handler

import (
	"ftareview/internal/engine"
	"ftareview/internal/model"
	"ftareview/internal/service"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only reference data
type CatalogHandler struct {
	catalogs *service.CatalogService
	logger   *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogs *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs, logger: logger}
}

func (h *CatalogHandler) current(w http.ResponseWriter) (*engine.Catalog, bool) {
	c, err := h.catalogs.Current()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return nil, false
	}
	return c, true
}

// Questions handles GET /api/questions
func (h *CatalogHandler) Questions(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.ActiveQuestions())
}

// Question handles GET /api/questions/{key}
func (h *CatalogHandler) Question(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	q, found := c.Question(mux.Vars(r)["key"])
	if !found || q.Inactive {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Sections handles GET /api/sections
func (h *CatalogHandler) Sections(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Sections())
}

// SectionSummary handles GET /api/sections/summary
func (h *CatalogHandler) SectionSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.SummarizeCatalog(c))
}

// Section handles GET /api/sections/{id}
func (h *CatalogHandler) Section(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	s, found := c.Section(mux.Vars(r)["id"])
	if !found {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SubAreas handles GET /api/sub-areas?section_id=
func (h *CatalogHandler) SubAreas(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	subAreas := c.SubAreas(r.URL.Query().Get("section_id"))
	if subAreas == nil {
		subAreas = []model.SubArea{}
	}
	writeJSON(w, http.StatusOK, subAreas)
}

// SubArea handles GET /api/sub-areas/{id}
func (h *CatalogHandler) SubArea(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	sa, found := c.SubArea(mux.Vars(r)["id"])
	if !found {
		writeError(w, http.StatusNotFound, "sub-area not found")
		return
	}
	if sa.Indicators == nil {
		sa.Indicators = []model.Indicator{}
	}
	if sa.Deficiencies == nil {
		sa.Deficiencies = []model.Deficiency{}
	}
	writeJSON(w, http.StatusOK, sa)
}
