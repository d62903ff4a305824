package handler

import (
	"errors"
	"ftareview/internal/engine"
	"ftareview/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AdminHandler handles catalog administration
type AdminHandler struct {
	catalogs *service.CatalogService
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogs *service.CatalogService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{catalogs: catalogs, logger: logger}
}

// CatalogInfo handles GET /api/admin/catalog
func (h *AdminHandler) CatalogInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.catalogs.Info()
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ReloadCatalog handles POST /api/admin/catalog/reload. A catalog that fails
// validation is a 422; a source that cannot be read is an internal error.
func (h *AdminHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	info, err := h.catalogs.Reload(r.Context())
	if err != nil {
		if invalidCatalog(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func invalidCatalog(err error) bool {
	return errors.Is(err, engine.ErrInvalidRule) ||
		errors.Is(err, engine.ErrUnsupportedRuleType) ||
		errors.Is(err, engine.ErrDuplicateID)
}
