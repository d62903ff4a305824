package handler

import (
	"encoding/json"
	"errors"
	"ftareview/internal/service"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCatalogNotLoaded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// answersRequest is the body of answer submissions
type answersRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

// answerSet accepts string answers and string lists, which are joined the
// way multi-select answers are stored
func (req *answersRequest) answerSet() (map[string]string, error) {
	if req.Answers == nil {
		return nil, errors.New("answers must be an object")
	}
	out := make(map[string]string, len(req.Answers))
	for key, raw := range req.Answers {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out[key] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			out[key] = strings.Join(list, ",")
			continue
		}
		return nil, errors.New("answer " + key + " must be a string or a list of strings")
	}
	return out, nil
}
