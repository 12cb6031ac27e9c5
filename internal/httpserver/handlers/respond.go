package handlers

import (
	"encoding/json"
	"net/http"

	"jobreport/internal/reporting"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}

// fail maps reporting errors onto HTTP statuses. Unknown errors become a
// 500 with a generic message so internals do not leak.
func fail(w http.ResponseWriter, err error) {
	switch {
	case err == reporting.ErrBadID:
		respondError(w, http.StatusBadRequest, "invalid id")
	case err == reporting.ErrNoServices:
		respondError(w, http.StatusBadRequest, "department has no services assigned")
	case err == reporting.ErrNotFound:
		respondError(w, http.StatusNotFound, "not found")
	case err == reporting.ErrLocked:
		respondError(w, http.StatusLocked, "report is completed and locked")
	case reporting.IsDuplicate(err):
		respondError(w, http.StatusConflict, "already exists")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
