package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/reporting"
)

// ListArchivedPeriods returns the distinct archived periods, newest first.
func ListArchivedPeriods(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periods, err := reporting.ArchivedPeriods(db)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, periods)
	}
}

func ListArchivesByDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reporting.ArchivesByDepartment(db, chi.URLParam(r, "id"))
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func DeleteArchivesByDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		n, err := reporting.DeleteArchivesByDepartment(db, id)
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("archives deleted", "department", id, "rows", n)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": n})
	}
}
