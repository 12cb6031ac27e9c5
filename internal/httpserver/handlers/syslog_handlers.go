package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/models"
	"jobreport/internal/reporting"
)

func ListSyslogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var logs []models.Syslog
		total, err := listModel(db, &models.Syslog{}, &logs, p, nil,
			"host", "profile", "method", "base_url", "status", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, logs, total)
	}
}

func GetSyslog(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var entry models.Syslog
		if err := db.First(&entry, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, entry)
	}
}

// DeleteAllSyslogs truncates the audit table.
func DeleteAllSyslogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := db.Where("1 = 1").Delete(&models.Syslog{})
		if res.Error != nil {
			fail(w, res.Error)
			return
		}
		lg.Infow("syslogs cleared", "rows", res.RowsAffected)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": res.RowsAffected})
	}
}

func DeleteSyslog(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		res := db.Delete(&models.Syslog{}, "id = ?", id)
		if res.Error != nil {
			fail(w, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
