package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/auth"
	"jobreport/internal/models"
	"jobreport/internal/reporting"
)

type noticeReq struct {
	ProfileIDs []string `json:"profileIds" validate:"required,min=1,dive,uuid"`
	Title      string   `json:"title" validate:"required"`
	Text       string   `json:"text" validate:"required"`
}

// CreateNotice fans one message out to the targeted profiles. Deactivated
// profiles are silently skipped.
func CreateNotice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noticeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var profiles []models.Profile
		if err := db.Where("id IN ? AND is_activated = ?", req.ProfileIDs, true).Find(&profiles).Error; err != nil {
			fail(w, err)
			return
		}
		if len(profiles) == 0 {
			fail(w, reporting.ErrNotFound)
			return
		}

		notices := make([]models.Notice, 0, len(profiles))
		for _, p := range profiles {
			notices = append(notices, models.Notice{
				ProfileID: p.ID,
				Title:     strings.TrimSpace(req.Title),
				Text:      strings.TrimSpace(req.Text),
			})
		}
		if err := db.Create(&notices).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("notices created", "count", len(notices))
		respondJSON(w, http.StatusCreated, notices)
	}
}

// ListMyNotices returns the caller's notices, newest first.
func ListMyNotices(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var notices []models.Notice
		if err := db.Where("profile_id = ?", sub).Order("created_at desc").Find(&notices).Error; err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, notices)
	}
}

// DeleteNotice removes one of the caller's notices. Administrators may
// delete anyone's.
func DeleteNotice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var n models.Notice
		if err := db.First(&n, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		claims := auth.FromContext(r.Context())
		if n.ProfileID != claims.ID && claims.Role != models.RoleAdministrator {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		if err := db.Delete(&models.Notice{}, "id = ?", id).Error; err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
