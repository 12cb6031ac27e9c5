package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/models"
	"jobreport/internal/reporting"
)

type subdivisionReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func CreateSubdivision(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subdivisionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s := models.Subdivision{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
		}
		if err := db.Create(&s).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("subdivision created", "id", s.ID, "name", s.Name)
		respondJSON(w, http.StatusCreated, s)
	}
}

func ListSubdivisions(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var subs []models.Subdivision
		total, err := listModel(db, &models.Subdivision{}, &subs, p, nil,
			"name", "description", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, subs, total)
	}
}

func GetSubdivision(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var s models.Subdivision
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

func UpdateSubdivision(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var req subdivisionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var s models.Subdivision
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		s.Name = strings.TrimSpace(req.Name)
		s.Description = strings.TrimSpace(req.Description)
		if err := db.Save(&s).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("subdivision updated", "id", s.ID)
		respondJSON(w, http.StatusOK, s)
	}
}

// DeleteSubdivision detaches the subdivision from all branches and drops
// its report rows.
func DeleteSubdivision(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var s models.Subdivision
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := reporting.CascadeDeleteSubdivision(tx, id); err != nil {
				return err
			}
			return tx.Delete(&models.Subdivision{}, "id = ?", id).Error
		})
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("subdivision deleted", "id", id)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
