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

type branchReq struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	SubdivisionIDs []string `json:"subdivisionIds"`
}

func loadSubdivisions(db *gorm.DB, ids []string) ([]models.Subdivision, error) {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return nil, reporting.ErrBadID
		}
	}
	var subs []models.Subdivision
	if len(ids) == 0 {
		return subs, nil
	}
	if err := db.Where("id IN ?", ids).Find(&subs).Error; err != nil {
		return nil, err
	}
	if len(subs) != len(ids) {
		return nil, reporting.ErrNotFound
	}
	return subs, nil
}

func CreateBranch(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req branchReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		subs, err := loadSubdivisions(db, req.SubdivisionIDs)
		if err != nil {
			fail(w, err)
			return
		}

		b := models.Branch{
			Name:         strings.TrimSpace(req.Name),
			Description:  strings.TrimSpace(req.Description),
			Subdivisions: subs,
		}
		if err := db.Create(&b).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("branch created", "id", b.ID, "name", b.Name)
		respondJSON(w, http.StatusCreated, b)
	}
}

func ListBranches(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var branches []models.Branch
		total, err := listModel(db, &models.Branch{}, &branches, p,
			[]string{"Subdivisions"}, "name", "description", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, branches, total)
	}
}

func GetBranch(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var b models.Branch
		if err := db.Preload("Subdivisions").First(&b, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, b)
	}
}

// UpdateBranch replaces the branch fields and subdivision set. Report rows
// for detached subdivisions are removed; attached ones appear at the next
// grid generation.
func UpdateBranch(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var req branchReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var b models.Branch
		if err := db.Preload("Subdivisions").First(&b, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		subs, err := loadSubdivisions(db, req.SubdivisionIDs)
		if err != nil {
			fail(w, err)
			return
		}

		after := make(map[string]bool, len(subs))
		for _, s := range subs {
			after[s.ID] = true
		}
		var removed []string
		for _, s := range b.Subdivisions {
			if !after[s.ID] {
				removed = append(removed, s.ID)
			}
		}

		b.Name = strings.TrimSpace(req.Name)
		b.Description = strings.TrimSpace(req.Description)

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&b).Error; err != nil {
				return err
			}
			if err := tx.Model(&b).Association("Subdivisions").Replace(subs); err != nil {
				return err
			}
			if len(removed) > 0 {
				return reporting.RemoveBranchSubdivisionRows(tx, b.ID, removed)
			}
			return nil
		})
		if err != nil {
			fail(w, err)
			return
		}
		b.Subdivisions = subs
		lg.Infow("branch updated", "id", b.ID, "removed", len(removed))
		respondJSON(w, http.StatusOK, b)
	}
}

// DeleteBranch removes the branch together with its report rows.
func DeleteBranch(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var b models.Branch
		if err := db.First(&b, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := reporting.CascadeDeleteBranch(tx, id); err != nil {
				return err
			}
			return tx.Delete(&models.Branch{}, "id = ?", id).Error
		})
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("branch deleted", "id", id)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
