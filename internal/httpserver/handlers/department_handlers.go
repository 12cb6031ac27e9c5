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

type departmentReq struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Phone       string   `json:"phone"`
	Manager     string   `json:"manager"`
	ServiceIDs  []string `json:"serviceIds"`
}

func loadServices(db *gorm.DB, ids []string) ([]models.Service, error) {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return nil, reporting.ErrBadID
		}
	}
	var services []models.Service
	if len(ids) == 0 {
		return services, nil
	}
	if err := db.Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	if len(services) != len(ids) {
		return nil, reporting.ErrNotFound
	}
	return services, nil
}

func CreateDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req departmentReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		services, err := loadServices(db, req.ServiceIDs)
		if err != nil {
			fail(w, err)
			return
		}

		d := models.Department{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Phone:       strings.TrimSpace(req.Phone),
			Manager:     strings.TrimSpace(req.Manager),
			Services:    services,
		}
		if err := db.Create(&d).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("department created", "id", d.ID, "name", d.Name)
		respondJSON(w, http.StatusCreated, d)
	}
}

func ListDepartments(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var departments []models.Department
		total, err := listModel(db, &models.Department{}, &departments, p,
			[]string{"Services"}, "name", "description", "phone", "manager", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, departments, total)
	}
}

func GetDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var d models.Department
		if err := db.Preload("Services").First(&d, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, d)
	}
}

// UpdateDepartment replaces the department's fields and its service set.
// Service additions grow the current report grid with zero rows; removals
// drop the matching rows.
func UpdateDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var req departmentReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var d models.Department
		if err := db.Preload("Services").First(&d, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		services, err := loadServices(db, req.ServiceIDs)
		if err != nil {
			fail(w, err)
			return
		}

		before := make(map[string]bool, len(d.Services))
		for _, s := range d.Services {
			before[s.ID] = true
		}
		after := make(map[string]bool, len(services))
		var added, removed []string
		for _, s := range services {
			after[s.ID] = true
			if !before[s.ID] {
				added = append(added, s.ID)
			}
		}
		for sid := range before {
			if !after[sid] {
				removed = append(removed, sid)
			}
		}

		d.Name = strings.TrimSpace(req.Name)
		d.Description = strings.TrimSpace(req.Description)
		d.Phone = strings.TrimSpace(req.Phone)
		d.Manager = strings.TrimSpace(req.Manager)

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&d).Error; err != nil {
				return err
			}
			if err := tx.Model(&d).Association("Services").Replace(services); err != nil {
				return err
			}
			if len(added) > 0 {
				if err := reporting.AddServiceRows(tx, d.ID, added); err != nil {
					return err
				}
			}
			if len(removed) > 0 {
				if err := reporting.RemoveServiceRows(tx, d.ID, removed); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			fail(w, err)
			return
		}
		d.Services = services
		lg.Infow("department updated", "id", d.ID, "added", len(added), "removed", len(removed))
		respondJSON(w, http.StatusOK, d)
	}
}

// DeleteDepartment removes the department with its report rows. Archived
// snapshots are left untouched; only the administrator bulk-delete removes
// them.
func DeleteDepartment(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var d models.Department
		if err := db.First(&d, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := reporting.CascadeDeleteDepartment(tx, id); err != nil {
				return err
			}
			return tx.Delete(&models.Department{}, "id = ?", id).Error
		})
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("department deleted", "id", id)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
