package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/models"
	"jobreport/internal/reporting"
)

type serviceReq struct {
	Code  string          `json:"code" validate:"required"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

func CreateService(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req serviceReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Price.IsNegative() {
			respondError(w, http.StatusBadRequest, "price must not be negative")
			return
		}

		s := models.Service{
			Code:  strings.TrimSpace(req.Code),
			Name:  strings.TrimSpace(req.Name),
			Price: req.Price,
		}
		if err := db.Create(&s).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("service created", "id", s.ID, "code", s.Code)
		respondJSON(w, http.StatusCreated, s)
	}
}

func ListServices(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var services []models.Service
		total, err := listModel(db, &models.Service{}, &services, p, nil,
			"code", "name", "price", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, services, total)
	}
}

func GetService(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var s models.Service
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

func UpdateService(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var req serviceReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Price.IsNegative() {
			respondError(w, http.StatusBadRequest, "price must not be negative")
			return
		}

		var s models.Service
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		s.Code = strings.TrimSpace(req.Code)
		s.Name = strings.TrimSpace(req.Name)
		s.Price = req.Price
		if err := db.Save(&s).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("service updated", "id", s.ID)
		respondJSON(w, http.StatusOK, s)
	}
}

// DeleteService detaches the service from all departments and drops its
// report rows.
func DeleteService(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var s models.Service
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := reporting.CascadeDeleteService(tx, id); err != nil {
				return err
			}
			return tx.Delete(&models.Service{}, "id = ?", id).Error
		})
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("service deleted", "id", id)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
