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

type createProfileReq struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Fullname    string `json:"fullname" validate:"required"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	IsActivated bool   `json:"isActivated"`
}

// CreateProfile lets an administrator provision an account directly,
// already activated and with any role.
func CreateProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProfileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Role == "" {
			req.Role = models.RoleUser
		}
		if !validRole(req.Role) {
			respondError(w, http.StatusBadRequest, "unknown role")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "hash error")
			return
		}
		p := models.Profile{
			Email:       req.Email,
			Password:    hash,
			Fullname:    strings.TrimSpace(req.Fullname),
			Phone:       strings.TrimSpace(req.Phone),
			IsActivated: req.IsActivated,
			Role:        req.Role,
		}
		if err := db.Create(&p).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("profile created", "id", p.ID, "role", p.Role)
		respondJSON(w, http.StatusCreated, p)
	}
}

func ListProfiles(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parsePageParams(r)
		var profiles []models.Profile
		total, err := listModel(db, &models.Profile{}, &profiles, p, nil,
			"email", "fullname", "phone", "role", "created_at")
		if err != nil {
			fail(w, err)
			return
		}
		respondPage(w, p, profiles, total)
	}
}

func GetProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var p models.Profile
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

type updateProfileReq struct {
	Fullname    *string `json:"fullname"`
	Phone       *string `json:"phone"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	IsActivated *bool   `json:"isActivated"`
}

func validRole(role string) bool {
	switch role {
	case models.RoleUser, models.RoleModerator, models.RoleAdministrator:
		return true
	}
	return false
}

func UpdateProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var req updateProfileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var p models.Profile
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		if req.Fullname != nil {
			p.Fullname = strings.TrimSpace(*req.Fullname)
		}
		if req.Phone != nil {
			p.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "hash error")
				return
			}
			p.Password = hash
		}
		if req.Role != nil {
			if !validRole(*req.Role) {
				respondError(w, http.StatusBadRequest, "unknown role")
				return
			}
			p.Role = *req.Role
		}
		if req.IsActivated != nil {
			p.IsActivated = *req.IsActivated
		}

		if err := db.Save(&p).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("profile updated", "id", p.ID)
		respondJSON(w, http.StatusOK, p)
	}
}

// DeleteProfile removes the profile together with its refresh token and
// notices.
func DeleteProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if uuid.Validate(id) != nil {
			fail(w, reporting.ErrBadID)
			return
		}
		var p models.Profile
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			fail(w, reporting.ErrNotFound)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.RefreshToken{}, "profile_id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Notice{}, "profile_id = ?", id).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Profile{}, "id = ?", id).Error
		})
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("profile deleted", "id", id)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
