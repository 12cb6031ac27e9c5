package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/auth"
	"jobreport/internal/models"
)

var validate = validator.New()

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Fullname string `json:"fullname" validate:"required"`
	Phone    string `json:"phone"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// issueTokens signs a fresh pair and upserts the hashed refresh token,
// one row per profile.
func issueTokens(db *gorm.DB, p models.Profile) (*tokenPair, error) {
	access, err := auth.SignAccess(p.ID, p.Email, p.Fullname, p.IsActivated, p.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.SignRefresh(p.ID, p.Email)
	if err != nil {
		return nil, err
	}
	row := models.RefreshToken{ProfileID: p.ID, TokenHash: auth.HashToken(refresh)}
	err = db.Where("profile_id = ?", p.ID).
		Assign(map[string]any{"token_hash": row.TokenHash}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Signup registers a new profile. Accounts start deactivated and cannot
// sign in until an administrator activates them.
func Signup(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
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
			IsActivated: false,
			Role:        models.RoleUser,
		}
		if err := db.Create(&p).Error; err != nil {
			fail(w, err)
			return
		}
		lg.Infow("profile registered", "email", p.Email)
		respondJSON(w, http.StatusCreated, p)
	}
}

func Signin(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		var p models.Profile
		if err := db.First(&p, "email = ?", req.Email).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err := auth.CheckPassword(p.Password, req.Password); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if !p.IsActivated {
			respondError(w, http.StatusUnauthorized, "profile is deactivated")
			return
		}

		tokens, err := issueTokens(db, p)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "token error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"profile":      p,
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
		})
	}
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token must match the stored hash; rotation invalidates the old one.
func Refresh(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		profileID, err := auth.VerifyRefresh(req.RefreshToken)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		var stored models.RefreshToken
		if err := db.First(&stored, "profile_id = ?", profileID).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if !auth.CheckToken(stored.TokenHash, req.RefreshToken) {
			respondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		var p models.Profile
		if err := db.First(&p, "id = ?", profileID).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if !p.IsActivated {
			respondError(w, http.StatusUnauthorized, "profile is deactivated")
			return
		}

		tokens, err := issueTokens(db, p)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "token error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"profile":      p,
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
		})
	}
}

func Signout(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		_ = db.Delete(&models.RefreshToken{}, "profile_id = ?", sub).Error
		respondJSON(w, http.StatusOK, map[string]any{"signedOut": true})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := auth.Subject(r.Context())
		var p models.Profile
		if err := db.First(&p, "id = ?", sub).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}
