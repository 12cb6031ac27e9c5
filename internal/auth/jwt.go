package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func parseTTL(env string, fallback time.Duration) time.Duration {
	if s := os.Getenv(env); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// SignAccess issues a short-lived access token carrying the full identity
// claim set used by the role guard.
func SignAccess(id, email, fullname string, isActivated bool, role string) (string, error) {
	key := []byte(os.Getenv("JWT_ACCESS_SECRET"))
	claims := jwt.MapClaims{
		"id":          id,
		"email":       email,
		"fullname":    fullname,
		"isActivated": isActivated,
		"role":        role,
		"exp":         time.Now().Add(parseTTL("JWT_ACCESS_EXPIRES_IN", 15*time.Minute)).Unix(),
		"iat":         time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// SignRefresh issues a longer-lived refresh token carrying only the profile
// id and email.
func SignRefresh(id, email string) (string, error) {
	key := []byte(os.Getenv("JWT_REFRESH_SECRET"))
	claims := jwt.MapClaims{
		"id":    id,
		"email": email,
		"exp":   time.Now().Add(parseTTL("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func parseHS256(tokenStr string, key []byte) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mapc, nil
}

// VerifyAccess validates an access token and returns its claims.
func VerifyAccess(tokenStr string) (Claims, error) {
	mapc, err := parseHS256(tokenStr, []byte(os.Getenv("JWT_ACCESS_SECRET")))
	if err != nil {
		return Claims{}, err
	}
	id, _ := mapc["id"].(string)
	email, _ := mapc["email"].(string)
	fullname, _ := mapc["fullname"].(string)
	isActivated, _ := mapc["isActivated"].(bool)
	role, _ := mapc["role"].(string)
	return Claims{ID: id, Email: email, Fullname: fullname, IsActivated: isActivated, Role: role}, nil
}

// VerifyRefresh validates a refresh token and returns the profile id it was
// issued for.
func VerifyRefresh(tokenStr string) (string, error) {
	mapc, err := parseHS256(tokenStr, []byte(os.Getenv("JWT_REFRESH_SECRET")))
	if err != nil {
		return "", err
	}
	id, _ := mapc["id"].(string)
	if id == "" {
		return "", errors.New("invalid claims")
	}
	return id, nil
}

// HashToken produces the digest stored alongside a profile's refresh token.
// SHA-256 rather than bcrypt: tokens exceed bcrypt's 72-byte input limit.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CheckToken compares a stored digest with a candidate token.
func CheckToken(hash, token string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(HashToken(token))) == 1
}
