package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/auth"
	"jobreport/internal/models"
)

const maxCapturedBody = 64 << 10

func encodeJSONB(v any) models.JSONB {
	b, err := json.Marshal(v)
	if err != nil {
		return models.JSONB("{}")
	}
	return models.JSONB(b)
}

// requestProfile resolves the caller's fullname from the bearer token.
// Runs before JWTAuth, so verification here is best effort.
func requestProfile(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "anonymous"
	}
	claims, err := auth.VerifyAccess(strings.TrimPrefix(h, "Bearer "))
	if err != nil || claims.Fullname == "" {
		return "anonymous"
	}
	return claims.Fullname
}

// Syslogger records every API request as a syslog row after the response
// is written. Logging failures never affect the response.
func Syslogger(db *gorm.DB, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// only the stored copy is capped; the handler sees the
			// request body in full
			var body []byte
			if r.Body != nil && r.ContentLength != 0 {
				body, _ = io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			query := map[string]string{}
			for k, vals := range r.URL.Query() {
				if len(vals) > 0 {
					query[k] = vals[0]
				}
			}
			params := map[string]string{}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				for i, key := range rctx.URLParams.Keys {
					params[key] = rctx.URLParams.Values[i]
				}
			}

			entry := models.Syslog{
				Host:      r.Host,
				Profile:   requestProfile(r),
				Method:    r.Method,
				BaseURL:   r.URL.Path,
				Params:    encodeJSONB(params),
				Query:     encodeJSONB(query),
				Status:    ww.Status(),
				UserAgent: r.UserAgent(),
			}
			// credentials never land in the audit table
			if len(body) > 0 && json.Valid(body) && !strings.Contains(r.URL.Path, "/auth/") {
				entry.Body = models.JSONB(body)
			}
			if err := db.Create(&entry).Error; err != nil {
				lg.Warnw("syslog write failed", "err", err)
			}
		})
	}
}
