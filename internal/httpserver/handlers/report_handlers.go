package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/reporting"
)

// parsePeriodQuery reads an optional monthOfReport/yearOfReport pair from
// the query string. Both present and valid → period; both absent → nil;
// anything else → false.
func parsePeriodQuery(r *http.Request) (*reporting.Period, bool) {
	q := r.URL.Query()
	ms, ys := q.Get("monthOfReport"), q.Get("yearOfReport")
	if ms == "" && ys == "" {
		return nil, true
	}
	month, err := strconv.Atoi(ms)
	if err != nil {
		return nil, false
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return nil, false
	}
	p := reporting.Period{Month: month, Year: year}
	if !p.Valid() {
		return nil, false
	}
	return &p, true
}

type periodReq struct {
	Month int `json:"monthOfReport" validate:"required,min=1,max=12"`
	Year  int `json:"yearOfReport" validate:"required,min=2000"`
}

// GenerateReports builds (or rebuilds) a department's report grid for the
// requested period, carrying closing counts forward from the previous one.
func GenerateReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departmentID := chi.URLParam(r, "id")
		var req periodReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		p := reporting.Period{Month: req.Month, Year: req.Year}
		if err := reporting.Generate(db, departmentID, p); err != nil {
			fail(w, err)
			return
		}
		rows, err := reporting.FindByDepartment(db, departmentID, &p)
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("report grid generated", "department", departmentID,
			"month", p.Month, "year", p.Year, "rows", len(rows))
		respondJSON(w, http.StatusCreated, rows)
	}
}

// ListReports returns a department's rows, optionally scoped to one
// period.
func ListReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departmentID := chi.URLParam(r, "id")
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		rows, err := reporting.FindByDepartment(db, departmentID, p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

type updateCountReq struct {
	ChangesJobCount int `json:"changesJobCount"`
}

// UpdateReportCount sets a row's monthly delta. The current count is
// recomputed from the carried-over base, so repeating a request is a
// no-op.
func UpdateReportCount(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateCountReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		row, err := reporting.UpdateCount(db, id, req.ChangesJobCount)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, row)
	}
}

type reportStatusReq struct {
	Month     int  `json:"monthOfReport" validate:"required,min=1,max=12"`
	Year      int  `json:"yearOfReport" validate:"required,min=2000"`
	Completed bool `json:"completed"`
}

// SetReportStatus marks a department's period as completed or reopens it.
func SetReportStatus(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departmentID := chi.URLParam(r, "id")
		var req reportStatusReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		p := reporting.Period{Month: req.Month, Year: req.Year}
		n, err := reporting.SetCompleted(db, departmentID, &p, req.Completed)
		if err != nil {
			fail(w, err)
			return
		}
		if n == 0 {
			fail(w, reporting.ErrNotFound)
			return
		}
		lg.Infow("report status changed", "department", departmentID,
			"month", p.Month, "year", p.Year, "completed", req.Completed)
		respondJSON(w, http.StatusOK, map[string]any{"updated": n})
	}
}

// DeleteReports removes a department's rows, optionally scoped to one
// period.
func DeleteReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departmentID := chi.URLParam(r, "id")
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		n, err := reporting.DeleteByDepartment(db, departmentID, p)
		if err != nil {
			fail(w, err)
			return
		}
		lg.Infow("reports deleted", "department", departmentID, "rows", n)
		respondJSON(w, http.StatusOK, map[string]any{"deleted": n})
	}
}

// ArchiveReports snapshots every row of the given period into the archive
// table with references denormalized.
func ArchiveReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req periodReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		p := reporting.Period{Month: req.Month, Year: req.Year}
		if err := reporting.CreateArchive(db, &p); err != nil {
			fail(w, err)
			return
		}
		lg.Infow("period archived", "month", p.Month, "year", p.Year)
		respondJSON(w, http.StatusCreated, map[string]any{"archived": true})
	}
}

// RolloverReports regenerates every department's grid for the requested
// period. Departments without services are skipped.
func RolloverReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req periodReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		p := reporting.Period{Month: req.Month, Year: req.Year}
		if err := reporting.Rollover(db, p); err != nil {
			fail(w, err)
			return
		}
		lg.Infow("rollover completed", "month", p.Month, "year", p.Year)
		respondJSON(w, http.StatusCreated, map[string]any{"rolledOver": true})
	}
}

// Collections bundles all reference data for report forms.
func Collections(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := reporting.CollectionsData(r.Context(), db)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}
