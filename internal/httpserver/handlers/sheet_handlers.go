package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/reporting"
)

// Sheet endpoints reshape flat report rows into nested summaries. All of
// them accept an optional monthOfReport/yearOfReport pair; without one the
// whole report table is summarised.

func ServiceSheet(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheets, err := reporting.ServiceTotals(db, p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheets)
	}
}

func BranchSheets(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheets, err := reporting.BranchSheets(db, p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheets)
	}
}

func BranchSheetByID(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheet, err := reporting.BranchSheetByID(db, chi.URLParam(r, "id"), p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheet)
	}
}

func SubdivisionSheets(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheets, err := reporting.SubdivisionSheets(db, p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheets)
	}
}

func SubdivisionSheetByID(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheet, err := reporting.SubdivisionSheetByID(db, chi.URLParam(r, "id"), p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheet)
	}
}

func DepartmentSheets(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		sheets, err := reporting.DepartmentSheets(db, p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, sheets)
	}
}

func DepartmentSheetByID(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := parsePeriodQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid report period")
			return
		}
		rows, err := reporting.DepartmentRows(db, chi.URLParam(r, "id"), p)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}
