package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/reporting"
)

func DashboardStatistics(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := reporting.Dashboard(db)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

func DatabaseStatistics(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := reporting.Database(db)
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

func DatacoreStatistics(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := reporting.Datacore(db, time.Now())
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}
