package sweeper

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

// retention is how long notices and syslog entries are kept.
const retention = 3 // months

// Sweeper prunes aged notices and syslog rows on a nightly schedule and
// leaves a synthetic syslog entry describing each run.
type Sweeper struct {
	db   *gorm.DB
	lg   *zap.SugaredLogger
	cron *cron.Cron
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Sweeper {
	return &Sweeper{db: db, lg: lg, cron: cron.New()}
}

// Start registers the nightly jobs and launches the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.SweepNotices); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * *", s.SweepSyslogs); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func cutoff() time.Time {
	return time.Now().AddDate(0, -retention, 0)
}

func (s *Sweeper) record(task string, err error) {
	status := 200
	if err != nil {
		status = 500
		s.lg.Warnw("sweep failed", "task", task, "err", err)
	}
	entry := models.Syslog{
		Host:      "scheduler",
		Profile:   "system",
		Method:    "TASK",
		BaseURL:   task,
		Params:    models.JSONB("{}"),
		Query:     models.JSONB("{}"),
		Status:    status,
		UserAgent: "sweeper",
	}
	if werr := s.db.Create(&entry).Error; werr != nil {
		s.lg.Warnw("sweep record failed", "task", task, "err", werr)
	}
}

// SweepNotices deletes notices older than the retention window.
func (s *Sweeper) SweepNotices() {
	res := s.db.Delete(&models.Notice{}, "created_at < ?", cutoff())
	s.record("notices", res.Error)
	if res.Error == nil && res.RowsAffected > 0 {
		s.lg.Infow("notices swept", "rows", res.RowsAffected)
	}
}

// SweepSyslogs deletes syslog entries older than the retention window.
func (s *Sweeper) SweepSyslogs() {
	res := s.db.Delete(&models.Syslog{}, "created_at < ?", cutoff())
	s.record("syslogs", res.Error)
	if res.Error == nil && res.RowsAffected > 0 {
		s.lg.Infow("syslogs swept", "rows", res.RowsAffected)
	}
}
