package reporting

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

// UpdateCount overwrites one row's delta and recomputes its running total.
// The delta is absolute, not accumulated: repeated calls with the same value
// are idempotent. Completed rows are frozen.
func UpdateCount(db *gorm.DB, id string, changesJobCount int) (*models.Report, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrBadID
	}

	var row models.Report
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if row.Completed {
		return nil, ErrLocked
	}

	if err := db.Model(&row).Updates(map[string]any{
		"changes_job_count": changesJobCount,
		"current_job_count": row.PreviousJobCount + changesJobCount,
	}).Error; err != nil {
		return nil, err
	}

	var updated models.Report
	if err := db.
		Preload("Department").Preload("Service").Preload("Branch").Preload("Subdivision").
		First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetCompleted freezes or reopens a department's rows, optionally scoped to
// one period. Returns the number of rows touched.
func SetCompleted(db *gorm.DB, departmentID string, p *Period, completed bool) (int64, error) {
	if uuid.Validate(departmentID) != nil {
		return 0, ErrBadID
	}
	q := db.Model(&models.Report{}).Where("department_id = ?", departmentID)
	if p != nil {
		q = q.Where("month_of_report = ? AND year_of_report = ?", p.Month, p.Year)
	}
	res := q.Update("completed", completed)
	return res.RowsAffected, res.Error
}

// FindByDepartment returns a department's rows with references resolved,
// optionally scoped to one period.
func FindByDepartment(db *gorm.DB, departmentID string, p *Period) ([]models.Report, error) {
	if uuid.Validate(departmentID) != nil {
		return nil, ErrBadID
	}
	q := db.
		Preload("Department").Preload("Service").Preload("Branch").Preload("Subdivision").
		Where("department_id = ?", departmentID)
	if p != nil {
		q = q.Where("month_of_report = ? AND year_of_report = ?", p.Month, p.Year)
	}
	var rows []models.Report
	err := q.Order("created_at").Find(&rows).Error
	return rows, err
}

// DeleteByDepartment bulk-deletes a department's rows, optionally scoped to
// one period. Returns the number of rows removed.
func DeleteByDepartment(db *gorm.DB, departmentID string, p *Period) (int64, error) {
	if uuid.Validate(departmentID) != nil {
		return 0, ErrBadID
	}
	q := db.Where("department_id = ?", departmentID)
	if p != nil {
		q = q.Where("month_of_report = ? AND year_of_report = ?", p.Month, p.Year)
	}
	res := q.Delete(&models.Report{})
	return res.RowsAffected, res.Error
}
