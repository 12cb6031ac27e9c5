package reporting

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

type gridKey struct {
	service     string
	branch      string
	subdivision string
}

// Generate materializes the report grid for one department and period: one
// zeroed row per service × branch × subdivision, carrying forward the
// closing count of the preceding period where a matching row exists.
// Existing rows for the same (department, period) are replaced.
func Generate(db *gorm.DB, departmentID string, p Period) error {
	if uuid.Validate(departmentID) != nil {
		return ErrBadID
	}

	var department models.Department
	if err := db.Preload("Services").First(&department, "id = ?", departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if len(department.Services) == 0 {
		return ErrNoServices
	}

	var branches []models.Branch
	if err := db.Preload("Subdivisions").Find(&branches).Error; err != nil {
		return err
	}

	prev := p.Previous()
	var prevRows []models.Report
	if err := db.
		Where("department_id = ? AND month_of_report = ? AND year_of_report = ?",
			departmentID, prev.Month, prev.Year).
		Find(&prevRows).Error; err != nil {
		return err
	}
	carried := make(map[gridKey]int, len(prevRows))
	for _, row := range prevRows {
		carried[gridKey{row.ServiceID, row.BranchID, row.SubdivisionID}] = row.CurrentJobCount
	}

	rows := make([]models.Report, 0, len(department.Services)*len(branches))
	for _, svc := range department.Services {
		for _, branch := range branches {
			for _, sub := range branch.Subdivisions {
				opening := carried[gridKey{svc.ID, branch.ID, sub.ID}]
				rows = append(rows, models.Report{
					MonthOfReport:    p.Month,
					YearOfReport:     p.Year,
					DepartmentID:     departmentID,
					ServiceID:        svc.ID,
					BranchID:         branch.ID,
					SubdivisionID:    sub.ID,
					PreviousJobCount: opening,
					ChangesJobCount:  0,
					CurrentJobCount:  opening,
				})
			}
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("department_id = ? AND month_of_report = ? AND year_of_report = ?",
				departmentID, p.Month, p.Year).
			Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

// Rollover opens the given period for every department by regenerating each
// department's grid with carry-forward from the preceding period.
// Departments without services are skipped.
func Rollover(db *gorm.DB, p Period) error {
	var departmentIDs []string
	if err := db.Model(&models.Department{}).Order("name").Pluck("id", &departmentIDs).Error; err != nil {
		return err
	}
	for _, id := range departmentIDs {
		if err := Generate(db, id, p); err != nil {
			if errors.Is(err, ErrNoServices) {
				continue
			}
			return err
		}
	}
	return nil
}
