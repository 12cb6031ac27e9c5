package reporting

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

// CreateArchive snapshots report rows into the archive collection,
// denormalizing every reference so the snapshot survives catalog edits.
// Non-destructive: source rows are left in place. The optional period
// filter limits the snapshot to one month.
func CreateArchive(db *gorm.DB, p *Period) error {
	q := db.
		Preload("Department").Preload("Service").Preload("Branch").Preload("Subdivision")
	if p != nil {
		q = q.Where("month_of_report = ? AND year_of_report = ?", p.Month, p.Year)
	}
	var rows []models.Report
	if err := q.Find(&rows).Error; err != nil {
		return err
	}

	archives := make([]models.Archive, 0, len(rows))
	for _, row := range rows {
		a := models.Archive{
			MonthOfReport:    row.MonthOfReport,
			YearOfReport:     row.YearOfReport,
			DepartmentID:     row.DepartmentID,
			ServiceID:        row.ServiceID,
			BranchID:         row.BranchID,
			SubdivisionID:    row.SubdivisionID,
			PreviousJobCount: row.PreviousJobCount,
			ChangesJobCount:  row.ChangesJobCount,
			CurrentJobCount:  row.CurrentJobCount,
		}
		if row.Department != nil {
			a.DepartmentName = row.Department.Name
			a.DepartmentPhone = row.Department.Phone
			a.DepartmentManager = row.Department.Manager
		}
		if row.Service != nil {
			a.ServiceCode = row.Service.Code
			a.ServiceName = row.Service.Name
			a.ServicePrice = row.Service.Price
		}
		if row.Branch != nil {
			a.BranchName = row.Branch.Name
			a.BranchDescription = row.Branch.Description
		}
		if row.Subdivision != nil {
			a.SubdivisionName = row.Subdivision.Name
			a.SubdivisionDescription = row.Subdivision.Description
		}
		archives = append(archives, a)
	}

	if len(archives) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(archives, 500).Error
	})
}

// ArchivedPeriods lists the distinct periods present in the archive,
// newest first.
func ArchivedPeriods(db *gorm.DB) ([]Period, error) {
	var periods []Period
	err := db.Model(&models.Archive{}).
		Distinct("month_of_report as month", "year_of_report as year").
		Order("year desc, month desc").
		Scan(&periods).Error
	return periods, err
}

// ArchivesByDepartment returns a department's archived rows.
func ArchivesByDepartment(db *gorm.DB, departmentID string) ([]models.Archive, error) {
	if uuid.Validate(departmentID) != nil {
		return nil, ErrBadID
	}
	var rows []models.Archive
	err := db.
		Where("department_id = ?", departmentID).
		Order("year_of_report desc, month_of_report desc, service_code").
		Find(&rows).Error
	return rows, err
}

// DeleteArchivesByDepartment removes all archived rows for one department.
func DeleteArchivesByDepartment(db *gorm.DB, departmentID string) (int64, error) {
	if uuid.Validate(departmentID) != nil {
		return 0, ErrBadID
	}
	res := db.Where("department_id = ?", departmentID).Delete(&models.Archive{})
	return res.RowsAffected, res.Error
}
