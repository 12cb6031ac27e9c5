package reporting

import (
	"errors"

	"gorm.io/gorm"

	"jobreport/internal/models"
)

// latestPeriod returns the most recent period a department has rows for,
// or nil when no grid has been generated yet.
func latestPeriod(db *gorm.DB, departmentID string) (*Period, error) {
	var p Period
	err := db.Model(&models.Report{}).
		Select("month_of_report as month", "year_of_report as year").
		Where("department_id = ?", departmentID).
		Order("year_of_report desc, month_of_report desc").
		Limit(1).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddServiceRows inserts zeroed rows for services newly attached to a
// department, covering every branch × subdivision in the department's open
// (latest) period. A no-op when no grid exists yet.
func AddServiceRows(db *gorm.DB, departmentID string, serviceIDs []string) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	p, err := latestPeriod(db, departmentID)
	if err != nil || p == nil {
		return err
	}

	var branches []models.Branch
	if err := db.Preload("Subdivisions").Find(&branches).Error; err != nil {
		return err
	}

	var rows []models.Report
	for _, svc := range serviceIDs {
		for _, branch := range branches {
			for _, sub := range branch.Subdivisions {
				rows = append(rows, models.Report{
					MonthOfReport: p.Month,
					YearOfReport:  p.Year,
					DepartmentID:  departmentID,
					ServiceID:     svc,
					BranchID:      branch.ID,
					SubdivisionID: sub.ID,
				})
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(rows, 500).Error
}

// RemoveServiceRows deletes a department's rows for services detached from
// it.
func RemoveServiceRows(db *gorm.DB, departmentID string, serviceIDs []string) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	return db.
		Where("department_id = ? AND service_id IN ?", departmentID, serviceIDs).
		Delete(&models.Report{}).Error
}

// RemoveBranchSubdivisionRows deletes a branch's rows for subdivisions
// detached from it.
func RemoveBranchSubdivisionRows(db *gorm.DB, branchID string, subdivisionIDs []string) error {
	if len(subdivisionIDs) == 0 {
		return nil
	}
	return db.
		Where("branch_id = ? AND subdivision_id IN ?", branchID, subdivisionIDs).
		Delete(&models.Report{}).Error
}

// CascadeDeleteDepartment removes a department's join rows and report rows
// after the department itself is deleted.
func CascadeDeleteDepartment(db *gorm.DB, departmentID string) error {
	if err := db.Exec("DELETE FROM department_services WHERE department_id = ?", departmentID).Error; err != nil {
		return err
	}
	return db.Where("department_id = ?", departmentID).Delete(&models.Report{}).Error
}

// CascadeDeleteService detaches a service from every department and removes
// its report rows.
func CascadeDeleteService(db *gorm.DB, serviceID string) error {
	if err := db.Exec("DELETE FROM department_services WHERE service_id = ?", serviceID).Error; err != nil {
		return err
	}
	return db.Where("service_id = ?", serviceID).Delete(&models.Report{}).Error
}

// CascadeDeleteBranch removes a branch's join rows and report rows.
func CascadeDeleteBranch(db *gorm.DB, branchID string) error {
	if err := db.Exec("DELETE FROM branch_subdivisions WHERE branch_id = ?", branchID).Error; err != nil {
		return err
	}
	return db.Where("branch_id = ?", branchID).Delete(&models.Report{}).Error
}

// CascadeDeleteSubdivision detaches a subdivision from every branch and
// removes its report rows.
func CascadeDeleteSubdivision(db *gorm.DB, subdivisionID string) error {
	if err := db.Exec("DELETE FROM branch_subdivisions WHERE subdivision_id = ?", subdivisionID).Error; err != nil {
		return err
	}
	return db.Where("subdivision_id = ?", subdivisionID).Delete(&models.Report{}).Error
}
