package reporting

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"jobreport/internal/models"
)

// Sheet shapes: flat report rows regrouped into nested, display-ready
// summaries. Totals are consistent by construction: each level's
// totalJobCount/totalPrice is the sum over its children.

type ServiceSheet struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalJobCount int             `json:"totalJobCount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

type SubdivisionSheet struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TotalJobCount int             `json:"totalJobCount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Services      []ServiceSheet  `json:"services"`
}

type BranchSheet struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	TotalJobCount int                `json:"totalJobCount"`
	TotalPrice    decimal.Decimal    `json:"totalPrice"`
	Subdivisions  []SubdivisionSheet `json:"subdivisions"`
}

type BranchRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubdivisionReportSheet is the subdivision-scoped variant: one grouping
// level fewer than the branch sheet, with the owning branch attached.
type SubdivisionReportSheet struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Branch        *BranchRef      `json:"branch,omitempty"`
	TotalJobCount int             `json:"totalJobCount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Services      []ServiceSheet  `json:"services"`
}

type DepartmentRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Manager     string `json:"manager"`
}

// DepartmentSheet groups a department's non-zero rows for display.
type DepartmentSheet struct {
	Department DepartmentRef   `json:"department"`
	Records    []models.Report `json:"records"`
}

func periodScope(q *gorm.DB, p *Period) *gorm.DB {
	if p != nil {
		q = q.Where("month_of_report = ? AND year_of_report = ?", p.Month, p.Year)
	}
	return q
}

// ServiceTotals returns every service with its job count summed across all
// report rows, ordered by code. Services without activity appear with a
// zero count.
func ServiceTotals(db *gorm.DB, p *Period) ([]ServiceSheet, error) {
	var services []models.Service
	if err := db.Order("code").Find(&services).Error; err != nil {
		return nil, err
	}

	var rows []models.Report
	if err := periodScope(db, p).Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(services))
	for _, row := range rows {
		counts[row.ServiceID] += row.CurrentJobCount
	}

	sheets := make([]ServiceSheet, 0, len(services))
	for _, svc := range services {
		count := counts[svc.ID]
		sheets = append(sheets, ServiceSheet{
			ID:            svc.ID,
			Code:          svc.Code,
			Name:          svc.Name,
			Price:         svc.Price,
			TotalJobCount: count,
			TotalPrice:    svc.Price.Mul(decimal.NewFromInt(int64(count))),
		})
	}
	return sheets, nil
}

type subdivisionServiceKey struct {
	subdivision string
	service     string
}

// foldBranch regroups one branch's rows into subdivision → service
// summaries. Groups with a non-positive summed count are dropped, then
// subdivisions left without services.
func foldBranch(branch models.Branch, rows []models.Report, services map[string]models.Service, subdivisions map[string]models.Subdivision) BranchSheet {
	grouped := make(map[subdivisionServiceKey]int)
	for _, row := range rows {
		grouped[subdivisionServiceKey{row.SubdivisionID, row.ServiceID}] += row.CurrentJobCount
	}

	bySubdivision := make(map[string][]ServiceSheet)
	for key, count := range grouped {
		if count <= 0 {
			continue
		}
		svc, ok := services[key.service]
		if !ok {
			continue
		}
		bySubdivision[key.subdivision] = append(bySubdivision[key.subdivision], ServiceSheet{
			ID:            svc.ID,
			Code:          svc.Code,
			Name:          svc.Name,
			Price:         svc.Price,
			TotalJobCount: count,
			TotalPrice:    svc.Price.Mul(decimal.NewFromInt(int64(count))),
		})
	}

	sheet := BranchSheet{
		ID:          branch.ID,
		Name:        branch.Name,
		Description: branch.Description,
		TotalPrice:  decimal.Zero,
	}
	for subID, svcSheets := range bySubdivision {
		sub, ok := subdivisions[subID]
		if !ok {
			continue
		}
		sort.Slice(svcSheets, func(i, j int) bool { return svcSheets[i].Code < svcSheets[j].Code })

		subSheet := SubdivisionSheet{
			ID:          sub.ID,
			Name:        sub.Name,
			Description: sub.Description,
			TotalPrice:  decimal.Zero,
			Services:    svcSheets,
		}
		for _, s := range svcSheets {
			subSheet.TotalJobCount += s.TotalJobCount
			subSheet.TotalPrice = subSheet.TotalPrice.Add(s.TotalPrice)
		}
		sheet.Subdivisions = append(sheet.Subdivisions, subSheet)
		sheet.TotalJobCount += subSheet.TotalJobCount
		sheet.TotalPrice = sheet.TotalPrice.Add(subSheet.TotalPrice)
	}
	sort.Slice(sheet.Subdivisions, func(i, j int) bool {
		return sheet.Subdivisions[i].Name < sheet.Subdivisions[j].Name
	})
	return sheet
}

func loadServiceMap(db *gorm.DB) (map[string]models.Service, error) {
	var services []models.Service
	if err := db.Find(&services).Error; err != nil {
		return nil, err
	}
	m := make(map[string]models.Service, len(services))
	for _, s := range services {
		m[s.ID] = s
	}
	return m, nil
}

func loadSubdivisionMap(db *gorm.DB) (map[string]models.Subdivision, error) {
	var subs []models.Subdivision
	if err := db.Find(&subs).Error; err != nil {
		return nil, err
	}
	m := make(map[string]models.Subdivision, len(subs))
	for _, s := range subs {
		m[s.ID] = s
	}
	return m, nil
}

// BranchSheetByID builds the nested branch summary for one branch.
func BranchSheetByID(db *gorm.DB, branchID string, p *Period) (*BranchSheet, error) {
	if uuid.Validate(branchID) != nil {
		return nil, ErrBadID
	}
	var branch models.Branch
	if err := db.First(&branch, "id = ?", branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []models.Report
	if err := periodScope(db.Where("branch_id = ?", branchID), p).Find(&rows).Error; err != nil {
		return nil, err
	}
	services, err := loadServiceMap(db)
	if err != nil {
		return nil, err
	}
	subdivisions, err := loadSubdivisionMap(db)
	if err != nil {
		return nil, err
	}

	sheet := foldBranch(branch, rows, services, subdivisions)
	return &sheet, nil
}

// BranchSheets builds nested summaries for every branch with positive
// activity, ordered by branch name.
func BranchSheets(db *gorm.DB, p *Period) ([]BranchSheet, error) {
	var branches []models.Branch
	if err := db.Order("name").Find(&branches).Error; err != nil {
		return nil, err
	}
	var rows []models.Report
	if err := periodScope(db, p).Find(&rows).Error; err != nil {
		return nil, err
	}
	services, err := loadServiceMap(db)
	if err != nil {
		return nil, err
	}
	subdivisions, err := loadSubdivisionMap(db)
	if err != nil {
		return nil, err
	}

	byBranch := make(map[string][]models.Report)
	for _, row := range rows {
		byBranch[row.BranchID] = append(byBranch[row.BranchID], row)
	}

	sheets := make([]BranchSheet, 0, len(branches))
	for _, branch := range branches {
		sheet := foldBranch(branch, byBranch[branch.ID], services, subdivisions)
		if len(sheet.Subdivisions) == 0 {
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func foldSubdivision(sub models.Subdivision, rows []models.Report, services map[string]models.Service, branch *BranchRef) SubdivisionReportSheet {
	grouped := make(map[string]int)
	for _, row := range rows {
		grouped[row.ServiceID] += row.CurrentJobCount
	}

	sheet := SubdivisionReportSheet{
		ID:          sub.ID,
		Name:        sub.Name,
		Description: sub.Description,
		Branch:      branch,
		TotalPrice:  decimal.Zero,
	}
	for svcID, count := range grouped {
		if count <= 0 {
			continue
		}
		svc, ok := services[svcID]
		if !ok {
			continue
		}
		total := svc.Price.Mul(decimal.NewFromInt(int64(count)))
		sheet.Services = append(sheet.Services, ServiceSheet{
			ID:            svc.ID,
			Code:          svc.Code,
			Name:          svc.Name,
			Price:         svc.Price,
			TotalJobCount: count,
			TotalPrice:    total,
		})
		sheet.TotalJobCount += count
		sheet.TotalPrice = sheet.TotalPrice.Add(total)
	}
	sort.Slice(sheet.Services, func(i, j int) bool { return sheet.Services[i].Code < sheet.Services[j].Code })
	return sheet
}

// SubdivisionSheetByID builds the service summary for one subdivision,
// including its owning branch.
func SubdivisionSheetByID(db *gorm.DB, subdivisionID string, p *Period) (*SubdivisionReportSheet, error) {
	if uuid.Validate(subdivisionID) != nil {
		return nil, ErrBadID
	}
	var sub models.Subdivision
	if err := db.First(&sub, "id = ?", subdivisionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []models.Report
	if err := periodScope(db.Where("subdivision_id = ?", subdivisionID), p).Find(&rows).Error; err != nil {
		return nil, err
	}
	services, err := loadServiceMap(db)
	if err != nil {
		return nil, err
	}

	var branchRef *BranchRef
	if len(rows) > 0 {
		var branch models.Branch
		if err := db.First(&branch, "id = ?", rows[0].BranchID).Error; err == nil {
			branchRef = &BranchRef{ID: branch.ID, Name: branch.Name, Description: branch.Description}
		}
	}

	sheet := foldSubdivision(sub, rows, services, branchRef)
	return &sheet, nil
}

// SubdivisionSheets builds summaries for every subdivision with positive
// activity, ordered by name.
func SubdivisionSheets(db *gorm.DB, p *Period) ([]SubdivisionReportSheet, error) {
	var subs []models.Subdivision
	if err := db.Order("name").Find(&subs).Error; err != nil {
		return nil, err
	}
	var rows []models.Report
	if err := periodScope(db, p).Find(&rows).Error; err != nil {
		return nil, err
	}
	services, err := loadServiceMap(db)
	if err != nil {
		return nil, err
	}
	var branches []models.Branch
	if err := db.Find(&branches).Error; err != nil {
		return nil, err
	}
	branchRefs := make(map[string]*BranchRef, len(branches))
	for _, b := range branches {
		branchRefs[b.ID] = &BranchRef{ID: b.ID, Name: b.Name, Description: b.Description}
	}

	bySubdivision := make(map[string][]models.Report)
	for _, row := range rows {
		bySubdivision[row.SubdivisionID] = append(bySubdivision[row.SubdivisionID], row)
	}

	sheets := make([]SubdivisionReportSheet, 0, len(subs))
	for _, sub := range subs {
		subRows := bySubdivision[sub.ID]
		var branchRef *BranchRef
		if len(subRows) > 0 {
			branchRef = branchRefs[subRows[0].BranchID]
		}
		sheet := foldSubdivision(sub, subRows, services, branchRef)
		if len(sheet.Services) == 0 {
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func activeScope(q *gorm.DB) *gorm.DB {
	return q.Where("previous_job_count <> 0 OR changes_job_count <> 0 OR current_job_count <> 0")
}

// DepartmentRows returns a department's rows with any activity, references
// resolved.
func DepartmentRows(db *gorm.DB, departmentID string, p *Period) ([]models.Report, error) {
	if uuid.Validate(departmentID) != nil {
		return nil, ErrBadID
	}
	q := activeScope(periodScope(db.Where("department_id = ?", departmentID), p)).
		Preload("Department").Preload("Service").Preload("Branch").Preload("Subdivision")
	var rows []models.Report
	err := q.Order("created_at").Find(&rows).Error
	return rows, err
}

// DepartmentSheets groups every department's active rows for display,
// ordered by department name.
func DepartmentSheets(db *gorm.DB, p *Period) ([]DepartmentSheet, error) {
	var departments []models.Department
	if err := db.Order("name").Find(&departments).Error; err != nil {
		return nil, err
	}
	q := activeScope(periodScope(db.Model(&models.Report{}), p)).
		Preload("Department").Preload("Service").Preload("Branch").Preload("Subdivision")
	var rows []models.Report
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	byDepartment := make(map[string][]models.Report)
	for _, row := range rows {
		byDepartment[row.DepartmentID] = append(byDepartment[row.DepartmentID], row)
	}

	sheets := make([]DepartmentSheet, 0, len(departments))
	for _, dep := range departments {
		records := byDepartment[dep.ID]
		if len(records) == 0 {
			continue
		}
		sheets = append(sheets, DepartmentSheet{
			Department: DepartmentRef{
				ID:          dep.ID,
				Name:        dep.Name,
				Description: dep.Description,
				Phone:       dep.Phone,
				Manager:     dep.Manager,
			},
			Records: records,
		})
	}
	return sheets, nil
}
