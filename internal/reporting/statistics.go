package reporting

import (
	"time"

	"gorm.io/gorm"

	"jobreport/internal/models"
)

type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardStats summarises the current state of the system for the
// landing page: entity counts plus per-department and per-branch job
// totals.
type DashboardStats struct {
	Departments      int64        `json:"departments"`
	Services         int64        `json:"services"`
	Branches         int64        `json:"branches"`
	Subdivisions     int64        `json:"subdivisions"`
	Reports          int64        `json:"reports"`
	Archives         int64        `json:"archives"`
	Profiles         int64        `json:"profiles"`
	Notices          int64        `json:"notices"`
	JobsByDepartment []ChartPoint `json:"jobsByDepartment"`
	JobsByBranch     []ChartPoint `json:"jobsByBranch"`
}

// DatabaseStats counts rows per table, join tables included.
type DatabaseStats struct {
	Departments        int64 `json:"departments"`
	Services           int64 `json:"services"`
	Branches           int64 `json:"branches"`
	Subdivisions       int64 `json:"subdivisions"`
	Reports            int64 `json:"reports"`
	Archives           int64 `json:"archives"`
	Profiles           int64 `json:"profiles"`
	Notices            int64 `json:"notices"`
	Syslogs            int64 `json:"syslogs"`
	DepartmentServices int64 `json:"departmentServices"`
	BranchSubdivisions int64 `json:"branchSubdivisions"`
}

type ProfileActivity struct {
	Profile string `json:"profile"`
	GET     int    `json:"get"`
	POST    int    `json:"post"`
	PUT     int    `json:"put"`
	DELETE  int    `json:"delete"`
	Total   int    `json:"total"`
}

// DatacoreStats covers request traffic: daily request counts since the
// first day of the previous month and per-profile method breakdowns for
// the current week.
type DatacoreStats struct {
	Profiles        int64             `json:"profiles"`
	DailyActivity   []ChartPoint      `json:"dailyActivity"`
	WeeklyByProfile []ProfileActivity `json:"weeklyByProfile"`
}

func countModel(db *gorm.DB, model any, out *int64) error {
	return db.Model(model).Count(out).Error
}

// Dashboard gathers the landing-page counts and charts. Job charts sum
// current counts per department and per branch, skipping groups without
// activity.
func Dashboard(db *gorm.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}
	for _, c := range []struct {
		model any
		out   *int64
	}{
		{&models.Department{}, &stats.Departments},
		{&models.Service{}, &stats.Services},
		{&models.Branch{}, &stats.Branches},
		{&models.Subdivision{}, &stats.Subdivisions},
		{&models.Report{}, &stats.Reports},
		{&models.Archive{}, &stats.Archives},
		{&models.Profile{}, &stats.Profiles},
		{&models.Notice{}, &stats.Notices},
	} {
		if err := countModel(db, c.model, c.out); err != nil {
			return nil, err
		}
	}

	type groupRow struct {
		Name  string
		Total int
	}

	var byDepartment []groupRow
	err := db.Model(&models.Report{}).
		Select("departments.name as name, sum(reports.current_job_count) as total").
		Joins("JOIN departments ON departments.id = reports.department_id").
		Group("departments.name").
		Having("sum(reports.current_job_count) > 0").
		Order("total desc").
		Scan(&byDepartment).Error
	if err != nil {
		return nil, err
	}
	for _, r := range byDepartment {
		stats.JobsByDepartment = append(stats.JobsByDepartment, ChartPoint{Name: r.Name, Value: r.Total})
	}

	var byBranch []groupRow
	err = db.Model(&models.Report{}).
		Select("branches.name as name, sum(reports.current_job_count) as total").
		Joins("JOIN branches ON branches.id = reports.branch_id").
		Group("branches.name").
		Having("sum(reports.current_job_count) > 0").
		Order("total desc").
		Scan(&byBranch).Error
	if err != nil {
		return nil, err
	}
	for _, r := range byBranch {
		stats.JobsByBranch = append(stats.JobsByBranch, ChartPoint{Name: r.Name, Value: r.Total})
	}
	return stats, nil
}

// Database reports raw row counts per table.
func Database(db *gorm.DB) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	for _, c := range []struct {
		model any
		out   *int64
	}{
		{&models.Department{}, &stats.Departments},
		{&models.Service{}, &stats.Services},
		{&models.Branch{}, &stats.Branches},
		{&models.Subdivision{}, &stats.Subdivisions},
		{&models.Report{}, &stats.Reports},
		{&models.Archive{}, &stats.Archives},
		{&models.Profile{}, &stats.Profiles},
		{&models.Notice{}, &stats.Notices},
		{&models.Syslog{}, &stats.Syslogs},
	} {
		if err := countModel(db, c.model, c.out); err != nil {
			return nil, err
		}
	}
	if err := db.Table("department_services").Count(&stats.DepartmentServices).Error; err != nil {
		return nil, err
	}
	if err := db.Table("branch_subdivisions").Count(&stats.BranchSubdivisions).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Monday at midnight.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Datacore builds traffic statistics from the syslog table: daily request
// counts since the first day of the previous month, and per-profile method
// counts for the current week. Anonymous and system entries are excluded
// from the weekly table.
func Datacore(db *gorm.DB, now time.Time) (*DatacoreStats, error) {
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)

	var logs []models.Syslog
	if err := db.Where("created_at >= ?", since).Order("created_at").Find(&logs).Error; err != nil {
		return nil, err
	}

	stats := &DatacoreStats{}
	if err := db.Model(&models.Profile{}).Count(&stats.Profiles).Error; err != nil {
		return nil, err
	}

	daily := make(map[string]int)
	var days []string
	for _, l := range logs {
		day := l.CreatedAt.Format("2006-01-02")
		if _, seen := daily[day]; !seen {
			days = append(days, day)
		}
		daily[day]++
	}
	for _, day := range days {
		stats.DailyActivity = append(stats.DailyActivity, ChartPoint{Name: day, Value: daily[day]})
	}

	weekStart := startOfWeek(now)
	weekly := make(map[string]*ProfileActivity)
	var order []string
	for _, l := range logs {
		if l.CreatedAt.Before(weekStart) {
			continue
		}
		if l.Profile == "" || l.Profile == "anonymous" || l.Profile == "system" {
			continue
		}
		entry, ok := weekly[l.Profile]
		if !ok {
			entry = &ProfileActivity{Profile: l.Profile}
			weekly[l.Profile] = entry
			order = append(order, l.Profile)
		}
		switch l.Method {
		case "GET":
			entry.GET++
		case "POST":
			entry.POST++
		case "PUT":
			entry.PUT++
		case "DELETE":
			entry.DELETE++
		}
		entry.Total++
	}
	for _, name := range order {
		stats.WeeklyByProfile = append(stats.WeeklyByProfile, *weekly[name])
	}
	return stats, nil
}
