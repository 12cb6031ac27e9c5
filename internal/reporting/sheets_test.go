package reporting

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestServiceTotalsPricing(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}

	rows := reportRows(t, db, fx.department.ID, p)
	for _, row := range rows {
		if row.ServiceID == fx.services[0].ID && row.SubdivisionID == fx.subs[0].ID {
			if _, err := UpdateCount(db, row.ID, 5); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
	}

	sheets, err := ServiceTotals(db, &p)
	if err != nil {
		t.Fatalf("service totals: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("got %d services, want 2", len(sheets))
	}
	// ordered by code: S1 first
	s1 := sheets[0]
	if s1.Code != "S1" || s1.TotalJobCount != 5 {
		t.Fatalf("unexpected S1 sheet: %+v", s1)
	}
	if !s1.TotalPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("S1 totalPrice = %s, want 500", s1.TotalPrice)
	}
	if sheets[1].TotalJobCount != 0 || !sheets[1].TotalPrice.IsZero() {
		t.Fatalf("idle service has activity: %+v", sheets[1])
	}
}

func TestBranchSheetsDropInactiveGroups(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}

	rows := reportRows(t, db, fx.department.ID, p)
	for _, row := range rows {
		if row.ServiceID == fx.services[0].ID && row.SubdivisionID == fx.subs[0].ID {
			if _, err := UpdateCount(db, row.ID, 4); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
	}

	sheets, err := BranchSheets(db, &p)
	if err != nil {
		t.Fatalf("branch sheets: %v", err)
	}
	// only the Central branch has activity; the Regional one is dropped
	if len(sheets) != 1 {
		t.Fatalf("got %d branches, want 1", len(sheets))
	}
	branch := sheets[0]
	if branch.Name != "Central" || branch.TotalJobCount != 4 {
		t.Fatalf("unexpected branch sheet: %+v", branch)
	}
	if !branch.TotalPrice.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("branch totalPrice = %s, want 400", branch.TotalPrice)
	}
	// the idle South subdivision is dropped as well
	if len(branch.Subdivisions) != 1 || branch.Subdivisions[0].Name != "North" {
		t.Fatalf("unexpected subdivisions: %+v", branch.Subdivisions)
	}
	sub := branch.Subdivisions[0]
	if len(sub.Services) != 1 || sub.Services[0].Code != "S1" {
		t.Fatalf("unexpected services: %+v", sub.Services)
	}
	if sub.TotalJobCount != branch.TotalJobCount {
		t.Fatalf("totals disagree: sub=%d branch=%d", sub.TotalJobCount, branch.TotalJobCount)
	}
}

func TestBranchSheetByID(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}

	sheet, err := BranchSheetByID(db, fx.branches[1].ID, &p)
	if err != nil {
		t.Fatalf("branch sheet: %v", err)
	}
	// no activity: the sheet exists but carries nothing
	if sheet.TotalJobCount != 0 || len(sheet.Subdivisions) != 0 {
		t.Fatalf("idle branch has activity: %+v", sheet)
	}

	if _, err := BranchSheetByID(db, "bad", &p); err != ErrBadID {
		t.Fatalf("got %v, want ErrBadID", err)
	}
	if _, err := BranchSheetByID(db, "6f1c1f7e-0000-4000-8000-000000000000", &p); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSubdivisionSheetsCarryBranchInfo(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}

	rows := reportRows(t, db, fx.department.ID, p)
	for _, row := range rows {
		if row.ServiceID == fx.services[1].ID && row.SubdivisionID == fx.subs[2].ID {
			if _, err := UpdateCount(db, row.ID, 2); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
	}

	sheets, err := SubdivisionSheets(db, &p)
	if err != nil {
		t.Fatalf("subdivision sheets: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d subdivisions, want 1", len(sheets))
	}
	sheet := sheets[0]
	if sheet.Name != "East" || sheet.TotalJobCount != 2 {
		t.Fatalf("unexpected sheet: %+v", sheet)
	}
	if sheet.Branch == nil || sheet.Branch.Name != "Regional" {
		t.Fatalf("branch info missing: %+v", sheet.Branch)
	}
	if !sheet.TotalPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("totalPrice = %s, want 500", sheet.TotalPrice)
	}
}

func TestDepartmentSheetsOnlyActiveRows(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}

	sheets, err := DepartmentSheets(db, &p)
	if err != nil {
		t.Fatalf("department sheets: %v", err)
	}
	// all rows are zero, so the department is dropped entirely
	if len(sheets) != 0 {
		t.Fatalf("got %d departments, want 0", len(sheets))
	}

	rows := reportRows(t, db, fx.department.ID, p)
	if _, err := UpdateCount(db, rows[0].ID, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	sheets, err = DepartmentSheets(db, &p)
	if err != nil {
		t.Fatalf("department sheets: %v", err)
	}
	if len(sheets) != 1 || len(sheets[0].Records) != 1 {
		t.Fatalf("unexpected sheets: %+v", sheets)
	}
	if sheets[0].Department.Name != fx.department.Name {
		t.Fatalf("wrong department: %+v", sheets[0].Department)
	}
	rec := sheets[0].Records[0]
	if rec.Service == nil || rec.Branch == nil || rec.Subdivision == nil {
		t.Fatalf("references not resolved: %+v", rec)
	}
}
