package reporting

import (
	"testing"

	"jobreport/internal/models"
)

func TestCreateArchiveDenormalizes(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	rows := reportRows(t, db, fx.department.ID, p)
	if _, err := UpdateCount(db, rows[0].ID, 5); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := CreateArchive(db, &p); err != nil {
		t.Fatalf("archive: %v", err)
	}

	var archives []models.Archive
	if err := db.Find(&archives).Error; err != nil {
		t.Fatalf("load archives: %v", err)
	}
	if len(archives) != 6 {
		t.Fatalf("got %d archive rows, want 6", len(archives))
	}
	for _, a := range archives {
		if a.DepartmentName != fx.department.Name {
			t.Fatalf("department name not denormalized: %+v", a)
		}
		if a.ServiceCode == "" || a.BranchName == "" || a.SubdivisionName == "" {
			t.Fatalf("reference snapshot incomplete: %+v", a)
		}
	}

	// source rows stay in place, archiving is non-destructive
	if got := len(reportRows(t, db, fx.department.ID, p)); got != 6 {
		t.Fatalf("source rows gone: %d", got)
	}
}

func TestArchiveSurvivesCatalogDeletion(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := CreateArchive(db, &p); err != nil {
		t.Fatalf("archive: %v", err)
	}

	if err := CascadeDeleteService(db, fx.services[0].ID); err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if err := db.Delete(&models.Service{}, "id = ?", fx.services[0].ID).Error; err != nil {
		t.Fatalf("delete service: %v", err)
	}

	archived, err := ArchivesByDepartment(db, fx.department.ID)
	if err != nil {
		t.Fatalf("archives by department: %v", err)
	}
	if len(archived) != 6 {
		t.Fatalf("archive shrank to %d rows after catalog deletion", len(archived))
	}
}

func TestArchivedPeriodsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	for _, p := range []Period{{Month: 12, Year: 2023}, {Month: 1, Year: 2024}} {
		if err := Generate(db, fx.department.ID, p); err != nil {
			t.Fatalf("generate %v: %v", p, err)
		}
		if err := CreateArchive(db, &p); err != nil {
			t.Fatalf("archive %v: %v", p, err)
		}
	}

	periods, err := ArchivedPeriods(db)
	if err != nil {
		t.Fatalf("archived periods: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(periods))
	}
	if periods[0] != (Period{Month: 1, Year: 2024}) || periods[1] != (Period{Month: 12, Year: 2023}) {
		t.Fatalf("wrong order: %+v", periods)
	}
}

func TestDeleteArchivesByDepartment(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := CreateArchive(db, &p); err != nil {
		t.Fatalf("archive: %v", err)
	}

	n, err := DeleteArchivesByDepartment(db, fx.department.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 6 {
		t.Fatalf("deleted %d rows, want 6", n)
	}
}
