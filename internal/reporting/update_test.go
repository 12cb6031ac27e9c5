package reporting

import (
	"errors"
	"testing"
)

func TestUpdateCountIsAbsolute(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	row := reportRows(t, db, fx.department.ID, p)[0]

	updated, err := UpdateCount(db, row.ID, 5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ChangesJobCount != 5 || updated.CurrentJobCount != 5 {
		t.Fatalf("after +5: %+v", updated)
	}

	// the delta overwrites, it does not accumulate
	updated, err = UpdateCount(db, row.ID, 5)
	if err != nil {
		t.Fatalf("repeat update: %v", err)
	}
	if updated.CurrentJobCount != 5 {
		t.Fatalf("repeated update not idempotent: current=%d", updated.CurrentJobCount)
	}

	updated, err = UpdateCount(db, row.ID, -3)
	if err != nil {
		t.Fatalf("negative update: %v", err)
	}
	if updated.ChangesJobCount != -3 || updated.CurrentJobCount != -3 {
		t.Fatalf("after -3: %+v", updated)
	}
	if updated.CurrentJobCount != updated.PreviousJobCount+updated.ChangesJobCount {
		t.Fatalf("count invariant broken: %+v", updated)
	}
}

func TestUpdateCountRejectsCompletedRows(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	p := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, p); err != nil {
		t.Fatalf("generate: %v", err)
	}
	row := reportRows(t, db, fx.department.ID, p)[0]

	n, err := SetCompleted(db, fx.department.ID, &p, true)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if n != 6 {
		t.Fatalf("completed %d rows, want 6", n)
	}

	if _, err := UpdateCount(db, row.ID, 1); !errors.Is(err, ErrLocked) {
		t.Fatalf("got %v, want ErrLocked", err)
	}

	// reopening unfreezes the grid
	if _, err := SetCompleted(db, fx.department.ID, &p, false); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := UpdateCount(db, row.ID, 1); err != nil {
		t.Fatalf("update after reopen: %v", err)
	}
}

func TestUpdateCountUnknownRow(t *testing.T) {
	db := openTestDB(t)
	if _, err := UpdateCount(db, "bad", 1); !errors.Is(err, ErrBadID) {
		t.Fatalf("got %v, want ErrBadID", err)
	}
	if _, err := UpdateCount(db, "6f1c1f7e-0000-4000-8000-000000000000", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteByDepartmentScopedToPeriod(t *testing.T) {
	db := openTestDB(t)
	fx := seedCatalog(t, db)
	feb := Period{Month: 2, Year: 2024}
	mar := Period{Month: 3, Year: 2024}
	if err := Generate(db, fx.department.ID, feb); err != nil {
		t.Fatalf("generate feb: %v", err)
	}
	if err := Generate(db, fx.department.ID, mar); err != nil {
		t.Fatalf("generate mar: %v", err)
	}

	n, err := DeleteByDepartment(db, fx.department.ID, &feb)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 6 {
		t.Fatalf("deleted %d rows, want 6", n)
	}
	if got := len(reportRows(t, db, fx.department.ID, mar)); got != 6 {
		t.Fatalf("march lost rows: %d", got)
	}
}
