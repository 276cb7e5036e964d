package care

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/aura-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
)

func TestDoctorAssignmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDoctorAssignmentRepo(db, testutil.Logger(t))

	patient := testutil.SeedUser(t, ctx, tx, "Pat", types.RolePatient)
	older := testutil.SeedUser(t, ctx, tx, "Dr Old", types.RoleDoctor)
	newer := testutil.SeedUser(t, ctx, tx, "Dr New", types.RoleDoctor)
	retired := testutil.SeedUser(t, ctx, tx, "Dr Gone", types.RoleDoctor)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedAssignment(t, ctx, tx, older.ID, patient.ID, true, base)
	testutil.SeedAssignment(t, ctx, tx, newer.ID, patient.ID, true, base.Add(time.Hour))
	testutil.SeedAssignment(t, ctx, tx, retired.ID, patient.ID, false, base.Add(2*time.Hour))

	rows, err := repo.ListActiveByPatient(dbc, patient.ID)
	if err != nil {
		t.Fatalf("ListActiveByPatient: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 active rows, got %d", len(rows))
	}
	if rows[0].DoctorID != newer.ID {
		t.Fatalf("expected most recent assignment first")
	}

	ok, err := repo.IsActivePair(dbc, retired.ID, patient.ID)
	if err != nil || ok {
		t.Fatalf("IsActivePair(retired) = %v, %v", ok, err)
	}
	ids, err := repo.ListActivePatientIDs(dbc, older.ID)
	if err != nil || len(ids) != 1 || ids[0] != patient.ID {
		t.Fatalf("ListActivePatientIDs = %v, %v", ids, err)
	}
}
