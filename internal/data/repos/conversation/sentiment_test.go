package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
)

func TestSentimentSnapshotRepoNewestFirstExcludingCurrent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSentimentSnapshotRepo(db, testutil.Logger(t))

	patient := uuid.New()
	other := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, r := range []float64{4.0, 3.5, 2.0, 1.5, 1.0} {
		testutil.SeedSnapshot(t, ctx, tx, patient, r, base.Add(time.Duration(i)*time.Minute))
	}
	testutil.SeedSnapshot(t, ctx, tx, other, 5.0, base.Add(time.Hour))
	current := testutil.SeedSnapshot(t, ctx, tx, patient, 1.2, base.Add(10*time.Minute))

	rows, err := repo.ListRecentByPatient(dbc, patient, 5, current.ID)
	if err != nil {
		t.Fatalf("ListRecentByPatient: %v", err)
	}
	want := []float64{1.0, 1.5, 2.0, 3.5, 4.0}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, row := range rows {
		if row.Rating != want[i] {
			t.Fatalf("row %d: got %v want %v", i, row.Rating, want[i])
		}
	}
}

func TestMessageRepoListByConversationOldestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMessageRepo(db, testutil.Logger(t))

	patient := uuid.New()
	conv := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testutil.SeedMessage(t, ctx, tx, patient, conv, types.SenderPatient, "first", base)
	testutil.SeedMessage(t, ctx, tx, patient, conv, types.SenderAI, "second", base.Add(time.Second))
	testutil.SeedMessage(t, ctx, tx, patient, conv, types.SenderPatient, "third", base.Add(2*time.Second))

	rows, err := repo.ListByConversation(dbc, conv, 2)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(rows) != 2 || rows[0].Content != "second" || rows[1].Content != "third" {
		t.Fatalf("unexpected tail: %+v", rows)
	}

	recent, err := repo.ListRecentByPatient(dbc, patient, 10)
	if err != nil {
		t.Fatalf("ListRecentByPatient: %v", err)
	}
	if len(recent) != 3 || recent[0].Content != "third" {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}
