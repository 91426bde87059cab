package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/paperrec-backend/internal/data/repos/testutil"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
)

func TestRecommendationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "ledgeruser")
	paper := testutil.SeedPaper(t, ctx, tx, "rec-1", "cs.AI", 3, nil)

	repo := NewRecommendationRepo(db, testutil.Logger(t))
	logs := NewRecommendationLogRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Recommendation{
		{UserID: testutil.PtrUint(u.ID), PaperID: paper.ID, Paper: paper, Reason: "r", RecommendationType: types.RecommendationTypeContentBased, Status: types.RecommendationStatusPending},
		{UserID: testutil.PtrUint(u.ID), PaperID: "gone", Reason: "r", RecommendationType: types.RecommendationTypePopular, Status: types.RecommendationStatusPending},
		{PaperID: paper.ID, Reason: "r", RecommendationType: types.RecommendationTypePopular, Status: types.RecommendationStatusPending},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created[0].ID == 0 {
		t.Fatalf("Create: expected id assigned")
	}

	uid := u.ID
	rows, total, err := repo.Query(dbc, Filter{UserID: &uid}, 0, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("Query: total=%d rows=%d", total, len(rows))
	}
	for _, r := range rows {
		if r.PaperID == "gone" && r.Paper != nil {
			t.Fatalf("Query: dangling paper should stay nil")
		}
		if r.PaperID == paper.ID && (r.Paper == nil || r.Paper.Title != paper.Title) {
			t.Fatalf("Query: paper not preloaded: %+v", r.Paper)
		}
	}

	rows, total, err = repo.Query(dbc, Filter{UserID: &uid, Type: types.RecommendationTypePopular}, 0, 10)
	if err != nil || total != 1 || rows[0].PaperID != "gone" {
		t.Fatalf("Query (type): %d %v", total, err)
	}

	future := time.Now().UTC().Add(time.Hour)
	_, total, err = repo.Query(dbc, Filter{UserID: &uid, CreatedFrom: &future}, 0, 10)
	if err != nil || total != 0 {
		t.Fatalf("Query (range): %d %v", total, err)
	}

	ok, err := repo.UpdateStatus(dbc, created[0].ID, types.RecommendationStatusAccepted)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus: %v %v", ok, err)
	}
	ok, err = repo.UpdateStatus(dbc, 999999, types.RecommendationStatusAccepted)
	if err != nil || ok {
		t.Fatalf("UpdateStatus (missing): %v %v", ok, err)
	}
	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil || got.Status != types.RecommendationStatusAccepted {
		t.Fatalf("GetByID: %+v %v", got, err)
	}

	if _, err := logs.Create(dbc, []*types.RecommendationLog{{
		RecommendationID: got.ID, UserID: got.UserID, Interaction: types.RecommendationStatusAccepted, Timestamp: time.Now().UTC(),
	}}); err != nil {
		t.Fatalf("log Create: %v", err)
	}
	trail, err := logs.ListByRecommendation(dbc, got.ID)
	if err != nil || len(trail) != 1 {
		t.Fatalf("ListByRecommendation: %d %v", len(trail), err)
	}
}
