package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/paperrec-backend/internal/data/repos/testutil"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
)

func paperIDs(ps []*types.Paper) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func sameIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestPaperRepoRankOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	ml := testutil.SeedTag(t, ctx, tx, "rank-ml", 0)
	testutil.SeedPaper(t, ctx, tx, "r-nodate", "cs.LG", 5, nil, ml)
	testutil.SeedPaper(t, ctx, tx, "r-old", "cs.LG", 5, testutil.Day(2020, 1, 1), ml)
	testutil.SeedPaper(t, ctx, tx, "r-new", "cs.LG", 5, testutil.Day(2023, 1, 1), ml)
	testutil.SeedPaper(t, ctx, tx, "r-top", "cs.LG", 9, nil, ml)

	repo := NewPaperRepo(db, testutil.Logger(t))
	got, err := repo.ListByAnyTag(dbc, []uint{ml.ID}, 0, 0)
	if err != nil {
		t.Fatalf("ListByAnyTag: %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "r-top", "r-new", "r-old", "r-nodate") {
		t.Fatalf("ListByAnyTag order: %v", ids)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0].ID != ml.ID {
		t.Fatalf("ListByAnyTag tags: %+v", got[0].Tags)
	}
}

func TestPaperRepoRankOrderMixedOffsets(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	plus8 := time.FixedZone("UTC+8", 8*60*60)
	// 02:00Z written with a +08:00 offset sorts lexically after 05:00Z unless stored in UTC
	testutil.SeedPaper(t, ctx, tx, "tz-early", "tz.ST", 5, testutil.PtrTime(time.Date(2024, 1, 1, 10, 0, 0, 0, plus8)))
	testutil.SeedPaper(t, ctx, tx, "tz-late", "tz.ST", 5, testutil.PtrTime(time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)))

	repo := NewPaperRepo(db, testutil.Logger(t))
	got, err := repo.ListPopular(dbc, "tz.st", 1)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "tz-late") {
		t.Fatalf("ListPopular order: %v", ids)
	}
}

func TestPaperRepoRankOrderComparesIDsBytewise(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedPaper(t, ctx, tx, "id-alpha", "idcase.ST", 3, nil)
	testutil.SeedPaper(t, ctx, tx, "id-Beta", "idcase.ST", 3, nil)
	testutil.SeedPaper(t, ctx, tx, "id_gamma", "idcase.ST", 3, nil)

	repo := NewPaperRepo(db, testutil.Logger(t))
	got, err := repo.ListPopular(dbc, "idcase.st", 0)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	// '-' < '_' and 'B' < 'a' in byte order
	if ids := paperIDs(got); !sameIDs(ids, "id-Beta", "id-alpha", "id_gamma") {
		t.Fatalf("ListPopular order: %v", ids)
	}
}

func TestRankOrderByDialect(t *testing.T) {
	if got := RankOrder("postgres"); got != `popularity DESC, (published_date IS NULL) ASC, published_date DESC, id COLLATE "C" ASC` {
		t.Fatalf("postgres order: %s", got)
	}
	if got := RankOrder("sqlite"); got != "popularity DESC, (published_date IS NULL) ASC, published_date DESC, id ASC" {
		t.Fatalf("sqlite order: %s", got)
	}
}

func TestPaperRepoListByAnyTagDistinctAndRequired(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	a := testutil.SeedTag(t, ctx, tx, "any-a", 0)
	b := testutil.SeedTag(t, ctx, tx, "any-b", 0)
	c := testutil.SeedTag(t, ctx, tx, "any-c", 0)
	testutil.SeedPaper(t, ctx, tx, "d-ab", "", 3, nil, a, b)
	testutil.SeedPaper(t, ctx, tx, "d-bc", "", 2, nil, b, c)
	testutil.SeedPaper(t, ctx, tx, "d-c", "", 1, nil, c)

	repo := NewPaperRepo(db, testutil.Logger(t))

	got, err := repo.ListByAnyTag(dbc, []uint{a.ID, b.ID}, 0, 0)
	if err != nil {
		t.Fatalf("ListByAnyTag: %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "d-ab", "d-bc") {
		t.Fatalf("expected each paper once: %v", ids)
	}

	got, err = repo.ListByAnyTag(dbc, []uint{a.ID, b.ID}, c.ID, 0)
	if err != nil {
		t.Fatalf("ListByAnyTag (required): %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "d-bc") {
		t.Fatalf("required tag filter: %v", ids)
	}

	got, err = repo.ListByAnyTag(dbc, []uint{a.ID, b.ID}, 0, 1)
	if err != nil {
		t.Fatalf("ListByAnyTag (limit): %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "d-ab") {
		t.Fatalf("limit: %v", ids)
	}

	got, err = repo.ListByAnyTag(dbc, nil, 0, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty tag set: %v %v", got, err)
	}
}

func TestPaperRepoListPopular(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedPaper(t, ctx, tx, "p-ml", "Machine Learning (cs.LG)", 9, nil)
	testutil.SeedPaper(t, ctx, tx, "p-cv", "Computer Vision (cs.CV)", 8, nil)
	testutil.SeedPaper(t, ctx, tx, "p-pct", "100% Learning_rates", 1, nil)

	repo := NewPaperRepo(db, testutil.Logger(t))

	got, err := repo.ListPopular(dbc, "machine learning", 10)
	if err != nil {
		t.Fatalf("ListPopular: %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "p-ml") {
		t.Fatalf("case-insensitive subject match: %v", ids)
	}

	got, err = repo.ListPopular(dbc, "0% learning_", 10)
	if err != nil {
		t.Fatalf("ListPopular (escaped): %v", err)
	}
	if ids := paperIDs(got); !sameIDs(ids, "p-pct") {
		t.Fatalf("wildcards must match literally: %v", ids)
	}

	got, err = repo.ListPopular(dbc, "", 2)
	if err != nil {
		t.Fatalf("ListPopular (all): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit: got %d", len(got))
	}
}

func TestPaperRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	tag := testutil.SeedTag(t, ctx, tx, "create-nlp", 0)
	repo := NewPaperRepo(db, testutil.Logger(t))

	_, err := repo.Create(dbc, []*types.Paper{{ID: "c-1", Title: "t", Tags: []types.Tag{*tag}}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(dbc, "c-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || len(got.Tags) != 1 || got.Tags[0].Name != "create-nlp" {
		t.Fatalf("GetByID: unexpected %+v", got)
	}
	ids, err := repo.TagIDs(dbc, "c-1")
	if err != nil || len(ids) != 1 || ids[0] != tag.ID {
		t.Fatalf("TagIDs: %v %v", ids, err)
	}
	missing, err := repo.GetByID(dbc, "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): %v %v", missing, err)
	}
}
