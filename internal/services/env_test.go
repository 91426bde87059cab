package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	"github.com/yungbote/paperrec-backend/internal/data/repos/testutil"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

// testEnv wires every service over a private in-memory sqlite database.
type testEnv struct {
	ctx context.Context
	db  *gorm.DB

	profileRepo repos.UserProfileRepo
	paperRepo   repos.PaperRepo
	tagRepo     repos.TagRepo
	recRepo     repos.RecommendationRepo
	recLogRepo  repos.RecommendationLogRepo

	profiles  ProfileService
	ledger    LedgerService
	actions   ActionService
	recommend RecommendService
	catalog   CatalogService
}

func newTestEnv(t *testing.T, policy recommend.Policy) *testEnv {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)

	env := &testEnv{
		ctx:         context.Background(),
		db:          db,
		profileRepo: repos.NewUserProfileRepo(db, log),
		paperRepo:   repos.NewPaperRepo(db, log),
		tagRepo:     repos.NewTagRepo(db, log),
		recRepo:     repos.NewRecommendationRepo(db, log),
		recLogRepo:  repos.NewRecommendationLogRepo(db, log),
	}
	env.profiles = NewProfileService(db, log, env.profileRepo, env.paperRepo, nil, policy, 3)
	env.ledger = NewLedgerService(db, log, env.recRepo, env.recLogRepo)
	env.actions = NewActionService(db, log, repos.NewUserActionRepo(db, log), env.profiles, env.ledger)
	env.recommend = NewRecommendService(db, log, env.profileRepo, env.tagRepo, env.paperRepo, env.ledger, policy)
	env.catalog = NewCatalogService(db, log, repos.NewUserRepo(db, log), env.tagRepo, repos.NewUserTagRepo(db, log), env.paperRepo)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *types.User {
	return testutil.SeedUser(t, e.ctx, e.db, name)
}

func (e *testEnv) tag(t *testing.T, name string) *types.Tag {
	return testutil.SeedTag(t, e.ctx, e.db, name, 0)
}

func (e *testEnv) paper(t *testing.T, id, subject string, popularity int, published *time.Time, tags ...*types.Tag) *types.Paper {
	return testutil.SeedPaper(t, e.ctx, e.db, id, subject, popularity, published, tags...)
}

func (e *testEnv) profile(t *testing.T, userID uint, tagIDs ...uint) *types.UserProfile {
	return testutil.SeedProfile(t, e.ctx, e.db, userID, tagIDs...)
}

func paperIDsOf(res *RecommendResult) []string {
	out := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, it.Paper.ID)
	}
	return out
}

func testDBC(e *testEnv) dbctx.Context { return dbctx.Context{Ctx: e.ctx} }
