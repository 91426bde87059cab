package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/paperrec-backend/internal/data/repos/testutil"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/pointers"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

func TestRecommendPersonalizedRanksByPopularity(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	t5, t7 := env.tag(t, "t5"), env.tag(t, "t7")
	env.paper(t, "P1", "", 10, nil, t5)
	env.paper(t, "P2", "", 20, nil, t5)
	env.paper(t, "P3", "", 99, nil, t7)
	u := env.user(t, "alice")
	env.profile(t, u.ID, t5.ID)

	res, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePersonalized})
	require.NoError(t, err)
	assert.Equal(t, recommend.ModePersonalized, res.Mode)
	assert.Equal(t, []string{"P2", "P1"}, paperIDsOf(res))
	for _, it := range res.Items {
		assert.Equal(t, types.RecommendationTypeContentBased, it.RecommendationType)
		assert.Equal(t, recommend.ReasonPersonalized, it.Reason)
		assert.NotZero(t, it.RecommendationID)
	}
}

func TestRecommendPopularBreaksTiesByPublishDate(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 5, testutil.Day(2023, time.January, 1))
	env.paper(t, "P2", "", 5, testutil.Day(2024, time.January, 1))
	env.paper(t, "P3", "", 1, testutil.Day(2025, time.January, 1))
	u := env.user(t, "bob")

	res, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePopular, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, recommend.ModePopular, res.Mode)
	assert.Equal(t, []string{"P2", "P1"}, paperIDsOf(res))
	for _, it := range res.Items {
		assert.Equal(t, types.RecommendationTypePopular, it.RecommendationType)
		assert.Equal(t, recommend.ReasonPopular, it.Reason)
	}
}

func TestRecommendPublishDateTieBreakAcrossTimeZones(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	shanghai := time.FixedZone("UTC+8", 8*60*60)
	early := time.Date(2024, time.January, 1, 10, 0, 0, 0, shanghai) // 02:00Z
	late := time.Date(2024, time.January, 1, 5, 0, 0, 0, time.UTC)

	_, err := env.catalog.CreatePaper(env.ctx, PaperInput{ID: "P1", Title: "early", PublishedDate: &early, Popularity: 5})
	require.NoError(t, err)
	_, err = env.catalog.CreatePaper(env.ctx, PaperInput{ID: "P2", Title: "late", PublishedDate: &late, Popularity: 5})
	require.NoError(t, err)

	res, err := env.recommend.Preview(env.ctx, RecommendRequest{Mode: recommend.ModePopular, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, paperIDsOf(res))

	stored, err := env.catalog.GetPaper(env.ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, stored.PublishedDate)
	assert.True(t, stored.PublishedDate.Equal(early))
}

func TestRecommendUnknownTagFilter(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	t5 := env.tag(t, "t5")
	u := env.user(t, "carol")
	env.profile(t, u.ID, t5.ID)

	for _, mode := range []recommend.Mode{recommend.ModePersonalized, recommend.ModePopular} {
		_, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: mode, TagID: pointers.Uint(4242)})
		assert.ErrorIs(t, err, recommend.ErrTagNotFound, "mode=%s", mode)
		assert.ErrorIs(t, err, apierr.ErrNotFound, "mode=%s", mode)
	}
}

func TestRecommendTagFilterNarrowsBothModes(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	ml, cv := env.tag(t, "Machine Learning"), env.tag(t, "Vision")
	env.paper(t, "A", "Computer Vision", 50, nil, cv)
	env.paper(t, "B", "Machine Learning (cs.LG)", 10, nil, ml, cv)
	env.paper(t, "C", "Machine Learning (stat.ML)", 5, nil, ml)
	u := env.user(t, "dave")
	env.profile(t, u.ID, ml.ID, cv.ID)

	res, err := env.recommend.Preview(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePersonalized, TagID: &cv.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, paperIDsOf(res))

	res, err = env.recommend.Preview(env.ctx, RecommendRequest{Mode: recommend.ModePopular, TagID: &ml.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, paperIDsOf(res))
}

func TestRecommendProfileErrors(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	u := env.user(t, "erin")

	_, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePersonalized})
	assert.ErrorIs(t, err, recommend.ErrProfileNotFound)

	env.profile(t, u.ID)
	_, err = env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID})
	assert.ErrorIs(t, err, recommend.ErrNoPreferences)
}

func TestRecommendAnonymousAndAutoFallBackToPopular(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 3, nil)
	env.paper(t, "P2", "", 7, nil)
	u := env.user(t, "frank")

	anon, err := env.recommend.Recommend(env.ctx, RecommendRequest{Mode: recommend.ModePersonalized})
	require.NoError(t, err)
	assert.Equal(t, recommend.ModePopular, anon.Mode)
	assert.Equal(t, []string{"P2", "P1"}, paperIDsOf(anon))

	auto, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModeAuto})
	require.NoError(t, err)
	assert.Equal(t, recommend.ModePopular, auto.Mode)

	var rows []*types.Recommendation
	require.NoError(t, env.db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Nil(t, row.UserID, "popular row %d", row.ID)
	}
}

func TestRecommendLedgerOwnerFollowsMode(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	t5 := env.tag(t, "t5")
	env.paper(t, "P1", "", 4, nil, t5)
	u := env.user(t, "olga")
	env.profile(t, u.ID, t5.ID)

	personal, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePersonalized})
	require.NoError(t, err)
	popular, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Mode: recommend.ModePopular})
	require.NoError(t, err)
	require.Len(t, personal.Items, 1)
	require.Len(t, popular.Items, 1)

	rec, err := env.recRepo.GetByID(testDBC(env), personal.Items[0].RecommendationID)
	require.NoError(t, err)
	require.NotNil(t, rec.UserID)
	assert.Equal(t, u.ID, *rec.UserID)

	rec, err = env.recRepo.GetByID(testDBC(env), popular.Items[0].RecommendationID)
	require.NoError(t, err)
	assert.Nil(t, rec.UserID)
	assert.Equal(t, types.RecommendationTypePopular, rec.RecommendationType)
}

func TestRecommendRecordsPendingRowsPreviewDoesNot(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	t5 := env.tag(t, "t5")
	env.paper(t, "P1", "", 1, nil, t5)
	env.paper(t, "P2", "", 2, nil, t5)
	u := env.user(t, "gina")
	env.profile(t, u.ID, t5.ID)

	preview, err := env.recommend.Preview(env.ctx, RecommendRequest{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, preview.Items, 2)
	assert.Zero(t, preview.Items[0].RecommendationID)

	var count int64
	require.NoError(t, env.db.Model(&types.Recommendation{}).Count(&count).Error)
	assert.Zero(t, count)

	res, err := env.recommend.Recommend(env.ctx, RecommendRequest{UserID: u.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	rec, err := env.recRepo.GetByID(testDBC(env), res.Items[0].RecommendationID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "P2", rec.PaperID)
	assert.Equal(t, types.RecommendationStatusPending, rec.Status)
	assert.Equal(t, 0, rec.Priority)
	assert.JSONEq(t, `{"mode":"personalized","limit":1,"rank":1}`, string(rec.ExtraData))
}

func TestRecommendRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	for _, limit := range []int{-1, 51} {
		_, err := env.recommend.Recommend(env.ctx, RecommendRequest{Mode: recommend.ModePopular, Limit: limit})
		assert.ErrorIs(t, err, recommend.ErrInvalidLimit, "limit=%d", limit)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	res, err := env.recommend.Recommend(env.ctx, RecommendRequest{Mode: recommend.ModePopular})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
