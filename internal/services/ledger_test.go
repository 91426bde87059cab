package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

func seedLedger(t *testing.T, env *testEnv, userID *uint, n int) []*types.Recommendation {
	t.Helper()
	entries := make([]LedgerEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, LedgerEntry{
			UserID:  userID,
			PaperID: "P1",
			Reason:  recommend.ReasonPopular,
			Type:    types.RecommendationTypePopular,
		})
	}
	rows, err := env.ledger.Record(env.ctx, nil, entries)
	require.NoError(t, err)
	return rows
}

func TestLedgerUpdateStatusAppendsLog(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 0, nil)
	u := env.user(t, "hank")
	rec := seedLedger(t, env, &u.ID, 1)[0]

	// status is a free label: any known status may follow any other
	for _, status := range []string{"accepted", "pending", "Viewed"} {
		got, err := env.ledger.UpdateStatus(env.ctx, rec.ID, status, &u.ID)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(status), got.Status)
	}

	history, err := env.ledger.History(env.ctx, rec.ID, &u.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "accepted", history[0].Interaction)
	assert.Equal(t, "viewed", history[2].Interaction)
	require.NotNil(t, history[0].UserID)
	assert.Equal(t, u.ID, *history[0].UserID)

	stored, err := env.recRepo.GetByID(testDBC(env), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RecommendationStatusViewed, stored.Status)
}

func TestLedgerUpdateStatusRejects(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 0, nil)
	owner, other := env.user(t, "ivy"), env.user(t, "jack")
	rec := seedLedger(t, env, &owner.ID, 1)[0]

	_, err := env.ledger.UpdateStatus(env.ctx, rec.ID, "archived", &owner.ID)
	assert.ErrorIs(t, err, recommend.ErrInvalidStatus)

	_, err = env.ledger.UpdateStatus(env.ctx, rec.ID, "accepted", &other.ID)
	assert.ErrorIs(t, err, recommend.ErrRecommendationNotFound)

	_, err = env.ledger.UpdateStatus(env.ctx, 9999, "accepted", nil)
	assert.ErrorIs(t, err, recommend.ErrRecommendationNotFound)

	history, err := env.ledger.History(env.ctx, rec.ID, &owner.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = env.ledger.History(env.ctx, rec.ID, &other.ID)
	assert.ErrorIs(t, err, recommend.ErrRecommendationNotFound)
}

func TestLedgerUnownedRowsRejectUserUpdates(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 0, nil)
	u := env.user(t, "lena")
	rec := seedLedger(t, env, nil, 1)[0]

	_, err := env.ledger.UpdateStatus(env.ctx, rec.ID, "accepted", &u.ID)
	assert.ErrorIs(t, err, recommend.ErrRecommendationNotFound)
	_, err = env.ledger.History(env.ctx, rec.ID, &u.ID)
	assert.ErrorIs(t, err, recommend.ErrRecommendationNotFound)

	// the click hook is best effort: the action lands, the row does not move
	_, err = env.actions.Record(env.ctx, u.ID, ActionInput{
		PaperID:    "P1",
		ActionType: "click",
		ExtraData:  map[string]any{"recommendation_id": float64(rec.ID)},
	})
	require.NoError(t, err)
	stored, err := env.recRepo.GetByID(testDBC(env), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RecommendationStatusPending, stored.Status)

	got, err := env.ledger.UpdateStatus(env.ctx, rec.ID, "viewed", nil)
	require.NoError(t, err)
	assert.Equal(t, types.RecommendationStatusViewed, got.Status)
	history, err := env.ledger.History(env.ctx, rec.ID, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].UserID)
}

func TestLedgerQueryPaginates(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	env.paper(t, "P1", "", 0, nil)
	u := env.user(t, "kate")
	seedLedger(t, env, &u.ID, 5)
	seedLedger(t, env, nil, 2)

	page, err := env.ledger.Query(env.ctx, LedgerQuery{UserID: &u.ID, Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)

	all, err := env.ledger.Query(env.ctx, LedgerQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), all.Total)
	assert.Equal(t, defaultPageSize, all.Size)

	byType, err := env.ledger.Query(env.ctx, LedgerQuery{Type: types.RecommendationTypePopular, Status: types.RecommendationStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(7), byType.Total)
}

func TestLedgerQueryErrors(t *testing.T) {
	env := newTestEnv(t, recommend.DefaultPolicy())
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	cases := []struct {
		name string
		q    LedgerQuery
		want error
	}{
		{"negative page", LedgerQuery{Page: -1}, recommend.ErrInvalidPage},
		{"oversized page", LedgerQuery{Size: maxPageSize + 1}, recommend.ErrInvalidPage},
		{"page past offset range", LedgerQuery{Page: math.MaxInt64 / 2, Size: 10}, recommend.ErrInvalidPage},
		{"bad type", LedgerQuery{Type: "random"}, recommend.ErrInvalidType},
		{"bad status", LedgerQuery{Status: "archived"}, recommend.ErrInvalidStatus},
		{"inverted range", LedgerQuery{From: &now, To: &earlier}, recommend.ErrInvalidTimeRange},
		{"empty ledger", LedgerQuery{}, recommend.ErrNoRecords},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ledger.Query(env.ctx, tc.q)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
