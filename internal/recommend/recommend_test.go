package recommend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func paper(id string, popularity int, published *time.Time, tagIDs ...uint) *types.Paper {
	p := &types.Paper{ID: id, Popularity: popularity, PublishedDate: published}
	for _, tid := range tagIDs {
		p.Tags = append(p.Tags, types.Tag{ID: tid})
	}
	return p
}

func ids(rs []Ranked) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Paper.ID)
	}
	return out
}

func profileWith(userID uint, tags ...uint) *types.UserProfile {
	p := &types.UserProfile{UserID: userID}
	p.SetPreferredTags(tags)
	return p
}

func TestRankPersonalizedScenario(t *testing.T) {
	catalog := []*types.Paper{
		paper("P1", 10, nil, 5),
		paper("P2", 20, nil, 5),
		paper("P3", 99, nil, 7),
	}
	got := Rank(Selection{Mode: ModePersonalized, PreferredTags: []uint{5}, Limit: 10}, catalog, DefaultPolicy())

	assert.Equal(t, []string{"P2", "P1"}, ids(got))
	for _, r := range got {
		assert.Equal(t, ReasonPersonalized, r.Reason)
		assert.Equal(t, types.RecommendationTypeContentBased, r.RecommendationType)
	}
}

func TestRankPopularTieBreakByDate(t *testing.T) {
	catalog := []*types.Paper{
		paper("P1", 5, day(2020, 1, 1)),
		paper("P2", 5, day(2022, 6, 1)),
		paper("P3", 1, day(2024, 1, 1)),
	}
	got := Rank(Selection{Mode: ModePopular, Limit: 2}, catalog, DefaultPolicy())

	assert.Equal(t, []string{"P2", "P1"}, ids(got))
	assert.Equal(t, ReasonPopular, got[0].Reason)
	assert.Equal(t, types.RecommendationTypePopular, got[0].RecommendationType)
}

func TestRankTotalOrder(t *testing.T) {
	catalog := []*types.Paper{
		paper("b", 3, nil),
		paper("a", 3, nil),
		paper("c", 3, day(2000, 1, 1)),
		paper("d", 4, nil),
	}
	first := ids(Rank(Selection{Mode: ModePopular, Limit: 10}, catalog, DefaultPolicy()))
	reversed := []*types.Paper{catalog[3], catalog[2], catalog[1], catalog[0]}
	second := ids(Rank(Selection{Mode: ModePopular, Limit: 10}, reversed, DefaultPolicy()))

	assert.Equal(t, []string{"d", "c", "a", "b"}, first)
	assert.Equal(t, first, second)
}

func TestRankDedupesAndTruncates(t *testing.T) {
	p := paper("dup", 9, nil, 1, 2)
	catalog := []*types.Paper{p, p, paper("x", 1, nil, 2), paper("y", 0, nil, 1)}

	got := Rank(Selection{Mode: ModePersonalized, PreferredTags: []uint{1, 2}, Limit: 10}, catalog, DefaultPolicy())
	assert.Equal(t, []string{"dup", "x", "y"}, ids(got))

	got = Rank(Selection{Mode: ModePersonalized, PreferredTags: []uint{1, 2}, Limit: 2}, catalog, DefaultPolicy())
	assert.Len(t, got, 2)

	got = Rank(Selection{Mode: ModePopular, Limit: 50}, catalog[:1], DefaultPolicy())
	assert.Len(t, got, 1, "never padded")
}

func TestRankFilters(t *testing.T) {
	catalog := []*types.Paper{
		{ID: "ml", PrimarySubject: "Machine Learning (cs.LG)", Tags: []types.Tag{{ID: 1}, {ID: 2}}},
		{ID: "cv", PrimarySubject: "Computer Vision (cs.CV)", Tags: []types.Tag{{ID: 1}}},
	}
	filter := &types.Tag{ID: 2, Name: "machine learning"}

	personal := Rank(Selection{Mode: ModePersonalized, PreferredTags: []uint{1}, FilterTag: filter, Limit: 10}, catalog, DefaultPolicy())
	assert.Equal(t, []string{"ml"}, ids(personal))

	popular := Rank(Selection{Mode: ModePopular, FilterTag: &types.Tag{ID: 99, Name: "VISION"}, Limit: 10}, catalog, DefaultPolicy())
	assert.Equal(t, []string{"cv"}, ids(popular), "popular mode matches tag name against the subject text")
}

func TestSelectMode(t *testing.T) {
	empty := profileWith(1)
	full := profileWith(1, 3)

	cases := []struct {
		name          string
		requested     Mode
		authenticated bool
		profile       *types.UserProfile
		want          Mode
		wantErr       error
	}{
		{"anonymous always popular", ModePersonalized, false, full, ModePopular, nil},
		{"explicit popular", ModePopular, true, full, ModePopular, nil},
		{"personalized", ModePersonalized, true, full, ModePersonalized, nil},
		{"personalized without profile", ModePersonalized, true, nil, "", ErrProfileNotFound},
		{"personalized with empty profile", ModePersonalized, true, empty, "", ErrNoPreferences},
		{"auto with preferences", ModeAuto, true, full, ModePersonalized, nil},
		{"auto without profile", ModeAuto, true, nil, ModePopular, nil},
		{"auto with empty profile", ModeAuto, true, empty, ModePopular, nil},
		{"unknown", Mode("weird"), true, full, "", ErrInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectMode(tc.requested, tc.authenticated, tc.profile)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModeErrorsMapToTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrProfileNotFound, apierr.ErrNotFound))
	assert.True(t, errors.Is(ErrTagNotFound, apierr.ErrNotFound))
	assert.True(t, errors.Is(ErrNoPreferences, apierr.ErrInvalidArgument))
	assert.True(t, errors.Is(ErrInvalidLimit, apierr.ErrInvalidArgument))
	assert.True(t, errors.Is(ErrProfileConflict, apierr.ErrConflict))
	assert.False(t, errors.Is(ErrNoRecords, apierr.ErrInvalidArgument))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Auto ")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Mode(""), m)

	_, err = ParseMode("collaborative")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
