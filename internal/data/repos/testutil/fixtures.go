package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/paperrec-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{Username: username, Nickname: username}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, popularity int) *types.Tag {
	tb.Helper()
	t := &types.Tag{Name: name, Popularity: popularity}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return t
}

// SeedPaper inserts a paper and links it to tags.
func SeedPaper(tb testing.TB, ctx context.Context, tx *gorm.DB, id, subject string, popularity int, published *time.Time, tags ...*types.Tag) *types.Paper {
	tb.Helper()
	p := &types.Paper{
		ID:             id,
		Title:          "paper " + id,
		PrimarySubject: subject,
		Popularity:     popularity,
		PublishedDate:  published,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed paper: %v", err)
	}
	for _, t := range tags {
		if err := tx.WithContext(ctx).Create(&types.PaperTag{PaperID: id, TagID: t.ID}).Error; err != nil {
			tb.Fatalf("seed paper tag: %v", err)
		}
		p.Tags = append(p.Tags, *t)
	}
	return p
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, tagIDs ...uint) *types.UserProfile {
	tb.Helper()
	p := &types.UserProfile{UserID: userID, LastUpdated: time.Now().UTC()}
	p.SetPreferredTags(tagIDs)
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func PtrTime(v time.Time) *time.Time { return &v }

func PtrUint(v uint) *uint { return &v }

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) *time.Time {
	return PtrTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
