package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/db"
	"github.com/yungbote/paperrec-backend/internal/data/repos"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/platform/validate"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

type PaperInput struct {
	ID             string     `json:"id" validate:"required,max=100"`
	Title          string     `json:"title" validate:"required,max=500"`
	Abstract       string     `json:"abstract"`
	Authors        string     `json:"authors"`
	PublishedDate  *time.Time `json:"published_date"`
	SourceURL      string     `json:"source" validate:"omitempty,max=500"`
	PrimarySubject string     `json:"primary_subject" validate:"max=500"`
	Subjects       string     `json:"subjects" validate:"max=1000"`
	Popularity     int        `json:"popularity" validate:"gte=0"`
	TagIDs         []uint     `json:"tag_ids"`
}

type TagInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

type CatalogService interface {
	CreateTag(ctx context.Context, in TagInput) (*types.Tag, error)
	GetTag(ctx context.Context, id uint) (*types.Tag, error)
	ListTags(ctx context.Context, page, size int) (*Page[*types.Tag], error)
	CreatePaper(ctx context.Context, in PaperInput) (*types.Paper, error)
	GetPaper(ctx context.Context, id string) (*types.Paper, error)
	ListPapers(ctx context.Context, page, size int) (*Page[*types.Paper], error)
	// SetUserTags replaces the tags a user picked explicitly.
	SetUserTags(ctx context.Context, userID uint, tagIDs []uint) ([]*types.Tag, error)
	UserTags(ctx context.Context, userID uint) ([]*types.Tag, error)
	// RecomputeTagPopularity sets each tag's popularity to the number of preference
	// actions (like, favorite) on papers carrying it. Returns the number of tags touched.
	RecomputeTagPopularity(ctx context.Context) (int64, error)
}

type catalogService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	tags     repos.TagRepo
	userTags repos.UserTagRepo
	papers   repos.PaperRepo
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo, tags repos.TagRepo, userTags repos.UserTagRepo, papers repos.PaperRepo) CatalogService {
	return &catalogService{
		db:       db,
		log:      baseLog.With("service", "CatalogService"),
		users:    users,
		tags:     tags,
		userTags: userTags,
		papers:   papers,
	}
}

func (s *catalogService) CreateTag(ctx context.Context, in TagInput) (*types.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	created, err := s.tags.Create(dbctx.Context{Ctx: ctx}, []*types.Tag{{Name: in.Name}})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: tag %q already exists", apierr.ErrConflict, in.Name)
		}
		return nil, err
	}
	return created[0], nil
}

func (s *catalogService) GetTag(ctx context.Context, id uint) (*types.Tag, error) {
	t, err := s.tags.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, recommend.ErrTagNotFound
	}
	return t, nil
}

func (s *catalogService) ListTags(ctx context.Context, page, size int) (*Page[*types.Tag], error) {
	size, err := pageBounds(page, size)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.tags.List(dbctx.Context{Ctx: ctx}, page*size, size)
	if err != nil {
		return nil, err
	}
	return &Page[*types.Tag]{Items: rows, Total: total, Page: page, Size: size}, nil
}

func (s *catalogService) CreatePaper(ctx context.Context, in PaperInput) (*types.Paper, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if in.PublishedDate != nil {
		utc := in.PublishedDate.UTC()
		in.PublishedDate = &utc
	}
	var out *types.Paper
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		tags, err := s.resolveTags(dbc, in.TagIDs)
		if err != nil {
			return err
		}
		p := &types.Paper{
			ID:             in.ID,
			Title:          strings.TrimSpace(in.Title),
			Abstract:       in.Abstract,
			Authors:        in.Authors,
			PublishedDate:  in.PublishedDate,
			SourceURL:      in.SourceURL,
			PrimarySubject: in.PrimarySubject,
			Subjects:       in.Subjects,
			Popularity:     in.Popularity,
		}
		for _, t := range tags {
			p.Tags = append(p.Tags, *t)
		}
		if _, err := s.papers.Create(dbc, []*types.Paper{p}); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: paper %q already exists", apierr.ErrConflict, in.ID)
			}
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) GetPaper(ctx context.Context, id string) (*types.Paper, error) {
	p, err := s.papers.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, recommend.ErrPaperNotFound
	}
	return p, nil
}

func (s *catalogService) ListPapers(ctx context.Context, page, size int) (*Page[*types.Paper], error) {
	size, err := pageBounds(page, size)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.papers.List(dbctx.Context{Ctx: ctx}, page*size, size)
	if err != nil {
		return nil, err
	}
	return &Page[*types.Paper]{Items: rows, Total: total, Page: page, Size: size}, nil
}

func (s *catalogService) SetUserTags(ctx context.Context, userID uint, tagIDs []uint) ([]*types.Tag, error) {
	if userID == 0 {
		return nil, apierr.ErrUnauthorized
	}
	var out []*types.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		tags, err := s.resolveTags(dbc, tagIDs)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(tags))
		for _, t := range tags {
			ids = append(ids, t.ID)
		}
		if err := s.userTags.Replace(dbc, userID, ids); err != nil {
			return err
		}
		if err := s.users.SetHasSelectedTags(dbc, userID, len(ids) > 0); err != nil {
			return err
		}
		out = tags
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) UserTags(ctx context.Context, userID uint) ([]*types.Tag, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := s.userTags.ListTagIDs(dbc, userID)
	if err != nil {
		return nil, err
	}
	return s.tags.GetByIDs(dbc, ids)
}

func (s *catalogService) RecomputeTagPopularity(ctx context.Context) (int64, error) {
	dbc := dbctx.Context{Ctx: ctx}
	counts, err := s.tags.CountActionsByTag(dbc, []string{types.ActionLike, types.ActionFavorite})
	if err != nil {
		return 0, err
	}
	n, err := s.tags.SetPopularity(dbc, counts)
	if err != nil {
		return 0, err
	}
	s.log.Info("tag popularity recomputed", "tags_with_actions", len(counts), "rows_updated", n)
	return n, nil
}

// resolveTags loads tagIDs, deduplicated, and fails with ErrTagNotFound on any unknown id.
func (s *catalogService) resolveTags(dbc dbctx.Context, tagIDs []uint) ([]*types.Tag, error) {
	seen := make(map[uint]struct{}, len(tagIDs))
	ids := make([]uint, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []*types.Tag{}, nil
	}
	tags, err := s.tags.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d tag ids unknown", recommend.ErrTagNotFound, len(ids)-len(tags), len(ids))
	}
	return tags, nil
}

// pageBounds resolves the page size and keeps page*size inside int32 so the
// offset handed to the database cannot overflow.
func pageBounds(page, size int) (int, error) {
	if size == 0 {
		size = defaultPageSize
	}
	if page < 0 || size < 1 || size > maxPageSize || page > math.MaxInt32/size {
		return 0, fmt.Errorf("%w: page=%d size=%d", recommend.ErrInvalidPage, page, size)
	}
	return size, nil
}
