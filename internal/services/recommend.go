package services

import (
	"context"
	"encoding/json"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/platform/pointers"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

type RecommendRequest struct {
	// UserID is 0 for anonymous callers.
	UserID uint
	Mode   recommend.Mode
	// TagID is the optional tag filter.
	TagID *uint
	// Limit 0 means the policy default.
	Limit int
}

type RecommendedPaper struct {
	// RecommendationID is 0 for previews.
	RecommendationID   uint         `json:"recommendation_id,omitempty"`
	Paper              *types.Paper `json:"paper"`
	Reason             string       `json:"reason"`
	RecommendationType string       `json:"recommendation_type"`
}

type RecommendResult struct {
	Mode  recommend.Mode     `json:"mode"`
	Items []RecommendedPaper `json:"items"`
}

type RecommendService interface {
	// Recommend ranks papers and records one pending ledger row per returned paper.
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error)
	// Preview ranks exactly like Recommend but writes nothing.
	Preview(ctx context.Context, req RecommendRequest) (*RecommendResult, error)
}

type recommendService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.UserProfileRepo
	tags     repos.TagRepo
	papers   repos.PaperRepo
	ledger   LedgerService
	policy   recommend.Policy
}

func NewRecommendService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profiles repos.UserProfileRepo,
	tags repos.TagRepo,
	papers repos.PaperRepo,
	ledger LedgerService,
	policy recommend.Policy,
) RecommendService {
	return &recommendService{
		db:       db,
		log:      baseLog.With("service", "RecommendService"),
		profiles: profiles,
		tags:     tags,
		papers:   papers,
		ledger:   ledger,
		policy:   policy,
	}
}

func (s *recommendService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	return s.run(ctx, req, true)
}

func (s *recommendService) Preview(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	return s.run(ctx, req, false)
}

func (s *recommendService) run(ctx context.Context, req RecommendRequest, persist bool) (res *RecommendResult, err error) {
	ctx, span := observability.StartSpan(ctx, "RecommendService", "Recommend",
		attribute.Bool("persist", persist),
		attribute.String("requested_mode", string(req.Mode)),
	)
	defer func() { observability.EndSpan(span, err) }()

	limit, err := s.policy.ResolveLimit(req.Limit)
	if err != nil {
		return nil, err
	}
	requested := req.Mode
	if requested == "" {
		requested = s.policy.DefaultMode
	}

	// The profile and the filter tag are independent reads.
	var (
		profile *types.UserProfile
		filter  *types.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	if req.UserID != 0 && requested != recommend.ModePopular {
		g.Go(func() error {
			p, err := s.profiles.GetByUserID(dbctx.Context{Ctx: gctx}, req.UserID)
			profile = p
			return err
		})
	}
	if req.TagID != nil {
		g.Go(func() error {
			t, err := s.tags.GetByID(dbctx.Context{Ctx: gctx}, *req.TagID)
			if err != nil {
				return err
			}
			if t == nil {
				return recommend.ErrTagNotFound
			}
			filter = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mode, err := recommend.SelectMode(requested, req.UserID != 0, profile)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("mode", string(mode)))

	sel := recommend.Selection{Mode: mode, Limit: limit, FilterTag: filter}
	var catalog []*types.Paper
	dbc := dbctx.Context{Ctx: ctx}
	if mode == recommend.ModePersonalized {
		sel.PreferredTags = profile.PreferredTags()
		var required uint
		if filter != nil {
			required = filter.ID
		}
		catalog, err = s.papers.ListByAnyTag(dbc, sel.PreferredTags, required, limit)
	} else {
		subject := ""
		if filter != nil {
			subject = filter.Name
		}
		catalog, err = s.papers.ListPopular(dbc, subject, limit)
	}
	if err != nil {
		return nil, err
	}

	ranked := recommend.Rank(sel, catalog, s.policy)
	out := &RecommendResult{Mode: mode, Items: make([]RecommendedPaper, 0, len(ranked))}
	for _, r := range ranked {
		out.Items = append(out.Items, RecommendedPaper{Paper: r.Paper, Reason: r.Reason, RecommendationType: r.RecommendationType})
	}

	if persist && len(ranked) > 0 {
		if err := s.record(ctx, req, sel, ranked, out); err != nil {
			return nil, err
		}
	}
	observability.Current().ObserveRecommend(string(mode), persist, len(out.Items))
	return out, nil
}

func (s *recommendService) record(ctx context.Context, req RecommendRequest, sel recommend.Selection, ranked []recommend.Ranked, out *RecommendResult) error {
	// popular rows are not tied to a user, whoever asked for them
	var userID *uint
	if req.UserID != 0 && sel.Mode == recommend.ModePersonalized {
		userID = pointers.Uint(req.UserID)
	}
	extra := map[string]any{"mode": string(sel.Mode), "limit": sel.Limit}
	if sel.FilterTag != nil {
		extra["tag_filter"] = strconv.FormatUint(uint64(sel.FilterTag.ID), 10)
	}
	entries := make([]LedgerEntry, 0, len(ranked))
	for i, r := range ranked {
		extra["rank"] = i + 1
		raw, _ := json.Marshal(extra)
		entries = append(entries, LedgerEntry{
			UserID:    userID,
			PaperID:   r.Paper.ID,
			Paper:     r.Paper,
			Reason:    r.Reason,
			Type:      r.RecommendationType,
			Priority:  0,
			ExtraData: datatypes.JSON(raw),
		})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.ledger.Record(ctx, tx, entries)
		if err != nil {
			return err
		}
		for i := range rows {
			out.Items[i].RecommendationID = rows[i].ID
		}
		return nil
	})
}
