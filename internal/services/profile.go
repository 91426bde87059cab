package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/paperrec-backend/internal/clients/redis"
	"github.com/yungbote/paperrec-backend/internal/data/db"
	"github.com/yungbote/paperrec-backend/internal/data/repos"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

type ProfileService interface {
	// Get returns recommend.ErrProfileNotFound when the user has no profile yet.
	Get(ctx context.Context, userID uint) (*types.UserProfile, error)
	// ApplyAction runs the profile read-modify-write for one recorded action.
	ApplyAction(ctx context.Context, action *types.UserAction) (*recommend.ApplyResult, error)
}

type profileService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.UserProfileRepo
	papers   repos.PaperRepo
	locker   redisclient.Locker
	policy   recommend.Policy
	attempts int
	now      func() time.Time
}

var errLostRace = errors.New("profile version moved")

func NewProfileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	profiles repos.UserProfileRepo,
	papers repos.PaperRepo,
	locker redisclient.Locker,
	policy recommend.Policy,
	attempts int,
) ProfileService {
	if locker == nil {
		locker = redisclient.NoopLocker{}
	}
	if attempts < 1 {
		attempts = 1
	}
	return &profileService{
		db:       db,
		log:      baseLog.With("service", "ProfileService"),
		profiles: profiles,
		papers:   papers,
		locker:   locker,
		policy:   policy,
		attempts: attempts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (*types.UserProfile, error) {
	p, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, recommend.ErrProfileNotFound
	}
	return p, nil
}

func (s *profileService) ApplyAction(ctx context.Context, action *types.UserAction) (res *recommend.ApplyResult, err error) {
	if action == nil || action.UserID == 0 {
		return nil, fmt.Errorf("%w: action without user", apierr.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "ProfileService", "ApplyAction",
		attribute.String("action_type", action.ActionType),
		attribute.String("paper_id", action.PaperID),
	)
	defer func() { observability.EndSpan(span, err) }()

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("profile:%d", action.UserID))
	if err != nil {
		return nil, fmt.Errorf("acquire profile lock: %w", err)
	}
	defer func() {
		if rerr := release(context.Background()); rerr != nil {
			s.log.Warn("profile lock release failed", "user_id", action.UserID, "error", rerr)
		}
	}()

	for attempt := 1; attempt <= s.attempts; attempt++ {
		res, err = s.applyOnce(ctx, action)
		if !errors.Is(err, errLostRace) {
			return res, err
		}
		observability.Current().IncProfileConflict()
		s.log.Debug("profile update lost race; retrying", "user_id", action.UserID, "attempt", attempt)
	}
	s.log.Warn("profile update gave up after conflicts", "user_id", action.UserID, "attempts", s.attempts)
	return nil, recommend.ErrProfileConflict
}

func (s *profileService) applyOnce(ctx context.Context, action *types.UserAction) (*recommend.ApplyResult, error) {
	var out recommend.ApplyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := s.profiles.GetByUserID(dbc, action.UserID)
		if err != nil {
			return err
		}
		paper, err := s.papers.GetByID(dbc, action.PaperID)
		if err != nil {
			return err
		}

		out = recommend.ApplyAction(current, action, paper.TagIDs(), paper != nil, s.policy, s.now())
		if out.Outcome == recommend.OutcomePaperMissing {
			s.log.Warn("profile update skipped: paper not in catalog",
				"user_id", action.UserID, "paper_id", action.PaperID, "action_type", action.ActionType)
		}
		if !out.Changed() {
			return nil
		}
		if out.Created {
			if err := s.profiles.Create(dbc, out.Profile); err != nil {
				if db.IsUniqueViolation(err) {
					return errLostRace
				}
				return err
			}
			return nil
		}
		ok, err := s.profiles.SaveVersioned(dbc, out.Profile)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	outcome := out.Outcome.String()
	if out.Created {
		outcome = "created_" + outcome
	}
	observability.Current().IncProfileUpdate(outcome)
	return &out, nil
}
