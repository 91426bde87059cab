package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/platform/validate"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

type ActionInput struct {
	PaperID     string         `json:"paper_id" validate:"required,max=100"`
	ActionType  string         `json:"action_type" validate:"required,oneof=view like favorite search click ignore"`
	ActionValue *float64       `json:"action_value,omitempty" validate:"omitempty,gt=0"`
	OccurredAt  *time.Time     `json:"timestamp,omitempty"`
	SessionID   string         `json:"session_id,omitempty" validate:"max=255"`
	DeviceType  string         `json:"device_type,omitempty" validate:"max=50"`
	IPAddress   string         `json:"ip_address,omitempty" validate:"omitempty,ip"`
	Location    map[string]any `json:"location,omitempty"`
	ExtraData   map[string]any `json:"extra_data,omitempty"`
}

type ActionResult struct {
	Action  *types.UserAction  `json:"action"`
	Profile *types.UserProfile `json:"profile,omitempty"`
	Outcome string             `json:"profile_outcome"`
}

type ActionService interface {
	// Record validates and appends the action, then folds it into the user's profile.
	Record(ctx context.Context, userID uint, in ActionInput) (*ActionResult, error)
	List(ctx context.Context, userID uint, actionTypes []string, limit int) ([]*types.UserAction, error)
}

type actionService struct {
	db       *gorm.DB
	log      *logger.Logger
	actions  repos.UserActionRepo
	profiles ProfileService
	ledger   LedgerService
}

func NewActionService(db *gorm.DB, baseLog *logger.Logger, actions repos.UserActionRepo, profiles ProfileService, ledger LedgerService) ActionService {
	return &actionService{
		db:       db,
		log:      baseLog.With("service", "ActionService"),
		actions:  actions,
		profiles: profiles,
		ledger:   ledger,
	}
}

func (s *actionService) Record(ctx context.Context, userID uint, in ActionInput) (*ActionResult, error) {
	if userID == 0 {
		return nil, apierr.ErrUnauthorized
	}
	in.PaperID = strings.TrimSpace(in.PaperID)
	in.ActionType = strings.ToLower(strings.TrimSpace(in.ActionType))
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	action, err := s.build(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := recommend.ValidateAction(action); err != nil {
		return nil, err
	}

	if _, err := s.actions.Create(dbctx.Context{Ctx: ctx}, []*types.UserAction{action}); err != nil {
		s.log.Error("append action failed", "user_id", userID, "error", err)
		return nil, err
	}
	observability.Current().IncActionRecorded(action.ActionType)

	res, err := s.profiles.ApplyAction(ctx, action)
	if err != nil {
		s.log.Warn("profile update failed after action was recorded", "user_id", userID, "action_id", action.ID, "error", err)
		return nil, err
	}

	s.collectFeedback(ctx, userID, action, in.ExtraData)

	return &ActionResult{Action: action, Profile: res.Profile, Outcome: res.Outcome.String()}, nil
}

func (s *actionService) List(ctx context.Context, userID uint, actionTypes []string, limit int) ([]*types.UserAction, error) {
	if userID == 0 {
		return nil, apierr.ErrUnauthorized
	}
	return s.actions.ListByUser(dbctx.Context{Ctx: ctx}, userID, actionTypes, limit)
}

func (s *actionService) build(ctx context.Context, userID uint, in ActionInput) (*types.UserAction, error) {
	value := 1.0
	if in.ActionValue != nil {
		value = *in.ActionValue
	}
	occurred := time.Now().UTC()
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		occurred = in.OccurredAt.UTC()
	}
	session := strings.TrimSpace(in.SessionID)
	if session == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			session = rd.SessionID
		}
	}
	location, err := jsonOrNil(in.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location: %v", apierr.ErrInvalidArgument, err)
	}
	extra, err := jsonOrNil(in.ExtraData)
	if err != nil {
		return nil, fmt.Errorf("%w: extra_data: %v", apierr.ErrInvalidArgument, err)
	}
	return &types.UserAction{
		UserID:      userID,
		PaperID:     in.PaperID,
		ActionType:  in.ActionType,
		ActionValue: value,
		OccurredAt:  occurred,
		SessionID:   session,
		DeviceType:  strings.TrimSpace(in.DeviceType),
		IPAddress:   strings.TrimSpace(in.IPAddress),
		Location:    location,
		ExtraData:   extra,
	}, nil
}

// collectFeedback turns click and ignore actions that name a recommendation into a
// status change on that recommendation. Failures are logged, never returned.
func (s *actionService) collectFeedback(ctx context.Context, userID uint, action *types.UserAction, extra map[string]any) {
	var status string
	switch action.ActionType {
	case types.ActionClick:
		status = types.RecommendationStatusAccepted
	case types.ActionIgnore:
		status = types.RecommendationStatusIgnored
	default:
		return
	}
	recID, ok := recommendationID(extra)
	if !ok || s.ledger == nil {
		return
	}
	if _, err := s.ledger.UpdateStatus(ctx, recID, status, &userID); err != nil {
		s.log.Warn("feedback status update failed", "user_id", userID, "recommendation_id", recID, "status", status, "error", err)
	}
}

func recommendationID(extra map[string]any) (uint, bool) {
	raw, ok := extra["recommendation_id"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), true
		}
	case int:
		if v > 0 {
			return uint(v), true
		}
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil && n > 0 {
			return uint(n), true
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}

func jsonOrNil(m map[string]any) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
