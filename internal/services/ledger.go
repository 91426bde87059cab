package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LedgerEntry is one recommendation about to be recorded.
type LedgerEntry struct {
	UserID    *uint
	PaperID   string
	Paper     *types.Paper
	Reason    string
	Type      string
	Priority  int
	ExtraData datatypes.JSON
}

type LedgerQuery struct {
	UserID *uint
	From   *time.Time
	To     *time.Time
	Type   string
	Status string
	// Page is zero-based.
	Page int
	// Size defaults to 20 when zero.
	Size int
}

type LedgerPage struct {
	Items []*types.Recommendation `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Size  int                     `json:"size"`
}

type LedgerService interface {
	// Record writes entries as pending recommendations. tx may be nil.
	Record(ctx context.Context, tx *gorm.DB, entries []LedgerEntry) ([]*types.Recommendation, error)
	// UpdateStatus sets a new status label and appends to the recommendation log.
	// With a non-nil actorID, recommendations owned by another user are reported as not found.
	UpdateStatus(ctx context.Context, id uint, status string, actorID *uint) (*types.Recommendation, error)
	Query(ctx context.Context, q LedgerQuery) (*LedgerPage, error)
	// History lists status changes oldest first, with the same ownership rule as UpdateStatus.
	History(ctx context.Context, id uint, actorID *uint) ([]*types.RecommendationLog, error)
}

type ledgerService struct {
	db   *gorm.DB
	log  *logger.Logger
	recs repos.RecommendationRepo
	logs repos.RecommendationLogRepo
}

func NewLedgerService(db *gorm.DB, baseLog *logger.Logger, recs repos.RecommendationRepo, logs repos.RecommendationLogRepo) LedgerService {
	return &ledgerService{
		db:   db,
		log:  baseLog.With("service", "LedgerService"),
		recs: recs,
		logs: logs,
	}
}

func (s *ledgerService) Record(ctx context.Context, tx *gorm.DB, entries []LedgerEntry) ([]*types.Recommendation, error) {
	rows := make([]*types.Recommendation, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.PaperID) == "" {
			return nil, fmt.Errorf("%w: paper id required", recommend.ErrPaperNotFound)
		}
		if !types.ValidRecommendationType(e.Type) {
			return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidType, e.Type)
		}
		rows = append(rows, &types.Recommendation{
			UserID:             e.UserID,
			PaperID:            e.PaperID,
			Paper:              e.Paper,
			Reason:             e.Reason,
			RecommendationType: e.Type,
			Status:             types.RecommendationStatusPending,
			Priority:           e.Priority,
			ExtraData:          e.ExtraData,
		})
	}
	return s.recs.Create(dbctx.Context{Ctx: ctx, Tx: tx}, rows)
}

func (s *ledgerService) UpdateStatus(ctx context.Context, id uint, status string, actorID *uint) (*types.Recommendation, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !types.ValidRecommendationStatus(status) {
		return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidStatus, status)
	}
	var out *types.Recommendation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rec, err := s.recs.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if rec == nil || !ownedBy(rec, actorID) {
			return recommend.ErrRecommendationNotFound
		}
		if _, err := s.recs.UpdateStatus(dbc, id, status); err != nil {
			return err
		}
		if _, err := s.logs.Create(dbc, []*types.RecommendationLog{{
			RecommendationID: id,
			UserID:           rec.UserID,
			Interaction:      status,
			Timestamp:        time.Now().UTC(),
		}}); err != nil {
			return err
		}
		rec.Status = status
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.Current().IncLedgerStatus(status)
	return out, nil
}

// ownedBy reports whether actorID may touch rec. A nil actor is an internal caller and
// may touch anything; rows without a user belong to no caller.
func ownedBy(rec *types.Recommendation, actorID *uint) bool {
	if actorID == nil {
		return true
	}
	if rec.UserID == nil {
		return false
	}
	return *rec.UserID == *actorID
}

func (s *ledgerService) Query(ctx context.Context, q LedgerQuery) (*LedgerPage, error) {
	size, err := pageBounds(q.Page, q.Size)
	if err != nil {
		return nil, err
	}
	if q.Type != "" && !types.ValidRecommendationType(q.Type) {
		return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidType, q.Type)
	}
	if q.Status != "" && !types.ValidRecommendationStatus(q.Status) {
		return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidStatus, q.Status)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, recommend.ErrInvalidTimeRange
	}

	filter := repos.RecommendationFilter{
		UserID:      q.UserID,
		Type:        q.Type,
		Status:      q.Status,
		CreatedFrom: q.From,
		CreatedTo:   q.To,
	}
	rows, total, err := s.recs.Query(dbctx.Context{Ctx: ctx}, filter, q.Page*size, size)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, recommend.ErrNoRecords
	}
	return &LedgerPage{Items: rows, Total: total, Page: q.Page, Size: size}, nil
}

func (s *ledgerService) History(ctx context.Context, id uint, actorID *uint) ([]*types.RecommendationLog, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rec, err := s.recs.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !ownedBy(rec, actorID) {
		return nil, recommend.ErrRecommendationNotFound
	}
	return s.logs.ListByRecommendation(dbc, id)
}
