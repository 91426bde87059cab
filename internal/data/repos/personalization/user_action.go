package personalization

import (
	"gorm.io/gorm"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// UserActionRepo is append-only: there is deliberately no update or delete.
type UserActionRepo interface {
	Create(dbc dbctx.Context, actions []*types.UserAction) ([]*types.UserAction, error)
	ListByUser(dbc dbctx.Context, userID uint, actionTypes []string, limit int) ([]*types.UserAction, error)
}

type userActionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserActionRepo(db *gorm.DB, baseLog *logger.Logger) UserActionRepo {
	return &userActionRepo{db: db, log: baseLog.With("repo", "UserActionRepo")}
}

func (r *userActionRepo) Create(dbc dbctx.Context, actions []*types.UserAction) ([]*types.UserAction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(actions) == 0 {
		return []*types.UserAction{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *userActionRepo) ListByUser(dbc dbctx.Context, userID uint, actionTypes []string, limit int) ([]*types.UserAction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.UserAction
	if userID == 0 {
		return out, nil
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > 1000 {
		limit = 1000
	}
	q := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if len(actionTypes) > 0 {
		q = q.Where("action_type IN ?", actionTypes)
	}
	if err := q.Order("occurred_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
