package recommendation

import (
	"gorm.io/gorm"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type RecommendationLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.RecommendationLog) ([]*types.RecommendationLog, error)
	ListByRecommendation(dbc dbctx.Context, recommendationID uint) ([]*types.RecommendationLog, error)
}

type recommendationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationLogRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationLogRepo {
	return &recommendationLogRepo{db: db, log: baseLog.With("repo", "RecommendationLogRepo")}
}

func (r *recommendationLogRepo) Create(dbc dbctx.Context, rows []*types.RecommendationLog) ([]*types.RecommendationLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.RecommendationLog{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recommendationLogRepo) ListByRecommendation(dbc dbctx.Context, recommendationID uint) ([]*types.RecommendationLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RecommendationLog
	if err := transaction.WithContext(dbc.Ctx).
		Where("recommendation_id = ?", recommendationID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
