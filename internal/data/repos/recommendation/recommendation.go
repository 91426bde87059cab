package recommendation

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

// Filter narrows a ledger query. Zero values mean "any".
type Filter struct {
	UserID      *uint
	Type        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type RecommendationRepo interface {
	Create(dbc dbctx.Context, recs []*types.Recommendation) ([]*types.Recommendation, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Recommendation, error)
	// UpdateStatus reports false when no row has the given id.
	UpdateStatus(dbc dbctx.Context, id uint, status string) (bool, error)
	Query(dbc dbctx.Context, f Filter, offset, limit int) ([]*types.Recommendation, int64, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (r *recommendationRepo) Create(dbc dbctx.Context, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.Recommendation{}, nil
	}
	// Paper is reference data here; never let gorm upsert it.
	if err := transaction.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recommendationRepo) GetByID(dbc dbctx.Context, id uint) (*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var rows []*types.Recommendation
	if err := transaction.WithContext(dbc.Ctx).Preload("Paper").Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *recommendationRepo) UpdateStatus(dbc dbctx.Context, id uint, status string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Recommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recommendationRepo) Query(dbc dbctx.Context, f Filter, offset, limit int) ([]*types.Recommendation, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	scope := func(q *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			q = q.Where("user_id = ?", *f.UserID)
		}
		if f.Type != "" {
			q = q.Where("recommendation_type = ?", f.Type)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.CreatedFrom != nil {
			q = q.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			q = q.Where("created_at <= ?", *f.CreatedTo)
		}
		return q
	}

	var total int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Recommendation{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Recommendation
	if total == 0 {
		return out, 0, nil
	}
	// A recommendation whose paper was removed still lists, with Paper left nil.
	if err := transaction.WithContext(dbc.Ctx).
		Scopes(scope).
		Preload("Paper").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
