package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type TagRepo interface {
	Create(dbc dbctx.Context, tags []*types.Tag) ([]*types.Tag, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Tag, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Tag, error)
	GetByName(dbc dbctx.Context, name string) (*types.Tag, error)
	List(dbc dbctx.Context, offset, limit int) ([]*types.Tag, int64, error)
	CountActionsByTag(dbc dbctx.Context, actionTypes []string) (map[uint]int, error)
	SetPopularity(dbc dbctx.Context, counts map[uint]int) (int64, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) Create(dbc dbctx.Context, tags []*types.Tag) ([]*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tags) == 0 {
		return []*types.Tag{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepo) GetByID(dbc dbctx.Context, id uint) (*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out []*types.Tag
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *tagRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Tag
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetByName(dbc dbctx.Context, name string) (*types.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Tag
	if err := transaction.WithContext(dbc.Ctx).Where("name = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *tagRepo) List(dbc dbctx.Context, offset, limit int) ([]*types.Tag, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var total int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Tag{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Tag
	if err := transaction.WithContext(dbc.Ctx).
		Order("popularity DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountActionsByTag counts actions of the given types on papers carrying each tag.
func (r *tagRepo) CountActionsByTag(dbc dbctx.Context, actionTypes []string) (map[uint]int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uint]int{}
	if len(actionTypes) == 0 {
		return out, nil
	}
	var rows []struct {
		TagID uint
		N     int
	}
	if err := transaction.WithContext(dbc.Ctx).
		Table("user_action AS ua").
		Select("pt.tag_id AS tag_id, COUNT(*) AS n").
		Joins("JOIN paper_tag AS pt ON pt.paper_id = ua.paper_id").
		Where("ua.action_type IN ?", actionTypes).
		Group("pt.tag_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TagID] = row.N
	}
	return out, nil
}

// SetPopularity overwrites popularity for every tag; tags absent from counts drop to zero.
func (r *tagRepo) SetPopularity(dbc dbctx.Context, counts map[uint]int) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var updated int64
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.Tag{}).Where("1 = 1").Update("popularity", 0).Error; err != nil {
			return err
		}
		for id, n := range counts {
			res := tx.Model(&types.Tag{}).Where("id = ?", id).Update("popularity", n)
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// -------------------- user_tag --------------------

type UserTagRepo interface {
	Replace(dbc dbctx.Context, userID uint, tagIDs []uint) error
	ListTagIDs(dbc dbctx.Context, userID uint) ([]uint, error)
}

type userTagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTagRepo(db *gorm.DB, baseLog *logger.Logger) UserTagRepo {
	return &userTagRepo{db: db, log: baseLog.With("repo", "UserTagRepo")}
}

func (r *userTagRepo) Replace(dbc dbctx.Context, userID uint, tagIDs []uint) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&types.UserTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		rows := make([]*types.UserTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			rows = append(rows, &types.UserTag{UserID: userID, TagID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (r *userTagRepo) ListTagIDs(dbc dbctx.Context, userID uint) ([]uint, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []uint
	if userID == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.UserTag{}).
		Where("user_id = ?", userID).
		Order("tag_id ASC").
		Pluck("tag_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
