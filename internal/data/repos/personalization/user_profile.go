package personalization

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/paperrec-backend/internal/domain"
	"github.com/yungbote/paperrec-backend/internal/platform/dbctx"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type UserProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uint) (*types.UserProfile, error)
	// Create inserts a fresh profile; a concurrent insert for the same user fails with a unique violation.
	Create(dbc dbctx.Context, profile *types.UserProfile) error
	// SaveVersioned writes profile only if the stored version still equals profile.Version.
	// On success profile.Version is advanced; false means another writer got there first.
	SaveVersioned(dbc dbctx.Context, profile *types.UserProfile) (bool, error)
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return &userProfileRepo{db: db, log: baseLog.With("repo", "UserProfileRepo")}
}

func (r *userProfileRepo) GetByUserID(dbc dbctx.Context, userID uint) (*types.UserProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == 0 {
		return nil, nil
	}
	var rows []*types.UserProfile
	if err := transaction.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userProfileRepo) Create(dbc dbctx.Context, profile *types.UserProfile) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if profile == nil || profile.UserID == 0 {
		return nil
	}
	if profile.LastUpdated.IsZero() {
		profile.LastUpdated = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(profile).Error
}

func (r *userProfileRepo) SaveVersioned(dbc dbctx.Context, profile *types.UserProfile) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if profile == nil || profile.ID == 0 {
		return false, nil
	}
	now := time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.UserProfile{}).
		Where("id = ? AND version = ?", profile.ID, profile.Version).
		Updates(map[string]interface{}{
			"preferences":  profile.Preferences,
			"last_updated": profile.LastUpdated,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	profile.Version++
	profile.UpdatedAt = now
	return true, nil
}
