package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos/catalog"
	"github.com/yungbote/paperrec-backend/internal/data/repos/personalization"
	"github.com/yungbote/paperrec-backend/internal/data/repos/recommendation"
	"github.com/yungbote/paperrec-backend/internal/data/repos/user"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type TagRepo = catalog.TagRepo
type UserTagRepo = catalog.UserTagRepo
type PaperRepo = catalog.PaperRepo

type UserActionRepo = personalization.UserActionRepo
type UserProfileRepo = personalization.UserProfileRepo

type RecommendationRepo = recommendation.RecommendationRepo
type RecommendationLogRepo = recommendation.RecommendationLogRepo
type RecommendationFilter = recommendation.Filter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo { return catalog.NewTagRepo(db, baseLog) }
func NewUserTagRepo(db *gorm.DB, baseLog *logger.Logger) UserTagRepo {
	return catalog.NewUserTagRepo(db, baseLog)
}
func NewPaperRepo(db *gorm.DB, baseLog *logger.Logger) PaperRepo {
	return catalog.NewPaperRepo(db, baseLog)
}

func NewUserActionRepo(db *gorm.DB, baseLog *logger.Logger) UserActionRepo {
	return personalization.NewUserActionRepo(db, baseLog)
}
func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return personalization.NewUserProfileRepo(db, baseLog)
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return recommendation.NewRecommendationRepo(db, baseLog)
}
func NewRecommendationLogRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationLogRepo {
	return recommendation.NewRecommendationLogRepo(db, baseLog)
}
