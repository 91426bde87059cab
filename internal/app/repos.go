package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/repos"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type Repos struct {
	User              repos.UserRepo
	Tag               repos.TagRepo
	UserTag           repos.UserTagRepo
	Paper             repos.PaperRepo
	UserAction        repos.UserActionRepo
	UserProfile       repos.UserProfileRepo
	Recommendation    repos.RecommendationRepo
	RecommendationLog repos.RecommendationLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		Tag:               repos.NewTagRepo(db, log),
		UserTag:           repos.NewUserTagRepo(db, log),
		Paper:             repos.NewPaperRepo(db, log),
		UserAction:        repos.NewUserActionRepo(db, log),
		UserProfile:       repos.NewUserProfileRepo(db, log),
		Recommendation:    repos.NewRecommendationRepo(db, log),
		RecommendationLog: repos.NewRecommendationLogRepo(db, log),
	}
}
