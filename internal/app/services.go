package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Profile   services.ProfileService
	Ledger    services.LedgerService
	Action    services.ActionService
	Recommend services.RecommendService
	Catalog   services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")
	profile := services.NewProfileService(db, log, repos.UserProfile, repos.Paper, clients.ProfileLock, cfg.Policy, cfg.ProfileRetries)
	ledger := services.NewLedgerService(db, log, repos.Recommendation, repos.RecommendationLog)
	return Services{
		Auth:      services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Profile:   profile,
		Ledger:    ledger,
		Action:    services.NewActionService(db, log, repos.UserAction, profile, ledger),
		Recommend: services.NewRecommendService(db, log, repos.UserProfile, repos.Tag, repos.Paper, ledger, cfg.Policy),
		Catalog:   services.NewCatalogService(db, log, repos.User, repos.Tag, repos.UserTag, repos.Paper),
	}
}
