package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/http"
	httpH "github.com/yungbote/paperrec-backend/internal/http/handlers"
	httpMW "github.com/yungbote/paperrec-backend/internal/http/middleware"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type Middleware struct {
	Auth          *httpMW.AuthMiddleware
	ActionLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health         *httpH.HealthHandler
	Action         *httpH.ActionHandler
	Profile        *httpH.ProfileHandler
	Recommendation *httpH.RecommendationHandler
	Catalog        *httpH.CatalogHandler
	User           *httpH.UserHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:          httpMW.NewAuthMiddleware(log, services.Auth),
		ActionLimiter: httpMW.NewRateLimiter(cfg.ActionRatePerMinute, cfg.ActionRateBurst),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         httpH.NewHealthHandler(db),
		Action:         httpH.NewActionHandler(services.Action),
		Profile:        httpH.NewProfileHandler(services.Profile),
		Recommendation: httpH.NewRecommendationHandler(services.Recommend, services.Ledger),
		Catalog:        httpH.NewCatalogHandler(services.Catalog),
		User:           httpH.NewUserHandler(services.Catalog),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, mw Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		ServiceName:    cfg.ServiceName,
		AuthMiddleware: mw.Auth,
		ActionLimiter:  mw.ActionLimiter,

		HealthHandler:         handlers.Health,
		ActionHandler:         handlers.Action,
		ProfileHandler:        handlers.Profile,
		RecommendationHandler: handlers.Recommendation,
		CatalogHandler:        handlers.Catalog,
		UserHandler:           handlers.User,
	})
}
