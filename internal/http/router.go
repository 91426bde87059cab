package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/paperrec-backend/internal/http/handlers"
	httpMW "github.com/yungbote/paperrec-backend/internal/http/middleware"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware
	ActionLimiter  *httpMW.RateLimiter

	HealthHandler         *httpH.HealthHandler
	ActionHandler         *httpH.ActionHandler
	ProfileHandler        *httpH.ProfileHandler
	RecommendationHandler *httpH.RecommendationHandler
	CatalogHandler        *httpH.CatalogHandler
	UserHandler           *httpH.UserHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.ProcessTime())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")

	// Public; a valid token still personalizes the caller.
	public := api.Group("/")
	if cfg.AuthMiddleware != nil {
		public.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	{
		if cfg.RecommendationHandler != nil {
			public.GET("/recommendations/popular", cfg.RecommendationHandler.Popular)
		}
		if cfg.CatalogHandler != nil {
			public.GET("/tags", cfg.CatalogHandler.ListTags)
			public.GET("/tags/:id", cfg.CatalogHandler.GetTag)
			public.GET("/papers", cfg.CatalogHandler.ListPapers)
			public.GET("/papers/:id", cfg.CatalogHandler.GetPaper)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.ActionHandler != nil {
			record := []gin.HandlerFunc{cfg.ActionHandler.Record}
			if cfg.ActionLimiter != nil {
				record = append([]gin.HandlerFunc{cfg.ActionLimiter.Middleware()}, record...)
			}
			protected.POST("/actions", record...)
			protected.GET("/actions", cfg.ActionHandler.List)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
		}

		if cfg.RecommendationHandler != nil {
			protected.GET("/recommendations", cfg.RecommendationHandler.Recommend)
			protected.GET("/recommendations/preview", cfg.RecommendationHandler.Preview)
			protected.GET("/recommendations/history", cfg.RecommendationHandler.History)
			protected.PATCH("/recommendations/:id/status", cfg.RecommendationHandler.UpdateStatus)
			protected.GET("/recommendations/:id/log", cfg.RecommendationHandler.Log)
		}

		if cfg.UserHandler != nil {
			protected.GET("/user/tags", cfg.UserHandler.GetTags)
			protected.PUT("/user/tags", cfg.UserHandler.SetTags)
		}

		if cfg.CatalogHandler != nil {
			protected.POST("/tags", cfg.CatalogHandler.CreateTag)
			protected.POST("/papers", cfg.CatalogHandler.CreatePaper)
		}
	}

	return r
}
