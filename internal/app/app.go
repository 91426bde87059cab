package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/paperrec-backend/internal/data/db"
	"github.com/yungbote/paperrec-backend/internal/http"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/envutil"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.Service
	middleware   Middleware
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// Open connects to the database and wires everything but the HTTP server.
func Open(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		return nil, err
	}

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrateOnStartup {
		if err := dbs.AutoMigrateAll(); err != nil {
			_ = dbs.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	theDB := dbs.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)

	return &App{
		Log:       log,
		DB:        theDB,
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clients,
		Services:  serviceset,
		dbService: dbs,
	}, nil
}

// New opens the app and builds the HTTP server with tracing and metrics.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	a, err := Open(ctx, log)
	if err != nil {
		return nil, err
	}
	if a.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.otelShutdown = observability.InitOTel(ctx, log, a.Cfg.Trace)
	a.Metrics = observability.Init(log)
	a.Metrics.RegisterDBStats(log, a.DB)

	a.middleware = wireMiddleware(log, a.Cfg, a.Services)
	handlerset := wireHandlers(log, a.DB, a.Services)
	a.Server = wireServer(log, a.Cfg, a.Metrics, handlerset, a.middleware)
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	if a.middleware.ActionLimiter != nil {
		g.Go(func() error {
			a.middleware.ActionLimiter.Run(gctx, 5*time.Minute)
			return nil
		})
	}
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr)
		return a.Server.Run(gctx, a.Cfg.Addr, a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
