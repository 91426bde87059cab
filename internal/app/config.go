package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/paperrec-backend/internal/data/db"
	"github.com/yungbote/paperrec-backend/internal/observability"
	"github.com/yungbote/paperrec-backend/internal/platform/envutil"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
	"github.com/yungbote/paperrec-backend/internal/recommend"
)

type Config struct {
	Env         string
	ServiceName string
	Version     string
	Addr        string

	DB    db.Config
	Trace observability.TraceConfig

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	CORSOrigins    []string

	Policy               recommend.Policy
	ProfileRetries       int
	ProfileLockTTL       time.Duration
	ProfileLockWait      time.Duration
	ActionRatePerMinute  int
	ActionRateBurst      int
	ShutdownTimeout      time.Duration
	AutoMigrateOnStartup bool
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Env:                  envutil.String("APP_ENV", "development"),
		ServiceName:          envutil.String("SERVICE_NAME", "paperrec"),
		Version:              envutil.String("APP_VERSION", "dev"),
		Addr:                 ":" + envutil.String("PORT", "8080"),
		DB:                   db.LoadConfig(),
		JWTSecretKey:         envutil.Logged(log, "JWT_SECRET_KEY", ""),
		AccessTokenTTL:       envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		ProfileRetries:       envutil.Int("PROFILE_UPDATE_RETRIES", 3),
		ProfileLockTTL:       envutil.Seconds("PROFILE_LOCK_TTL_SECONDS", 5*time.Second),
		ProfileLockWait:      envutil.Seconds("PROFILE_LOCK_WAIT_SECONDS", 2*time.Second),
		ActionRatePerMinute:  envutil.Int("ACTION_RATE_PER_MINUTE", 120),
		ActionRateBurst:      envutil.Int("ACTION_RATE_BURST", 30),
		ShutdownTimeout:      envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		AutoMigrateOnStartup: envutil.Bool("DB_AUTO_MIGRATE", true),
	}
	cfg.Trace = observability.TraceConfigFromEnv(cfg.ServiceName, cfg.Env, cfg.Version)
	for _, o := range strings.Split(envutil.String("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	policy := recommend.DefaultPolicy()
	if path := envutil.String("RECOMMEND_POLICY_FILE", ""); path != "" {
		p, err := recommend.LoadPolicy(path)
		if err != nil {
			return Config{}, fmt.Errorf("load recommend policy: %w", err)
		}
		policy = p
	}
	if envutil.Bool("RECOMMEND_FAVORITE_UPDATES_PROFILE", false) {
		policy = policy.WithFavorite()
	}
	if err := policy.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Policy = policy

	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY not set; authenticated routes will reject every token")
	}
	return cfg, nil
}
