package app

import (
	"fmt"

	"github.com/yungbote/paperrec-backend/internal/clients/redis"
	"github.com/yungbote/paperrec-backend/internal/platform/logger"
)

type Clients struct {
	ProfileLock redis.Locker
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis; a no-op lock when REDIS_ADDR is unset
	lock, err := redis.NewUserLock(log, cfg.ProfileLockTTL, cfg.ProfileLockWait)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis profile lock: %w", err)
	}
	return Clients{ProfileLock: lock}, nil
}

func (c Clients) Close() {
	if c.ProfileLock != nil {
		_ = c.ProfileLock.Close()
	}
}
