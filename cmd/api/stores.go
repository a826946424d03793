package main

import (
	"context"
	"database/sql"

	"token-auth/internal/domain/auth"
	"token-auth/internal/infra/memory"
	"token-auth/internal/infrastructure/cache"
	"token-auth/internal/infrastructure/config"
	"token-auth/internal/infrastructure/db"
	"token-auth/internal/infrastructure/persistence/postgres"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// stores 為啟動時選定的 user repository 與 refresh store。
type stores struct {
	driver  string
	users   auth.UserRepository
	refresh auth.RefreshStore
	db      *sql.DB
	redis   redis.UniversalClient
}

func (s stores) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

// openStores 依 store driver 連線；後端無法使用時退回記憶體 store。
// 使用者資料在有 DB 時一律存 Postgres，redis 只負責 refresh token。
func openStores(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) stores {
	log := logger.WithField("component", "stores")
	mem := memory.NewStore()
	out := stores{
		driver:  config.StoreMemory,
		users:   mem,
		refresh: mem.RefreshStore(),
	}

	driver := cfg.StoreDriver()
	if driver == config.StorePostgres || cfg.DB.DSN != "" {
		pool, err := db.Connect(ctx, cfg.DB)
		switch {
		case err != nil:
			log.WithError(err).Warn("database connection failed, falling back to in-memory store")
		case pool != nil:
			log.Info("database connected")
			out.db = pool
			out.users = postgres.NewUserRepo(pool)
			if driver == config.StorePostgres {
				out.driver = config.StorePostgres
				out.refresh = postgres.NewRefreshRepo(pool)
			}
		}
	}

	if driver == config.StoreRedis {
		client, err := cache.Connect(ctx, cfg.Redis)
		switch {
		case err != nil:
			log.WithError(err).Warn("redis connection failed, falling back to in-memory refresh store")
		case client != nil:
			log.Info("redis connected")
			out.redis = client
			out.driver = config.StoreRedis
			out.refresh = cache.NewRefreshStore(client, cfg.Redis.KeyPrefix)
		}
	}

	if out.driver == config.StoreMemory {
		log.Info("refresh tokens kept in memory; they are lost on restart")
	}
	return out
}
