package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/burgermaster/blendcalc/internal/infrastructure/config"
	gormstore "github.com/burgermaster/blendcalc/internal/infrastructure/persistence/gorm"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/memory"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/postgres"
	redisstore "github.com/burgermaster/blendcalc/internal/infrastructure/persistence/redis"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/sqlite"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// redisConnector opens one shared Redis client on first use, so the
// process only connects when a Redis backend is selected
type redisConnector struct {
	cfg    *config.Config
	logger *zap.Logger

	once   sync.Once
	client redis.UniversalClient
	err    error
}

func newRedisConnector(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *redisConnector {
	rc := &redisConnector{cfg: cfg, logger: log}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if rc.client == nil {
				return nil
			}
			return rc.client.Close()
		},
	})
	return rc
}

func (rc *redisConnector) Client(ctx context.Context) (redis.UniversalClient, error) {
	rc.once.Do(func() {
		rc.client, rc.err = redisstore.NewClient(ctx, redisstore.ClientConfig{
			Addrs:        rc.cfg.Redis.Addrs,
			Password:     rc.cfg.Redis.Password,
			DB:           rc.cfg.Redis.DB,
			PoolSize:     rc.cfg.Redis.PoolSize,
			MinIdleConns: rc.cfg.Redis.MinIdleConns,
			DialTimeout:  rc.cfg.Redis.DialTimeout,
			ReadTimeout:  rc.cfg.Redis.ReadTimeout,
			WriteTimeout: rc.cfg.Redis.WriteTimeout,
		}, rc.logger)
	})
	return rc.client, rc.err
}

// NewStateStore selects the state store named by storage.driver
func NewStateStore(lc fx.Lifecycle, cfg *config.Config, rc *redisConnector, log *zap.Logger) (outbound.StateStore, error) {
	log = log.Named("storage")
	logLevel := gormLogger.Silent
	if cfg.App.Debug {
		logLevel = gormLogger.Info
	}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Info("Using in-memory state store; state is lost on restart")
		return memory.NewStateStore(), nil

	case config.StorageSQLite:
		db, err := sqlite.SetupDatabase(cfg.Storage.SQLitePath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		closeOnStop(lc, db, log)
		log.Info("Connected to SQLite database", zap.String("path", cfg.Storage.SQLitePath))
		return gormstore.NewStateStore(db), nil

	case config.StoragePostgres:
		pg := postgres.DefaultConnectionConfig()
		pg.DSN = cfg.Storage.Postgres.DSN
		pg.ReadReplicas = cfg.Storage.Postgres.ReadReplicas
		pg.LogLevel = logLevel
		if cfg.Storage.Postgres.Database != "" {
			pg.DatabaseName = cfg.Storage.Postgres.Database
		}
		if cfg.Storage.Postgres.MaxOpenConns > 0 {
			pg.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
		}
		if cfg.Storage.Postgres.MaxIdleConns > 0 {
			pg.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
		}
		if cfg.Storage.Postgres.ConnMaxLifetime > 0 {
			pg.ConnMaxLifetime = cfg.Storage.Postgres.ConnMaxLifetime
		}

		db, err := postgres.Connect(context.Background(), pg, log)
		if err != nil {
			return nil, err
		}
		closeOnStop(lc, db, log)
		return gormstore.NewStateStore(db), nil

	case config.StorageRedis:
		client, err := rc.Client(context.Background())
		if err != nil {
			return nil, err
		}
		return redisstore.NewStateStore(client, cfg.Storage.KeyPrefix+"state:"), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewCacheRepository selects the cache named by cache.driver
func NewCacheRepository(lc fx.Lifecycle, cfg *config.Config, rc *redisConnector, log *zap.Logger) (outbound.CacheRepository, error) {
	log = log.Named("cache")

	switch cfg.Cache.Driver {
	case config.StorageRedis:
		client, err := rc.Client(context.Background())
		if err != nil {
			return nil, err
		}
		log.Info("Using Redis cache")
		return redisstore.NewCacheRepository(client, cfg.Storage.KeyPrefix+"cache:", log), nil

	default:
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
		log.Info("Using in-memory cache")
		return memory.NewCacheRepository(ctx, cfg.Cache.CleanupInterval), nil
	}
}

func closeOnStop(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return nil
			}
			if err := sqlDB.Close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}
			return nil
		},
	})
}
