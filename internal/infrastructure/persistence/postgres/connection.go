// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/migrations"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// ConnectionConfig holds connection pool settings
type ConnectionConfig struct {
	DSN             string
	DatabaseName    string
	ReadReplicas    []string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

// DefaultConnectionConfig returns the pool defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		DatabaseName:    "blendcalc",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		LogLevel:        logger.Warn,
	}
}

// Connect opens the database, configures the pool, registers read replicas
// and applies pending migrations.
func Connect(ctx context.Context, cfg ConnectionConfig, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("postgres")

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:                 logger.Default.LogMode(cfg.LogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if len(cfg.ReadReplicas) > 0 {
		replicas := make([]gorm.Dialector, len(cfg.ReadReplicas))
		for i, dsn := range cfg.ReadReplicas {
			replicas[i] = postgres.Open(dsn)
		}
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(cfg.MaxOpenConns).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetConnMaxLifetime(cfg.ConnMaxLifetime))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrator, err := migrations.New(ctx, sqlDB, cfg.DatabaseName, log)
	if err != nil {
		return nil, err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil {
		return nil, err
	}

	log.Info("Database connection initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("read_replicas", len(cfg.ReadReplicas)))

	return db, nil
}
