package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"account-auth-service/internal/core/cache"
	"account-auth-service/internal/core/config"
	"account-auth-service/internal/core/database"
	"account-auth-service/internal/core/password"
	"account-auth-service/internal/domain"
	"account-auth-service/internal/repo"
)

// OpenAccountStore 按 store.backend 打开账号存储；返回的 cleanup 负责关闭连接
func OpenAccountStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (domain.AccountDirectory, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		l.Warn("using in-memory account store, data is lost on restart")
		return repo.NewMemoryAccountStore(), func() {}, nil

	case "redis":
		rdb, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		return repo.NewRedisAccountStore(rdb), func() { _ = rdb.Close() }, nil

	case "gorm":
		return openGorm(ctx, cfg, l)
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func openGorm(ctx context.Context, cfg *config.Config, l *zap.Logger) (domain.AccountDirectory, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	r := repo.NewAccountRepo(db)
	if cfg.DB.AutoMigrate {
		if err := r.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	if !cfg.Cache.Enable {
		return r, cleanup, nil
	}

	rdb, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, func() { _ = rdb.Close() })
	ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
	l.Info("account cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
	return repo.NewCachedAccountStore(r, cache.New(rdb), ttl, l), cleanup, nil
}

// NewHasher 由配置构造不可变的 bcrypt hasher
func NewHasher(cfg config.Password) (*password.Bcrypt, error) {
	return password.NewBcrypt(password.Config{
		Cost: cfg.Cost,
		Policy: password.Policy{
			MinLength:     cfg.MinLength,
			MaxLength:     cfg.MaxLength,
			RequireUpper:  cfg.RequireUpper,
			RequireLower:  cfg.RequireLower,
			RequireDigit:  cfg.RequireDigit,
			RequireSymbol: cfg.RequireSymbol,
		},
	})
}

// RequireSharedStore 运维进程必须和用户端进程连同一个存储；memory 后端各进程各一份，拒绝启动
func RequireSharedStore(cfg *config.Config) error {
	if cfg.Store.Backend == "memory" {
		return fmt.Errorf("store.backend=memory is private to one process, the admin api would manage an empty store")
	}
	return nil
}
