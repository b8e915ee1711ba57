package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sponsorship-studio/engine/internal/guard"
	"github.com/sponsorship-studio/engine/internal/identity"
	"github.com/sponsorship-studio/engine/internal/repository"
	"github.com/sponsorship-studio/engine/internal/slot"
	"github.com/sponsorship-studio/engine/internal/store"
	"github.com/sponsorship-studio/engine/pkg/config"
	"github.com/sponsorship-studio/engine/pkg/database"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

type application struct {
	provider *identity.Provider
	store    *store.Store
	guard    *guard.Guard
	closers  []func() error
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
}

// build wires the slot backend, user directory, entity store and route guard.
// Users live in Postgres whenever DATABASE_URL is set, otherwise in memory.
func build(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error { return database.Close(db) })
		logger.L().Info("database connected")
	}

	var backend slot.Store
	switch cfg.SlotBackend {
	case config.SlotBackendPostgres:
		backend = slot.NewGormStore(db)
	case config.SlotBackendRedis:
		rdb, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			app.close()
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		backend = slot.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		backend = slot.NewMemoryStore()
	}

	var users repository.UserRepository
	if db != nil {
		users = repository.NewUserRepository(db)
	} else {
		users = repository.NewMemoryUserRepository()
	}
	if err := identity.SeedDirectory(ctx, users, cfg.BcryptCost); err != nil {
		app.close()
		return nil, fmt.Errorf("seed user directory: %w", err)
	}

	table := guard.DefaultTable()
	if cfg.RoutesFile != "" {
		t, err := guard.LoadTable(cfg.RoutesFile)
		if err != nil {
			app.close()
			return nil, err
		}
		table = t
	}
	g, err := guard.Compile(table)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("compile route table: %w", err)
	}
	app.guard = g

	app.store = store.New(slot.New(backend, cfg.StoreNamespace))
	if err := app.store.Initialize(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("initialize entity store: %w", err)
	}
	app.provider = identity.NewProvider(users, backend, identity.WithBcryptCost(cfg.BcryptCost))
	return app, nil
}
