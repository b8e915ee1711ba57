package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/internal/identity"
	"github.com/sponsorship-studio/engine/internal/repository"
	"github.com/sponsorship-studio/engine/pkg/config"
	"github.com/sponsorship-studio/engine/pkg/database"
	"github.com/sponsorship-studio/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for migrations")
	}

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if err := identity.SeedDirectory(ctx, repository.NewUserRepository(db), cfg.BcryptCost); err != nil {
		log.Fatal("seeding user directory failed", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}
