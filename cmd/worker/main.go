package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sponsorship-studio/engine/internal/queue/tasks"
	"github.com/sponsorship-studio/engine/internal/slot"
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

	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		log.Fatal("worker requires REDIS_ADDR and DATABASE_URL")
	}

	ctx := context.Background()
	rdb, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	_ = rdb.Close()

	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.AsynqConcurrency,
	})

	mux := asynq.NewServeMux()
	handler := tasks.NewPurgeTaskHandler(slot.NewGormStore(db), cfg.SessionTTL)
	mux.HandleFunc(tasks.TypePurgeSessions, handler.HandlePurge)

	var scheduler *asynq.Scheduler
	if cfg.PurgeInterval > 0 {
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
		task, err := tasks.NewPurgeTask(0)
		if err != nil {
			log.Fatal("build purge task failed", zap.Error(err))
		}
		if _, err := scheduler.Register("@every "+cfg.PurgeInterval.String(), task); err != nil {
			log.Fatal("register purge schedule failed", zap.Error(err))
		}
	}

	log.Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
	if err := srv.Start(mux); err != nil {
		log.Fatal("worker failed to start", zap.Error(err))
	}
	if scheduler != nil {
		log.Info("purge scheduler starting", zap.Duration("interval", cfg.PurgeInterval))
		if err := scheduler.Start(); err != nil {
			log.Fatal("scheduler failed to start", zap.Error(err))
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	if scheduler != nil {
		scheduler.Shutdown()
	}
	srv.Shutdown()
}
