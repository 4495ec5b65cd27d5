package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/config"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/media"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue"
	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	gateway := llm.NewGateway(cfg.Providers)
	crafter := media.NewCrafter(gateway, cfg.Media.CraftModel)
	videoGen := media.NewVideoGenerator(gateway, crafter, cfg.Media)
	jobStore := media.NewJobStore(rdb, cfg.Media.ResultTTL)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Video jobs spend their time waiting on provider polls, so a
			// small amount of parallelism goes a long way.
			Concurrency: 4,
		},
	)

	mux := asynq.NewServeMux()

	videoWorker := workers.NewVideoWorker(videoGen, jobStore)
	mux.Handle(queue.TypeVideoGenerate, asynq.HandlerFunc(videoWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 4)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
