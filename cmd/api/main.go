package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/appforge-io/appforge-backend/config"
	"github.com/appforge-io/appforge-backend/internal/bootstrap"
	"github.com/appforge-io/appforge-backend/internal/db"
	"github.com/appforge-io/appforge-backend/internal/queue"
	"github.com/appforge-io/appforge-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := db.Open(ctx, postgres.DSN(&cfg.Database))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open sql connection: %v", err)
	}
	defer sqlDB.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	buildQueue := queue.New(rdb, cfg.Worker.QueueKey)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "appforge-api",
		Version:       cfg.App.Version,
		Pool:          pool.Pool,
		SQLDB:         sqlDB,
		Publisher:     buildQueue,
		Queue:         buildQueue,
		HistoryWindow: cfg.Agent.HistoryWindow,
	})

	log.Printf("appforge-api listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
