package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appforge-io/appforge-backend/config"
	"github.com/appforge-io/appforge-backend/internal/agent"
	"github.com/appforge-io/appforge-backend/internal/buildctx"
	"github.com/appforge-io/appforge-backend/internal/builds"
	cronjob "github.com/appforge-io/appforge-backend/internal/cron"
	"github.com/appforge-io/appforge-backend/internal/db"
	"github.com/appforge-io/appforge-backend/internal/llm"
	"github.com/appforge-io/appforge-backend/internal/projects/repository"
	"github.com/appforge-io/appforge-backend/internal/queue"
	"github.com/appforge-io/appforge-backend/internal/sandbox"
	"github.com/appforge-io/appforge-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	projectRepo := repository.NewProjectRepo(pool.Pool)
	messageRepo := repository.NewMessageRepo(sqlDB)

	contexts := buildctx.NewBuilder(messageRepo, buildctx.NewKeywordClassifier(), cfg.Agent.HistoryWindow)

	provider := sandbox.NewClient(cfg.Sandbox.BaseURL, cfg.Sandbox.APIKey, cfg.Sandbox.PreviewDomain)
	manager := sandbox.NewManager(provider, projectRepo, cfg.Sandbox.Template, time.Duration(cfg.Sandbox.TTLMinutes)*time.Minute)

	llmClient, err := llm.NewGollmClient(cfg.Agent.Provider, cfg.Agent.Model, cfg.Agent.APIKey)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	runner := agent.NewRunner(llmClient, cfg.Agent.MaxIterations, cfg.Agent.RequestsPerMinute)

	service := builds.NewService(contexts, manager, runner, messageRepo, messageRepo, cfg.Sandbox.PreviewPort)

	scheduler := cronjob.NewScheduler(manager, cfg.Worker.CleanupSchedule)
	scheduler.Start()
	defer scheduler.Stop()

	buildQueue := queue.New(rdb, cfg.Worker.QueueKey)

	log.Printf("appforge-worker consuming %q", cfg.Worker.QueueKey)
	for {
		ev, err := buildQueue.Next(ctx)
		if ctx.Err() != nil {
			log.Println("worker shutting down")
			return
		}
		if err != nil {
			log.Printf("dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if ev == nil {
			continue
		}

		if err := service.HandleBuild(ctx, ev.ProjectID, ev.Value); err != nil {
			log.Printf("build for project %s failed: %v", ev.ProjectID, err)
		}
	}
}
