package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
	"resumeBuilder/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if !cfg.Redis.Enabled() || !cfg.MinIO.Enabled() {
		log.Fatal("worker requires REDIS_HOST and MINIO_ENDPOINT")
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Println("database connection ready for worker")

	ctx := context.Background()

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{tasks.QueueExports: 1},
	})

	// 导出管线同一时间只允许一个渲染，并发度大于 1 时多余任务会以 busy 重试。
	pipeline := export.NewFromConfig(cfg.Export, logger)
	exportHandler := worker.NewExportTaskHandler(store.New(db), pipeline, storageClient, redisClient, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeExportPDF, exportHandler)

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", concurrency),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
