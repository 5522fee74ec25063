package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"resumeBuilder/internal/api"
	"resumeBuilder/internal/avatar"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("api bootstrapped",
		slog.String("db_driver", cfg.Database.Driver),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Bool("archive", cfg.MinIO.Enabled()),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready")

	docs := store.New(db)
	editors := editor.NewRegistry(docs, editor.Options{
		Delay:       cfg.Autosave.Delay,
		SaveTimeout: cfg.Autosave.SaveTimeout,
		Logger:      logger,
	})

	deps := api.Deps{
		Store:    docs,
		Editors:  editors,
		Exporter: export.NewFromConfig(cfg.Export, logger),
		Avatars:  avatar.NewFromConfig(cfg.Avatar),
		Limits: api.ExportLimits{
			RateLimit:  cfg.Export.RateLimit,
			RateWindow: cfg.Export.RateWindow,
			LinkExpiry: cfg.Export.LinkExpiry,
			MaxRetry:   cfg.Worker.MaxRetry,
			Timeout:    cfg.Export.Timeout,
		},
		Logger:         logger,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MinIO.Enabled() {
		storageClient, err := storage.NewClient(ctx, cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		deps.Archive = storageClient
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))
	}

	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}

		queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Error("close asynq client failed", slog.Any("error", err))
			}
		}()
		deps.Redis = redisClient
		deps.Queue = queue
		logger.Info("redis connection ready", slog.String("redis_addr", cfg.Redis.Addr()))
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
		// 关闭前把所有未保存的修改写回存储。
		if err := editors.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("flush editors: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("api stopped")
}
