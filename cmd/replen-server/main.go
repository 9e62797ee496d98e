package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/archive"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/engine"
	"github.com/jayjaydesai/WorkBot/pkg/config"
	"github.com/jayjaydesai/WorkBot/pkg/domain/repositories"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/blob"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/events"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/metrics"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/repositories/memory"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/repositories/sqlstore"
	"github.com/jayjaydesai/WorkBot/pkg/interfaces/http/handlers"
	"github.com/jayjaydesai/WorkBot/pkg/interfaces/http/router"
	"github.com/jayjaydesai/WorkBot/pkg/interfaces/scheduler"
	"github.com/jayjaydesai/WorkBot/pkg/logger"
)

// eventRetention bounds how many runs the in-process event store keeps
const eventRetention = 256

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runs, err := openRunRepository(ctx, cfg.Store)
	if err != nil {
		baseLogger.Fatal("failed to init run repository", zap.Error(err))
	}
	defer func() {
		if err := runs.Close(); err != nil {
			baseLogger.Error("failed to close run repository", zap.Error(err))
		}
	}()

	blobs, err := blob.Open(ctx, blob.Options{
		Driver: blob.Driver(cfg.Blob.Driver),
		Dir:    cfg.Blob.Dir,
		S3: blob.S3Config{
			Region:    cfg.Blob.S3Region,
			Bucket:    cfg.Blob.S3Bucket,
			Endpoint:  cfg.Blob.S3Endpoint,
			PathStyle: cfg.Blob.S3PathStyle,
		},
	})
	if err != nil {
		baseLogger.Fatal("failed to init blob store", zap.Error(err))
	}

	eventStore := events.NewInMemoryEventStore(eventRetention, baseLogger.Named("events"))
	recorder := metrics.NewRecorder()
	if err := eventStore.Subscribe(events.AllTypes, recorder); err != nil {
		baseLogger.Fatal("failed to subscribe metrics", zap.Error(err))
	}

	engineSvc := engine.NewService(engine.EngineConfig{Workers: cfg.Engine.Workers}, eventStore, baseLogger.Named("svc.engine"))
	archiveSvc := archive.NewService(runs, blobs, baseLogger.Named("svc.archive"))

	runHandler := handlers.NewRunHandler(engineSvc, archiveSvc, baseLogger.Named("handlers.runs"))
	ginEngine := router.New(runHandler, recorder.Handler(), baseLogger.Named("router"))

	if cfg.Scheduler.Schedule != "" {
		sched := scheduler.NewScheduler(engineSvc, archiveSvc, baseLogger.Named("scheduler"))
		if err := sched.Add(scheduler.Job{
			Schedule: cfg.Scheduler.Schedule,
			Input:    cfg.Scheduler.Input,
			Workflow: cfg.Scheduler.Workflow,
		}); err != nil {
			baseLogger.Fatal("failed to schedule run", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openRunRepository(ctx context.Context, cfg config.StoreConfig) (repositories.RunRepository, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return sqlstore.OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return memory.NewRunRepository(), nil
	}
}
