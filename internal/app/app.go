// Package app 依設定組裝 override 儲存、PATCH 隊列、服務、dispatcher 與 worker，
// 供 cmd/server 與 cmd/filmdesk 共用。
package app

import (
	"context"
	"fmt"

	"film-ticket-desk/config"
	"film-ticket-desk/internal/cache"
	"film-ticket-desk/internal/database"
	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/filmapi"
	"film-ticket-desk/internal/queue"
	"film-ticket-desk/internal/repository"
	"film-ticket-desk/internal/service"
	"film-ticket-desk/internal/view"
	"film-ticket-desk/internal/worker"
	apperrors "film-ticket-desk/pkg/app_errors"
	"film-ticket-desk/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Dispatcher *dispatch.Dispatcher

	cfg     *config.Config
	worker  worker.PatchWorker
	rdb     *redis.Client
	closers []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	return NewWithClient(ctx, cfg, filmapi.NewFilmClient(cfg.FilmsAPI.BaseURL, cfg.FilmsAPI.Timeout))
}

// NewWithClient 與 New 相同，但使用指定的 films API client
func NewWithClient(ctx context.Context, cfg *config.Config, client filmapi.FilmClient) (*App, error) {
	a := &App{cfg: cfg}

	store, err := a.overrideStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	patchQueue, err := a.patchQueue(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	catalog := service.NewCatalogService(client, store)
	tracker := service.NewTrackerService(store, patchQueue, cfg.Tracker.ReconcilePatch)
	a.Dispatcher = dispatch.NewDispatcher(catalog, tracker, view.NewRenderer())
	a.worker = worker.NewPatchWorker(client, patchQueue, a.Dispatcher)

	return a, nil
}

// Start 啟動事件迴圈與 PATCH worker，並開始載入第一部電影與清單
func (a *App) Start(ctx context.Context) error {
	go a.Dispatcher.Run(ctx)

	if err := a.worker.Start(ctx); err != nil {
		return fmt.Errorf("start patch worker: %w", err)
	}

	return a.Dispatcher.Boot(ctx, a.cfg.App.FirstFilmID)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.rdb != nil {
		return a.rdb, nil
	}
	rdb, err := database.InitRedis(ctx, &a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	a.rdb = rdb
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return rdb, nil
}

func (a *App) overrideStore(ctx context.Context) (cache.OverrideStore, error) {
	log := logger.WithComponent("app")

	switch a.cfg.Store.Backend {
	case config.StoreRedis:
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("Using redis override store", zap.String("addr", rdb.Options().Addr))
		return cache.NewRedisOverrideStore(rdb), nil

	case config.StorePostgres:
		pool, err := database.InitDatabase(ctx, &a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		repo := repository.NewOverrideRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure override schema: %w", err)
		}
		log.Info("Using postgres override store", zap.String("db", a.cfg.Database.DBName))
		return repo, nil

	case config.StoreMemory:
		log.Warn("Using in-memory override store; purchases are lost on exit")
		return cache.NewMemoryOverrideStore(), nil
	}

	return nil, fmt.Errorf("%w: unknown override store %q", apperrors.ErrInvalidInput, a.cfg.Store.Backend)
}

func (a *App) patchQueue(ctx context.Context) (queue.PatchQueue, error) {
	switch a.cfg.Queue.Backend {
	case config.QueueMemory:
		return queue.NewPatchQueue(a.cfg.Queue.BufferSize), nil

	case config.QueueRedis:
		rdb, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisStreamPatchQueue(ctx, rdb, a.cfg.Queue.ConsumerID, nil)
	}

	return nil, fmt.Errorf("%w: unknown patch queue %q", apperrors.ErrInvalidInput, a.cfg.Queue.Backend)
}
