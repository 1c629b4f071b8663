// Package bootstrap wires storage, the notification bus and the repository
// from configuration. Connections are opened once and shared between the
// store and the bus when both use the same service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"canteen-system/internal/common/config"
	"canteen-system/internal/common/db"
	"canteen-system/internal/common/logger"
	"canteen-system/internal/common/mq"
	"canteen-system/internal/common/rdb"
	"canteen-system/internal/notify"
	"canteen-system/internal/repository"
	"canteen-system/internal/store"
)

type Runtime struct {
	Config config.Config
	Store  *store.Adapter
	Bus    notify.Bus
	Repo   *repository.Canteen

	pg      *db.Conn
	redis   *redis.Client
	closers []func()
}

// Build opens what cfg asks for. On error everything opened so far is
// closed again.
func Build(ctx context.Context, cfg config.Config, lg *logger.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg}
	ready := false
	defer func() {
		if !ready {
			rt.Close()
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	backend, err := rt.backend(ctx, cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("storage %s: %w", cfg.Storage.Driver, err)
	}
	rt.Store = store.New(backend, lg.Named("store"))
	rt.closers = append(rt.closers, func() { _ = rt.Store.Close() })

	rt.Bus, err = rt.bus(ctx, cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("notify %s: %w", cfg.Notify.Driver, err)
	}
	rt.closers = append(rt.closers, func() { _ = rt.Bus.Close() })

	rt.Repo = repository.New(rt.Store, rt.Bus, lg.Named("repository"), repository.WithLocation(loc))
	ready = true
	lg.Info("runtime_ready", map[string]any{
		"storage": cfg.Storage.Driver, "notify": cfg.Notify.Driver,
		"instance": cfg.App.Instance, "timezone": loc.String(),
	})
	return rt, nil
}

func (rt *Runtime) backend(ctx context.Context, cfg config.Config, lg *logger.Logger) (store.Backend, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemoryBackend(), nil
	case "file":
		fb, err := store.NewFileBackend(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		lg.Info("file_store_opened", map[string]any{"path": fb.Path()})
		return fb, nil
	case "postgres":
		pg, err := rt.postgres(ctx, cfg, lg)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresBackend(ctx, pg.Pool, cfg.Storage.Key)
	case "redis":
		client, err := rt.redisClient(ctx, cfg, lg)
		if err != nil {
			return nil, err
		}
		return store.NewRedisBackend(client, cfg.Storage.Key)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func (rt *Runtime) bus(ctx context.Context, cfg config.Config, lg *logger.Logger) (notify.Bus, error) {
	source := cfg.App.Instance
	blg := lg.Named("notify")
	switch cfg.Notify.Driver {
	case "local":
		return notify.NewLocal(), nil
	case "postgres":
		pg, err := rt.postgres(ctx, cfg, lg)
		if err != nil {
			return nil, err
		}
		return notify.NewPostgres(pg.Pool, cfg.Notify.Channel, source, blg), nil
	case "redis":
		client, err := rt.redisClient(ctx, cfg, lg)
		if err != nil {
			return nil, err
		}
		return notify.NewRedis(client, cfg.Redis.Channel, source, blg), nil
	case "rabbitmq":
		client, err := mq.Dial(cfg.Rabbit)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "exchange": cfg.Rabbit.Exchange})
		return notify.NewRabbitMQ(client, cfg.Rabbit.Exchange, source, blg)
	}
	return nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
}

func (rt *Runtime) postgres(ctx context.Context, cfg config.Config, lg *logger.Logger) (*db.Conn, error) {
	if rt.pg != nil {
		return rt.pg, nil
	}
	pg, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	rt.pg = pg
	rt.closers = append(rt.closers, pg.Close)
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Database})
	return pg, nil
}

func (rt *Runtime) redisClient(ctx context.Context, cfg config.Config, lg *logger.Logger) (*redis.Client, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	client, err := rdb.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	rt.redis = client
	rt.closers = append(rt.closers, func() { _ = client.Close() })
	lg.Info("redis_connected", map[string]any{"addr": cfg.Redis.Addr})
	return client, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
