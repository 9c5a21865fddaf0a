package main

import (
	"context"
	"fmt"

	"github.com/jwalitptl/popdoc-api/config"
	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/cached"
	"github.com/jwalitptl/popdoc-api/internal/repository/jsonfile"
	"github.com/jwalitptl/popdoc-api/internal/repository/memory"
	"github.com/jwalitptl/popdoc-api/internal/repository/mongo"
	"github.com/jwalitptl/popdoc-api/internal/repository/postgres"
	"github.com/jwalitptl/popdoc-api/internal/repository/redis"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// openStore builds the configured user store, instrumented and optionally cached
func openStore(ctx context.Context, cfg config.StorageConfig, m *metrics.Metrics) (repository.UserRepository, error) {
	var store repository.UserRepository

	switch cfg.Driver {
	case config.DriverJSONFile:
		s, err := jsonfile.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		store = s
	case config.DriverMemory:
		store = memory.New()
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, postgres.Config{
			URL:             cfg.Postgres.URL,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		store = postgres.NewUserRepository(db)
	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, err
		}
		store = redis.New(client, cfg.Redis.KeyPrefix)
	case config.DriverMongo:
		mcfg := mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}
		client, err := mongo.Connect(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		s, err := mongo.New(ctx, client, mcfg)
		if err != nil {
			client.Disconnect(context.Background())
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	store = repository.Instrument(store, cfg.Driver, m)
	if cfg.CacheTTL > 0 {
		store = cached.New(store, cfg.CacheTTL)
	}
	return store, nil
}
