package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/config"
	"survey-service/internal/infra/memory"
	pgstore "survey-service/internal/infra/postgres"
	redisstore "survey-service/internal/infra/redis"
	"survey-service/internal/infra/sqlite"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backend holds the repositories selected by config: Postgres when postgres.url is
// set, else SQLite when sqlite.path is set, else in-memory. Redis, when configured,
// takes over token storage and caches the catalog.
type backend struct {
	name       string
	tokens     app.TokenRepository
	catalog    app.CatalogRepository
	responses  app.ResponseRepository
	persistent bool
	closers    []func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	cacheTTL := config.TTLDuration(cfg.Survey.CacheTTL, 10*time.Minute)

	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.name = "postgres"
		b.persistent = true
		b.tokens = pgstore.NewTokenStore(pool)
		b.catalog = pgstore.NewCatalog(pool)
		b.responses = pgstore.NewResponseStore(pool)
	case cfg.SQLite.Path != "":
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { closeDB(db) })
		b.name = "sqlite"
		b.persistent = true
		b.tokens = sqlite.NewTokenStore(db)
		b.catalog = sqlite.NewCatalog(db)
		b.responses = sqlite.NewResponseStore(db)
	default:
		b.name = "memory"
		b.tokens = memory.NewTokenStore()
		b.catalog = memory.NewCatalog()
		b.responses = memory.NewResponseStore()
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, func() { client.Close() })
		b.name += "+redis"
		b.tokens = redisstore.NewTokenStore(client)
		b.catalog = redisstore.NewCatalogCache(client, b.catalog, cacheTTL)
	} else if b.name != "memory" {
		b.catalog = memory.NewCatalogCache(b.catalog, cacheTTL)
	}
	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("close sqlite: %v", err)
	}
}
