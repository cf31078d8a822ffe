package infra

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/schemes-portal/schemes_portal/internal/config"
)

// Resources holds the connections selected by configuration. Fields are nil
// when the corresponding store is not in use.
type Resources struct {
	Postgres *pgxpool.Pool
	SQLite   *sql.DB
	Cache    *redis.Client
}

// Open connects to the stores required by cfg.DataBackend and, when
// configured, Redis. Schemas are created when MigrateOnStart is set or the
// store is a local SQLite file.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Resources, error) {
	res := &Resources{}

	switch cfg.DataBackend {
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.Postgres = pool
		if cfg.MigrateOnStart {
			if err := EnsurePostgresSchema(ctx, pool); err != nil {
				res.Close()
				return nil, err
			}
		}
	case config.DriverSQLite:
		db, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		res.SQLite = db
		if err := EnsureSQLiteSchema(ctx, db); err != nil {
			res.Close()
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.Cache = cache
	} else if logger != nil {
		logger.Warn("REDIS_URL not set; sessions and OTP state are kept in process memory")
	}

	return res, nil
}

// Ping checks every open store.
func (r *Resources) Ping(ctx context.Context) map[string]error {
	status := map[string]error{}
	if r.Postgres != nil {
		status["postgres"] = r.Postgres.Ping(ctx)
	}
	if r.SQLite != nil {
		status["sqlite"] = r.SQLite.PingContext(ctx)
	}
	if r.Cache != nil {
		status["redis"] = r.Cache.Ping(ctx).Err()
	}
	return status
}

// Close releases every open connection.
func (r *Resources) Close() error {
	var errs []error
	if r.Postgres != nil {
		r.Postgres.Close()
	}
	if r.SQLite != nil {
		errs = append(errs, r.SQLite.Close())
	}
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	return errors.Join(errs...)
}
