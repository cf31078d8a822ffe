package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix        = "catalog:v1:"
	categoriesCacheKey = cachePrefix + "categories"
	schemesCacheKey    = cachePrefix + "schemes"
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. Cache failures fall back to the underlying store.
type CachedRepository struct {
	next   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository wraps next with a Redis cache holding lists for ttl.
func NewCachedRepository(next Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedRepository) ListCategories(ctx context.Context) ([]Category, error) {
	return readThrough(ctx, r, categoriesCacheKey, r.next.ListCategories)
}

func (r *CachedRepository) ListSchemes(ctx context.Context) ([]Scheme, error) {
	return readThrough(ctx, r, schemesCacheKey, r.next.ListSchemes)
}

func (r *CachedRepository) UpsertCategory(ctx context.Context, c Category) error {
	if err := r.next.UpsertCategory(ctx, c); err != nil {
		return err
	}
	r.invalidate(ctx, categoriesCacheKey)
	return nil
}

func (r *CachedRepository) UpsertScheme(ctx context.Context, s Scheme) error {
	if err := r.next.UpsertScheme(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx, schemesCacheKey)
	return nil
}

func (r *CachedRepository) invalidate(ctx context.Context, key string) {
	if err := r.cache.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("catalog cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}

func readThrough[T any](ctx context.Context, r *CachedRepository, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	cached, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
		r.logger.Warn("catalog cache entry undecodable", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("catalog cache lookup failed", slog.String("key", key), slog.Any("error", err))
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("catalog cache store failed", slog.String("key", key), slog.Any("error", err))
	}
	return out, nil
}
