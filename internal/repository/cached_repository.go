package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/cache"
	"github.com/Kosench/tinyapp/internal/model"
)

// CachedURLRepository - декоратор с кэшированием поверх любого URLRepository.
// Ошибки кэша логируются и не прерывают операцию.
type CachedURLRepository struct {
	next   URLRepository
	cache  cache.Cache
	keys   *cache.KeyBuilder
	logger zerolog.Logger
}

func NewCachedURLRepository(next URLRepository, c cache.Cache, keys *cache.KeyBuilder, logger zerolog.Logger) *CachedURLRepository {
	return &CachedURLRepository{
		next:   next,
		cache:  c,
		keys:   keys,
		logger: logger.With().Str("component", "url_cache").Logger(),
	}
}

func (r *CachedURLRepository) Put(ctx context.Context, url *model.URL) error {
	if err := r.next.Put(ctx, url); err != nil {
		return err
	}

	r.store(ctx, url)
	return nil
}

func (r *CachedURLRepository) Create(ctx context.Context, url *model.URL) error {
	if err := r.next.Create(ctx, url); err != nil {
		return err
	}

	r.store(ctx, url)
	return nil
}

// Get сначала проверяет кэш, при промахе идет в хранилище
func (r *CachedURLRepository) Get(ctx context.Context, shortCode string) (*model.URL, error) {
	key := r.keys.URL(shortCode)

	var cached model.URL
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}

	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("short_code", shortCode).Msg("cache read failed")
	}

	url, err := r.next.Get(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	r.store(ctx, url)
	return url, nil
}

func (r *CachedURLRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	exists, err := r.cache.Exists(ctx, r.keys.URL(shortCode))
	if err == nil && exists {
		return true, nil
	}

	return r.next.Exists(ctx, shortCode)
}

func (r *CachedURLRepository) Update(ctx context.Context, shortCode, longURL string) error {
	if err := r.next.Update(ctx, shortCode, longURL); err != nil {
		return err
	}

	r.invalidate(ctx, shortCode)
	return nil
}

func (r *CachedURLRepository) Delete(ctx context.Context, shortCode string) error {
	if err := r.next.Delete(ctx, shortCode); err != nil {
		return err
	}

	r.invalidate(ctx, shortCode)
	return nil
}

func (r *CachedURLRepository) List(ctx context.Context) ([]model.URL, error) {
	return r.next.List(ctx)
}

func (r *CachedURLRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.URL, error) {
	return r.next.ListByOwner(ctx, ownerID)
}

func (r *CachedURLRepository) store(ctx context.Context, url *model.URL) {
	if err := r.cache.Set(ctx, r.keys.URL(url.ShortCode), url); err != nil {
		r.logger.Warn().Err(err).Str("short_code", url.ShortCode).Msg("failed to cache URL")
	}
}

func (r *CachedURLRepository) invalidate(ctx context.Context, shortCode string) {
	if err := r.cache.Delete(ctx, r.keys.URL(shortCode)); err != nil {
		r.logger.Warn().Err(err).Str("short_code", shortCode).Msg("failed to invalidate URL cache")
	}
}
