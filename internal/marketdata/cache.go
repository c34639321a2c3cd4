package marketdata

import (
	"context"
	"time"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/pkg/logger"
	"github.com/wonny/trendday/pkg/redis"
)

// CachedRepository caches price tables and universes in Redis.
// Cache failures are logged and fall through to the source.
type CachedRepository struct {
	source Source
	cache  *redis.Cache
	loc    *time.Location
	logger *logger.Logger
	now    func() time.Time
}

var _ Source = (*CachedRepository)(nil)

// NewCachedRepository wraps source with cache
func NewCachedRepository(source Source, cache *redis.Cache, loc *time.Location, log *logger.Logger) *CachedRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &CachedRepository{
		source: source,
		cache:  cache,
		loc:    loc,
		logger: log,
		now:    time.Now,
	}
}

// UniverseSymbols returns cached membership when available
func (c *CachedRepository) UniverseSymbols(ctx context.Context, universe string) ([]string, error) {
	key := redis.UniverseKey(universe)

	var symbols []string
	if found, err := c.cache.Get(ctx, key, &symbols); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache get failed")
	} else if found {
		return symbols, nil
	}

	symbols, err := c.source.UniverseSymbols(ctx, universe)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, symbols, redis.TTLDaily); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache set failed")
	}
	return symbols, nil
}

// LoadPrices returns a cached table when available
func (c *CachedRepository) LoadPrices(ctx context.Context, q contracts.PriceQuery) (*contracts.PriceTable, error) {
	key := PriceKey(q)

	var table contracts.PriceTable
	if found, err := c.cache.Get(ctx, key, &table); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache get failed")
	} else if found {
		c.logger.WithField("key", key).Debug("Price table cache hit")
		return &table, nil
	}

	loaded, err := c.source.LoadPrices(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, loaded, c.ttl(q)); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache set failed")
	}
	return loaded, nil
}

// ttl keeps ranges that include today short-lived
func (c *CachedRepository) ttl(q contracts.PriceQuery) time.Duration {
	today := c.now().In(c.loc).Format(contracts.SessionLayout)
	if contracts.SessionKey(q.To) >= today {
		return redis.TTLShort
	}
	return redis.TTLDaily
}

// PriceKey returns the cache key of a price query
func PriceKey(q contracts.PriceQuery) string {
	fields := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		fields[i] = string(f)
	}
	return redis.PriceTableKey(q.DB, q.Universe,
		contracts.SessionKey(q.From), contracts.SessionKey(q.To), q.Times, fields)
}
