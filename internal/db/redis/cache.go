package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/BlackRRR/persona-bot/internal/log"
	"github.com/go-redis/redis"
)

const cacheKeyPrefix = "listing:"

// CachedLister keeps listing results in redis for TTL. Redis failures are
// logged and the call falls through to the wrapped source.
type CachedLister struct {
	rdb    *redis.Client
	next   model.Lister
	name   string
	ttl    time.Duration
	logger log.Logger
}

func NewCachedLister(rdb *redis.Client, next model.Lister, name string, ttl time.Duration, logger log.Logger) *CachedLister {
	return &CachedLister{
		rdb:    rdb,
		next:   next,
		name:   name,
		ttl:    ttl,
		logger: logger.Prefix("listing cache"),
	}
}

func (c *CachedLister) List(ctx context.Context, filter model.Filter) ([]model.Record, error) {
	if c.ttl <= 0 {
		return c.next.List(ctx, filter)
	}

	key := c.key(filter)
	client := c.rdb.WithContext(ctx)

	raw, err := client.Get(key).Bytes()
	switch {
	case err == nil:
		var records []model.Record
		if jsonErr := json.Unmarshal(raw, &records); jsonErr == nil {
			return records, nil
		}
		c.logger.With("key", key).Warn("drop undecodable cache entry")
	case err != redis.Nil:
		c.logger.With("key", key, "error", err.Error()).Warn("cache read failed")
	}

	records, err := c.next.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := client.Set(key, data, c.ttl).Err(); err != nil {
		c.logger.With("key", key, "error", err.Error()).Warn("cache write failed")
	}

	return records, nil
}

func (c *CachedLister) key(filter model.Filter) string {
	return cacheKeyPrefix + c.name + ":" +
		strings.ToLower(strings.TrimSpace(filter.Search)) + ":" +
		filter.ID + ":" +
		strconv.Itoa(filter.Limit)
}
