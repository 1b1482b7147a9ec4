// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uber/h3-go/v4"
)

// Cache TTLs. Geocode entries are refreshed on every resolution so they can
// live longer; search result sets only expire.
const (
	geocodeTTL = time.Hour
	searchTTL  = 10 * time.Minute
)

// searchKeyResolution is the H3 resolution used to quantize search-cache
// keys. At resolution 7 a cell covers ~5 km², so two nearby "jobs near me"
// queries from the same neighborhood share one cached result set.
const searchKeyResolution = 7

// Cache is the advisory cache-aside layer in front of the Location Store.
// It is never authoritative: every operation is best-effort, failures are
// logged and behave as a miss, and callers must always be able to proceed
// without it.
type Cache interface {
	GetGeocode(ctx context.Context, jobID string) (*JobLocation, bool)
	SetGeocode(ctx context.Context, jobID string, loc *JobLocation)
	InvalidateGeocode(ctx context.Context, jobID string)

	GetSearch(ctx context.Context, query SearchQuery) ([]*ResolvedJob, bool)
	SetSearch(ctx context.Context, query SearchQuery, jobs []*ResolvedJob)
}

type redisCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisCache creates a Redis-backed Cache.
func NewRedisCache(rdb *redis.Client, log zerolog.Logger) Cache {
	return &redisCache{rdb: rdb, log: log}
}

func geocodeCacheKey(jobID string) string {
	return "geocode:" + jobID
}

// searchCacheKey quantizes the query point to an H3 cell so that
// nearby-but-not-identical queries reuse one entry. The radius stays exact:
// a 5 km and a 50 km search from the same block are different result sets.
func searchCacheKey(query SearchQuery) string {
	cell, err := h3.LatLngToCell(h3.NewLatLng(query.Latitude, query.Longitude), searchKeyResolution)
	if err != nil {
		// Degenerate input; fall back to the exact triple.
		return fmt.Sprintf("search:%.5f:%.5f:%g", query.Latitude, query.Longitude, query.RadiusKm)
	}

	return fmt.Sprintf("search:%s:%g", cell, query.RadiusKm)
}

func (c *redisCache) GetGeocode(ctx context.Context, jobID string) (*JobLocation, bool) {
	var loc JobLocation
	if !c.get(ctx, geocodeCacheKey(jobID), &loc) {
		return nil, false
	}

	return &loc, true
}

func (c *redisCache) SetGeocode(ctx context.Context, jobID string, loc *JobLocation) {
	c.set(ctx, geocodeCacheKey(jobID), loc, geocodeTTL)
}

func (c *redisCache) InvalidateGeocode(ctx context.Context, jobID string) {
	if err := c.rdb.Del(ctx, geocodeCacheKey(jobID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("job_id", jobID).Msg("cache invalidate failed")
	}
}

func (c *redisCache) GetSearch(ctx context.Context, query SearchQuery) ([]*ResolvedJob, bool) {
	var jobs []*ResolvedJob
	if !c.get(ctx, searchCacheKey(query), &jobs) {
		return nil, false
	}

	return jobs, true
}

func (c *redisCache) SetSearch(ctx context.Context, query SearchQuery, jobs []*ResolvedJob) {
	c.set(ctx, searchCacheKey(query), jobs, searchTTL)
}

func (c *redisCache) get(ctx context.Context, key string, dest any) bool {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}

		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")

		if dErr := c.rdb.Del(ctx, key).Err(); dErr != nil {
			c.log.Warn().Err(dErr).Str("key", key).Msg("cache delete failed")
		}

		return false
	}

	return true
}

func (c *redisCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")

		return
	}

	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

type noopCache struct{}

// NewNoopCache returns a Cache that always misses. Used when no Redis is
// configured so the service degrades to direct store access.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) GetGeocode(context.Context, string) (*JobLocation, bool) { return nil, false }
func (noopCache) SetGeocode(context.Context, string, *JobLocation)        {}
func (noopCache) InvalidateGeocode(context.Context, string)               {}
func (noopCache) GetSearch(context.Context, SearchQuery) ([]*ResolvedJob, bool) {
	return nil, false
}
func (noopCache) SetSearch(context.Context, SearchQuery, []*ResolvedJob) {}
