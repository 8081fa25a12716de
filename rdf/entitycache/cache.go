// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package entitycache is a Redis-backed source of referenced-entity display
// terms for the Turtle serializer.
package entitycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"github.com/wikigraph/entitystore/rdf"
)

var (
	// Error is the default entitycache error class.
	Error = errs.Class("entitycache")

	mon = monkit.Package()
)

const keyPrefix = "entitymeta:"

// Config configures the Redis connection.
type Config struct {
	Address  string        `help:"redis host:port" default:"localhost:6379"`
	Password string        `help:"redis password" default:""`
	DB       int           `help:"redis database number" default:"0"`
	TTL      time.Duration `help:"expiration for cached entries, 0 keeps them forever" default:"0"`
}

// Cache implements rdf.MetaSource on Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, config Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, Error.Wrap(err)
	}
	return &Cache{client: client, ttl: config.TTL}, nil
}

// entry is the stored JSON shape.
type entry struct {
	Labels       map[string]string `json:"labels,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

// Lookup implements rdf.MetaSource.
func (cache *Cache) Lookup(ctx context.Context, entityID string) (_ rdf.Meta, _ bool, err error) {
	defer mon.Task()(&ctx)(&err)

	raw, err := cache.client.Get(ctx, keyPrefix+entityID).Bytes()
	if errors.Is(err, redis.Nil) {
		return rdf.Meta{}, false, nil
	}
	if err != nil {
		return rdf.Meta{}, false, Error.Wrap(err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return rdf.Meta{}, false, Error.New("corrupt entry for %s: %v", entityID, err)
	}
	return rdf.Meta{Labels: e.Labels, Descriptions: e.Descriptions}, true, nil
}

// Store caches display terms for an entity.
func (cache *Cache) Store(ctx context.Context, entityID string, meta rdf.Meta) (err error) {
	defer mon.Task()(&ctx)(&err)

	raw, err := json.Marshal(entry{Labels: meta.Labels, Descriptions: meta.Descriptions})
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(cache.client.Set(ctx, keyPrefix+entityID, raw, cache.ttl).Err())
}

// Invalidate drops the cached terms for an entity.
func (cache *Cache) Invalidate(ctx context.Context, entityID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return Error.Wrap(cache.client.Del(ctx, keyPrefix+entityID).Err())
}

// Ping reports connection health.
func (cache *Cache) Ping(ctx context.Context) error {
	return Error.Wrap(cache.client.Ping(ctx).Err())
}

// Close releases the client.
func (cache *Cache) Close() error {
	return Error.Wrap(cache.client.Close())
}
