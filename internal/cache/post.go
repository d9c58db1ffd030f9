// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bloghub/internal/models"
)

const (
	postIDPrefix   = "post:id:"
	postSlugPrefix = "post:slug:"

	// DefaultPostTTL is how long a post stays cached.
	DefaultPostTTL = 5 * time.Minute
)

// PostCache caches single-post reads by id and by slug. Cache failures are
// logged and treated as misses; they never fail a request.
type PostCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewPostCache creates a post cache backed by client.
func NewPostCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *PostCache {
	if ttl == 0 {
		ttl = DefaultPostTTL
	}
	return &PostCache{client: client, ttl: ttl, log: log}
}

// cachedPost keeps the author id, which the public JSON form omits.
type cachedPost struct {
	*models.Post
	AuthorID uuid.UUID `json:"authorId"`
}

// IDKey returns the cache key for a post id.
func IDKey(id uuid.UUID) string { return postIDPrefix + id.String() }

// SlugKey returns the cache key for a post slug.
func SlugKey(slug string) string { return postSlugPrefix + slug }

// GetByID returns the cached post, or nil on a miss.
func (c *PostCache) GetByID(ctx context.Context, id uuid.UUID) *models.Post {
	return c.get(ctx, IDKey(id))
}

// GetBySlug returns the cached post, or nil on a miss.
func (c *PostCache) GetBySlug(ctx context.Context, slug string) *models.Post {
	return c.get(ctx, SlugKey(slug))
}

func (c *PostCache) get(ctx context.Context, key string) *models.Post {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.log.Warn("post cache get error", zap.String("key", key), zap.Error(err))
		return nil
	}

	var cp cachedPost
	if err := json.Unmarshal(val, &cp); err != nil || cp.Post == nil {
		c.log.Warn("post cache decode error", zap.String("key", key), zap.Error(err))
		return nil
	}
	cp.Post.AuthorID = cp.AuthorID
	c.log.Debug("post cache hit", zap.String("key", key))
	return cp.Post
}

// Set stores p under both its id and slug keys.
func (c *PostCache) Set(ctx context.Context, p *models.Post) {
	val, err := json.Marshal(cachedPost{Post: p, AuthorID: p.AuthorID})
	if err != nil {
		c.log.Warn("post cache encode error", zap.Stringer("post", p.ID), zap.Error(err))
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, IDKey(p.ID), val, c.ttl)
	pipe.Set(ctx, SlugKey(p.Slug), val, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("post cache set error", zap.Stringer("post", p.ID), zap.Error(err))
	}
}

// Invalidate drops a post from the cache. slugs lists every slug the post
// may be cached under, so a renamed post loses its old key too.
func (c *PostCache) Invalidate(ctx context.Context, id uuid.UUID, slugs ...string) {
	keys := []string{IDKey(id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, SlugKey(s))
		}
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("post cache invalidate error", zap.Stringer("post", id), zap.Error(err))
		return
	}
	c.log.Debug("post cache invalidated", zap.Stringer("post", id))
}
