// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/observability"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a computed review stays valid for its
// evidence hash.
const DefaultTTL = 3600 * time.Second

// ComputeFunc produces a fresh review on a cache miss.
type ComputeFunc func(ctx context.Context) (*datatypes.RiskReview, error)

// ReviewCache maps (supplier, evidence hash) to computed reviews.
// Concurrent misses for the same key collapse into a single
// computation; unrelated keys proceed fully in parallel. Store
// failures are never fatal: a broken cache degrades to computing
// uncached.
type ReviewCache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewReviewCache creates a ReviewCache. A non-positive ttl falls back
// to DefaultTTL.
func NewReviewCache(store Store, ttl time.Duration) *ReviewCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReviewCache{store: store, ttl: ttl}
}

// Key builds the cache key for one supplier and evidence set.
func Key(supplierID, evidenceHash string) string {
	return supplierID + ":" + evidenceHash
}

// GetOrCompute returns the cached review for the key, or runs compute
// exactly once across all concurrent callers for the same key and
// caches the result. Corrupt cached bytes are treated as a miss.
func (c *ReviewCache) GetOrCompute(ctx context.Context, supplierID, evidenceHash string,
	compute ComputeFunc) (*datatypes.RiskReview, error) {

	key := Key(supplierID, evidenceHash)

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		if review := c.lookup(ctx, key); review != nil {
			return review, nil
		}

		review, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.write(ctx, key, review)
		return review, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("Review computation shared with concurrent caller", "key", key)
	}
	return result.(*datatypes.RiskReview), nil
}

// lookup reads and decodes a cached review. Any failure is a miss.
func (c *ReviewCache) lookup(ctx context.Context, key string) *datatypes.RiskReview {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		observability.CacheOps.WithLabelValues("error").Inc()
		slog.Warn("Review cache read failed, computing uncached", "key", key, "error", err)
		return nil
	}
	if raw == nil {
		observability.CacheOps.WithLabelValues("miss").Inc()
		return nil
	}

	var review datatypes.RiskReview
	if err := json.Unmarshal(raw, &review); err != nil {
		observability.CacheOps.WithLabelValues("error").Inc()
		slog.Warn("Corrupt review cache entry, treating as miss", "key", key, "error", err)
		return nil
	}
	observability.CacheOps.WithLabelValues("hit").Inc()
	return &review
}

// write stores a freshly computed review. Failures are logged, never
// surfaced; the review was already computed and will be returned.
func (c *ReviewCache) write(ctx context.Context, key string, review *datatypes.RiskReview) {
	raw, err := json.Marshal(review)
	if err != nil {
		slog.Error("Failed to serialize review for cache", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		observability.CacheOps.WithLabelValues("error").Inc()
		slog.Warn("Review cache write failed", "key", key, "error", err)
	}
}
