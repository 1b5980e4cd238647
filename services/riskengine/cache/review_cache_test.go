// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	inner  Store
	getErr error
	setErr error
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.inner.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.inner.Set(ctx, key, value, ttl)
}

func sampleReview(supplierID string) *datatypes.RiskReview {
	return &datatypes.RiskReview{
		ReviewID:     "r-1",
		SupplierID:   supplierID,
		OverallGrade: datatypes.GradeMedium,
		OverallScore: 0.38,
		Dimensions: map[datatypes.Dimension]datatypes.DimensionScore{
			datatypes.DimensionFinancial: {Dimension: datatypes.DimensionFinancial, Score: 0.2, Reason: "[E1]"},
		},
		Timestamp:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EvidenceHash: "hash1",
	}
}

func TestReviewCache_HitSkipsCompute(t *testing.T) {
	rc := NewReviewCache(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	computes := 0
	compute := func(context.Context) (*datatypes.RiskReview, error) {
		computes++
		return sampleReview("SUP-1"), nil
	}

	first, err := rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
	require.NoError(t, err)
	second, err := rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
	require.NoError(t, err)

	assert.Equal(t, 1, computes)
	assert.Equal(t, first.ReviewID, second.ReviewID)
	assert.Equal(t, first.OverallScore, second.OverallScore)
}

func TestReviewCache_DifferentHashesComputeSeparately(t *testing.T) {
	rc := NewReviewCache(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	computes := 0
	compute := func(context.Context) (*datatypes.RiskReview, error) {
		computes++
		return sampleReview("SUP-1"), nil
	}

	_, err := rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
	require.NoError(t, err)
	_, err = rc.GetOrCompute(ctx, "SUP-1", "hash2", compute)
	require.NoError(t, err)

	assert.Equal(t, 2, computes)
}

func TestReviewCache_ConcurrentMissesCollapse(t *testing.T) {
	rc := NewReviewCache(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	var computes atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (*datatypes.RiskReview, error) {
		computes.Add(1)
		<-release
		return sampleReview("SUP-1"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*datatypes.RiskReview, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
		}(i)
	}

	// Let all callers queue up behind the single in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load(), "concurrent misses must collapse to one computation")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "r-1", results[i].ReviewID)
	}
}

func TestReviewCache_ExpiryIsAMiss(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	rc := NewReviewCache(store, time.Hour)
	ctx := context.Background()

	computes := 0
	compute := func(context.Context) (*datatypes.RiskReview, error) {
		computes++
		return sampleReview("SUP-1"), nil
	}

	_, err := rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = rc.GetOrCompute(ctx, "SUP-1", "hash1", compute)
	require.NoError(t, err)

	assert.Equal(t, 2, computes)
}

func TestReviewCache_CorruptEntryIsAMiss(t *testing.T) {
	store := NewMemoryStore()
	rc := NewReviewCache(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Key("SUP-1", "hash1"), []byte("{not json"), time.Minute))

	computes := 0
	review, err := rc.GetOrCompute(ctx, "SUP-1", "hash1", func(context.Context) (*datatypes.RiskReview, error) {
		computes++
		return sampleReview("SUP-1"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, computes)
	assert.Equal(t, "r-1", review.ReviewID)
}

func TestReviewCache_StoreFailuresDegradeGracefully(t *testing.T) {
	store := &flakyStore{
		inner:  NewMemoryStore(),
		getErr: errors.New("cache unreachable"),
		setErr: errors.New("cache unreachable"),
	}
	rc := NewReviewCache(store, time.Minute)

	review, err := rc.GetOrCompute(context.Background(), "SUP-1", "hash1",
		func(context.Context) (*datatypes.RiskReview, error) {
			return sampleReview("SUP-1"), nil
		})
	require.NoError(t, err, "a broken cache must not fail the request")
	assert.Equal(t, "r-1", review.ReviewID)
}

func TestReviewCache_ComputeErrorNotCached(t *testing.T) {
	rc := NewReviewCache(NewMemoryStore(), time.Minute)
	ctx := context.Background()

	boom := errors.New("assessment failed")
	_, err := rc.GetOrCompute(ctx, "SUP-1", "hash1",
		func(context.Context) (*datatypes.RiskReview, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	// The failure must not poison the key.
	review, err := rc.GetOrCompute(ctx, "SUP-1", "hash1",
		func(context.Context) (*datatypes.RiskReview, error) {
			return sampleReview("SUP-1"), nil
		})
	require.NoError(t, err)
	assert.Equal(t, "r-1", review.ReviewID)
}
