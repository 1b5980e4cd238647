// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sink

import (
	"context"
	"testing"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	storage "github.com/procurisk/procurisk/services/riskengine/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T) *BadgerSink {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerSink(db)
}

func review(supplierID, reviewID string, ts time.Time) *datatypes.RiskReview {
	return &datatypes.RiskReview{
		ReviewID:     reviewID,
		SupplierID:   supplierID,
		OverallGrade: datatypes.GradeLow,
		OverallScore: 0.2,
		Timestamp:    ts,
		EvidenceHash: "h-" + reviewID,
	}
}

func TestBadgerSink_AppendAndHistory(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, review("SUP-1", "r-2", base.Add(time.Hour))))
	require.NoError(t, s.Append(ctx, review("SUP-1", "r-1", base)))
	require.NoError(t, s.Append(ctx, review("SUP-2", "r-3", base)))

	history, err := s.History(ctx, "SUP-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "r-1", history[0].ReviewID, "entries sort chronologically")
	assert.Equal(t, "r-2", history[1].ReviewID)

	other, err := s.History(ctx, "SUP-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "r-3", other[0].ReviewID)
}

func TestBadgerSink_LaterReviewSupersedes(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, review("SUP-1", "r-1", base)))
	require.NoError(t, s.Append(ctx, review("SUP-1", "r-2", base.Add(time.Minute))))

	history, err := s.History(ctx, "SUP-1")
	require.NoError(t, err)
	assert.Len(t, history, 2, "appends never overwrite earlier reviews")
}

func TestBadgerSink_SameSecondOrdering(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// A whole-second entry followed by fractional ones inside the same
	// second must still iterate in timestamp order.
	require.NoError(t, s.Append(ctx, review("SUP-1", "r-mid", base.Add(500*time.Millisecond))))
	require.NoError(t, s.Append(ctx, review("SUP-1", "r-first", base)))
	require.NoError(t, s.Append(ctx, review("SUP-1", "r-last", base.Add(900*time.Millisecond))))

	history, err := s.History(ctx, "SUP-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "r-first", history[0].ReviewID)
	assert.Equal(t, "r-mid", history[1].ReviewID)
	assert.Equal(t, "r-last", history[2].ReviewID)
}

func TestBadgerSink_EmptyHistory(t *testing.T) {
	s := newTestSink(t)

	history, err := s.History(context.Background(), "SUP-404")
	require.NoError(t, err)
	assert.Empty(t, history)
}
