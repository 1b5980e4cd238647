// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sink persists finished reviews to durable append-only
// storage, keyed by supplier and timestamp. Reviews are superseded by
// later entries, never overwritten.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
)

// ResultSink receives each finished review exactly once.
type ResultSink interface {
	Append(ctx context.Context, review *datatypes.RiskReview) error
}

// sinkPrefix separates sink entries from the cache's keyspace when
// both share one database.
const sinkPrefix = "review_log:"

// sinkKeyTimeLayout is fixed width so byte-lexicographic key order is
// chronological order. RFC3339Nano would trim trailing zeros and break
// that for same-second entries.
const sinkKeyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// BadgerSink appends reviews to an embedded BadgerDB. Keys are
// supplier id plus a fixed-width UTC timestamp, so entries for one
// supplier sort chronologically under a shared prefix.
type BadgerSink struct {
	db *badgerdb.DB
}

func NewBadgerSink(db *badgerdb.DB) *BadgerSink {
	return &BadgerSink{db: db}
}

// Append implements ResultSink.
func (s *BadgerSink) Append(ctx context.Context, review *datatypes.RiskReview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("serializing review %s: %w", review.ReviewID, err)
	}
	key := sinkKey(review.SupplierID, review.Timestamp)
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return fmt.Errorf("appending review %s: %w", review.ReviewID, err)
	}
	return nil
}

// History returns all stored reviews for one supplier in
// chronological order.
func (s *BadgerSink) History(ctx context.Context, supplierID string) ([]*datatypes.RiskReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(sinkPrefix + supplierID + ":")
	var reviews []*datatypes.RiskReview
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var review datatypes.RiskReview
			if err := json.Unmarshal(raw, &review); err != nil {
				return fmt.Errorf("corrupt review log entry %s: %w", it.Item().Key(), err)
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading review history for %s: %w", supplierID, err)
	}
	return reviews, nil
}

func sinkKey(supplierID string, ts time.Time) []byte {
	return []byte(sinkPrefix + supplierID + ":" + ts.UTC().Format(sinkKeyTimeLayout))
}
