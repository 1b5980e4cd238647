// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package evidence locates and normalizes the documents a risk
// assessment is grounded on. The store adapter queries the SupplierDoc
// collection by supplier and time window; the aggregator runs the
// internal and external window queries concurrently; the bundle builder
// turns the results into a deterministic, citable, hashed bundle.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// Evidence collections inside the SupplierDoc class.
const (
	CollectionInternal = "internal"
	CollectionNews     = "news"
)

// docQueryLimit caps how many documents one window query returns.
const docQueryLimit = 25

// queryAttempts bounds the retry loop for transient store failures.
const queryAttempts = 3

// ErrSupplierNotFound means the supplier has no core directory record.
// Retrievable-but-empty evidence is NOT this error; a supplier with a
// record and zero documents is a valid state.
var ErrSupplierNotFound = errors.New("supplier not found")

// StoreUnavailableError wraps a transient evidence-store failure that
// survived the bounded retry.
type StoreUnavailableError struct {
	Collection string
	Err        error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("evidence store unavailable for collection %q: %v", e.Collection, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// Store queries one evidence collection for a supplier's documents
// newer than `since`.
type Store interface {
	Query(ctx context.Context, collection, supplierID string, since time.Time) ([]datatypes.SupplierDocResult, error)
}

// Directory resolves a supplier's core record.
type Directory interface {
	Get(ctx context.Context, supplierID string) (*datatypes.Supplier, error)
}

// WeaviateStore is the Weaviate-backed evidence store adapter.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(client *weaviate.Client) *WeaviateStore {
	return &WeaviateStore{client: client}
}

// Query implements Store. Transient failures are retried with
// exponential backoff; exhaustion surfaces as StoreUnavailableError.
func (s *WeaviateStore) Query(ctx context.Context, collection, supplierID string,
	since time.Time) ([]datatypes.SupplierDocResult, error) {

	where := filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			filters.Where().
				WithPath([]string{"supplier_id"}).
				WithOperator(filters.Equal).
				WithValueString(supplierID),
			filters.Where().
				WithPath([]string{"collection"}).
				WithOperator(filters.Equal).
				WithValueString(collection),
			filters.Where().
				WithPath([]string{"timestamp"}).
				WithOperator(filters.GreaterThanEqual).
				WithValueNumber(float64(since.UnixMilli())),
		})

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "supplier_id"},
		{Name: "collection"},
		{Name: "source"},
		{Name: "doc_type"},
		{Name: "timestamp"},
		{Name: "tone"},
	}

	var lastErr error
	backoff := 200 * time.Millisecond
	for attempt := 1; attempt <= queryAttempts; attempt++ {
		resp, err := s.client.GraphQL().Get().
			WithClassName("SupplierDoc").
			WithFields(fields...).
			WithWhere(where).
			WithLimit(docQueryLimit).
			Do(ctx)
		if err == nil {
			parsed, perr := datatypes.ParseGraphQLResponse[datatypes.SupplierDocQueryResponse](resp)
			if perr != nil {
				return nil, fmt.Errorf("parsing SupplierDoc query response: %w", perr)
			}
			return parsed.Get.SupplierDoc, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Evidence store query failed, retrying",
			"collection", collection, "supplier_id", supplierID,
			"attempt", attempt, "max_attempts", queryAttempts, "error", err)
		if attempt < queryAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, &StoreUnavailableError{Collection: collection, Err: lastErr}
}

// WeaviateDirectory reads supplier core records from the Supplier class.
type WeaviateDirectory struct {
	client *weaviate.Client
}

func NewWeaviateDirectory(client *weaviate.Client) *WeaviateDirectory {
	return &WeaviateDirectory{client: client}
}

// Get implements Directory.
func (d *WeaviateDirectory) Get(ctx context.Context, supplierID string) (*datatypes.Supplier, error) {
	where := filters.Where().
		WithPath([]string{"supplier_id"}).
		WithOperator(filters.Equal).
		WithValueString(supplierID)

	fields := []graphql.Field{
		{Name: "supplier_id"},
		{Name: "name"},
		{Name: "annual_revenue"},
		{Name: "employee_count"},
		{Name: "founded_year"},
		{Name: "hq_location"},
		{Name: "industry"},
	}

	resp, err := d.client.GraphQL().Get().
		WithClassName("Supplier").
		WithFields(fields...).
		WithWhere(where).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying supplier directory for %s: %w", supplierID, err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.SupplierQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing Supplier query response: %w", err)
	}
	if len(parsed.Get.Supplier) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSupplierNotFound, supplierID)
	}

	row := parsed.Get.Supplier[0]
	return &datatypes.Supplier{
		ID:            row.SupplierID,
		Name:          row.Name,
		AnnualRevenue: row.AnnualRevenue,
		EmployeeCount: row.EmployeeCount,
		FoundedYear:   row.FoundedYear,
		HQLocation:    row.HQLocation,
		Industry:      row.Industry,
	}, nil
}
