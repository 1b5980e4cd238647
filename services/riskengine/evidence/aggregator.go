// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package evidence

import (
	"context"
	"log/slog"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var aggregatorTracer = otel.Tracer("procurisk.riskengine.evidence")

// Default lookback windows. Internal records stay relevant longer than
// news coverage.
const (
	DefaultInternalLookback = 365 * 24 * time.Hour
	DefaultExternalLookback = 180 * 24 * time.Hour
)

// Aggregator fetches a supplier's internal and external evidence over
// independently configurable lookback windows and normalizes the
// results into a deterministic EvidenceBundle.
type Aggregator struct {
	store            Store
	internalLookback time.Duration
	externalLookback time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewAggregator creates an Aggregator. Zero lookbacks fall back to the
// defaults (internal 365d, external 180d).
func NewAggregator(store Store, internalLookback, externalLookback time.Duration) *Aggregator {
	if internalLookback <= 0 {
		internalLookback = DefaultInternalLookback
	}
	if externalLookback <= 0 {
		externalLookback = DefaultExternalLookback
	}
	return &Aggregator{
		store:            store,
		internalLookback: internalLookback,
		externalLookback: externalLookback,
		now:              time.Now,
	}
}

// Gather queries both evidence collections concurrently and builds the
// bundle. Empty result sets are valid; a failed query is not.
func (a *Aggregator) Gather(ctx context.Context, supplierID string) (*datatypes.EvidenceBundle, error) {
	ctx, span := aggregatorTracer.Start(ctx, "Aggregator.Gather")
	defer span.End()
	span.SetAttributes(attribute.String("supplier_id", supplierID))

	now := a.now()
	var internalDocs, newsDocs []datatypes.SupplierDocResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := a.store.Query(gctx, CollectionInternal, supplierID, now.Add(-a.internalLookback))
		if err != nil {
			return err
		}
		internalDocs = docs
		return nil
	})
	g.Go(func() error {
		docs, err := a.store.Query(gctx, CollectionNews, supplierID, now.Add(-a.externalLookback))
		if err != nil {
			return err
		}
		newsDocs = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	internal := normalizeDocs(internalDocs, datatypes.SectionInternal)
	external := normalizeDocs(newsDocs, datatypes.SectionExternal)

	bundle := BuildBundle(supplierID, internal, external)
	span.SetAttributes(
		attribute.Int("evidence.internal_count", len(internal)),
		attribute.Int("evidence.external_count", len(external)),
		attribute.String("evidence.hash", bundle.EvidenceHash),
	)
	slog.Info("Gathered evidence",
		"supplier_id", supplierID,
		"internal_count", len(internal),
		"external_count", len(external),
		"evidence_hash", bundle.EvidenceHash)
	return bundle, nil
}

// normalizeDocs converts raw store rows into evidence items. Citation
// labels are left empty here; the bundle builder assigns them after its
// canonical sort.
func normalizeDocs(docs []datatypes.SupplierDocResult, section datatypes.Section) []datatypes.EvidenceItem {
	items := make([]datatypes.EvidenceItem, 0, len(docs))
	for _, doc := range docs {
		docType := doc.DocType
		if docType == "" {
			if section == datatypes.SectionExternal {
				docType = "news"
			} else {
				docType = "document"
			}
		}
		source := doc.Source
		if source == "" {
			source = "Unknown"
		}
		items = append(items, datatypes.EvidenceItem{
			Section:   section,
			Content:   doc.Content,
			Source:    source,
			Timestamp: time.UnixMilli(doc.Timestamp).UTC(),
			Tone:      doc.Tone,
			DocType:   docType,
		})
	}
	return items
}
