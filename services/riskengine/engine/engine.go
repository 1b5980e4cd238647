// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine wires the review pipeline together: directory lookup,
// evidence aggregation, cached assessment, classification, and the
// result sink.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/assess"
	"github.com/procurisk/procurisk/services/riskengine/cache"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
	"github.com/procurisk/procurisk/services/riskengine/observability"
	"github.com/procurisk/procurisk/services/riskengine/sink"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("procurisk.riskengine.engine")

// Engine runs supplier risk reviews end to end. One logical request is
// sequential; different suppliers proceed fully in parallel, bounded
// only by the cache layer's per-key single flight.
type Engine struct {
	directory  evidence.Directory
	aggregator *evidence.Aggregator
	assessor   assess.Assessor
	reviews    *cache.ReviewCache
	results    sink.ResultSink
	scorer     *assess.ToneScorer

	// now is injectable for tests.
	now func() time.Time
}

func New(directory evidence.Directory, aggregator *evidence.Aggregator,
	assessor assess.Assessor, reviews *cache.ReviewCache, results sink.ResultSink) *Engine {
	return &Engine{
		directory:  directory,
		aggregator: aggregator,
		assessor:   assessor,
		reviews:    reviews,
		results:    results,
		scorer:     assess.NewToneScorer(),
		now:        time.Now,
	}
}

// Review produces the risk review for one supplier, reusing a cached
// review when the evidence set is unchanged. A supplier with zero
// evidence is valid and yields all-default "insufficient data" scores;
// a missing directory record is evidence.ErrSupplierNotFound.
func (e *Engine) Review(ctx context.Context, supplierID string) (*datatypes.RiskReview, error) {
	ctx, span := tracer.Start(ctx, "Engine.Review")
	defer span.End()
	span.SetAttributes(attribute.String("supplier_id", supplierID))
	started := e.now()

	supplier, err := e.directory.Get(ctx, supplierID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bundle, err := e.aggregator.Gather(ctx, supplierID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	recordBundleSize(bundle)

	review, err := e.reviews.GetOrCompute(ctx, supplierID, bundle.EvidenceHash,
		func(ctx context.Context) (*datatypes.RiskReview, error) {
			scores, err := e.assessor.Assess(ctx, supplier, bundle)
			if err != nil {
				observability.AssessmentsTotal.WithLabelValues("prompt", "error").Inc()
				return nil, err
			}
			observability.AssessmentsTotal.WithLabelValues("prompt", "ok").Inc()

			review := assess.BuildReview(supplierID, bundle.EvidenceHash, scores, e.now())

			// The review is complete at this point; a sink failure
			// loses the audit copy, not the caller's response.
			if err := e.results.Append(ctx, review); err != nil {
				observability.SinkWriteFailures.Inc()
				slog.Error("Result sink append failed",
					"supplier_id", supplierID,
					"review_id", review.ReviewID,
					"error", err)
			}
			return review, nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	observability.ReviewsTotal.WithLabelValues(string(review.OverallGrade)).Inc()
	observability.ReviewDuration.Observe(e.now().Sub(started).Seconds())
	span.SetAttributes(
		attribute.String("overall_grade", string(review.OverallGrade)),
		attribute.Float64("overall_score", review.OverallScore),
		attribute.String("evidence_hash", review.EvidenceHash),
	)
	slog.Info("Review complete",
		"supplier_id", supplierID,
		"review_id", review.ReviewID,
		"grade", review.OverallGrade,
		"score", review.OverallScore)
	return review, nil
}

// ScoreDocument ranks a single ad hoc document by tone and recency.
func (e *Engine) ScoreDocument(doc datatypes.RawDocument) datatypes.DocumentScore {
	score := e.scorer.ScoreRawDocuments([]datatypes.RawDocument{doc})
	observability.AssessmentsTotal.WithLabelValues("tone", "ok").Inc()
	return score
}

// ScoreBatch scores each document independently.
func (e *Engine) ScoreBatch(docs []datatypes.RawDocument) []datatypes.DocumentScore {
	scores := make([]datatypes.DocumentScore, 0, len(docs))
	for _, doc := range docs {
		scores = append(scores, e.ScoreDocument(doc))
	}
	return scores
}

func recordBundleSize(bundle *datatypes.EvidenceBundle) {
	counts := map[datatypes.Section]int{}
	for _, item := range bundle.Items {
		counts[item.Section]++
	}
	observability.EvidenceDocs.WithLabelValues("internal").Observe(float64(counts[datatypes.SectionInternal]))
	observability.EvidenceDocs.WithLabelValues("external").Observe(float64(counts[datatypes.SectionExternal]))
}
