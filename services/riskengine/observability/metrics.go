// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability holds the engine's Prometheus metrics. All
// metrics are registered on the default registry and exposed via the
// /metrics route.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewsTotal counts finished reviews by grade.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procurisk",
		Name:      "reviews_total",
		Help:      "Completed risk reviews by overall grade.",
	}, []string{"grade"})

	// ReviewDuration tracks end-to-end review latency, including
	// evidence retrieval and assessment.
	ReviewDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "procurisk",
		Name:      "review_duration_seconds",
		Help:      "End-to-end review latency in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// CacheOps counts cache lookups by outcome: hit, miss, expired,
	// error.
	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procurisk",
		Name:      "review_cache_ops_total",
		Help:      "Review cache lookups by outcome.",
	}, []string{"outcome"})

	// AssessmentsTotal counts assessment backend calls by strategy and
	// outcome.
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procurisk",
		Name:      "assessments_total",
		Help:      "Assessment invocations by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// SinkWriteFailures counts failed result sink appends. The review
	// is still returned to the caller, so without this counter the
	// loss would be silent.
	SinkWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "procurisk",
		Name:      "sink_write_failures_total",
		Help:      "Failed result sink appends.",
	})

	// EvidenceDocs tracks how many documents each gathered bundle
	// carried, by section.
	EvidenceDocs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "procurisk",
		Name:      "evidence_docs_per_bundle",
		Help:      "Evidence documents per gathered bundle by section.",
		Buckets:   prometheus.LinearBuckets(0, 5, 6),
	}, []string{"section"})
)
