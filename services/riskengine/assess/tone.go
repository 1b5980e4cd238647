// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assess

import (
	"log/slog"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
)

// defaultTone is assumed when a document carries no sentiment. Missing
// sentiment is treated as the worst case rather than neutral.
const defaultTone = -1.0

// snippetLimit caps the returned top-document excerpt, in runes.
const snippetLimit = 500

// toneBucket maps a sentiment range to its risk weight. Lower bounds
// are exclusive except for the first bucket; upper bounds inclusive.
type toneBucket struct {
	min, max float64
	weight   float64
}

var toneBuckets = []toneBucket{
	{-1.0, -0.5, 2.0},
	{-0.5, -0.1, 1.0},
	{-0.1, 0.1, 0.0},
	{0.1, 0.5, -0.5},
	{0.5, 1.0, -1.0},
}

// recencyBucket maps a document age range in hours to a multiplier.
// Lower bound inclusive, upper bound exclusive.
type recencyBucket struct {
	minHours, maxHours float64
	weight             float64
}

var recencyBuckets = []recencyBucket{
	{0, 24, 1.0},
	{24, 168, 0.5},
	{168, -1, 0.1},
}

func toneWeight(tone float64) float64 {
	if tone <= toneBuckets[0].max {
		return toneBuckets[0].weight
	}
	for _, b := range toneBuckets[1:] {
		if tone > b.min && tone <= b.max {
			return b.weight
		}
	}
	return 0.0
}

func recencyWeight(ageHours float64) float64 {
	for _, b := range recencyBuckets {
		if ageHours >= b.minHours && (b.maxHours < 0 || ageHours < b.maxHours) {
			return b.weight
		}
	}
	return recencyBuckets[len(recencyBuckets)-1].weight
}

// ToneScorer ranks documents by sentiment and recency without a model
// call. A document's score is its tone weight times its recency
// multiplier, so a fresh very-negative article scores 2.0 and a
// week-old one 1.0.
type ToneScorer struct {
	// now is injectable for tests.
	now func() time.Time
}

func NewToneScorer() *ToneScorer {
	return &ToneScorer{now: time.Now}
}

// ScoreItem computes the tone/recency score for one evidence item.
func (s *ToneScorer) ScoreItem(item datatypes.EvidenceItem) float64 {
	tone := defaultTone
	if item.Tone != nil {
		tone = *item.Tone
	}
	ageHours := s.now().UTC().Sub(item.Timestamp.UTC()).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return toneWeight(tone) * recencyWeight(ageHours)
}

// ScoreDocuments finds the single highest-scoring document among the
// items. The first strictly-highest item wins; ties keep the earlier
// one. No items yields a zero score with an empty reason.
func (s *ToneScorer) ScoreDocuments(items []datatypes.EvidenceItem) datatypes.DocumentScore {
	maxScore := 0.0
	topSnippet := ""
	for _, item := range items {
		score := s.ScoreItem(item)
		if score > maxScore {
			maxScore = score
			topSnippet = truncate(item.Content, snippetLimit)
		}
	}
	return datatypes.DocumentScore{Score: maxScore, Reason: topSnippet}
}

// ScoreRawDocuments ranks caller-supplied documents. Documents with
// unparsable published timestamps are skipped and logged, never a hard
// error.
func (s *ToneScorer) ScoreRawDocuments(docs []datatypes.RawDocument) datatypes.DocumentScore {
	items := make([]datatypes.EvidenceItem, 0, len(docs))
	for i, doc := range docs {
		ts, err := time.Parse(time.RFC3339, doc.Metadata.Published)
		if err != nil {
			slog.Warn("Skipping document with unparsable timestamp",
				"index", i, "published", doc.Metadata.Published, "error", err)
			continue
		}
		items = append(items, datatypes.EvidenceItem{
			Content:   doc.Content,
			Source:    doc.Metadata.Source,
			Timestamp: ts,
			Tone:      doc.Metadata.Tone,
		})
	}
	return s.ScoreDocuments(items)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
