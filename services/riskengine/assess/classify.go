// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assess

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
)

// DimensionWeights combine per-dimension scores into the overall risk
// score. They sum to 1.0; supply-chain risk carries the largest share.
var DimensionWeights = map[datatypes.Dimension]float64{
	datatypes.DimensionFinancial:  0.25,
	datatypes.DimensionSupply:     0.30,
	datatypes.DimensionReputation: 0.20,
	datatypes.DimensionQuality:    0.15,
	datatypes.DimensionGeo:        0.10,
}

// Grade band boundaries. Both are exclusive on the low side, so a
// score of exactly 0.33 is still low and exactly 0.66 is still medium.
const (
	highGradeThreshold   = 0.66
	mediumGradeThreshold = 0.33
)

// ClassifyGrade maps an overall score to its risk grade.
func ClassifyGrade(score float64) datatypes.Grade {
	switch {
	case score > highGradeThreshold:
		return datatypes.GradeHigh
	case score > mediumGradeThreshold:
		return datatypes.GradeMedium
	default:
		return datatypes.GradeLow
	}
}

// clampScore forces a dimension score into [0, 1]. Model outputs can
// drift outside the instructed range.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// roundScore rounds to two decimal places for the stored review.
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

// BuildReview computes the weighted overall score from per-dimension
// scores, classifies the grade, and assembles the final review record.
// Dimension scores are clamped before weighting so the overall score
// always lands in [0, 1].
func BuildReview(supplierID, evidenceHash string, scores map[datatypes.Dimension]datatypes.DimensionScore, now time.Time) *datatypes.RiskReview {
	dims := make(map[datatypes.Dimension]datatypes.DimensionScore, len(scores))
	overall := 0.0
	for dim, weight := range DimensionWeights {
		ds := scores[dim]
		ds.Dimension = dim
		ds.Score = clampScore(ds.Score)
		dims[dim] = ds
		overall += ds.Score * weight
	}
	// Grade from the exact weighted sum; the stored score is rounded.
	grade := ClassifyGrade(overall)

	return &datatypes.RiskReview{
		ReviewID:     uuid.NewString(),
		SupplierID:   supplierID,
		OverallGrade: grade,
		OverallScore: roundScore(overall),
		Dimensions:   dims,
		Timestamp:    now.UTC(),
		EvidenceHash: evidenceHash,
	}
}
