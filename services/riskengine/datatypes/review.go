// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Dimension is one risk axis. The set is fixed; an assessment missing
// any dimension is malformed.
type Dimension string

const (
	DimensionFinancial  Dimension = "financial"
	DimensionSupply     Dimension = "supply"
	DimensionReputation Dimension = "reputation"
	DimensionQuality    Dimension = "quality"
	DimensionGeo        Dimension = "geo"
)

// AllDimensions lists every risk dimension in presentation order.
var AllDimensions = []Dimension{
	DimensionFinancial,
	DimensionSupply,
	DimensionReputation,
	DimensionQuality,
	DimensionGeo,
}

// Grade is the coarse classification derived from the weighted overall
// score.
type Grade string

const (
	GradeLow    Grade = "low"
	GradeMedium Grade = "medium"
	GradeHigh   Grade = "high"
)

// DimensionScore is a single axis score in [0,1] with a reason that is
// expected to reference citation labels like [E3].
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
}

// RiskReview is the finished assessment for one supplier and one
// evidence set. Reviews are immutable once created: a changed evidence
// set yields a new hash and a new review, never an in-place update.
type RiskReview struct {
	ReviewID     string                       `json:"review_id"`
	SupplierID   string                       `json:"supplier_id"`
	OverallGrade Grade                        `json:"overall_grade"`
	OverallScore float64                      `json:"overall_score"`
	Dimensions   map[Dimension]DimensionScore `json:"dimensions"`
	Timestamp    time.Time                    `json:"timestamp"`
	EvidenceHash string                       `json:"evidence_hash"`
}

// DocumentScore is the DimensionScore-shaped result of ad hoc single
// document scoring outside the full supplier pipeline.
type DocumentScore struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
