// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assess turns an evidence bundle into per-dimension risk
// scores and an overall graded review. Two strategies exist: the
// prompt assessor asks an LLM to fill a fixed JSON template, and the
// tone scorer ranks individual documents by sentiment and recency
// without any model call.
package assess

import (
	"context"
	"fmt"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
)

// Assessor produces per-dimension scores for one supplier from its
// evidence bundle. Implementations must return a score for every
// dimension in datatypes.AllDimensions.
type Assessor interface {
	Assess(ctx context.Context, supplier *datatypes.Supplier, bundle *datatypes.EvidenceBundle) (map[datatypes.Dimension]datatypes.DimensionScore, error)
}

// MalformedAssessmentError means the model's reply could not be used:
// unparseable JSON, missing dimensions, or out-of-range scores. Raw
// carries the reply for diagnostics.
type MalformedAssessmentError struct {
	Reason string
	Raw    string
}

func (e *MalformedAssessmentError) Error() string {
	return fmt.Sprintf("malformed assessment: %s", e.Reason)
}

// InsufficientDataScore is used for every dimension when there is no
// evidence to ground an assessment on.
const InsufficientDataScore = 0.3

// InsufficientDataReason marks a score produced without evidence.
const InsufficientDataReason = "insufficient data"

// insufficientDataScores returns the defaults an empty bundle maps to.
func insufficientDataScores() map[datatypes.Dimension]datatypes.DimensionScore {
	scores := make(map[datatypes.Dimension]datatypes.DimensionScore, len(datatypes.AllDimensions))
	for _, dim := range datatypes.AllDimensions {
		scores[dim] = datatypes.DimensionScore{
			Dimension: dim,
			Score:     InsufficientDataScore,
			Reason:    InsufficientDataReason,
		}
	}
	return scores
}
