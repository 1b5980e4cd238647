// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assess

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/procurisk/procurisk/services/llm"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var promptTracer = otel.Tracer("procurisk.riskengine.assess")

const systemPrompt = "You are a senior supply-risk analyst. Your task is to " +
	"analyze supplier risk across multiple dimensions using only the provided evidence."

const reviewPromptTemplate = `Using only the evidence below, fill the JSON template for a comprehensive supplier risk review.

EVIDENCE:
%s

TEMPLATE:
{
 "supplier": "%s",
 "overall_risk": {"grade":"", "score":0.0, "reason":""},
 "dimensions": {
   "financial": {"score":0.0, "reason":""},
   "supply": {"score":0.0, "reason":""},
   "reputation": {"score":0.0, "reason":""},
   "quality": {"score":0.0, "reason":""},
   "geo": {"score":0.0, "reason":""}
 }
}

Instructions:
- Use 0.0 = no risk, 1.0 = extreme risk
- Cite evidence IDs in each reason like [E3]
- If information is missing, note "insufficient data" and score 0.3
- Be specific about dates and metrics in reasons
- Respond with the completed JSON only
`

// promptAttempts bounds retries against the scoring backend. Malformed
// replies are retried too; models occasionally emit broken JSON once.
const promptAttempts = 2

// assessorTemperature keeps scoring near-deterministic.
const assessorTemperature = float32(0.1)

// promptResponse mirrors the JSON shape the backend is instructed to
// return. Scores are json.Number so a quoted "0.4" still coerces.
type promptResponse struct {
	Dimensions map[string]struct {
		Score  json.Number `json:"score"`
		Reason string      `json:"reason"`
	} `json:"dimensions"`
}

// PromptAssessor asks an LLM backend to score all five dimensions from
// the rendered evidence text. Requests pass through a rate limiter so
// a burst of cache misses cannot flood the backend.
type PromptAssessor struct {
	client  llm.LLMClient
	limiter *rate.Limiter
}

// NewPromptAssessor creates a PromptAssessor. requestsPerSecond <= 0
// disables rate limiting.
func NewPromptAssessor(client llm.LLMClient, requestsPerSecond float64) *PromptAssessor {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &PromptAssessor{client: client, limiter: limiter}
}

// Assess implements Assessor. An empty bundle never reaches the
// backend; it maps directly to the "insufficient data" defaults.
func (a *PromptAssessor) Assess(ctx context.Context, supplier *datatypes.Supplier,
	bundle *datatypes.EvidenceBundle) (map[datatypes.Dimension]datatypes.DimensionScore, error) {

	ctx, span := promptTracer.Start(ctx, "PromptAssessor.Assess")
	defer span.End()
	span.SetAttributes(
		attribute.String("supplier_id", bundle.SupplierID),
		attribute.Int("evidence_count", len(bundle.Items)),
	)

	if bundle.IsEmpty() {
		slog.Info("No evidence for supplier, using insufficient data defaults",
			"supplier_id", bundle.SupplierID)
		span.SetAttributes(attribute.Bool("insufficient_data", true))
		return insufficientDataScores(), nil
	}

	prompt := fmt.Sprintf(reviewPromptTemplate, evidence.RenderText(bundle), supplier.Name)
	temperature := assessorTemperature
	params := llm.GenerationParams{
		System:      systemPrompt,
		Temperature: &temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= promptAttempts; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		raw, err := a.client.Generate(ctx, prompt, params)
		if err != nil {
			lastErr = fmt.Errorf("assessment backend call failed: %w", err)
		} else {
			scores, perr := parseAssessment(raw)
			if perr == nil {
				return scores, nil
			}
			lastErr = perr
			slog.Warn("Malformed assessment response",
				"supplier_id", bundle.SupplierID,
				"attempt", attempt,
				"error", perr,
				"raw_response", raw)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}

// parseAssessment validates the backend reply: exactly the five known
// dimensions, each with a numeric score in [0,1]. Anything else is a
// MalformedAssessmentError carrying the raw reply.
func parseAssessment(raw string) (map[datatypes.Dimension]datatypes.DimensionScore, error) {
	cleaned := stripCodeFence(raw)

	var resp promptResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, &MalformedAssessmentError{
			Reason: fmt.Sprintf("response is not valid JSON: %v", err),
			Raw:    raw,
		}
	}

	scores := make(map[datatypes.Dimension]datatypes.DimensionScore, len(datatypes.AllDimensions))
	for _, dim := range datatypes.AllDimensions {
		entry, ok := resp.Dimensions[string(dim)]
		if !ok {
			return nil, &MalformedAssessmentError{
				Reason: fmt.Sprintf("missing dimension %q", dim),
				Raw:    raw,
			}
		}
		score, err := entry.Score.Float64()
		if err != nil {
			return nil, &MalformedAssessmentError{
				Reason: fmt.Sprintf("non-numeric score for dimension %q: %v", dim, err),
				Raw:    raw,
			}
		}
		if score < 0 || score > 1 {
			return nil, &MalformedAssessmentError{
				Reason: fmt.Sprintf("score %v for dimension %q outside [0,1]", score, dim),
				Raw:    raw,
			}
		}
		scores[dim] = datatypes.DimensionScore{
			Dimension: dim,
			Score:     score,
			Reason:    entry.Reason,
		}
	}
	return scores, nil
}

// stripCodeFence removes a surrounding markdown fence if the model
// wrapped its JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
