// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package assess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procurisk/procurisk/services/llm"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAssessmentJSON = `{
 "supplier": "Metal-Can Co",
 "overall_risk": {"grade":"", "score":0.0, "reason":""},
 "dimensions": {
   "financial": {"score":0.2, "reason":"15% revenue growth [E3]"},
   "supply": {"score":0.6, "reason":"Production delays reported [E2]"},
   "reputation": {"score":0.3, "reason":"No major incidents [E4]"},
   "quality": {"score":0.4, "reason":"B+ quality rating [E1]"},
   "geo": {"score":0.3, "reason":"insufficient data"}
 }
}`

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
	params    []llm.GenerationParams
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, params llm.GenerationParams) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	resp := ""
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func testBundle(t *testing.T) *datatypes.EvidenceBundle {
	t.Helper()
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return evidence.BuildBundle("SUP-000045",
		[]datatypes.EvidenceItem{{
			Section: datatypes.SectionInternal, Content: "On-time delivery rate 94%",
			Source: "sap", Timestamp: ts, DocType: "delivery_report",
		}}, nil)
}

func testSupplier() *datatypes.Supplier {
	return &datatypes.Supplier{ID: "SUP-000045", Name: "Metal-Can Co"}
}

func TestPromptAssessor_ParsesValidResponse(t *testing.T) {
	client := &fakeLLM{responses: []string{validAssessmentJSON}}
	assessor := NewPromptAssessor(client, 0)

	scores, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	require.NoError(t, err)
	require.Len(t, scores, 5)
	assert.InDelta(t, 0.6, scores[datatypes.DimensionSupply].Score, 1e-9)
	assert.Equal(t, "Production delays reported [E2]", scores[datatypes.DimensionSupply].Reason)

	require.Equal(t, 1, client.calls)
	assert.Contains(t, client.prompts[0], "Metal-Can Co")
	assert.Contains(t, client.prompts[0], "### INTERNAL")
	assert.Contains(t, client.prompts[0], "[E1]")
	assert.Equal(t, systemPrompt, client.params[0].System)
}

func TestPromptAssessor_StripsCodeFence(t *testing.T) {
	client := &fakeLLM{responses: []string{"```json\n" + validAssessmentJSON + "\n```"}}
	assessor := NewPromptAssessor(client, 0)

	scores, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	require.NoError(t, err)
	assert.Len(t, scores, 5)
}

func TestPromptAssessor_EmptyBundleSkipsBackend(t *testing.T) {
	client := &fakeLLM{}
	assessor := NewPromptAssessor(client, 0)

	bundle := evidence.BuildBundle("SUP-000045", nil, nil)
	scores, err := assessor.Assess(context.Background(), testSupplier(), bundle)
	require.NoError(t, err)
	assert.Equal(t, 0, client.calls, "empty evidence must not reach the backend")
	for _, dim := range datatypes.AllDimensions {
		assert.InDelta(t, InsufficientDataScore, scores[dim].Score, 1e-9)
		assert.Equal(t, InsufficientDataReason, scores[dim].Reason)
	}
}

func TestPromptAssessor_MissingDimensionIsMalformed(t *testing.T) {
	missing := `{"dimensions": {
		"financial": {"score":0.2, "reason":"r"},
		"supply": {"score":0.6, "reason":"r"},
		"reputation": {"score":0.3, "reason":"r"},
		"quality": {"score":0.4, "reason":"r"}
	}}`
	client := &fakeLLM{responses: []string{missing, missing}}
	assessor := NewPromptAssessor(client, 0)

	_, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	require.Error(t, err)
	var malformed *MalformedAssessmentError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "geo")
	assert.Equal(t, missing, malformed.Raw)
	assert.Equal(t, promptAttempts, client.calls)
}

func TestPromptAssessor_OutOfRangeScoreIsMalformed(t *testing.T) {
	bad := `{"dimensions": {
		"financial": {"score":1.4, "reason":"r"},
		"supply": {"score":0.6, "reason":"r"},
		"reputation": {"score":0.3, "reason":"r"},
		"quality": {"score":0.4, "reason":"r"},
		"geo": {"score":0.3, "reason":"r"}
	}}`
	client := &fakeLLM{responses: []string{bad, bad}}
	assessor := NewPromptAssessor(client, 0)

	_, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	var malformed *MalformedAssessmentError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "outside [0,1]")
}

func TestPromptAssessor_NonJSONIsMalformed(t *testing.T) {
	client := &fakeLLM{responses: []string{"I cannot score this supplier.", "still no"}}
	assessor := NewPromptAssessor(client, 0)

	_, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	var malformed *MalformedAssessmentError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Reason, "not valid JSON")
}

func TestPromptAssessor_RetriesOnceThenSucceeds(t *testing.T) {
	client := &fakeLLM{responses: []string{"broken", validAssessmentJSON}}
	assessor := NewPromptAssessor(client, 0)

	scores, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	require.NoError(t, err)
	assert.Len(t, scores, 5)
	assert.Equal(t, 2, client.calls)
}

func TestPromptAssessor_BackendErrorPropagates(t *testing.T) {
	boom := errors.New("backend down")
	client := &fakeLLM{errs: []error{boom, boom}}
	assessor := NewPromptAssessor(client, 0)

	_, err := assessor.Assess(context.Background(), testSupplier(), testBundle(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
