// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"
)

// ParseGraphQLResponse parses a Weaviate GraphQL response into the
// target type.
//
// Weaviate's client returns dynamic map[string]models.JSONObject data;
// this generic helper encapsulates the marshal/unmarshal round trip
// into a strongly typed struct. The target type T must carry json tags
// matching the expected response shape.
//
//	resp, err := client.GraphQL().Get().WithClassName("SupplierDoc").Do(ctx)
//	parsed, err := ParseGraphQLResponse[SupplierDocQueryResponse](resp)
//
// Type mismatches produce zero values, not errors, so response types
// must exactly mirror the queried fields.
func ParseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	if len(resp.Errors) > 0 && resp.Errors[0] != nil {
		return nil, fmt.Errorf("GraphQL query error: %s", resp.Errors[0].Message)
	}

	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var result T
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}

	return &result, nil
}

// SupplierDocQueryResponse represents the response from querying the
// SupplierDoc class.
type SupplierDocQueryResponse struct {
	Get struct {
		SupplierDoc []SupplierDocResult `json:"SupplierDoc"`
	} `json:"Get"`
}

// SupplierDocResult is a single evidence document from a query.
// Timestamp is Unix milliseconds; Tone is nil when the store has no
// sentiment for the document.
type SupplierDocResult struct {
	Content    string   `json:"content"`
	SupplierID string   `json:"supplier_id"`
	Collection string   `json:"collection"`
	Source     string   `json:"source"`
	DocType    string   `json:"doc_type"`
	Timestamp  int64    `json:"timestamp"`
	Tone       *float64 `json:"tone"`
}

// SupplierQueryResponse represents the response from querying the
// Supplier class.
type SupplierQueryResponse struct {
	Get struct {
		Supplier []SupplierResult `json:"Supplier"`
	} `json:"Get"`
}

// SupplierResult is a single supplier directory record from a query.
type SupplierResult struct {
	SupplierID    string  `json:"supplier_id"`
	Name          string  `json:"name"`
	AnnualRevenue float64 `json:"annual_revenue"`
	EmployeeCount int     `json:"employee_count"`
	FoundedYear   int     `json:"founded_year"`
	HQLocation    string  `json:"hq_location"`
	Industry      string  `json:"industry"`
}

// SupplierDocProperties is the write-side shape of a SupplierDoc.
type SupplierDocProperties struct {
	Content    string   `json:"content"`
	SupplierID string   `json:"supplier_id"`
	Collection string   `json:"collection"`
	Source     string   `json:"source"`
	DocType    string   `json:"doc_type"`
	Timestamp  int64    `json:"timestamp"`
	Tone       *float64 `json:"tone,omitempty"`
}

// ToMap converts SupplierDocProperties to the map format required by
// Weaviate's WithProperties().
func (p *SupplierDocProperties) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"content":     p.Content,
		"supplier_id": p.SupplierID,
		"collection":  p.Collection,
		"source":      p.Source,
		"doc_type":    p.DocType,
		"timestamp":   p.Timestamp,
	}
	if p.Tone != nil {
		m["tone"] = *p.Tone
	}
	return m
}
