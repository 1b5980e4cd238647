// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Section partitions evidence into company-internal records and
// external (news/press) material.
type Section string

const (
	SectionInternal Section = "INTERNAL"
	SectionExternal Section = "EXTERNAL"
)

// EvidenceItem is one normalized document about a supplier. Items are
// immutable once the bundle is built; the citation label (E1, E2, ...)
// is unique within its bundle.
type EvidenceItem struct {
	CitationLabel string    `json:"citation_label"`
	Section       Section   `json:"section"`
	Content       string    `json:"content"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	Tone          *float64  `json:"tone,omitempty"`
	DocType       string    `json:"doc_type"`
}

// EvidenceBundle is the deterministic, hashed evidence set for one
// assessment: internal items first, then external, each section in the
// builder's canonical order. EvidenceHash is a pure function of item
// content, sections, sources, and timestamps; never of fetch order or
// wall-clock time.
type EvidenceBundle struct {
	SupplierID   string         `json:"supplier_id"`
	Items        []EvidenceItem `json:"items"`
	EvidenceHash string         `json:"evidence_hash"`
}

// IsEmpty reports whether the bundle carries no evidence at all. An
// empty bundle is a valid state, not an error; it yields "insufficient
// data" scores downstream.
func (b *EvidenceBundle) IsEmpty() bool {
	return len(b.Items) == 0
}

// RawDocumentMetadata is the caller-supplied metadata on an ad hoc
// scoring request. Published is RFC3339; an unparsable value gets the
// document skipped, not rejected.
type RawDocumentMetadata struct {
	Source    string   `json:"source"`
	Published string   `json:"published"`
	Tone      *float64 `json:"tone,omitempty"`
}

// RawDocument is one document submitted for ad hoc tone/recency
// scoring outside the full supplier pipeline.
type RawDocument struct {
	Content  string              `json:"content"`
	Metadata RawDocumentMetadata `json:"metadata"`
}
