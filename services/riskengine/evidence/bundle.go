// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/procurisk/procurisk/services/riskengine/datatypes"
)

// canonicalItem is the fixed-field tuple each item is serialized to for
// hashing. Fields are declared in alphabetical order so the JSON keys
// come out lexicographically sorted.
type canonicalItem struct {
	Content   string `json:"content"`
	Section   string `json:"section"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// BuildBundle assembles the evidence bundle for one supplier.
//
// Each section is sorted by (timestamp, source, content) before label
// assignment, so neither the bundle text nor the hash depends on the
// store's retrieval order. Citation labels run E1..En over the internal
// section followed by the external section. The hash is a sha256 over
// the canonical JSON serialization, rendered as lowercase hex; it
// changes whenever any item's content, timestamp, source, or section
// changes, and only then.
func BuildBundle(supplierID string, internal, external []datatypes.EvidenceItem) *datatypes.EvidenceBundle {
	sortItems(internal)
	sortItems(external)

	items := make([]datatypes.EvidenceItem, 0, len(internal)+len(external))
	items = append(items, internal...)
	items = append(items, external...)
	for i := range items {
		items[i].CitationLabel = fmt.Sprintf("E%d", i+1)
	}

	return &datatypes.EvidenceBundle{
		SupplierID:   supplierID,
		Items:        items,
		EvidenceHash: hashItems(items),
	}
}

func sortItems(items []datatypes.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.Before(items[j].Timestamp)
		}
		if items[i].Source != items[j].Source {
			return items[i].Source < items[j].Source
		}
		return items[i].Content < items[j].Content
	})
}

func hashItems(items []datatypes.EvidenceItem) string {
	canonical := make([]canonicalItem, 0, len(items))
	for _, item := range items {
		canonical = append(canonical, canonicalItem{
			Content: item.Content,
			Section: string(item.Section),
			Source:  item.Source,
			// Nanosecond precision: store timestamps carry Unix
			// milliseconds, and a sub-second shift must change the hash.
			Timestamp: item.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	// Marshal cannot fail on a slice of plain string structs.
	serialized, _ := json.Marshal(canonical)
	digest := sha256.Sum256(serialized)
	return hex.EncodeToString(digest[:])
}

// RenderText formats the bundle for human readers and for the prompt
// assessor:
//
//	### INTERNAL
//	[E1] delivery_report (2025-06-01T00:00:00Z): On-time rate 94%
//
//	### EXTERNAL
//	[E2] news (2025-07-10T00:00:00Z): 15% revenue growth reported
func RenderText(bundle *datatypes.EvidenceBundle) string {
	var b strings.Builder
	b.WriteString("### INTERNAL\n")
	writeSection(&b, bundle, datatypes.SectionInternal)
	b.WriteString("\n### EXTERNAL\n")
	writeSection(&b, bundle, datatypes.SectionExternal)
	return b.String()
}

func writeSection(b *strings.Builder, bundle *datatypes.EvidenceBundle, section datatypes.Section) {
	for _, item := range bundle.Items {
		if item.Section != section {
			continue
		}
		fmt.Fprintf(b, "[%s] %s (%s): %s\n",
			item.CitationLabel,
			item.DocType,
			item.Timestamp.UTC().Format(time.RFC3339),
			item.Content)
	}
}
