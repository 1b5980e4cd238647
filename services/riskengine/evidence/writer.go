// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package evidence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
)

// Writer ingests supplier records and evidence documents.
type Writer interface {
	AddSupplier(ctx context.Context, supplier *datatypes.Supplier) error
	AddDocument(ctx context.Context, doc *datatypes.SupplierDocProperties) error
}

// WeaviateWriter writes supplier and document objects into Weaviate.
type WeaviateWriter struct {
	client *weaviate.Client
}

func NewWeaviateWriter(client *weaviate.Client) *WeaviateWriter {
	return &WeaviateWriter{client: client}
}

// AddSupplier implements Writer. The object id is derived from the
// supplier id so re-ingesting the same supplier updates in place
// rather than duplicating.
func (w *WeaviateWriter) AddSupplier(ctx context.Context, supplier *datatypes.Supplier) error {
	props := datatypes.SupplierProperties{
		SupplierID:    supplier.ID,
		Name:          supplier.Name,
		AnnualRevenue: supplier.AnnualRevenue,
		EmployeeCount: supplier.EmployeeCount,
		FoundedYear:   supplier.FoundedYear,
		HQLocation:    supplier.HQLocation,
		Industry:      supplier.Industry,
	}
	objectID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("supplier:"+supplier.ID)).String()
	_, err := w.client.Data().Creator().
		WithClassName("Supplier").
		WithID(objectID).
		WithProperties(props.ToMap()).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("writing supplier %s: %w", supplier.ID, err)
	}
	return nil
}

// AddDocument implements Writer. Documents are append-only; each gets
// a fresh object id.
func (w *WeaviateWriter) AddDocument(ctx context.Context, doc *datatypes.SupplierDocProperties) error {
	_, err := w.client.Data().Creator().
		WithClassName("SupplierDoc").
		WithProperties(doc.ToMap()).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("writing document for supplier %s: %w", doc.SupplierID, err)
	}
	return nil
}
