// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// GetSupplierDocSchema returns the schema for the SupplierDoc class.
//
// SupplierDoc holds one evidence document about a supplier: either an
// internal record (mail, ERP extract, delivery report) or an external
// news/press article. The `collection` property partitions the two;
// `timestamp` is Unix milliseconds so time-window filters are plain
// numeric range queries.
func GetSupplierDocSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "SupplierDoc",
		Description: "An evidence document (internal record or external article) about a supplier.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The free-text content of the document.",
				Tokenization: "word",
			},
			{
				Name:            "supplier_id",
				DataType:        []string{"text"},
				Description:     "The supplier this document is about.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "collection",
				DataType:        []string{"text"},
				Description:     "Which evidence collection this belongs to: 'internal' or 'news'.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "Where the document came from (mailbox, ERP system, publisher).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "doc_type",
				DataType:        []string{"text"},
				Description:     "Free-form document type (email, delivery_report, news, ...).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "timestamp",
				DataType:        []string{"number"},
				Description:     "Document timestamp in Unix milliseconds.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "tone",
				DataType:        []string{"number"},
				Description:     "Sentiment tone in [-1,1]. Only present for news documents.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// GetSupplierSchema returns the schema for the Supplier class, the core
// directory record the engine reads before assessing.
func GetSupplierSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "Supplier",
		Description: "Core directory record for a tracked supplier.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:            "supplier_id",
				DataType:        []string{"text"},
				Description:     "Stable supplier identifier (e.g. SUP-000045).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "name",
				DataType:     []string{"text"},
				Description:  "Legal or trading name.",
				Tokenization: "word",
			},
			{
				Name:            "annual_revenue",
				DataType:        []string{"number"},
				Description:     "Annual revenue in USD.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "employee_count",
				DataType:        []string{"int"},
				Description:     "Headcount.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "founded_year",
				DataType:        []string{"int"},
				Description:     "Year the company was founded.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "hq_location",
				DataType:        []string{"text"},
				Description:     "Headquarters location.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "industry",
				DataType:        []string{"text"},
				Description:     "Industry segment.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
		},
	}
}

// EnsureWeaviateSchema creates any missing classes. Failing to create a
// class is fatal: the engine cannot run without its evidence store.
func EnsureWeaviateSchema(client *weaviate.Client) {
	schemaGetters := []func() *models.Class{
		GetSupplierSchema,
		GetSupplierDocSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			// The client errors when the class does not exist yet.
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
