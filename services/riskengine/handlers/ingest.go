// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
)

type IngestSupplierRequest struct {
	SupplierID    string  `json:"supplier_id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	AnnualRevenue float64 `json:"annual_revenue"`
	EmployeeCount int     `json:"employee_count"`
	FoundedYear   int     `json:"founded_year"`
	HQLocation    string  `json:"hq_location"`
	Industry      string  `json:"industry"`
}

type IngestEvidenceRequest struct {
	SupplierID string   `json:"supplier_id" binding:"required"`
	Collection string   `json:"collection" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Source     string   `json:"source"`
	DocType    string   `json:"doc_type"`
	Timestamp  string   `json:"timestamp"`
	Tone       *float64 `json:"tone,omitempty"`
}

// CreateSupplier registers or updates a supplier directory record.
func CreateSupplier(writer evidence.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestSupplierRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		supplier := &datatypes.Supplier{
			ID:            req.SupplierID,
			Name:          req.Name,
			AnnualRevenue: req.AnnualRevenue,
			EmployeeCount: req.EmployeeCount,
			FoundedYear:   req.FoundedYear,
			HQLocation:    req.HQLocation,
			Industry:      req.Industry,
		}
		if err := writer.AddSupplier(c.Request.Context(), supplier); err != nil {
			slog.Error("Supplier ingestion failed", "supplier_id", req.SupplierID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       err.Error(),
				"supplier_id": req.SupplierID,
				"step":        "supplier_ingestion",
			})
			return
		}

		slog.Info("Ingested supplier", "supplier_id", req.SupplierID, "name", req.Name)
		c.JSON(http.StatusCreated, gin.H{"status": "success", "supplier_id": req.SupplierID})
	}
}

// CreateEvidence ingests one evidence document into the named
// collection. Timestamp defaults to now when omitted.
func CreateEvidence(writer evidence.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestEvidenceRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.Collection != evidence.CollectionInternal && req.Collection != evidence.CollectionNews {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "collection must be internal or news",
			})
			return
		}

		ts := time.Now().UTC()
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be RFC3339"})
				return
			}
			ts = parsed.UTC()
		}

		doc := &datatypes.SupplierDocProperties{
			Content:    req.Content,
			SupplierID: req.SupplierID,
			Collection: req.Collection,
			Source:     req.Source,
			DocType:    req.DocType,
			Timestamp:  ts.UnixMilli(),
			Tone:       req.Tone,
		}
		if err := writer.AddDocument(c.Request.Context(), doc); err != nil {
			slog.Error("Evidence ingestion failed", "supplier_id", req.SupplierID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       err.Error(),
				"supplier_id": req.SupplierID,
				"step":        "evidence_ingestion",
			})
			return
		}

		slog.Info("Ingested evidence document",
			"supplier_id", req.SupplierID,
			"collection", req.Collection,
			"source", req.Source)
		c.JSON(http.StatusCreated, gin.H{"status": "success", "supplier_id": req.SupplierID})
	}
}
