// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procurisk/procurisk/services/riskengine/assess"
	"github.com/procurisk/procurisk/services/riskengine/engine"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
)

// GetReview generates (or returns the cached) risk review for one
// supplier.
func GetReview(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID := c.Param("supplierId")

		review, err := eng.Review(c.Request.Context(), supplierID)
		if err != nil {
			writeReviewError(c, supplierID, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

// writeReviewError maps pipeline failures to HTTP responses. Every
// body names the supplier and the failing step.
func writeReviewError(c *gin.Context, supplierID string, err error) {
	var storeErr *evidence.StoreUnavailableError
	var malformed *assess.MalformedAssessmentError

	switch {
	case errors.Is(err, evidence.ErrSupplierNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":       "supplier not found",
			"supplier_id": supplierID,
		})
	case errors.As(err, &storeErr):
		slog.Error("Evidence retrieval failed", "supplier_id", supplierID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       err.Error(),
			"supplier_id": supplierID,
			"step":        "evidence_retrieval",
		})
	case errors.As(err, &malformed):
		slog.Error("Assessment backend returned malformed result",
			"supplier_id", supplierID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       err.Error(),
			"supplier_id": supplierID,
			"step":        "assessment",
		})
	default:
		slog.Error("Review failed", "supplier_id", supplierID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       err.Error(),
			"supplier_id": supplierID,
			"step":        "review",
		})
	}
}
