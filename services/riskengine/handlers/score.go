// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procurisk/procurisk/services/riskengine/datatypes"
	"github.com/procurisk/procurisk/services/riskengine/engine"
)

// ScoreDocument ranks one ad hoc document by tone and recency, outside
// the full supplier pipeline.
func ScoreDocument(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc datatypes.RawDocument
		if err := c.BindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		c.JSON(http.StatusOK, eng.ScoreDocument(doc))
	}
}

// ScoreBatch scores a list of documents independently; the response
// preserves input order.
func ScoreBatch(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var docs []datatypes.RawDocument
		if err := c.BindJSON(&docs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		c.JSON(http.StatusOK, eng.ScoreBatch(docs))
	}
}
