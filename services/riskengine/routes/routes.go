// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/procurisk/procurisk/services/riskengine/engine"
	"github.com/procurisk/procurisk/services/riskengine/evidence"
	"github.com/procurisk/procurisk/services/riskengine/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, eng *engine.Engine, writer evidence.Writer) {
	router.GET("/health", handlers.HealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/review/:supplierId", handlers.GetReview(eng))
	router.POST("/score", handlers.ScoreDocument(eng))
	router.POST("/batch_score", handlers.ScoreBatch(eng))
	router.POST("/suppliers", handlers.CreateSupplier(writer))
	router.POST("/evidence", handlers.CreateEvidence(writer))
}
