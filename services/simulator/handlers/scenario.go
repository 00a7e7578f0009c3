// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/engine"
)

// RunScenario executes one scenario run. The use_catalog query
// parameter (defaulting to the body's flag) selects between catalog
// resolution and explicit steps.
func RunScenario(app *engine.Applicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ScenarioRunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if raw, ok := c.GetQuery("use_catalog"); ok {
			useCatalog, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "use_catalog must be a boolean"})
				return
			}
			req.UseCatalog = useCatalog
		}

		slog.Info("running scenario",
			"scenario_id", req.ScenarioID,
			"run_id", req.RunID,
			"use_catalog", req.UseCatalog,
			"init_all_sectors", req.InitAllSectors)

		result, err := app.Run(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
