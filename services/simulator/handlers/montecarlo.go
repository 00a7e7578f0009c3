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

	"github.com/gin-gonic/gin"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/engine"
)

// RunMonteCarlo executes a randomized batch of scenario trials and
// returns the aggregated statistics. Export to the reporting registry
// happens asynchronously after the response is produced.
func RunMonteCarlo(mc *engine.MonteCarlo) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.MonteCarloRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		slog.Info("running monte carlo batch",
			"scenario_id", req.ScenarioID,
			"sector", req.Sector,
			"runs", req.Runs,
			"duration_min", req.DurationMin,
			"duration_max", req.DurationMax,
			"stochastic_scale", req.StochasticScale)

		result, err := mc.Run(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
