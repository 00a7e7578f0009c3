// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuprich777/diploma/services/simulator/catalog"
	"github.com/kuprich777/diploma/services/simulator/engine"
	"github.com/kuprich777/diploma/services/simulator/handlers"
)

// SetupRoutes wires the simulator's HTTP surface onto the router.
func SetupRoutes(router *gin.Engine, cat *catalog.Catalog, app *engine.Applicator,
	mc *engine.MonteCarlo) {

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/catalog", handlers.ListCatalog(cat))
		v1.POST("/run_scenario", handlers.RunScenario(app))
		v1.POST("/monte_carlo", handlers.RunMonteCarlo(mc))
	}
}
