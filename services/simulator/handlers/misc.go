// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck answers the liveness probe. It never touches upstream
// services: the simulator being up is independent of the sectors.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "scenario_simulator"})
}

// ReadyCheck answers the readiness probe.
func ReadyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Root is a friendly banner for humans poking the service.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Scenario Simulator is operational"})
}
