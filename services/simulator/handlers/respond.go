// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the simulator's HTTP
// surface: probes, catalog discovery, single scenario runs, and Monte
// Carlo batches.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
)

// respondError maps the error taxonomy onto HTTP statuses:
// validation 400, unknown catalog scenario 404, upstream failures 502,
// aggregation failures 500. Reporting failures never reach here by
// construction.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrScenarioNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, apperrors.ErrAggregationFailure):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
