// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package apperrors defines the error taxonomy shared across the simulator.
//
// Every failure surfaced by the simulator belongs to exactly one of the
// sentinel classes below. Handlers map the class to an HTTP status; the
// engine and clients only ever wrap these sentinels with context via
// fmt.Errorf("...: %w", ...), so callers can classify with errors.Is.
package apperrors

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrValidation indicates a malformed request: missing required
	// parameters, invalid thresholds or ranges, unknown sector or action.
	// Surfaced before any side-effecting call is made.
	ErrValidation = errors.New("validation failed")

	// ErrScenarioNotFound indicates the requested scenario_id does not
	// exist in the catalog. Distinguished from ErrValidation so callers
	// can return 404 instead of 400.
	ErrScenarioNotFound = errors.New("scenario not found in catalog")

	// ErrUpstreamUnavailable indicates every candidate endpoint for a
	// remote operation failed or timed out. The current run is marked
	// failed; no retries happen above the adapter's own candidate list.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrAggregationFailure indicates a Monte Carlo batch completed zero
	// trials (or fell below the configured success ratio), so no
	// statistics can be produced.
	ErrAggregationFailure = errors.New("monte carlo aggregation failed")

	// ErrReportingFailure indicates the best-effort export to the
	// reporting registry failed. Always logged, never propagated to the
	// caller's response path.
	ErrReportingFailure = errors.New("experiment export failed")

	// ErrInvalidTransition indicates a scenario run attempted a state
	// transition the run lifecycle does not permit. This is an internal
	// invariant violation, not a caller error.
	ErrInvalidTransition = errors.New("invalid run state transition")
)
