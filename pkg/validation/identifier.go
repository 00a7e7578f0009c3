// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for caller-provided identifiers that get
// embedded into upstream query strings. Using these validators prevents
// query-string injection and keeps garbage identifiers from leaking into
// sector services and the reporting registry.
package validation

import (
	"fmt"
	"regexp"
)

// scenarioIDPattern matches valid scenario identifiers.
// Allows: letters, digits, underscores, hyphens; must start alphanumeric.
// Max length: 64 characters.
var scenarioIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

// ValidateScenarioID validates a scenario identifier before it is used in
// an upstream URL or registry payload.
//
// Valid scenario ids:
//   - 1-64 characters
//   - letters, digits, underscores, hyphens
//   - first character alphanumeric
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateScenarioID(id); err != nil {
//	    return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
//	}
func ValidateScenarioID(id string) error {
	if id == "" {
		return fmt.Errorf("scenario_id cannot be empty")
	}
	if !scenarioIDPattern.MatchString(id) {
		return fmt.Errorf("invalid scenario_id format: %q (must be 1-64 alphanumeric chars, underscores, or hyphens)", id)
	}
	return nil
}

// ValidateRunID validates a run identifier. Run ids are derived from a
// monotonic source or a Monte Carlo base and must be positive.
func ValidateRunID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("run_id must be positive, got %d", id)
	}
	return nil
}
