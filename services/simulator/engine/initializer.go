// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine implements the scenario orchestration core: baseline
// initialization, the scenario-run state machine, cascade metric
// computation, and the Monte Carlo batch driver.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kuprich777/diploma/services/simulator/clients"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

// Initializer ensures an idempotent baseline state for a given
// (scenario_id, run_id) across the listed sector adapters before a
// scenario executes.
type Initializer struct {
	Sectors clients.SectorAdapter
}

// EnsureBaseline calls init(force=true) on each listed sector in order.
// Forced init converges to the same baseline on repeated calls for the
// same (scenario_id, run_id). Failure in any one sector aborts the whole
// scenario run before risk snapshots are taken: there is no partial
// baseline.
func (i *Initializer) EnsureBaseline(ctx context.Context, scenarioID string, runID int64,
	sectors []datatypes.Sector) error {

	for _, s := range sectors {
		if err := i.Sectors.Init(ctx, s, scenarioID, runID, true); err != nil {
			return fmt.Errorf("baseline init for sector %s: %w", s, err)
		}
		slog.Debug("baseline forced", "sector", s, "scenario_id", scenarioID, "run_id", runID)
	}
	return nil
}
