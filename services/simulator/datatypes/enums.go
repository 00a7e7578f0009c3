// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides type definitions for the scenario simulator.
//
// This file contains the closed enumerations the simulator dispatches on:
// infrastructure sectors, scenario actions, and risk scoring methods.
// Keeping these as typed string constants with validity maps makes an
// unknown sector or action a local validation failure instead of a
// malformed upstream call.
package datatypes

// =============================================================================
// ENUMS
// =============================================================================

// Sector identifies one of the three modeled infrastructure domains.
//
// Valid Values:
//   - "energy": power production and consumption
//   - "water": water supply and demand
//   - "transport": transport network load
//
// The set is closed: the cascade model, the risk service breakdown, and
// the sector adapters all share exactly these three names.
type Sector string

const (
	SectorEnergy    Sector = "energy"
	SectorWater     Sector = "water"
	SectorTransport Sector = "transport"
)

// AllSectors lists every known sector in canonical order. The order is
// load-bearing: dependency-check steps generated for Monte Carlo trials
// visit non-initiator sectors in this order, which keeps generated step
// sequences reproducible.
var AllSectors = []Sector{SectorEnergy, SectorWater, SectorTransport}

var validSectors = map[Sector]bool{
	SectorEnergy:    true,
	SectorWater:     true,
	SectorTransport: true,
}

// IsValid reports whether the Sector is one of the defined constants.
func (s Sector) IsValid() bool {
	return validSectors[s]
}

// Action identifies a logical operation applied to a sector during a
// scenario step. Each action resolves to one or more candidate remote
// operations inside the sector adapter (compatibility layer); the names
// here are the simulator-facing vocabulary, not upstream route names.
type Action string

const (
	ActionOutage            Action = "outage"
	ActionResolveOutage     Action = "resolve_outage"
	ActionAdjustProduction  Action = "adjust_production"
	ActionAdjustConsumption Action = "adjust_consumption"
	ActionLoadIncrease      Action = "load_increase"
	ActionDependencyCheck   Action = "dependency_check"
	ActionUpdateLoad        Action = "update_load"
)

var validActions = map[Action]bool{
	ActionOutage:            true,
	ActionResolveOutage:     true,
	ActionAdjustProduction:  true,
	ActionAdjustConsumption: true,
	ActionLoadIncrease:      true,
	ActionDependencyCheck:   true,
	ActionUpdateLoad:        true,
}

// IsValid reports whether the Action is one of the defined constants.
func (a Action) IsValid() bool {
	return validActions[a]
}

// sectorActions records which logical actions each sector supports.
// Grounded in the real capability surface of the three domain services:
// only energy can originate an outage, water exposes supply/demand
// adjustment, transport exposes load manipulation, and only the two
// dependent sectors can run a dependency check against the initiator.
var sectorActions = map[Sector]map[Action]bool{
	SectorEnergy: {
		ActionOutage:            true,
		ActionResolveOutage:     true,
		ActionAdjustProduction:  true,
		ActionAdjustConsumption: true,
	},
	SectorWater: {
		ActionDependencyCheck:   true,
		ActionResolveOutage:     true,
		ActionAdjustProduction:  true,
		ActionAdjustConsumption: true,
	},
	SectorTransport: {
		ActionDependencyCheck: true,
		ActionResolveOutage:   true,
		ActionUpdateLoad:      true,
		ActionLoadIncrease:    true,
	},
}

// AppliesTo reports whether the action is part of the given sector's
// capability surface.
func (a Action) AppliesTo(s Sector) bool {
	return sectorActions[s][a]
}

// RequiresValue reports whether the action carries a mandatory numeric
// "value" parameter. Absence of the parameter is a validation error
// raised before any network call.
func (a Action) RequiresValue() bool {
	switch a {
	case ActionAdjustProduction, ActionAdjustConsumption:
		return true
	default:
		return false
	}
}

// RiskMethod selects one of the two risk scoring formulas evaluated by
// the external risk service. Both are opaque to the simulator.
type RiskMethod string

const (
	// MethodClassical is the rule-based aggregation method.
	MethodClassical RiskMethod = "classical"
	// MethodQuantitative is the statistical aggregation method.
	MethodQuantitative RiskMethod = "quantitative"
)

// AllMethods lists both scoring methods. Risk snapshots are taken for
// the full set: a partial snapshot produces meaningless deltas, so the
// risk client treats the pair as both-or-neither.
var AllMethods = []RiskMethod{MethodClassical, MethodQuantitative}

var validMethods = map[RiskMethod]bool{
	MethodClassical:    true,
	MethodQuantitative: true,
}

// IsValid reports whether the RiskMethod is one of the defined constants.
func (m RiskMethod) IsValid() bool {
	return validMethods[m]
}
