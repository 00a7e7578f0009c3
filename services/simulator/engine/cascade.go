// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

// Thresholds parameterizes the cascade indicators.
type Thresholds struct {
	// DeltaSector is the minimum classical/quantitative risk rise in the
	// initiating sector for a cascade to be considered at all.
	DeltaSector float64

	// NonInitiatorClassical is the classical after-risk level at least
	// one non-initiating sector must exceed.
	NonInitiatorClassical float64

	// NonInitiatorQuantitative is the same bound for the quantitative
	// method.
	NonInitiatorQuantitative float64
}

// CascadeMetrics is the output of one before/after comparison.
type CascadeMetrics struct {
	DeltaClassical    float64
	DeltaQuantitative float64

	// IndicatorClassical / IndicatorQuantitative are 1 when the
	// disruption measurably propagated beyond the initiating sector
	// under the respective method, 0 otherwise.
	IndicatorClassical    int
	IndicatorQuantitative int
}

// ComputeCascade derives deltas and binary cascade indicators from
// before/after snapshots. Pure and deterministic: identical inputs
// always produce identical outputs, which is what makes single runs and
// degenerate Monte Carlo batches comparable.
//
// The indicator fires only when the initiating sector's own delta
// exceeds the sector threshold AND at least one non-initiating sector's
// after-risk exceeds the non-initiator threshold. A rise confined to the
// initiator is a disruption, not a cascade.
func ComputeCascade(before, after datatypes.RiskPair, initiator datatypes.Sector,
	th Thresholds) CascadeMetrics {

	m := CascadeMetrics{
		DeltaClassical:    after.Classical.TotalRisk - before.Classical.TotalRisk,
		DeltaQuantitative: after.Quantitative.TotalRisk - before.Quantitative.TotalRisk,
	}
	m.IndicatorClassical = indicator(before.Classical, after.Classical, initiator,
		th.DeltaSector, th.NonInitiatorClassical)
	m.IndicatorQuantitative = indicator(before.Quantitative, after.Quantitative, initiator,
		th.DeltaSector, th.NonInitiatorQuantitative)
	return m
}

// indicator evaluates the cascade condition for one method. Without a
// per-sector breakdown the cross-sector condition cannot be observed,
// so the indicator stays 0; missing data is never an error here.
func indicator(before, after datatypes.RiskSnapshot, initiator datatypes.Sector,
	deltaThreshold, nonInitiatorThreshold float64) int {

	if before.Sectors == nil || after.Sectors == nil {
		return 0
	}
	initiatorDelta := after.Sectors[initiator] - before.Sectors[initiator]
	if initiatorDelta <= deltaThreshold {
		return 0
	}
	for sector, risk := range after.Sectors {
		if sector == initiator {
			continue
		}
		if risk > nonInitiatorThreshold {
			return 1
		}
	}
	return 0
}
