// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// RiskSnapshot is one risk service reading for a single method.
//
// The aggregation formula behind TotalRisk is a black box; the simulator
// only ever subtracts totals and compares per-sector contributions
// against thresholds.
type RiskSnapshot struct {
	// TotalRisk is the aggregated risk value, non-negative.
	TotalRisk float64 `json:"total_risk"`

	// Method that produced this snapshot.
	Method RiskMethod `json:"method"`

	// Sectors is the optional per-sector risk breakdown. When absent the
	// cascade indicators cannot observe cross-sector propagation and
	// stay at zero.
	Sectors map[Sector]float64 `json:"sectors,omitempty"`

	// WeightsVersion identifies the upstream weighting configuration.
	// Nullable: no versioning scheme exists yet upstream.
	WeightsVersion *string `json:"weights_version,omitempty"`
}

// RiskPair holds the before-or-after snapshot for both methods. The risk
// client fills it atomically: either both methods answered or the whole
// snapshot failed.
type RiskPair struct {
	Classical    RiskSnapshot `json:"classical"`
	Quantitative RiskSnapshot `json:"quantitative"`
}

// ByMethod returns the snapshot for the given method.
func (p RiskPair) ByMethod(m RiskMethod) RiskSnapshot {
	if m == MethodQuantitative {
		return p.Quantitative
	}
	return p.Classical
}
