// Copyright (C) 2026 kuprich777
// Tests for cascade metric computation

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

func snapshot(method datatypes.RiskMethod, total float64,
	sectors map[datatypes.Sector]float64) datatypes.RiskSnapshot {
	return datatypes.RiskSnapshot{TotalRisk: total, Method: method, Sectors: sectors}
}

func pair(total float64, sectors map[datatypes.Sector]float64) datatypes.RiskPair {
	return datatypes.RiskPair{
		Classical:    snapshot(datatypes.MethodClassical, total, sectors),
		Quantitative: snapshot(datatypes.MethodQuantitative, total, sectors),
	}
}

func TestComputeCascade_Deltas(t *testing.T) {
	before := datatypes.RiskPair{
		Classical:    snapshot(datatypes.MethodClassical, 0.2, nil),
		Quantitative: snapshot(datatypes.MethodQuantitative, 0.3, nil),
	}
	after := datatypes.RiskPair{
		Classical:    snapshot(datatypes.MethodClassical, 0.6, nil),
		Quantitative: snapshot(datatypes.MethodQuantitative, 0.45, nil),
	}

	m := ComputeCascade(before, after, datatypes.SectorEnergy, Thresholds{})
	assert.InDelta(t, 0.4, m.DeltaClassical, 1e-12)
	assert.InDelta(t, 0.15, m.DeltaQuantitative, 1e-12)
}

func TestComputeCascade_Indicator(t *testing.T) {
	th := Thresholds{
		DeltaSector:              0.1,
		NonInitiatorClassical:    0.5,
		NonInitiatorQuantitative: 0.5,
	}

	tests := []struct {
		name   string
		before map[datatypes.Sector]float64
		after  map[datatypes.Sector]float64
		want   int
	}{
		{
			name:   "initiator rise plus propagation fires",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.4, "water": 0.7, "transport": 0.1},
			want:   1,
		},
		{
			name:   "rise confined to initiator does not fire",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.9, "water": 0.2, "transport": 0.2},
			want:   0,
		},
		{
			name:   "high non-initiator risk without initiator rise does not fire",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.8, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.15, "water": 0.8, "transport": 0.1},
			want:   0,
		},
		{
			name:   "initiator delta exactly at threshold does not fire",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.2, "water": 0.7, "transport": 0.1},
			want:   0,
		},
		{
			name:   "non-initiator exactly at threshold does not fire",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.4, "water": 0.5, "transport": 0.5},
			want:   0,
		},
		{
			name:   "propagation into either non-initiator is enough",
			before: map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1},
			after:  map[datatypes.Sector]float64{"energy": 0.4, "water": 0.1, "transport": 0.6},
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeCascade(pair(0, tt.before), pair(0, tt.after),
				datatypes.SectorEnergy, th)
			assert.Equal(t, tt.want, m.IndicatorClassical)
			assert.Equal(t, tt.want, m.IndicatorQuantitative)
		})
	}
}

func TestComputeCascade_MissingBreakdown(t *testing.T) {
	th := Thresholds{DeltaSector: 0.1, NonInitiatorClassical: 0.5, NonInitiatorQuantitative: 0.5}

	// No sector breakdown at all: deltas still computed, indicators stay 0.
	before := pair(0.1, nil)
	after := pair(0.9, nil)
	m := ComputeCascade(before, after, datatypes.SectorEnergy, th)
	assert.InDelta(t, 0.8, m.DeltaClassical, 1e-12)
	assert.Equal(t, 0, m.IndicatorClassical)
	assert.Equal(t, 0, m.IndicatorQuantitative)

	// Breakdown present on only one side behaves the same.
	withSectors := pair(0.9, map[datatypes.Sector]float64{"energy": 0.9, "water": 0.9, "transport": 0.9})
	m = ComputeCascade(before, withSectors, datatypes.SectorEnergy, th)
	assert.Equal(t, 0, m.IndicatorClassical)
}

func TestComputeCascade_MethodsIndependent(t *testing.T) {
	// The quantitative side uses its own non-initiator threshold, so the
	// two indicators may disagree on the same breakdown.
	th := Thresholds{
		DeltaSector:              0.1,
		NonInitiatorClassical:    0.5,
		NonInitiatorQuantitative: 0.9,
	}
	before := pair(0, map[datatypes.Sector]float64{"energy": 0.1, "water": 0.1, "transport": 0.1})
	after := pair(0, map[datatypes.Sector]float64{"energy": 0.4, "water": 0.7, "transport": 0.1})

	m := ComputeCascade(before, after, datatypes.SectorEnergy, th)
	assert.Equal(t, 1, m.IndicatorClassical)
	assert.Equal(t, 0, m.IndicatorQuantitative)
}
