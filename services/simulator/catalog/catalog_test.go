// Copyright (C) 2026 kuprich777
// Tests for the scenario catalog

package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

func TestLoad_EmbeddedDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)

	def, err := cat.Lookup("S1_energy_outage")
	require.NoError(t, err)
	require.Len(t, def.Steps, 3)

	assert.Equal(t, datatypes.SectorEnergy, def.Steps[0].Sector)
	assert.Equal(t, datatypes.ActionOutage, def.Steps[0].Action)
	dur, ok := def.Steps[0].Params.Float(datatypes.ParamDuration)
	require.True(t, ok)
	assert.Equal(t, float64(10), dur)

	assert.Equal(t, datatypes.SectorWater, def.Steps[1].Sector)
	assert.Equal(t, datatypes.ActionDependencyCheck, def.Steps[1].Action)
	assert.Equal(t, "energy", def.Steps[1].Params[datatypes.ParamSourceSector])

	assert.Equal(t, datatypes.SectorTransport, def.Steps[2].Sector)
	assert.Equal(t, datatypes.SectorEnergy, def.InitiatorSector())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}

func TestLookup_NotFound(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)

	_, err = cat.Lookup("UNKNOWN_SCENARIO")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrScenarioNotFound))
}

func TestList_LoadOrder(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)

	entries := cat.List()
	require.GreaterOrEqual(t, len(entries), 4)
	assert.Equal(t, "S1_energy_outage", entries[0].ScenarioID)
	assert.Equal(t, 3, entries[0].StepCount)
	assert.Equal(t, "S2_energy_degradation", entries[1].ScenarioID)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"duplicate step index": `
scenarios:
  - scenario_id: broken
    steps:
      - step_index: 1
        sector: energy
        action: outage
      - step_index: 1
        sector: water
        action: dependency_check
`,
		"duplicate scenario id": `
scenarios:
  - scenario_id: twice
    steps:
      - {step_index: 1, sector: energy, action: outage}
  - scenario_id: twice
    steps:
      - {step_index: 1, sector: energy, action: outage}
`,
		"unknown sector": `
scenarios:
  - scenario_id: badsector
    steps:
      - {step_index: 1, sector: nuclear, action: outage}
`,
		"action not applicable": `
scenarios:
  - scenario_id: badaction
    steps:
      - {step_index: 1, sector: water, action: outage}
`,
		"adjust without value": `
scenarios:
  - scenario_id: novalue
    steps:
      - {step_index: 1, sector: energy, action: adjust_production}
`,
		"empty steps": `
scenarios:
  - scenario_id: hollow
    steps: []
`,
		"no scenarios": `
scenarios: []
`,
		"not yaml": `{{{`,
	}
	for name, src := range cases {
		_, err := parse([]byte(src))
		assert.Error(t, err, name)
	}
}
