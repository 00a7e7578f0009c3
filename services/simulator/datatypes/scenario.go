// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
)

// =============================================================================
// STEP PARAMETERS
// =============================================================================

// Well-known step parameter keys. The set is action-dependent; unknown
// keys are forwarded to the sector service untouched.
const (
	// ParamValue is the mandatory numeric magnitude for adjust_* actions.
	ParamValue = "value"
	// ParamDuration is the outage duration in minutes.
	ParamDuration = "duration"
	// ParamSourceSector names the initiating sector on dependency checks.
	ParamSourceSector = "source_sector"
	// ParamSourceDuration carries the initiator's sampled duration onto
	// dependency-check steps so dependent services can scale their impact.
	ParamSourceDuration = "source_duration"
)

// StepParams is the string-keyed, action-dependent parameter mapping of
// a scenario step. Values are JSON-decoded, so numbers arrive as float64.
type StepParams map[string]any

// Float returns the numeric value stored under key. The second return
// is false when the key is absent or not a number.
func (p StepParams) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioStep is one ordered operation within a scenario. Steps are
// immutable once constructed; the applicator never mutates them.
type ScenarioStep struct {
	// StepIndex is positive and unique within one scenario run. Steps
	// execute in strictly ascending StepIndex order.
	StepIndex int `json:"step_index" yaml:"step_index" binding:"required,min=1"`

	// Sector the step targets.
	Sector Sector `json:"sector" yaml:"sector"`

	// Action applied to the sector.
	Action Action `json:"action" yaml:"action"`

	// Params is the action-dependent parameter mapping.
	Params StepParams `json:"params,omitempty" yaml:"params,omitempty"`
}

// Validate checks the step in isolation: known sector, action valid for
// that sector, mandatory numeric value present for adjust_* actions.
func (s ScenarioStep) Validate() error {
	if s.StepIndex < 1 {
		return fmt.Errorf("%w: step_index must be positive, got %d",
			apperrors.ErrValidation, s.StepIndex)
	}
	if !s.Sector.IsValid() {
		return fmt.Errorf("%w: unknown sector %q", apperrors.ErrValidation, s.Sector)
	}
	if !s.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", apperrors.ErrValidation, s.Action)
	}
	if !s.Action.AppliesTo(s.Sector) {
		return fmt.Errorf("%w: action %q not supported by sector %q",
			apperrors.ErrValidation, s.Action, s.Sector)
	}
	if s.Action.RequiresValue() {
		if _, ok := s.Params.Float(ParamValue); !ok {
			return fmt.Errorf("%w: action %q requires numeric params.value",
				apperrors.ErrValidation, s.Action)
		}
	}
	return nil
}

// ValidateSteps checks an ordered step sequence: at least one step,
// strictly ascending step indexes (duplicates are a validation error),
// every step individually valid. The initiator sector is the sector of
// the lowest-index step, which after this check is simply steps[0].
func ValidateSteps(steps []ScenarioStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: scenario must have at least one step", apperrors.ErrValidation)
	}
	prev := 0
	for _, st := range steps {
		if err := st.Validate(); err != nil {
			return err
		}
		if st.StepIndex == prev {
			return fmt.Errorf("%w: duplicate step_index %d", apperrors.ErrValidation, st.StepIndex)
		}
		if st.StepIndex < prev {
			return fmt.Errorf("%w: step_index %d out of order (previous %d)",
				apperrors.ErrValidation, st.StepIndex, prev)
		}
		prev = st.StepIndex
	}
	return nil
}

// ScenarioDefinition is a named, catalog-owned ordered step sequence.
// Definitions are created once at catalog load and never mutated.
type ScenarioDefinition struct {
	ScenarioID  string         `json:"scenario_id" yaml:"scenario_id"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []ScenarioStep `json:"steps" yaml:"steps"`
}

// InitiatorSector returns the sector of the lowest-index step. Valid
// only after ValidateSteps has passed.
func (d ScenarioDefinition) InitiatorSector() Sector {
	return d.Steps[0].Sector
}

// ScenarioRunRequest asks for one scenario execution.
//
// In catalog mode (UseCatalog true) ScenarioID is resolved through the
// process-wide catalog and Steps must be empty; otherwise Steps carry an
// explicit sequence and the catalog is bypassed.
type ScenarioRunRequest struct {
	ScenarioID     string         `json:"scenario_id" binding:"required"`
	RunID          int64          `json:"run_id,omitempty"`
	InitAllSectors bool           `json:"init_all_sectors"`
	UseCatalog     bool           `json:"use_catalog"`
	Steps          []ScenarioStep `json:"steps,omitempty"`

	// Thresholds for the cascade indicators. The quantitative threshold
	// is nullable: nil falls back to the configured default, while an
	// explicit 0 is honored as-is.
	DeltaSectorThreshold         float64  `json:"delta_sector_threshold" binding:"min=0"`
	NonInitiatorThresholdClassic float64  `json:"non_initiator_threshold_classical" binding:"min=0,max=1"`
	NonInitiatorThresholdQuant   *float64 `json:"non_initiator_threshold_q,omitempty" binding:"omitempty,min=0,max=1"`
}

// ScenarioRunResult reports one completed scenario run: before/after
// total risk per method, deltas, and the binary cascade indicators.
type ScenarioRunResult struct {
	ScenarioID string `json:"scenario_id"`
	RunID      int64  `json:"run_id"`

	BeforeClassical    float64 `json:"before_cl"`
	AfterClassical     float64 `json:"after_cl"`
	BeforeQuantitative float64 `json:"before_q"`
	AfterQuantitative  float64 `json:"after_q"`

	DeltaClassical    float64 `json:"delta_cl"`
	DeltaQuantitative float64 `json:"delta_q"`

	// CascadeClassical and CascadeQuantitative are the I_cl / I_q
	// indicators: 1 when the disruption measurably propagated beyond
	// the initiating sector under the respective method.
	CascadeClassical    int `json:"I_cl"`
	CascadeQuantitative int `json:"I_q"`
}

// =============================================================================
// RUN LIFECYCLE
// =============================================================================

// RunState is the scenario-run state machine. A run advances
// Pending → Initialized → SnapshottingBefore → Applying →
// SnapshottingAfter → Completed, or drops to Failed from any state.
// There is no compensation path: a failed run leaves sector state as-is.
type RunState string

const (
	StatePending            RunState = "pending"
	StateInitialized        RunState = "initialized"
	StateSnapshottingBefore RunState = "snapshotting_before"
	StateApplying           RunState = "applying"
	StateSnapshottingAfter  RunState = "snapshotting_after"
	StateCompleted          RunState = "completed"
	StateFailed             RunState = "failed"
)

// runTransitions is the allowed-transition table. Applying → Applying
// covers step advancement within the apply phase.
var runTransitions = map[RunState]map[RunState]bool{
	StatePending:            {StateInitialized: true, StateFailed: true},
	StateInitialized:        {StateSnapshottingBefore: true, StateFailed: true},
	StateSnapshottingBefore: {StateApplying: true, StateFailed: true},
	StateApplying:           {StateApplying: true, StateSnapshottingAfter: true, StateFailed: true},
	StateSnapshottingAfter:  {StateCompleted: true, StateFailed: true},
}

// CanTransition reports whether the lifecycle permits moving from s to
// next. Completed and Failed are terminal.
func (s RunState) CanTransition(next RunState) bool {
	return runTransitions[s][next]
}
