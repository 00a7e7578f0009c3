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

// MinMonteCarloRuns is the statistical floor for a batch. Batches below
// this size produce estimates too noisy to act on and are rejected
// before any side-effecting call.
const MinMonteCarloRuns = 100

// MonteCarloRequest describes a randomized batch of scenario trials.
type MonteCarloRequest struct {
	ScenarioID string `json:"scenario_id" binding:"required"`
	Sector     Sector `json:"sector" binding:"required,sector"`

	// Runs is the number of trials, at least MinMonteCarloRuns.
	Runs int `json:"runs" binding:"required"`

	// StartRunID seeds the per-trial run_id sequence:
	// run_id = StartRunID + trial_index. The caller is responsible for
	// choosing a base disjoint from externally issued run ids.
	StartRunID int64 `json:"start_run_id"`

	// DurationMin and DurationMax bound the sampled outage duration in
	// minutes; both at least 1 and DurationMax >= DurationMin.
	DurationMin int `json:"duration_min" binding:"required,min=1"`
	DurationMax int `json:"duration_max" binding:"required,min=1"`

	// InitiatorAction is the single disrupting action applied to Sector
	// at the start of every trial.
	InitiatorAction Action `json:"initiator_action" binding:"required,riskaction"`

	// StochasticScale is the jitter magnitude applied to the sampled
	// duration; 0 disables perturbation entirely.
	StochasticScale float64 `json:"stochastic_scale" binding:"min=0"`

	// NonInitiatorThresholdQuant is nullable: nil falls back to the
	// configured default, while an explicit 0 is honored as-is.
	DeltaSectorThreshold         float64  `json:"delta_sector_threshold" binding:"min=0"`
	NonInitiatorThresholdClassic float64  `json:"non_initiator_threshold_classical" binding:"min=0,max=1"`
	NonInitiatorThresholdQuant   *float64 `json:"non_initiator_threshold_q,omitempty" binding:"omitempty,min=0,max=1"`
}

// Validate checks every range constraint before any trial is issued.
// A violation fails the whole request with zero state mutation.
func (r MonteCarloRequest) Validate() error {
	if r.ScenarioID == "" {
		return fmt.Errorf("%w: scenario_id is required", apperrors.ErrValidation)
	}
	if !r.Sector.IsValid() {
		return fmt.Errorf("%w: unknown sector %q", apperrors.ErrValidation, r.Sector)
	}
	if r.Runs < MinMonteCarloRuns {
		return fmt.Errorf("%w: runs=%d below the %d-trial statistical floor",
			apperrors.ErrValidation, r.Runs, MinMonteCarloRuns)
	}
	if r.DurationMin < 1 || r.DurationMax < 1 {
		return fmt.Errorf("%w: durations must be >= 1 minute", apperrors.ErrValidation)
	}
	if r.DurationMax < r.DurationMin {
		return fmt.Errorf("%w: duration_max=%d < duration_min=%d",
			apperrors.ErrValidation, r.DurationMax, r.DurationMin)
	}
	if !r.InitiatorAction.IsValid() {
		return fmt.Errorf("%w: unknown action %q", apperrors.ErrValidation, r.InitiatorAction)
	}
	if !r.InitiatorAction.AppliesTo(r.Sector) {
		return fmt.Errorf("%w: action %q not supported by sector %q",
			apperrors.ErrValidation, r.InitiatorAction, r.Sector)
	}
	if r.StochasticScale < 0 {
		return fmt.Errorf("%w: stochastic_scale must be >= 0", apperrors.ErrValidation)
	}
	if r.DeltaSectorThreshold < 0 {
		return fmt.Errorf("%w: delta_sector_threshold must be >= 0", apperrors.ErrValidation)
	}
	if r.NonInitiatorThresholdClassic < 0 || r.NonInitiatorThresholdClassic > 1 {
		return fmt.Errorf("%w: non_initiator_threshold_classical must be in [0,1]",
			apperrors.ErrValidation)
	}
	if q := r.NonInitiatorThresholdQuant; q != nil && (*q < 0 || *q > 1) {
		return fmt.Errorf("%w: non_initiator_threshold_q must be in [0,1]",
			apperrors.ErrValidation)
	}
	return nil
}

// MonteCarloRun is one completed trial.
type MonteCarloRun struct {
	// RunID is StartRunID + trial index, disjoint across trials.
	RunID int64 `json:"run_id"`

	// Duration is the sampled (and possibly jittered) outage duration.
	Duration int `json:"duration"`

	Before float64 `json:"before"`
	After  float64 `json:"after"`

	// DeltaR is the classical-method risk delta for this trial.
	DeltaR float64 `json:"delta_R"`

	CascadeClassical    int `json:"I_cl"`
	CascadeQuantitative int `json:"I_q"`
}

// MonteCarloResult aggregates a batch over its completed trials.
// Trials that failed reduce the sample size; they never abort the batch
// unless nothing completed at all.
type MonteCarloResult struct {
	ScenarioID string `json:"scenario_id"`
	Sector     Sector `json:"sector"`

	// Completed counts trials that finished without fatal error; the
	// aggregates below are computed over exactly these.
	Completed int `json:"completed"`
	Requested int `json:"requested"`

	// Runs holds completed trials ordered by trial index, stable and
	// indexable for reproducibility checks.
	Runs []MonteCarloRun `json:"runs_data"`

	MeanDelta float64 `json:"mean_delta"`
	MinDelta  float64 `json:"min_delta"`
	MaxDelta  float64 `json:"max_delta"`
	P95Delta  float64 `json:"p95_delta"`

	// KClassical and KQuantitative are the fractions of completed
	// trials whose cascade indicator fired; both are in [0,1].
	KClassical    float64 `json:"K_cl"`
	KQuantitative float64 `json:"K_q"`

	// DeltaPercent is the mean delta as a percentage of the mean
	// pre-trial baseline risk.
	DeltaPercent float64 `json:"Delta_percent"`
}
