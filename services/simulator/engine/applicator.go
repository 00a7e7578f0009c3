// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kuprich777/diploma/pkg/validation"
	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/catalog"
	"github.com/kuprich777/diploma/services/simulator/clients"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/observability"
)

var tracer = otel.Tracer("cascade.simulator.engine")

// Applicator sequences and applies ordered scenario steps through the
// sector adapter layer. It is the scenario-run state machine driver:
// every run advances through the RunState lifecycle, and any failure
// drops it to Failed with the failing step identified. Sector state is
// left as-is on failure; there is no compensation, mirroring real
// infrastructure faults.
type Applicator struct {
	Catalog *catalog.Catalog
	Sectors clients.SectorAdapter
	Risk    clients.RiskReader
	Init    *Initializer

	// DefaultQuantThreshold fills the quantitative non-initiator
	// threshold when a request leaves it unset.
	DefaultQuantThreshold float64

	// DefaultOutageDuration (minutes) fills outage steps that carry no
	// explicit duration parameter.
	DefaultOutageDuration int
}

// scenarioRun tracks one run's lifecycle state.
type scenarioRun struct {
	state      datatypes.RunState
	failedStep int
}

func newScenarioRun() *scenarioRun {
	return &scenarioRun{state: datatypes.StatePending, failedStep: -1}
}

// advance moves the run to the next lifecycle state, enforcing the
// transition table.
func (r *scenarioRun) advance(next datatypes.RunState) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, r.state, next)
	}
	r.state = next
	return nil
}

// fail marks the run failed. Permitted from every non-terminal state.
func (r *scenarioRun) fail() {
	if r.state != datatypes.StateCompleted {
		r.state = datatypes.StateFailed
	}
}

// resolveSteps validates the request and returns the step sequence to
// execute: the catalog definition in catalog mode, the explicit steps
// otherwise. All validation happens here, before any network call.
func (a *Applicator) resolveSteps(req datatypes.ScenarioRunRequest) ([]datatypes.ScenarioStep, error) {
	if err := validation.ValidateScenarioID(req.ScenarioID); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	steps := req.Steps
	if req.UseCatalog {
		if len(req.Steps) > 0 {
			return nil, fmt.Errorf("%w: explicit steps are not allowed in catalog mode",
				apperrors.ErrValidation)
		}
		def, err := a.Catalog.Lookup(req.ScenarioID)
		if err != nil {
			return nil, err
		}
		steps = def.Steps
	}
	if err := datatypes.ValidateSteps(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// initSectors returns the sectors to force a baseline for: all three
// when requested, otherwise the distinct sectors the steps touch, in
// canonical order.
func initSectors(req datatypes.ScenarioRunRequest, steps []datatypes.ScenarioStep) []datatypes.Sector {
	if req.InitAllSectors {
		return datatypes.AllSectors
	}
	touched := map[datatypes.Sector]bool{}
	for _, st := range steps {
		touched[st.Sector] = true
	}
	var out []datatypes.Sector
	for _, s := range datatypes.AllSectors {
		if touched[s] {
			out = append(out, s)
		}
	}
	return out
}

// Run executes one scenario: forced baseline, before snapshot, ordered
// step application, after snapshot, cascade metrics. State keyed by
// (scenario_id, run_id) is fully isolated upstream, so concurrent runs
// under distinct run ids never observe each other.
func (a *Applicator) Run(ctx context.Context, req datatypes.ScenarioRunRequest) (datatypes.ScenarioRunResult, error) {
	started := time.Now()

	steps, err := a.resolveSteps(req)
	if err != nil {
		observability.RecordScenarioRun("rejected")
		return datatypes.ScenarioRunResult{}, err
	}

	runID := req.RunID
	if runID == 0 {
		// Monotonic timestamp source for callers that don't pick one.
		runID = time.Now().UnixNano() / int64(time.Millisecond)
	}

	ctx, span := tracer.Start(ctx, "scenario.run", trace.WithAttributes(
		attribute.String("scenario_id", req.ScenarioID),
		attribute.Int64("run_id", runID),
		attribute.Int("steps", len(steps)),
	))
	defer span.End()

	initiator := steps[0].Sector
	run := newScenarioRun()
	logger := slog.With("scenario_id", req.ScenarioID, "run_id", runID)

	finishFailed := func(err error) (datatypes.ScenarioRunResult, error) {
		run.fail()
		observability.RecordScenarioRun("failed")
		if run.failedStep >= 0 {
			logger.Error("scenario run failed", "state", run.state,
				"failed_step", run.failedStep, "error", err)
			return datatypes.ScenarioRunResult{}, fmt.Errorf("step %d: %w", run.failedStep, err)
		}
		logger.Error("scenario run failed", "state", run.state, "error", err)
		return datatypes.ScenarioRunResult{}, err
	}

	if err := a.Init.EnsureBaseline(ctx, req.ScenarioID, runID, initSectors(req, steps)); err != nil {
		return finishFailed(err)
	}
	if err := run.advance(datatypes.StateInitialized); err != nil {
		return finishFailed(err)
	}

	if err := run.advance(datatypes.StateSnapshottingBefore); err != nil {
		return finishFailed(err)
	}
	before, err := a.Risk.Snapshot(ctx, req.ScenarioID, runID)
	if err != nil {
		return finishFailed(err)
	}

	for _, st := range steps {
		if err := run.advance(datatypes.StateApplying); err != nil {
			return finishFailed(err)
		}
		params := a.withDefaults(st)
		if _, err := a.Sectors.ApplyAction(ctx, st.Sector, req.ScenarioID, runID,
			st.StepIndex, st.Action, params); err != nil {
			run.failedStep = st.StepIndex
			observability.RecordStep(string(st.Sector), string(st.Action), "error")
			return finishFailed(err)
		}
		observability.RecordStep(string(st.Sector), string(st.Action), "ok")
		logger.Debug("step applied", "step_index", st.StepIndex,
			"sector", st.Sector, "action", st.Action)
	}

	if err := run.advance(datatypes.StateSnapshottingAfter); err != nil {
		return finishFailed(err)
	}
	after, err := a.Risk.Snapshot(ctx, req.ScenarioID, runID)
	if err != nil {
		return finishFailed(err)
	}

	if err := run.advance(datatypes.StateCompleted); err != nil {
		return finishFailed(err)
	}

	metrics := ComputeCascade(before, after, initiator, a.thresholds(req))

	observability.RecordScenarioRun("completed")
	observability.ObserveScenarioDuration("single", time.Since(started).Seconds())
	logger.Info("scenario run completed",
		"delta_cl", metrics.DeltaClassical,
		"delta_q", metrics.DeltaQuantitative,
		"I_cl", metrics.IndicatorClassical,
		"I_q", metrics.IndicatorQuantitative)

	return datatypes.ScenarioRunResult{
		ScenarioID:          req.ScenarioID,
		RunID:               runID,
		BeforeClassical:     before.Classical.TotalRisk,
		AfterClassical:      after.Classical.TotalRisk,
		BeforeQuantitative:  before.Quantitative.TotalRisk,
		AfterQuantitative:   after.Quantitative.TotalRisk,
		DeltaClassical:      metrics.DeltaClassical,
		DeltaQuantitative:   metrics.DeltaQuantitative,
		CascadeClassical:    metrics.IndicatorClassical,
		CascadeQuantitative: metrics.IndicatorQuantitative,
	}, nil
}

// withDefaults injects the configured default outage duration into
// outage steps that carry none. The original step is never mutated.
func (a *Applicator) withDefaults(st datatypes.ScenarioStep) datatypes.StepParams {
	if st.Action != datatypes.ActionOutage {
		return st.Params
	}
	if _, ok := st.Params.Float(datatypes.ParamDuration); ok {
		return st.Params
	}
	params := datatypes.StepParams{}
	for k, v := range st.Params {
		params[k] = v
	}
	params[datatypes.ParamDuration] = a.DefaultOutageDuration
	return params
}

func (a *Applicator) thresholds(req datatypes.ScenarioRunRequest) Thresholds {
	quant := a.DefaultQuantThreshold
	if req.NonInitiatorThresholdQuant != nil {
		quant = *req.NonInitiatorThresholdQuant
	}
	return Thresholds{
		DeltaSector:              req.DeltaSectorThreshold,
		NonInitiatorClassical:    req.NonInitiatorThresholdClassic,
		NonInitiatorQuantitative: quant,
	}
}
