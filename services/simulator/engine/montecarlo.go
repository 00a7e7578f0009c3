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
	"math"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/clients"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/observability"
)

// MonteCarlo drives many independent scenario trials with randomized
// parameters and isolated run ids, folding per-trial outcomes into
// distributional statistics.
//
// Trials share nothing beyond read-only configuration, so they run
// concurrently under a bounded pool. The bound protects the three
// sector services from burst load; it is not a correctness requirement.
type MonteCarlo struct {
	Applicator *Applicator
	Exporter   clients.Exporter
	Sampler    DurationSampler

	// MaxConcurrency bounds in-flight trials; values below 1 mean
	// sequential execution.
	MaxConcurrency int

	// MinSuccessRatio is the completed/requested fraction below which
	// the batch fails as an aggregation error. The default 0 fails only
	// the zero-completed case.
	MinSuccessRatio float64
}

// trialOutcome is one trial's slot in the results table, indexed by
// trial so the emitted sequence is stable regardless of completion
// order.
type trialOutcome struct {
	run datatypes.MonteCarloRun
	ok  bool
}

// BuildTrialSteps constructs the per-trial step sequence: the initiator
// action on the chosen sector at the sampled duration, followed by a
// dependency check on every other sector that supports one, in
// canonical order, each carrying the initiator and duration so
// dependent services can scale their response. Sectors without a
// dependency-check operation (energy never exposes one) are skipped
// rather than handed a step their capability surface rejects.
func BuildTrialSteps(sector datatypes.Sector, action datatypes.Action,
	duration int) []datatypes.ScenarioStep {

	steps := []datatypes.ScenarioStep{{
		StepIndex: 1,
		Sector:    sector,
		Action:    action,
		Params: datatypes.StepParams{
			datatypes.ParamDuration: duration,
		},
	}}
	for _, s := range datatypes.AllSectors {
		if s == sector || !datatypes.ActionDependencyCheck.AppliesTo(s) {
			continue
		}
		steps = append(steps, datatypes.ScenarioStep{
			StepIndex: len(steps) + 1,
			Sector:    s,
			Action:    datatypes.ActionDependencyCheck,
			Params: datatypes.StepParams{
				datatypes.ParamSourceSector:   string(sector),
				datatypes.ParamSourceDuration: duration,
			},
		})
	}
	return steps
}

// Run executes the batch. Request validation happens before any trial
// is issued: a violation fails the whole request with zero state
// mutation. Partial trial failure degrades the sample size; only zero
// completions (or a ratio below MinSuccessRatio) fails the batch.
func (m *MonteCarlo) Run(ctx context.Context, req datatypes.MonteCarloRequest) (datatypes.MonteCarloResult, error) {
	if err := req.Validate(); err != nil {
		return datatypes.MonteCarloResult{}, err
	}
	// The initiator action's own step validation (numeric value and so
	// on) must also hold before trials start, since every trial shares
	// the same shape.
	probe := BuildTrialSteps(req.Sector, req.InitiatorAction, req.DurationMin)
	if err := datatypes.ValidateSteps(probe); err != nil {
		return datatypes.MonteCarloResult{}, err
	}

	startRunID := req.StartRunID
	if startRunID == 0 {
		startRunID = time.Now().UnixNano() / int64(time.Millisecond)
	}

	ctx, span := tracer.Start(ctx, "montecarlo.run")
	defer span.End()

	started := time.Now()
	outcomes := make([]trialOutcome, req.Runs)

	g, gctx := errgroup.WithContext(ctx)
	limit := m.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := 0; i < req.Runs; i++ {
		g.Go(func() error {
			// Trials not yet started are simply not issued after
			// cancellation; in-flight ones finish on their own.
			if gctx.Err() != nil {
				return nil
			}
			observability.TrialStarted()
			defer observability.TrialFinished()

			outcome, err := m.runTrial(gctx, req, startRunID, i)
			if err != nil {
				observability.RecordTrial("failed")
				slog.Warn("monte carlo trial failed",
					"scenario_id", req.ScenarioID,
					"trial_index", i,
					"run_id", startRunID+int64(i),
					"error", err)
				return nil
			}
			observability.RecordTrial("completed")
			outcomes[i] = trialOutcome{run: outcome, ok: true}
			return nil
		})
	}
	// Trial failures are recorded per slot, never returned, so Wait
	// only ever carries a context error.
	_ = g.Wait()

	result, err := m.aggregate(req, outcomes)
	if err != nil {
		return datatypes.MonteCarloResult{}, err
	}

	observability.ObserveScenarioDuration("batch", time.Since(started).Seconds())
	slog.Info("monte carlo batch completed",
		"scenario_id", req.ScenarioID,
		"sector", req.Sector,
		"requested", req.Runs,
		"completed", result.Completed,
		"mean_delta", result.MeanDelta,
		"K_cl", result.KClassical,
		"K_q", result.KQuantitative)

	if m.Exporter != nil {
		m.Exporter.ExportAsync(result, req)
	}
	return result, nil
}

// runTrial executes one isolated scenario run. run_id derivation keeps
// trial state disjoint: startRunID + trial index never collides with
// another trial of this batch.
func (m *MonteCarlo) runTrial(ctx context.Context, req datatypes.MonteCarloRequest,
	startRunID int64, trialIndex int) (datatypes.MonteCarloRun, error) {

	runID := startRunID + int64(trialIndex)
	rng := rand.New(rand.NewSource(DeriveSeed(req.ScenarioID, runID)))
	duration := m.Sampler.Sample(rng, req.DurationMin, req.DurationMax, req.StochasticScale)

	runReq := datatypes.ScenarioRunRequest{
		ScenarioID:                   req.ScenarioID,
		RunID:                        runID,
		InitAllSectors:               true,
		Steps:                        BuildTrialSteps(req.Sector, req.InitiatorAction, duration),
		DeltaSectorThreshold:         req.DeltaSectorThreshold,
		NonInitiatorThresholdClassic: req.NonInitiatorThresholdClassic,
		NonInitiatorThresholdQuant:   req.NonInitiatorThresholdQuant,
	}

	res, err := m.Applicator.Run(ctx, runReq)
	if err != nil {
		return datatypes.MonteCarloRun{}, err
	}
	return datatypes.MonteCarloRun{
		RunID:               runID,
		Duration:            duration,
		Before:              res.BeforeClassical,
		After:               res.AfterClassical,
		DeltaR:              res.DeltaClassical,
		CascadeClassical:    res.CascadeClassical,
		CascadeQuantitative: res.CascadeQuantitative,
	}, nil
}

// aggregate folds completed trials into the batch statistics. Aggregates
// are computed only over trials that completed without fatal error.
func (m *MonteCarlo) aggregate(req datatypes.MonteCarloRequest,
	outcomes []trialOutcome) (datatypes.MonteCarloResult, error) {

	completed := make([]datatypes.MonteCarloRun, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ok {
			completed = append(completed, o.run)
		}
	}
	if len(completed) == 0 {
		return datatypes.MonteCarloResult{}, fmt.Errorf("%w: zero of %d trials completed",
			apperrors.ErrAggregationFailure, req.Runs)
	}
	ratio := float64(len(completed)) / float64(req.Runs)
	if ratio < m.MinSuccessRatio {
		return datatypes.MonteCarloResult{}, fmt.Errorf(
			"%w: completion ratio %.3f below minimum %.3f",
			apperrors.ErrAggregationFailure, ratio, m.MinSuccessRatio)
	}

	var sumDelta, sumBefore float64
	minDelta := math.Inf(1)
	maxDelta := math.Inf(-1)
	var kcl, kq int
	deltas := make([]float64, 0, len(completed))

	for _, run := range completed {
		sumDelta += run.DeltaR
		sumBefore += run.Before
		deltas = append(deltas, run.DeltaR)
		minDelta = math.Min(minDelta, run.DeltaR)
		maxDelta = math.Max(maxDelta, run.DeltaR)
		kcl += run.CascadeClassical
		kq += run.CascadeQuantitative
	}

	n := float64(len(completed))
	meanDelta := sumDelta / n
	meanBefore := sumBefore / n

	deltaPercent := 0.0
	if meanBefore != 0 {
		deltaPercent = 100 * meanDelta / meanBefore
	}

	return datatypes.MonteCarloResult{
		ScenarioID:    req.ScenarioID,
		Sector:        req.Sector,
		Completed:     len(completed),
		Requested:     req.Runs,
		Runs:          completed,
		MeanDelta:     meanDelta,
		MinDelta:      minDelta,
		MaxDelta:      maxDelta,
		P95Delta:      percentile95(deltas),
		KClassical:    float64(kcl) / n,
		KQuantitative: float64(kq) / n,
		DeltaPercent:  deltaPercent,
	}, nil
}

// percentile95 returns the 95th-percentile order statistic: the value
// at rank ceil(0.95*n) of the sorted sample.
func percentile95(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(0.95 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
