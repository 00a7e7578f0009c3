// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/config"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/observability"
)

// ExperimentPayload is the registration record pushed to the reporting
// registry after Monte Carlo aggregation.
type ExperimentPayload struct {
	ExperimentID string    `json:"experiment_id"`
	ScenarioID   string    `json:"scenario_id"`
	Sector       string    `json:"sector"`
	NRuns        int       `json:"n_runs"`
	Completed    int       `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`

	DeltaThreshold        float64 `json:"delta_threshold"`
	NonInitiatorThreshold float64 `json:"non_initiator_threshold"`

	MeanDelta    float64 `json:"mean_delta"`
	MinDelta     float64 `json:"min_delta"`
	MaxDelta     float64 `json:"max_delta"`
	P95Delta     float64 `json:"p95_delta"`
	KClassical   float64 `json:"K_cl"`
	KQuant       float64 `json:"K_q"`
	DeltaPercent float64 `json:"Delta_percent"`
}

// Exporter pushes experiment results to the reporting registry.
type Exporter interface {
	// ExportAsync fires a best-effort registration and returns
	// immediately. Failures are logged and counted, never propagated:
	// registry unavailability must not fail the simulation itself.
	ExportAsync(result datatypes.MonteCarloResult, req datatypes.MonteCarloRequest)
}

// ReportingClient is the HTTP implementation of Exporter against
// POST {base}/experiments/register.
type ReportingClient struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

// NewReportingClient builds a ReportingClient from config.
func NewReportingClient(cfg *config.Config) *ReportingClient {
	return &ReportingClient{
		http:    &http.Client{Timeout: cfg.ExportTimeout},
		baseURL: cfg.ReportingServiceURL,
		timeout: cfg.ExportTimeout,
	}
}

// ExportAsync implements Exporter. The export runs on a detached
// goroutine with its own timeout context so it survives the caller's
// request lifecycle and is observed only for logging.
func (c *ReportingClient) ExportAsync(result datatypes.MonteCarloResult, req datatypes.MonteCarloRequest) {
	payload := buildPayload(result, req)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.export(ctx, payload); err != nil {
			observability.RecordExport("error")
			slog.Warn("experiment export failed",
				"experiment_id", payload.ExperimentID,
				"scenario_id", payload.ScenarioID,
				"error", err)
			return
		}
		observability.RecordExport("ok")
		slog.Info("experiment registered",
			"experiment_id", payload.ExperimentID,
			"scenario_id", payload.ScenarioID,
			"completed", payload.Completed)
	}()
}

func buildPayload(result datatypes.MonteCarloResult, req datatypes.MonteCarloRequest) ExperimentPayload {
	return ExperimentPayload{
		ExperimentID:          uuid.NewString(),
		ScenarioID:            result.ScenarioID,
		Sector:                string(result.Sector),
		NRuns:                 result.Requested,
		Completed:             result.Completed,
		CreatedAt:             time.Now().UTC(),
		DeltaThreshold:        req.DeltaSectorThreshold,
		NonInitiatorThreshold: req.NonInitiatorThresholdClassic,
		MeanDelta:             result.MeanDelta,
		MinDelta:              result.MinDelta,
		MaxDelta:              result.MaxDelta,
		P95Delta:              result.P95Delta,
		KClassical:            result.KClassical,
		KQuant:                result.KQuantitative,
		DeltaPercent:          result.DeltaPercent,
	}
}

// export performs the synchronous registration call. Split out so tests
// can exercise failure paths without goroutine scheduling.
func (c *ReportingClient) export(ctx context.Context, payload ExperimentPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %v", apperrors.ErrReportingFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/experiments/register", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrReportingFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrReportingFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: HTTP %d: %s", apperrors.ErrReportingFailure,
			resp.StatusCode, string(body))
	}
	return nil
}
