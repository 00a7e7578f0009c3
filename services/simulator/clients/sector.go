// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package clients contains the HTTP clients for the simulator's upstream
// boundary: the three sector services, the risk engine, and the
// reporting registry. Every remote call is bounded by an explicit
// timeout; no unbounded waits are permitted.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/kuprich777/diploma/pkg/validation"
	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/config"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/observability"
)

// SectorAdapter is the per-sector client capability the engine depends
// on. Implementations resolve logical actions to concrete remote
// operations; the engine never sees upstream route names.
type SectorAdapter interface {
	// Init establishes the baseline state for (scenario_id, run_id).
	// With force true the upstream resets state even if one exists.
	Init(ctx context.Context, sector datatypes.Sector, scenarioID string, runID int64, force bool) error

	// ReadStatus returns the sector's current state snapshot.
	ReadStatus(ctx context.Context, sector datatypes.Sector, scenarioID string, runID int64) (map[string]any, error)

	// ApplyAction applies one scenario step to the sector.
	ApplyAction(ctx context.Context, sector datatypes.Sector, scenarioID string, runID int64,
		stepIndex int, action datatypes.Action, params datatypes.StepParams) (map[string]any, error)
}

// candidateOps maps each (sector, action) pair to the ordered remote
// operation names tried against the sector service. The lists are
// data-driven compatibility knowledge: older deployments expose the
// legacy route names first in each list, newer ones the generic alias.
// Adding a candidate is a table edit, never a control-flow change.
var candidateOps = map[datatypes.Sector]map[datatypes.Action][]string{
	datatypes.SectorEnergy: {
		datatypes.ActionOutage:            {"simulate_outage", "outage"},
		datatypes.ActionResolveOutage:     {"resolve_outage"},
		datatypes.ActionAdjustProduction:  {"adjust_production"},
		datatypes.ActionAdjustConsumption: {"adjust_consumption"},
	},
	datatypes.SectorWater: {
		datatypes.ActionDependencyCheck:   {"check_energy_dependency", "dependency_check"},
		datatypes.ActionResolveOutage:     {"resolve_outage"},
		datatypes.ActionAdjustProduction:  {"adjust_supply", "adjust_production"},
		datatypes.ActionAdjustConsumption: {"adjust_demand", "adjust_consumption"},
	},
	datatypes.SectorTransport: {
		datatypes.ActionDependencyCheck: {"check_energy_dependency", "dependency_check"},
		datatypes.ActionResolveOutage:   {"resolve_outage"},
		datatypes.ActionUpdateLoad:      {"update_load"},
		datatypes.ActionLoadIncrease:    {"increase_load", "load_increase"},
	},
}

// SectorClient is the HTTP implementation of SectorAdapter. One client
// serves all three sectors; per-sector state is limited to the base URL
// and a rate limiter protecting the upstream from Monte Carlo bursts.
type SectorClient struct {
	http     *http.Client
	baseURLs map[datatypes.Sector]string
	limiters map[datatypes.Sector]*rate.Limiter
}

// NewSectorClient builds a SectorClient from config. The HTTP client
// timeout covers connect plus read for every call.
func NewSectorClient(cfg *config.Config) *SectorClient {
	c := &SectorClient{
		http:     &http.Client{Timeout: cfg.UpstreamTimeout},
		baseURLs: make(map[datatypes.Sector]string, len(datatypes.AllSectors)),
		limiters: make(map[datatypes.Sector]*rate.Limiter, len(datatypes.AllSectors)),
	}
	for _, s := range datatypes.AllSectors {
		base, _ := cfg.SectorURL(s)
		c.baseURLs[s] = base
		c.limiters[s] = rate.NewLimiter(rate.Limit(cfg.SectorRatePerSec), cfg.SectorRateBurst)
	}
	return c
}

func (c *SectorClient) sectorBase(sector datatypes.Sector, scenarioID string, runID int64) (string, error) {
	base, ok := c.baseURLs[sector]
	if !ok || !sector.IsValid() {
		return "", fmt.Errorf("%w: unknown sector %q", apperrors.ErrValidation, sector)
	}
	if err := validation.ValidateScenarioID(scenarioID); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := validation.ValidateRunID(runID); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return fmt.Sprintf("%s/%s", base, sector), nil
}

// Init implements SectorAdapter.
func (c *SectorClient) Init(ctx context.Context, sector datatypes.Sector, scenarioID string,
	runID int64, force bool) error {

	base, err := c.sectorBase(sector, scenarioID, runID)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("scenario_id", scenarioID)
	q.Set("run_id", strconv.FormatInt(runID, 10))
	q.Set("force", strconv.FormatBool(force))

	_, err = c.do(ctx, sector, http.MethodPost, base+"/init?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: init %s: %v", apperrors.ErrUpstreamUnavailable, sector, err)
	}
	return nil
}

// ReadStatus implements SectorAdapter.
func (c *SectorClient) ReadStatus(ctx context.Context, sector datatypes.Sector, scenarioID string,
	runID int64) (map[string]any, error) {

	base, err := c.sectorBase(sector, scenarioID, runID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("scenario_id", scenarioID)
	q.Set("run_id", strconv.FormatInt(runID, 10))

	body, err := c.do(ctx, sector, http.MethodGet, base+"/status?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: status %s: %v", apperrors.ErrUpstreamUnavailable, sector, err)
	}
	return body, nil
}

// ApplyAction implements SectorAdapter. Candidates for the action are
// tried in priority order: a rejection from one candidate (unknown
// route, malformed request) means "try the next"; only when every
// candidate has failed does the step surface as UpstreamUnavailable.
func (c *SectorClient) ApplyAction(ctx context.Context, sector datatypes.Sector, scenarioID string,
	runID int64, stepIndex int, action datatypes.Action,
	params datatypes.StepParams) (map[string]any, error) {

	base, err := c.sectorBase(sector, scenarioID, runID)
	if err != nil {
		return nil, err
	}
	candidates := candidateOps[sector][action]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: action %q not supported by sector %q",
			apperrors.ErrValidation, action, sector)
	}

	q := url.Values{}
	q.Set("scenario_id", scenarioID)
	q.Set("run_id", strconv.FormatInt(runID, 10))
	q.Set("step_index", strconv.Itoa(stepIndex))
	q.Set("action", string(action))

	payload := params
	if payload == nil {
		payload = datatypes.StepParams{}
	}

	var lastErr error
	for _, op := range candidates {
		target := fmt.Sprintf("%s/%s?%s", base, op, q.Encode())
		body, err := c.do(ctx, sector, http.MethodPost, target, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Debug("candidate operation failed, trying next",
			"sector", sector, "action", action, "op", op, "error", err)
	}
	return nil, fmt.Errorf("%w: %s/%s (all candidates failed): %v",
		apperrors.ErrUpstreamUnavailable, sector, action, lastErr)
}

// do performs one rate-limited, timeout-bounded request and decodes the
// JSON response body. Any non-2xx status is an error.
func (c *SectorClient) do(ctx context.Context, sector datatypes.Sector, method, target string,
	payload any) (map[string]any, error) {

	if err := c.limiters[sector].Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding params: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordUpstreamRequest(string(sector), "transport_error")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecordUpstreamRequest(string(sector), strconv.Itoa(resp.StatusCode))
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, target, string(raw))
	}
	observability.RecordUpstreamRequest(string(sector), "ok")

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding response from %s: %w", target, err)
	}
	return body, nil
}
