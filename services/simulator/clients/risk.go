// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kuprich777/diploma/pkg/validation"
	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/config"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

// RiskReader reads aggregated risk from the external risk engine.
type RiskReader interface {
	// Snapshot queries every listed method and returns the paired
	// result. A failure on either method fails the whole snapshot:
	// partial risk views produce meaningless deltas.
	Snapshot(ctx context.Context, scenarioID string, runID int64) (datatypes.RiskPair, error)
}

// RiskClient is the HTTP implementation of RiskReader against
// GET {base}/risk/current.
type RiskClient struct {
	http    *http.Client
	baseURL string
}

// NewRiskClient builds a RiskClient from config.
func NewRiskClient(cfg *config.Config) *RiskClient {
	return &RiskClient{
		http:    &http.Client{Timeout: cfg.UpstreamTimeout},
		baseURL: cfg.RiskEngineURL,
	}
}

// Snapshot implements RiskReader with both-or-neither semantics.
func (c *RiskClient) Snapshot(ctx context.Context, scenarioID string, runID int64) (datatypes.RiskPair, error) {
	var pair datatypes.RiskPair

	if err := validation.ValidateScenarioID(scenarioID); err != nil {
		return pair, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := validation.ValidateRunID(runID); err != nil {
		return pair, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	for _, method := range datatypes.AllMethods {
		snap, err := c.fetch(ctx, scenarioID, runID, method)
		if err != nil {
			return datatypes.RiskPair{}, fmt.Errorf("%w: risk method %s: %v",
				apperrors.ErrUpstreamUnavailable, method, err)
		}
		switch method {
		case datatypes.MethodQuantitative:
			pair.Quantitative = snap
		default:
			pair.Classical = snap
		}
	}
	return pair, nil
}

func (c *RiskClient) fetch(ctx context.Context, scenarioID string, runID int64,
	method datatypes.RiskMethod) (datatypes.RiskSnapshot, error) {

	q := url.Values{}
	q.Set("scenario_id", scenarioID)
	q.Set("run_id", strconv.FormatInt(runID, 10))
	q.Set("method", string(method))
	target := c.baseURL + "/risk/current?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return datatypes.RiskSnapshot{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return datatypes.RiskSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return datatypes.RiskSnapshot{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var snap datatypes.RiskSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return datatypes.RiskSnapshot{}, fmt.Errorf("decoding risk snapshot: %w", err)
	}
	if snap.TotalRisk < 0 {
		return datatypes.RiskSnapshot{}, fmt.Errorf("negative total_risk %f", snap.TotalRisk)
	}
	// Older risk engines omit the method field in the body.
	if snap.Method == "" {
		snap.Method = method
	}
	return snap, nil
}
