// Copyright (C) 2026 kuprich777
// Tests for the reporting registry exporter

package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

func sampleResult() datatypes.MonteCarloResult {
	return datatypes.MonteCarloResult{
		ScenarioID:    "mc_energy",
		Sector:        datatypes.SectorEnergy,
		Completed:     98,
		Requested:     100,
		MeanDelta:     0.42,
		MinDelta:      0.1,
		MaxDelta:      0.8,
		P95Delta:      0.75,
		KClassical:    0.9,
		KQuantitative: 0.85,
		DeltaPercent:  120.5,
	}
}

func sampleReq() datatypes.MonteCarloRequest {
	return datatypes.MonteCarloRequest{
		ScenarioID:                   "mc_energy",
		Sector:                       datatypes.SectorEnergy,
		Runs:                         100,
		DeltaSectorThreshold:         0.1,
		NonInitiatorThresholdClassic: 0.5,
	}
}

func TestBuildPayload(t *testing.T) {
	p := buildPayload(sampleResult(), sampleReq())

	// Every experiment gets a fresh UUID identity.
	_, err := uuid.Parse(p.ExperimentID)
	require.NoError(t, err)

	assert.Equal(t, "mc_energy", p.ScenarioID)
	assert.Equal(t, "energy", p.Sector)
	assert.Equal(t, 100, p.NRuns)
	assert.Equal(t, 98, p.Completed)
	assert.Equal(t, 0.1, p.DeltaThreshold)
	assert.Equal(t, 0.5, p.NonInitiatorThreshold)
	assert.Equal(t, 0.42, p.MeanDelta)
	assert.Equal(t, 0.9, p.KClassical)
	assert.Equal(t, 120.5, p.DeltaPercent)
	assert.False(t, p.CreatedAt.IsZero())

	// Distinct calls never reuse an experiment id.
	p2 := buildPayload(sampleResult(), sampleReq())
	assert.NotEqual(t, p.ExperimentID, p2.ExperimentID)
}

func TestReportingClient_Export(t *testing.T) {
	rs := newRecordingServer()
	defer rs.srv.Close()

	var got ExperimentPayload
	rs.serve["/api/v1/reporting/experiments/register"] = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}

	c := NewReportingClient(testConfig(rs.srv.URL))
	err := c.export(context.Background(), buildPayload(sampleResult(), sampleReq()))
	require.NoError(t, err)
	assert.Equal(t, "mc_energy", got.ScenarioID)
	assert.Equal(t, 98, got.Completed)
}

func TestReportingClient_Export_Failure(t *testing.T) {
	rs := newRecordingServer()
	defer rs.srv.Close()
	rs.serve["/api/v1/reporting/experiments/register"] = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "registry full", http.StatusInsufficientStorage)
	}

	c := NewReportingClient(testConfig(rs.srv.URL))
	err := c.export(context.Background(), buildPayload(sampleResult(), sampleReq()))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReportingFailure)
}

func TestReportingClient_Export_Unreachable(t *testing.T) {
	// A closed server stands in for a down registry.
	rs := newRecordingServer()
	cfg := testConfig(rs.srv.URL)
	rs.srv.Close()

	c := NewReportingClient(cfg)
	err := c.export(context.Background(), buildPayload(sampleResult(), sampleReq()))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReportingFailure)
}
