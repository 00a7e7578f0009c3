// Copyright (C) 2026 kuprich777
// Tests for the simulator HTTP surface

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuprich777/diploma/services/simulator/catalog"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
	"github.com/kuprich777/diploma/services/simulator/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidations()
}

// stubSectors is an always-healthy sector backend that only counts
// traffic.
type stubSectors struct {
	calls atomic.Int64
}

func (s *stubSectors) Init(context.Context, datatypes.Sector, string, int64, bool) error {
	s.calls.Add(1)
	return nil
}

func (s *stubSectors) ReadStatus(context.Context, datatypes.Sector, string, int64) (map[string]any, error) {
	s.calls.Add(1)
	return map[string]any{"status": "ok"}, nil
}

func (s *stubSectors) ApplyAction(context.Context, datatypes.Sector, string, int64, int,
	datatypes.Action, datatypes.StepParams) (map[string]any, error) {
	s.calls.Add(1)
	return map[string]any{"message": "applied"}, nil
}

// stubRisk returns a fixed before/after-indifferent snapshot.
type stubRisk struct {
	calls atomic.Int64
}

func (s *stubRisk) Snapshot(context.Context, string, int64) (datatypes.RiskPair, error) {
	s.calls.Add(1)
	snap := datatypes.RiskSnapshot{TotalRisk: 0.2, Sectors: map[datatypes.Sector]float64{
		"energy": 0.2, "water": 0.2, "transport": 0.2,
	}}
	snap.Method = datatypes.MethodClassical
	quant := snap
	quant.Method = datatypes.MethodQuantitative
	return datatypes.RiskPair{Classical: snap, Quantitative: quant}, nil
}

type testEnv struct {
	router  *gin.Engine
	sectors *stubSectors
	risk    *stubRisk
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)

	sectors := &stubSectors{}
	risk := &stubRisk{}
	app := &engine.Applicator{
		Catalog:               cat,
		Sectors:               sectors,
		Risk:                  risk,
		Init:                  &engine.Initializer{Sectors: sectors},
		DefaultQuantThreshold: 0.5,
		DefaultOutageDuration: 10,
	}
	mc := &engine.MonteCarlo{
		Applicator:     app,
		Sampler:        engine.UniformJitterSampler{},
		MaxConcurrency: 4,
	}

	router := gin.New()
	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadyCheck)
	router.GET("/", Root)
	v1 := router.Group("/v1")
	v1.GET("/catalog", ListCatalog(cat))
	v1.POST("/run_scenario", RunScenario(app))
	v1.POST("/monte_carlo", RunMonteCarlo(mc))

	return &testEnv{router: router, sectors: sectors, risk: risk}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = env.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Probes never generate upstream traffic.
	assert.Zero(t, env.sectors.calls.Load())
	assert.Zero(t, env.risk.calls.Load())
}

func TestListCatalog(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/v1/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Scenarios []catalog.Entry `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Scenarios)
	assert.Equal(t, "S1_energy_outage", resp.Scenarios[0].ScenarioID)
	assert.Positive(t, resp.Scenarios[0].StepCount)
}

func TestRunScenario_ExplicitSteps(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"scenario_id": "adhoc_outage",
		"run_id": 42,
		"steps": [
			{"step_index": 1, "sector": "energy", "action": "outage", "params": {"duration": 10}},
			{"step_index": 2, "sector": "water", "action": "dependency_check"}
		],
		"delta_sector_threshold": 0.1,
		"non_initiator_threshold_classical": 0.5
	}`
	w := env.do(http.MethodPost, "/v1/run_scenario", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res datatypes.ScenarioRunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "adhoc_outage", res.ScenarioID)
	assert.Equal(t, int64(42), res.RunID)

	// 2 inits + 2 steps against the sectors, 2 risk snapshots.
	assert.Equal(t, int64(4), env.sectors.calls.Load())
	assert.Equal(t, int64(2), env.risk.calls.Load())
}

func TestRunScenario_CatalogMode(t *testing.T) {
	env := newTestEnv(t)

	body := `{"scenario_id": "S1_energy_outage", "run_id": 7, "use_catalog": true}`
	w := env.do(http.MethodPost, "/v1/run_scenario", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRunScenario_CatalogMiss(t *testing.T) {
	env := newTestEnv(t)

	body := `{"scenario_id": "S99_no_such", "use_catalog": true}`
	w := env.do(http.MethodPost, "/v1/run_scenario", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The miss is detected before any upstream call.
	assert.Zero(t, env.sectors.calls.Load())
	assert.Zero(t, env.risk.calls.Load())
}

func TestRunScenario_QueryOverridesCatalogFlag(t *testing.T) {
	env := newTestEnv(t)

	// The body says explicit steps, the query forces catalog mode, and
	// the combination of both is a validation error.
	body := `{
		"scenario_id": "S1_energy_outage",
		"steps": [{"step_index": 1, "sector": "energy", "action": "outage"}]
	}`
	w := env.do(http.MethodPost, "/v1/run_scenario?use_catalog=true", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "catalog mode")

	w = env.do(http.MethodPost, "/v1/run_scenario?use_catalog=maybe", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "use_catalog must be a boolean")
}

func TestRunScenario_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/v1/run_scenario", `{"scenario_id": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")

	// Missing the required scenario_id fails binding.
	w = env.do(http.MethodPost, "/v1/run_scenario", `{"run_id": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunScenario_InvalidSteps(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"scenario_id": "bad_steps",
		"steps": [{"step_index": 1, "sector": "water", "action": "outage"}]
	}`
	w := env.do(http.MethodPost, "/v1/run_scenario", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.sectors.calls.Load())
}

func TestRunMonteCarlo_OK(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"scenario_id": "mc_energy",
		"sector": "energy",
		"runs": 100,
		"start_run_id": 5000,
		"duration_min": 1,
		"duration_max": 1,
		"initiator_action": "outage",
		"delta_sector_threshold": 0.1,
		"non_initiator_threshold_classical": 0.5
	}`
	w := env.do(http.MethodPost, "/v1/monte_carlo", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res datatypes.MonteCarloResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 100, res.Completed)
	assert.Equal(t, 100, res.Requested)
	assert.Len(t, res.Runs, 100)
}

func TestRunMonteCarlo_BelowRunFloor(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"scenario_id": "mc_energy",
		"sector": "energy",
		"runs": 99,
		"duration_min": 1,
		"duration_max": 1,
		"initiator_action": "outage"
	}`
	w := env.do(http.MethodPost, "/v1/monte_carlo", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "statistical floor")
	assert.Zero(t, env.sectors.calls.Load())
}

func TestRunMonteCarlo_BindingRejectsUnknownEnums(t *testing.T) {
	env := newTestEnv(t)

	// The custom "sector" binding validator fires before the engine.
	body := `{
		"scenario_id": "mc_energy",
		"sector": "plasma",
		"runs": 100,
		"duration_min": 1,
		"duration_max": 1,
		"initiator_action": "outage"
	}`
	w := env.do(http.MethodPost, "/v1/monte_carlo", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")

	body = strings.Replace(body, `"sector": "plasma"`, `"sector": "energy"`, 1)
	body = strings.Replace(body, `"initiator_action": "outage"`, `"initiator_action": "melt"`, 1)
	w = env.do(http.MethodPost, "/v1/monte_carlo", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.sectors.calls.Load())
}

func TestRunMonteCarlo_InvertedDurations(t *testing.T) {
	env := newTestEnv(t)

	body := `{
		"scenario_id": "mc_energy",
		"sector": "energy",
		"runs": 100,
		"duration_min": 30,
		"duration_max": 5,
		"initiator_action": "outage"
	}`
	w := env.do(http.MethodPost, "/v1/monte_carlo", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "duration_max")
	assert.Zero(t, env.sectors.calls.Load())
}
