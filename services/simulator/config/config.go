// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config holds the simulator's environment configuration.
//
// Service URLs are configured at the /api/v1 level so the simulator can
// uniformly address domain endpoints (init, simulate_outage, risk/current)
// regardless of each service's internal routing.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

// Config is parsed from environment variables at startup and treated as
// read-only afterwards.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"scenario-simulator"`
	Port        string `env:"SIMULATOR_PORT" envDefault:"12310"`
	Env         string `env:"ENV" envDefault:"dev"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`

	// Upstream service URLs, all at the /api/v1 level.
	RiskEngineURL       string `env:"RISK_ENGINE_URL" envDefault:"http://risk_engine:8000/api/v1"`
	EnergyServiceURL    string `env:"ENERGY_SERVICE_URL" envDefault:"http://energy_service:8000/api/v1"`
	WaterServiceURL     string `env:"WATER_SERVICE_URL" envDefault:"http://water_service:8000/api/v1"`
	TransportServiceURL string `env:"TRANSPORT_SERVICE_URL" envDefault:"http://transport_service:8000/api/v1"`
	ReportingServiceURL string `env:"REPORTING_SERVICE_URL" envDefault:"http://reporting:8000/api/v1/reporting"`

	// UpstreamTimeout bounds every remote call (connect plus read).
	// No unbounded waits are permitted anywhere in the simulator.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// ExportTimeout bounds the detached best-effort reporting export.
	ExportTimeout time.Duration `env:"EXPORT_TIMEOUT" envDefault:"5s"`

	// CatalogPath optionally overrides the embedded scenario catalog.
	CatalogPath string `env:"CATALOG_PATH"`

	// Simulation knobs.
	DefaultOutageDuration int     `env:"DEFAULT_OUTAGE_DURATION" envDefault:"10"`
	MaxTrialConcurrency   int     `env:"MC_MAX_CONCURRENCY" envDefault:"4"`
	MinSuccessRatio       float64 `env:"MC_MIN_SUCCESS_RATIO" envDefault:"0"`

	// NonInitiatorThresholdQuant is the default quantitative cascade
	// threshold applied when a request leaves it unset.
	NonInitiatorThresholdQuant float64 `env:"NON_INITIATOR_THRESHOLD_Q" envDefault:"0.5"`

	// Rate limiting toward the sector services: a resource-protection
	// knob, not a correctness requirement.
	SectorRatePerSec float64 `env:"SECTOR_RATE_LIMIT" envDefault:"50"`
	SectorRateBurst  int     `env:"SECTOR_RATE_BURST" envDefault:"10"`

	// OTLPEndpoint is the OpenTelemetry collector address.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"otel-collector:4317"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}

// SectorURL returns the /api/v1-level base URL for the given sector.
// The second return is false for unknown sectors.
func (c *Config) SectorURL(s datatypes.Sector) (string, bool) {
	switch s {
	case datatypes.SectorEnergy:
		return c.EnergyServiceURL, true
	case datatypes.SectorWater:
		return c.WaterServiceURL, true
	case datatypes.SectorTransport:
		return c.TransportServiceURL, true
	default:
		return "", false
	}
}
