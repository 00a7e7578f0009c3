// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog holds the process-wide scenario registry.
//
// The catalog is constructed exactly once at startup, either from the
// embedded default file or from CATALOG_PATH, and is never mutated
// afterwards. Because the structure is read-only post-load it is safe
// for concurrent lookup from any number of callers without locking.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kuprich777/diploma/pkg/validation"
	"github.com/kuprich777/diploma/services/simulator/apperrors"
	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

//go:embed scenarios.yaml
var defaultCatalogYAML []byte

// Entry is one discoverable catalog listing.
type Entry struct {
	ScenarioID  string `json:"scenario_id"`
	Description string `json:"description,omitempty"`
	StepCount   int    `json:"step_count"`
}

// Catalog is the immutable scenario registry.
type Catalog struct {
	byID  map[string]datatypes.ScenarioDefinition
	order []string
}

type catalogFile struct {
	Scenarios []datatypes.ScenarioDefinition `yaml:"scenarios"`
}

// Load builds the catalog from path, or from the embedded default when
// path is empty. Every definition is validated at load time: a broken
// catalog is a startup failure, never a runtime surprise.
func Load(path string) (*Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", path, err)
		}
		data = b
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog yaml: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("catalog contains no scenarios")
	}

	cat := &Catalog{byID: make(map[string]datatypes.ScenarioDefinition, len(file.Scenarios))}
	for _, def := range file.Scenarios {
		if err := validation.ValidateScenarioID(def.ScenarioID); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := cat.byID[def.ScenarioID]; dup {
			return nil, fmt.Errorf("catalog: duplicate scenario_id %q", def.ScenarioID)
		}
		if err := datatypes.ValidateSteps(def.Steps); err != nil {
			return nil, fmt.Errorf("catalog scenario %q: %w", def.ScenarioID, err)
		}
		cat.byID[def.ScenarioID] = def
		cat.order = append(cat.order, def.ScenarioID)
	}
	return cat, nil
}

// Lookup resolves a scenario definition by id. Unknown ids surface as
// apperrors.ErrScenarioNotFound so handlers can answer 404 before any
// sector call is issued.
func (c *Catalog) Lookup(scenarioID string) (datatypes.ScenarioDefinition, error) {
	def, ok := c.byID[scenarioID]
	if !ok {
		return datatypes.ScenarioDefinition{}, fmt.Errorf("%w: %q",
			apperrors.ErrScenarioNotFound, scenarioID)
	}
	return def, nil
}

// List returns catalog entries in load order, for discovery.
func (c *Catalog) List() []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		def := c.byID[id]
		entries = append(entries, Entry{
			ScenarioID:  def.ScenarioID,
			Description: def.Description,
			StepCount:   len(def.Steps),
		})
	}
	return entries
}
