// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command simctl is a small operator CLI for the scenario simulator:
// list the catalog, fire a single scenario run, or launch a Monte Carlo
// batch from the terminal.
//
// # Usage
//
//	simctl catalog
//	simctl run S1_energy_outage --run-id 1001
//	simctl montecarlo S1_energy_outage --sector energy --runs 200
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the optional simctl.yaml next to the binary.
type Config struct {
	ServerURL string `yaml:"server_url"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "simctl",
	Short: "Operator CLI for the scenario simulator",
	Long: "simctl drives the scenario simulator API: catalog discovery, " +
		"single scenario runs, and Monte Carlo batches.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.ServerURL, "server", "",
		"simulator base URL (overrides simctl.yaml and SIMULATOR_URL)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if config.ServerURL != "" {
			return
		}
		if data, err := os.ReadFile("simctl.yaml"); err == nil {
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				log.Fatalf("Error parsing simctl.yaml: %v", err)
			}
			config.ServerURL = fileCfg.ServerURL
		}
		if config.ServerURL == "" {
			config.ServerURL = os.Getenv("SIMULATOR_URL")
		}
		if config.ServerURL == "" {
			config.ServerURL = "http://localhost:12310"
		}
	}

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monteCarloCmd)
}
