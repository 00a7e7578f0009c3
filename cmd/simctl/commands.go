// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuprich777/diploma/services/simulator/datatypes"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

var (
	flagRunID       int64
	flagInitAll     bool
	flagSector      string
	flagAction      string
	flagRuns        int
	flagStartRunID  int64
	flagDurationMin int
	flagDurationMax int
	flagScale       float64
	flagDeltaThr    float64
	flagNonInitThr  float64
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		getJSON(config.ServerURL + "/v1/catalog")
	},
}

var runCmd = &cobra.Command{
	Use:   "run <scenario_id>",
	Short: "Run one catalog scenario",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := datatypes.ScenarioRunRequest{
			ScenarioID:     args[0],
			RunID:          flagRunID,
			InitAllSectors: flagInitAll,
			UseCatalog:     true,
		}
		postJSON(config.ServerURL+"/v1/run_scenario?use_catalog=true", req)
	},
}

var monteCarloCmd = &cobra.Command{
	Use:   "montecarlo <scenario_id>",
	Short: "Run a Monte Carlo batch",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := datatypes.MonteCarloRequest{
			ScenarioID:                   args[0],
			Sector:                       datatypes.Sector(flagSector),
			Runs:                         flagRuns,
			StartRunID:                   flagStartRunID,
			DurationMin:                  flagDurationMin,
			DurationMax:                  flagDurationMax,
			InitiatorAction:              datatypes.Action(flagAction),
			StochasticScale:              flagScale,
			DeltaSectorThreshold:         flagDeltaThr,
			NonInitiatorThresholdClassic: flagNonInitThr,
		}
		postJSON(config.ServerURL+"/v1/monte_carlo", req)
	},
}

func init() {
	runCmd.Flags().Int64Var(&flagRunID, "run-id", 0, "run id (0 derives one from the clock)")
	runCmd.Flags().BoolVar(&flagInitAll, "init-all", true, "force baseline on all sectors")

	monteCarloCmd.Flags().StringVar(&flagSector, "sector", "energy", "initiating sector")
	monteCarloCmd.Flags().StringVar(&flagAction, "action", "outage", "initiating action")
	monteCarloCmd.Flags().IntVar(&flagRuns, "runs", datatypes.MinMonteCarloRuns, "trial count")
	monteCarloCmd.Flags().Int64Var(&flagStartRunID, "start-run-id", 0,
		"base run id (0 derives one from the clock)")
	monteCarloCmd.Flags().IntVar(&flagDurationMin, "duration-min", 10, "minimum outage minutes")
	monteCarloCmd.Flags().IntVar(&flagDurationMax, "duration-max", 60, "maximum outage minutes")
	monteCarloCmd.Flags().Float64Var(&flagScale, "scale", 0, "stochastic jitter magnitude")
	monteCarloCmd.Flags().Float64Var(&flagDeltaThr, "delta-threshold", 0.1,
		"initiator delta threshold")
	monteCarloCmd.Flags().Float64Var(&flagNonInitThr, "non-initiator-threshold", 0.5,
		"classical non-initiator threshold")
}

func getJSON(url string) {
	resp, err := httpClient.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func postJSON(url string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding request: %v\n", err)
		os.Exit(1)
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}
	fmt.Println(pretty.String())
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fmt.Fprintf(os.Stderr, "server returned HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}
}
