// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
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
)

var (
	apiURL      string
	httpTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "riskctl",
	Short: "Operator CLI for the Procurisk risk engine",
	Long: `riskctl talks to a running risk engine instance.

Examples:
  riskctl review SUP-000045          # Generate or fetch a risk review
  riskctl score --file doc.json      # Score one document by tone/recency
  riskctl health                     # Check service liveness`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("RISKENGINE_URL", "http://localhost:12300"),
		"Base URL of the risk engine API")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "timeout", 120*time.Second,
		"HTTP request timeout (reviews can take a while on a cache miss)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(scoreCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/health")
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <supplier-id>",
	Short: "Generate or fetch the risk review for a supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getJSON("/review/" + args[0])
	},
}

var scoreFile string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single document by tone and recency",
	Long: `Reads a JSON document of the form
  {"content": "...", "metadata": {"published": "RFC3339", "tone": -0.8, "source": "..."}}
from --file (or stdin) and posts it to /score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if scoreFile == "" || scoreFile == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(scoreFile)
		}
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		return postJSON("/score", raw)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Document JSON file (- for stdin)")
}

func getJSON(path string) error {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Get(apiURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func postJSON(path string, body []byte) error {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Post(apiURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

// printResponse pretty-prints the JSON body and maps non-2xx statuses
// to a command error so the exit code reflects the failure.
func printResponse(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(raw))
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
