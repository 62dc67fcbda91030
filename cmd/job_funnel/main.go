// Package main provides the entry point for the job funnel HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_funnel",
	Short: "Job Funnel HTTP API Server",
	Long:  "Job Funnel ingests job postings from feed aggregators, normalizes and filters them, scores them against operator-defined rulesets, and drafts proposals via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
