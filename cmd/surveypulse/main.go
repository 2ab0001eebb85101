// Package main provides the SurveyPulse operator CLI: scheduled rollup refreshes,
// demo data seeding and development tokens.
// Usage: surveypulse refresh --all --granularity day,week
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
