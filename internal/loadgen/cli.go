package loadgen

import (
	"fmt"
	"os"

	"github.com/okian/diabrisk/pkg/logger"
)

// SetupLogging initializes the global logger for the load generator.
func SetupLogging(format string, verbose bool) error {
	if err := logger.InitWithFormat(os.Stderr, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`diabrisk load generator
=======================

Generates patient payloads, posts them concurrently to POST /predict and
reports how the service answered.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of payloads to generate and submit (default 1000)
  -invalid float
        Share of payloads broken on purpose, 0..1 (default 0.1)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the generated payloads to this JSON file
  -log-format string
        Log format: text or json (default "text")
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/loadgen -requests 5000 -workers 16
  go run ./cmd/loadgen -invalid 0 -url http://localhost:8080
`)
}
