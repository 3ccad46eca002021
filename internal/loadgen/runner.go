package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/diabrisk/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid load generator config")
)

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrInvalidConfig)
	case c.NumRequests <= 0:
		return fmt.Errorf("%w: number of requests must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.InvalidRatio < 0 || c.InvalidRatio > 1:
		return fmt.Errorf("%w: invalid ratio must be in [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// Run executes a complete load run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stats := newStats()

	logger.Get().Info(ctx, "starting diabrisk load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	payloads, err := generatePayloads(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("payload generation failed: %w", err)
	}

	// Step 3: Submit payloads concurrently
	submitPayloads(ctx, config, payloads, stats)

	// Step 4: Save payloads to file
	if config.OutputFile != "" {
		if err := savePayloadsToFile(ctx, config.OutputFile, payloads); err != nil {
			logger.Get().Warn(ctx, "failed to save payloads to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	var health struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("unreadable health response: %w", err)
	}

	logger.Get().Info(ctx, "service is healthy", logger.Bool("modelLoaded", health.ModelLoaded))
	return nil
}

// savePayloadsToFile writes the generated payloads as a JSON array.
func savePayloadsToFile(ctx context.Context, filename string, payloads []Payload) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payloads: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "payloads saved to file", logger.String("filename", filename))
	return nil
}

// logFinalStats logs the final run statistics.
func logFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}

// WriteReport prints a human-readable breakdown of stats to w.
func WriteReport(w io.Writer, stats *Stats) error {
	if _, err := fmt.Fprintf(w, "submitted: %d  succeeded: %d  rejected: %d  failed: %d  (%s)\n",
		stats.Submitted, stats.Succeeded, stats.Rejected, stats.Failed, stats.Duration.Round(time.Millisecond)); err != nil {
		return err
	}
	sections := []struct {
		title  string
		counts map[string]int
	}{
		{"model_used", stats.ByModelUsed},
		{"risk_level", stats.ByRiskLevel},
		{"rejections", stats.Rejections},
	}
	for _, s := range sections {
		if len(s.counts) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", s.title); err != nil {
			return err
		}
		keys := make([]string, 0, len(s.counts))
		for k := range s.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "  %-60s %d\n", k, s.counts[k]); err != nil {
				return err
			}
		}
	}
	return nil
}
