package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/diabrisk/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumRequests  = 1000
	defaultInvalidRatio = 0.1
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numRequests  = flag.Int("requests", defaultNumRequests, "Number of payloads to generate and submit")
		invalidRatio = flag.Float64("invalid", defaultInvalidRatio, "Share of payloads broken on purpose, 0..1")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "Write the generated payloads to this JSON file")
		logFormat    = flag.String("log-format", "text", "Log format: text or json")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := loadgen.SetupLogging(*logFormat, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &loadgen.Config{
		BaseURL:      *baseURL,
		NumRequests:  *numRequests,
		InvalidRatio: *invalidRatio,
		Workers:      *workers,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	stats, err := loadgen.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := loadgen.WriteReport(os.Stdout, stats); err != nil {
		os.Stderr.WriteString("Failed to write report: " + err.Error() + "\n")
		os.Exit(1)
	}
}
