package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/bfhl/internal/probe"
)

// Default configuration constants.
const (
	defaultNumCases     = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 15 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numCases   = flag.Int("cases", defaultNumCases, "Number of requests to generate")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Generation seed; 0 uses the clock")
		skipAI     = flag.Bool("skip-ai", false, "Do not send AI questions")
		outputFile = flag.String("output", "", "Write the generated cases to this JSON file")
		logFile    = flag.String("log", "", "Also write log lines to this file")
		verbose    = flag.Bool("verbose", false, "Log every mismatching case")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	cfg := &probe.Config{
		BaseURL:    *baseURL,
		NumCases:   *numCases,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		SkipAI:     *skipAI,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := probe.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
