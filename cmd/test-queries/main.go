// Command test-queries load-tests the transit evaluation pipeline by
// generating random charts, submitting them through the async query
// endpoint, and verifying the stored reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/ecliptiq/transits/internal/testqueries"
)

const (
	defaultNumQueries = 10000
	defaultTimeout    = 30 * time.Second
	testRunTimeout    = 10 * time.Minute
	workerMultiplier  = 2
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numQueries = flag.Int("queries", defaultNumQueries, "Number of queries to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*workerMultiplier, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		mode       = flag.String("mode", "both", "Evaluation mode submitted with each query")
		outputFile = flag.String("output", "", "Output file for generated queries (default: generated_queries_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help {
		testqueries.ShowHelp()
		return
	}

	if *numQueries <= 0 {
		fmt.Fprintln(os.Stderr, "number of queries must be positive")
		os.Exit(1)
	}
	if *workers <= 0 {
		fmt.Fprintln(os.Stderr, "number of workers must be positive")
		os.Exit(1)
	}

	if err := testqueries.SetupLogging(*logFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	output := *outputFile
	if output == "" {
		timestamp := time.Now().Format("20060102_150405")
		output = "generated_queries_" + timestamp + ".json"
	}

	config := &testqueries.Config{
		BaseURL:    *baseURL,
		NumQueries: *numQueries,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: output,
		LogFile:    *logFile,
		Mode:       *mode,
		Verbose:    *verbose,
	}

	ctx, cancel := context.WithTimeout(context.Background(), testRunTimeout)
	defer cancel()

	if err := testqueries.Run(ctx, config); err != nil {
		log.Fatalf("test run failed: %v", err)
	}
}
