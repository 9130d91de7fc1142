package testqueries

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ecliptiq/transits/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the test queries tool.
func ShowHelp() {
	os.Stdout.WriteString(`Transits Query Test Tool
========================

A concurrent tool for load-testing the transit evaluation pipeline.

Usage:
  go run cmd/test-queries/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -queries int
        Number of queries to generate and submit (default 10000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -mode string
        Evaluation mode submitted with each query (default "both")
  -output string
        Output file for generated queries (default: generated_queries_TIMESTAMP.json)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-queries/main.go

  # Test with custom parameters
  go run cmd/test-queries/main.go -queries 50000 -workers 16 -url http://localhost:8080

  # Submit qualifying-only queries with verbose output
  go run cmd/test-queries/main.go -verbose -mode qualifying -queries 10000
`)
}
