package testqueries

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const outputDirPermission = 0750

// Run executes the complete test flow: health check, generation,
// submission, retrieval, and verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	queries, err := generateQueries(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("query generation failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveQueriesToFile(config.OutputFile, queries); err != nil {
			log.Printf("failed to save queries to file: %v", err)
		}
	}

	if err := submitQueries(ctx, config, queries, stats); err != nil {
		return fmt.Errorf("query submission failed: %w", err)
	}

	log.Printf("waiting %v for the pipeline to drain...", ProcessingDelay)
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting: %w", ctx.Err())
	case <-time.After(ProcessingDelay):
	}

	reports, err := retrieveReports(ctx, config, queries, stats)
	if err != nil {
		return fmt.Errorf("report retrieval failed: %w", err)
	}

	if err := verifyReports(config, reports, stats); err != nil {
		return fmt.Errorf("report verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(config, stats)

	return nil
}

// checkServiceHealth verifies that the service is reachable.
func checkServiceHealth(ctx context.Context, config *Config) error {
	log.Printf("checking service health at %s...", config.BaseURL)

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("cannot reach service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
	}

	log.Println("service is healthy")
	return nil
}

// saveQueriesToFile writes the generated queries to a JSON file.
func saveQueriesToFile(path string, queries []Query) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, outputDirPermission); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := marshalJSON(queries)
	if err != nil {
		return fmt.Errorf("failed to marshal queries: %w", err)
	}

	if err := os.WriteFile(path, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Printf("saved %d queries to %s", len(queries), path)
	return nil
}

// displayFinalStats prints the final test summary.
func displayFinalStats(config *Config, stats *Stats) {
	successRate := 0.0
	if stats.QueriesSubmitted > 0 {
		successRate = float64(stats.QueriesAccepted+stats.QueriesDuplicate) /
			float64(stats.QueriesSubmitted) * PercentageMultiplier
	}

	queriesPerSecond := 0.0
	if stats.Duration.Seconds() > 0 {
		queriesPerSecond = float64(stats.QueriesSubmitted) / stats.Duration.Seconds()
	}

	log.Printf(`
========================================
Test run completed
========================================
Target:              %s
Mode:                %s
Duration:            %v

Queries generated:   %d
Queries submitted:   %d
  Accepted:          %d
  Duplicate:         %d
  Failed:            %d
Success rate:        %.2f%%
Throughput:          %.1f queries/sec

Reports retrieved:   %d
  Completed:         %d
  Failed:            %d
Hits observed:       %d
  Qualifying:        %d
========================================
`,
		config.BaseURL, config.Mode, stats.Duration.Round(time.Millisecond),
		stats.QueriesGenerated, stats.QueriesSubmitted,
		stats.QueriesAccepted, stats.QueriesDuplicate, stats.QueriesFailed,
		successRate, queriesPerSecond,
		stats.ReportsRetrieved, stats.ReportsCompleted, stats.ReportsFailed,
		stats.HitsObserved, stats.QualifyingHits)
}
