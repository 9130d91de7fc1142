package testqueries

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveReports polls the stored reports for all submitted queries
// concurrently.
func retrieveReports(ctx context.Context, config *Config, queries []Query, stats *Stats) ([]Report, error) {
	log.Printf("retrieving reports for %d queries with %d workers...", len(queries), config.Workers)

	client := newHTTPClient(config.Timeout)

	reports := make([]Report, len(queries))
	var (
		retrieved int64
		failed    int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					id := queries[index].ID
					report, err := retrieveSingleReport(ctx, client, config.BaseURL, id)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("failed to get report for %s: %v", id, err)
						}
					} else {
						reports[index] = report
						atomic.AddInt64(&retrieved, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						log.Printf("report progress: %d/%d retrieved (success: %d, failed: %d)",
							total, len(queries), ret, fail)
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range queries {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out empty entries (failed retrievals).
	validReports := make([]Report, 0, len(reports))
	for _, report := range reports {
		if report.ID != "" {
			validReports = append(validReports, report)
		}
	}

	stats.ReportsRetrieved = len(validReports)

	log.Printf(`report retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validReports), int(atomic.LoadInt64(&failed)))

	return validReports, nil
}

// retrieveSingleReport fetches the stored report for one query ID.
func retrieveSingleReport(ctx context.Context, client *HTTPClient, baseURL, id string) (Report, error) {
	url := fmt.Sprintf("%s/v1/queries/%s", baseURL, id)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Report{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return Report{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var report Report
	if err := unmarshalJSON(body, &report); err != nil {
		return Report{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return report, nil
}
