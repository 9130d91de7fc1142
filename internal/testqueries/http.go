package testqueries

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON.
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct.
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitQueries submits queries concurrently using worker pools.
func submitQueries(ctx context.Context, config *Config, queries []Query, stats *Stats) error {
	log.Printf("submitting %d queries with %d workers...", len(queries), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/queries"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	queryChan := make(chan Query, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for query := range queryChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleQuery(ctx, client, url, query)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						acc := atomic.LoadInt64(&accepted)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						log.Printf("progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
							total, len(queries), acc, dup, fail)
					}
				}
			}
		}()
	}

	go func() {
		defer close(queryChan)
		for _, query := range queries {
			select {
			case <-ctx.Done():
				return
			case queryChan <- query:
			}
		}
	}()

	wg.Wait()

	stats.QueriesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.QueriesAccepted = int(atomic.LoadInt64(&accepted))
	stats.QueriesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.QueriesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`query submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.QueriesAccepted, stats.QueriesDuplicate, stats.QueriesFailed)

	return nil
}

// submitSingleQuery submits a single query and returns the result.
func submitSingleQuery(ctx context.Context, client *HTTPClient, url string, query Query) string {
	resp, err := client.Post(ctx, url, query)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "accepted"
		}
		return "accepted"
	case StatusOK:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
