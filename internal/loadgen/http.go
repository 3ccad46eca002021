package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/diabrisk/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and a fresh X-Request-ID.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return c.client.Do(req)
}

type resultKind int

const (
	resultFailed resultKind = iota
	resultSuccess
	resultRejected
)

type result struct {
	kind resultKind
	resp PredictResponse
}

// submitPayloads posts payloads concurrently using a worker pool.
func submitPayloads(ctx context.Context, config *Config, payloads []Payload, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting payloads", logger.Int("count", len(payloads)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"

	var submitted atomic.Int64
	var lastReport atomic.Int64

	payloadChan := make(chan Payload, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range payloadChan {
				if ctx.Err() != nil {
					continue
				}
				stats.record(submitSinglePayload(ctx, client, url, p))
				total := submitted.Add(1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if config.Verbose && now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Debug(ctx, "progress", logger.Int("submitted", int(total)), logger.Int("total", len(payloads)))
				}
			}
		}()
	}

	go func() {
		defer close(payloadChan)
		for _, p := range payloads {
			select {
			case <-ctx.Done():
				return
			case payloadChan <- p:
			}
		}
	}()

	wg.Wait()

	log.Info(ctx, "payload submission completed",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))
}

// submitSinglePayload posts one payload and classifies the response.
func submitSinglePayload(ctx context.Context, client *HTTPClient, url string, p Payload) result {
	resp, err := client.Post(ctx, url, p)
	if err != nil {
		return result{kind: resultFailed}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{kind: resultFailed}
	}

	var pr PredictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return result{kind: resultFailed}
	}

	switch {
	case resp.StatusCode == StatusOK && pr.Success:
		return result{kind: resultSuccess, resp: pr}
	case resp.StatusCode == StatusBadRequest && !pr.Success:
		return result{kind: resultRejected, resp: pr}
	default:
		return result{kind: resultFailed, resp: pr}
	}
}
