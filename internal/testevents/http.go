package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/firstlevel/internal/domain/types"
	"github.com/okian/firstlevel/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostTable performs a POST request with a tab-separated body.
func (c *HTTPClient) PostTable(ctx context.Context, target string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/tab-separated-values")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultFailed
)

// submitTables posts tables concurrently and returns the accepted ones
// with their receipts.
func submitTables(ctx context.Context, config *Config, tables []Table, stats *Stats) []submission {
	log := logger.Get().Named("submit")
	log.Info(ctx, "submitting tables", logger.Int("tables", len(tables)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64

		mu   sync.Mutex
		subs = make([]submission, 0, len(tables))
	)

	tableChan := make(chan Table, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tableChan {
				if ctx.Err() != nil {
					return
				}
				rec, result := submitSingleTable(ctx, client, config.BaseURL, t)
				atomic.AddInt64(&submitted, 1)
				switch result {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case resultFailed:
					atomic.AddInt64(&failed, 1)
					continue
				}
				if config.Verbose {
					log.Debug(ctx, "table submitted",
						logger.String("subject", t.Subject),
						logger.String("run", t.Run),
						logger.String("design_id", rec.ID),
					)
				}
				mu.Lock()
				subs = append(subs, submission{table: t, receipt: rec})
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(tableChan)
		for _, t := range tables {
			select {
			case <-ctx.Done():
				return
			case tableChan <- t:
			}
		}
	}()

	wg.Wait()

	stats.TablesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.TablesAccepted = int(atomic.LoadInt64(&accepted))
	stats.TablesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.TablesFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "table submission completed",
		logger.Int("accepted", stats.TablesAccepted),
		logger.Int("duplicate", stats.TablesDuplicate),
		logger.Int("failed", stats.TablesFailed),
	)
	return subs
}

// submitSingleTable posts one table and classifies the response.
func submitSingleTable(ctx context.Context, client *HTTPClient, baseURL string, t Table) (types.Receipt, submitResult) {
	q := url.Values{}
	q.Set("subject", t.Subject)
	q.Set("run", t.Run)

	resp, err := client.PostTable(ctx, baseURL+"/designs?"+q.Encode(), t.Payload)
	if err != nil {
		return types.Receipt{}, resultFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return types.Receipt{}, resultFailed
	}

	var rec types.Receipt
	switch resp.StatusCode {
	case StatusAccepted:
		if err := json.Unmarshal(body, &rec); err != nil {
			return types.Receipt{}, resultFailed
		}
		return rec, resultAccepted
	case StatusOK:
		if err := json.Unmarshal(body, &rec); err != nil {
			return types.Receipt{}, resultFailed
		}
		return rec, resultDuplicate
	default:
		return types.Receipt{}, resultFailed
	}
}

// fetchDesign reads one design.
func fetchDesign(ctx context.Context, client *HTTPClient, baseURL, id string) (types.DesignView, error) {
	resp, err := client.Get(ctx, baseURL+"/designs/"+url.PathEscape(id))
	if err != nil {
		return types.DesignView{}, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return types.DesignView{}, err
	}
	if resp.StatusCode != StatusOK {
		return types.DesignView{}, fmt.Errorf("get design %s: status %d", id, resp.StatusCode)
	}
	var v types.DesignView
	if err := json.Unmarshal(body, &v); err != nil {
		return types.DesignView{}, fmt.Errorf("decode design %s: %w", id, err)
	}
	return v, nil
}
