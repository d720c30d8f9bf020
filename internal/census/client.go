package census

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches Census API tables with a bounded-retry policy: a fixed
// number of attempts with a fixed pause between them. Failures are isolated
// per request so one bad tract never aborts a batch.
type Client struct {
	http     *http.Client
	attempts int
	backoff  time.Duration
}

// NewClient creates a Census API client. attempts < 1 is treated as 1.
func NewClient(attempts int, backoff time.Duration) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		http:     &http.Client{Timeout: 60 * time.Second},
		attempts: attempts,
		backoff:  backoff,
	}
}

// getRows fetches one Census API URL and decodes the response, a JSON array
// whose first element is the column header row. Each failed attempt waits
// the backoff interval before the next; the last error comes back to the
// caller after the attempt budget is spent.
func (c *Client) getRows(url string) ([][]string, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(c.backoff)
		}
		rows, err := c.getOnce(url)
		if err == nil {
			return rows, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) getOnce(url string) ([][]string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "streetnet/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("census HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode census response: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("census response has no header row")
	}
	return rows, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
