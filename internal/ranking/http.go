package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPScorer calls a model server that scores one representation pair per request.
//
// Request:  {"candidate": [...], "job": [...]}
// Response: {"score": 0.42}
type HTTPScorer struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPScorer creates a client for endpoint. A zero timeout means 5s.
func NewHTTPScorer(endpoint string, timeout time.Duration) *HTTPScorer {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPScorer{Endpoint: endpoint, Client: &http.Client{Timeout: timeout}}
}

// Score posts both representations and decodes the score
func (h *HTTPScorer) Score(ctx context.Context, candidate, job []float64) (float64, error) {
	body, err := json.Marshal(map[string][]float64{"candidate": candidate, "job": job})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scorer call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("scorer error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result struct {
		Score *float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if result.Score == nil {
		return 0, fmt.Errorf("decode response: missing score")
	}
	return *result.Score, nil
}
