package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Filter periods accepted by the analysis service.
const (
	PeriodAll   = "all"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Client calls the project analysis service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for the service rooted at baseURL, e.g.
// http://localhost:8000/api/ai.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
}

// Analyze asks a free-form question about the snapshot.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if req.FilterPeriod == "" {
		req.FilterPeriod = PeriodAll
	}

	var resp AnalysisResponse
	if err := c.post(ctx, "/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SuggestQuestions returns questions worth asking about the snapshot.
func (c *Client) SuggestQuestions(ctx context.Context, snap Snapshot) ([]string, error) {
	var resp suggestResponse
	if err := c.post(ctx, "/suggest-questions", snap, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling analysis service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("analysis service call",
		"path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail != nil {
			return fmt.Errorf("analysis service error (%d): %v", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("analysis service error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
