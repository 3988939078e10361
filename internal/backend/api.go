package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"synthrun/internal/ci"
	"synthrun/internal/data"
)

// TriggerRequest is the body of one batched trigger submission.
type TriggerRequest struct {
	Tests    []data.Payload `json:"tests"`
	Metadata *ci.Metadata   `json:"metadata,omitempty"`
}

type pollResponse struct {
	Results []data.PollResult `json:"results"`
}

// GetTest fetches a test definition by public identifier. A 404 is returned
// as an APIError classifiable with IsNotFound; a 403 with IsForbidden.
func (c *Client) GetTest(ctx context.Context, publicID string) (*data.Test, error) {
	if publicID == "" {
		return nil, fmt.Errorf("GetTest: empty public id")
	}
	var test data.Test
	if err := c.do(ctx, http.MethodGet, "/synthetics/tests/"+url.PathEscape(publicID), nil, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

// TriggerTests submits all payloads in one request. The backend treats the
// batch atomically: either every payload is accepted or none is.
func (c *Client) TriggerTests(ctx context.Context, req TriggerRequest) (*data.Trigger, error) {
	if len(req.Tests) == 0 {
		return nil, fmt.Errorf("TriggerTests: no payloads")
	}
	var trigger data.Trigger
	if err := c.do(ctx, http.MethodPost, "/synthetics/tests/trigger/ci", req, &trigger); err != nil {
		return nil, err
	}
	return &trigger, nil
}

// PollResults fetches finished results for the given result ids. The
// response may cover a subset of the requested ids; a missing id means the
// result is still pending.
func (c *Client) PollResults(ctx context.Context, resultIDs []string) ([]data.PollResult, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	ids, err := json.Marshal(resultIDs)
	if err != nil {
		return nil, fmt.Errorf("PollResults: encode result ids: %w", err)
	}
	path := "/synthetics/tests/poll_results?result_ids=" + url.QueryEscape(string(ids))
	var resp pollResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		return fmt.Errorf("backend api: nil context")
	}
	if c == nil || c.HTTP == nil {
		return fmt.Errorf("backend api: nil client (use NewClient)")
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend api: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("backend api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep error bodies bounded; backends occasionally return HTML pages.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method: method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   string(bytes.TrimSpace(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend api: decode %s %s response: %w", method, path, err)
	}
	return nil
}
