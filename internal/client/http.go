package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for the two request/response operations.
var (
	ErrStartFailed    = errors.New("workflow start failed")
	ErrApprovalSubmit = errors.New("approval submit failed")
)

// HTTPClient makes the request/response calls to the workflow server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8000").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// StartWorkflow sends POST /api/workflow/start and returns the
// server-assigned session id. Any transport or non-2xx failure wraps
// ErrStartFailed; callers must not open a stream after a failed start.
func (c *HTTPClient) StartWorkflow(req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.post("/api/workflow/start", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("%w: server returned no session id", ErrStartFailed)
	}
	return &resp, nil
}

// SubmitApproval sends the decision for the currently pending approval,
// referencing both of its correlation tokens. Failures wrap
// ErrApprovalSubmit; by the time this is called the pending slot has
// already been cleared and is not restored on failure.
func (c *HTTPClient) SubmitApproval(d Decision) (*DecisionAck, error) {
	var ack DecisionAck
	if err := c.post("/api/workflow/approval", d, &ack); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApprovalSubmit, err)
	}
	return &ack, nil
}

// GetStatus fetches GET /api/workflow/{id}/status.
func (c *HTTPClient) GetStatus(sessionID string) (*SessionStatus, error) {
	var s SessionStatus
	if err := c.get("/api/workflow/"+sessionID+"/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
