package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/killallgit/easel/pkg/logger"
)

// AgentPath is the endpoint HTTPSource posts to
const AgentPath = "/api/agent"

const maxErrorBody = 64 << 10

// StatusError is returned when the agent answers with a non-200 status
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agent returned %d", e.StatusCode)
	}
	return fmt.Sprintf("agent returned %d: %s", e.StatusCode, e.Message)
}

// HTTPSource streams from an agent service speaking "data:" framed events
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// HTTPOption configures an HTTPSource
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// WithTimeout bounds the whole request, including reading the stream. Zero
// means no limit.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.client = &http.Client{Timeout: d, Transport: s.client.Transport}
	}
}

// NewHTTPSource creates a source posting to baseURL + AgentPath
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		endpoint: strings.TrimRight(baseURL, "/") + AgentPath,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type agentRequest struct {
	Message string      `json:"message"`
	History []Turn      `json:"history"`
	Shapes  []WireShape `json:"shapes"`
}

// Stream posts req and returns the response body once the agent has
// accepted it
func (s *HTTPSource) Stream(ctx context.Context, req Request) (io.ReadCloser, error) {
	shapes := req.Shapes
	if shapes == nil {
		shapes = []WireShape{}
	}
	payload, err := json.Marshal(agentRequest{Message: req.Message, History: req.Turns(), Shapes: shapes})
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	logger.Debug("POST %s (%d byte(s), %d shape(s))", s.endpoint, len(payload), len(shapes))
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}
