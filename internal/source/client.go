package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when the caller supplies no HTTP client.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:5000". Required.
	BaseURL string
	// Timeout applies when HTTPClient is nil. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient is used for all requests. If nil, an *http.Client with Timeout is used.
	HTTPClient HTTPClient
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is the REST implementation of Source.
// It is stateless apart from its transport and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

// New creates a new REST client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("source: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("source: BaseURL %q must use http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// doRequest executes one API call and decodes a 2xx JSON body into result.
// Non-2xx responses are mapped onto the error taxonomy of this package.
func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(op, resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Body: "undecodable response: " + err.Error()}
	}
	return nil
}

// statusError maps a non-2xx status onto NotFound, Validation or Server errors.
func statusError(op string, status int, raw []byte) error {
	switch status {
	case http.StatusNotFound:
		return &NotFoundError{}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Op: op, Message: errorMessage(raw)}
	default:
		return &ServerError{Op: op, StatusCode: status, Body: strings.TrimSpace(string(raw))}
	}
}

// errorMessage extracts a message from {"error": "..."} or {"detail": ...}
// bodies, falling back to the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if len(body.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(body.Detail, &detail); err == nil {
				return detail
			}
			return string(body.Detail)
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "invalid request"
	}
	return msg
}
