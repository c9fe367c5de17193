// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/oracle-tui/internal/util"
)

const (
	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 1 * 1024 * 1024

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"

	// maxLoggedBody bounds the body excerpt kept in StatusError.
	maxLoggedBody = 200
)

// Client posts messages to the chat endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// NewClient creates a client for the given endpoint URL.
// No timeout is applied unless WithTimeout is used; cancellation is
// controlled through the context passed to Send.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: log.Default(),
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger used for request logging.
func (c *Client) WithLogger(l *log.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts message and decodes the reply.
//
// The message is NFC-normalised and trimmed. A reply with Success false is
// returned without error; every other failure wraps ErrConnection.
func (c *Client) Send(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(norm.NFC.String(message))
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(Request{Message: message})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: failed to create request: %v", ErrConnection, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	c.logger.Printf("CHAT_REQUEST | id=%s endpoint=%s chars=%d", requestID, c.endpoint, len([]rune(message)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("CHAT_ERROR | id=%s error=%v", requestID, err)
		return Reply{}, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		c.logger.Printf("CHAT_ERROR | id=%s status=%d error=%v", requestID, resp.StatusCode, err)
		return Reply{}, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Status: resp.StatusCode,
			Body:   util.TruncateWidth(util.OneLine(string(data)), maxLoggedBody),
		}
		c.logger.Printf("CHAT_ERROR | id=%s status=%d latency=%dms", requestID, resp.StatusCode, time.Since(start).Milliseconds())
		return Reply{}, statusErr
	}

	var reply *Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		c.logger.Printf("CHAT_ERROR | id=%s status=%d error=malformed_json", requestID, resp.StatusCode)
		return Reply{}, fmt.Errorf("%w: failed to parse response: %v", ErrConnection, err)
	}
	if reply == nil {
		c.logger.Printf("CHAT_ERROR | id=%s status=%d error=null_body", requestID, resp.StatusCode)
		return Reply{}, fmt.Errorf("%w: response body is null", ErrConnection)
	}

	c.logger.Printf("CHAT_COMPLETE | id=%s success=%t latency=%dms", requestID, reply.Success, time.Since(start).Milliseconds())
	return *reply, nil
}

// readResponse reads the body with a size limit to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}
