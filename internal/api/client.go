package api

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

	"github.com/google/uuid"
)

const (
	DefaultBaseURL     = "http://localhost:5000/"
	DefaultTokenHeader = "x-auth-token"
	RequestIDHeader    = "X-Request-Id"

	maxBodySize = 4 << 20
)

// Config holds gateway client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	TokenHeader string
	LogBodies   bool
	// HTTPClient overrides the default client. Its Transport is wrapped
	// with request logging.
	HTTPClient *http.Client
}

// TokenSource supplies the bearer credential. It is read once per request.
type TokenSource interface {
	Token() string
}

// Client is the typed transport to the gateway.
type Client struct {
	baseURL     string
	tokenHeader string
	tokens      TokenSource
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a gateway client. tokens may be nil for a client that
// only registers and logs in.
func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = DefaultTokenHeader
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = &loggingTransport{
		base:      base,
		logger:    logger,
		logBodies: cfg.LogBodies,
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenHeader: cfg.TokenHeader,
		tokens:      tokens,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// BaseURL returns the gateway base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and returns the response body of a 2xx reply.
// The credential is captured here, once; a logout racing with an
// in-flight call does not affect it.
func (c *Client) do(ctx context.Context, method, path string, authed bool, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(c.tokenHeader, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, data)
	}
	return data, nil
}

// decode unmarshals a required JSON body into out.
func decode(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
