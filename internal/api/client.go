// Package api is the HTTP client for the Book Foundry service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"bookfoundry/internal/util"
)

// Service endpoints.
const (
	PathHealth          = "/api/health"
	PathOutline         = "/api/outline"
	PathOutlineFeedback = "/api/outline/feedback"
	PathChapters        = "/api/chapters"
	PathVoicePreview    = "/api/voice/preview"
	PathRenderJobs      = "/api/audiobook/jobs"
)

const maxErrorBody = 64 << 10

// Config holds configuration for the client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // 0 disables limiting
	Burst             int
	UserAgent         string
	Logger            *slog.Logger
	HTTPClient        *http.Client // optional; Timeout is ignored when set
}

// Client handles communication with the Book Foundry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	userAgent  string
	log        *slog.Logger
}

// NewClient creates a new client. The base URL must be an absolute http(s) URL.
func NewClient(cfg Config) (*Client, error) {
	base, err := util.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "bookfoundry/1.0"
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient: hc,
		baseURL:    base,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		userAgent:  cfg.UserAgent,
		log:        cfg.Logger,
	}, nil
}

// BaseURL returns the normalized service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request and returns the response for a 2xx status.
// Every other outcome becomes an *APIError whose message is the response
// detail, or generic when no detail can be extracted.
func (c *Client) do(ctx context.Context, method, path string, body any, generic string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	url := util.JoinURL(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("method", method, "path", path, "request_id", reqID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, &APIError{Endpoint: path, Message: generic, Err: err}
	}
	log.Debug("request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &APIError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    c.detailMessage(log, resp.Body, generic),
		}
	}
	return resp, nil
}

// detailMessage extracts a string "detail" field from an error body. Parse
// failures are logged and replaced by generic.
func (c *Client) detailMessage(log *slog.Logger, body io.Reader, generic string) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		log.Debug("read error body", "error", err)
		return generic
	}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		log.Debug("error body is not JSON", "error", err)
		return generic
	}
	if s, ok := eb.Detail.(string); ok && s != "" {
		return s
	}
	return generic
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, generic string) error {
	resp, err := c.do(ctx, method, path, body, generic)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Endpoint: path, StatusCode: resp.StatusCode, Message: generic, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Health checks that the service is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	var hr healthResponse
	if err := c.doJSON(ctx, http.MethodGet, PathHealth, nil, &hr, MsgRequestFailed); err != nil {
		return err
	}
	if hr.Status != "ok" {
		return fmt.Errorf("service reported status %q", hr.Status)
	}
	return nil
}
