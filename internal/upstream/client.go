package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dormgate/internal/config"
	"dormgate/internal/metrics"

	"github.com/rs/zerolog"
)

// Client wraps the housing backend's REST API. It attaches the bearer token to
// every request, maps 401 responses to ErrUnauthorized (login/verify excepted)
// and surfaces backend error payloads as APIError values. There is no retry,
// no backoff and no request queuing; a failed call is reported to the caller
// as-is.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	timeout         time.Duration
	downloadTimeout time.Duration
	uploadTimeout   time.Duration
}

func NewClient(cfg config.UpstreamConfig, logger *zerolog.Logger) *Client {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "upstream").Logger()
	}

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		http:            &http.Client{},
		log:             log,
		timeout:         cfg.Timeout(),
		downloadTimeout: cfg.DownloadTimeout(),
		uploadTimeout:   cfg.UploadTimeout(),
	}
}

type callOpts struct {
	resource string
	timeout  time.Duration
	// authExempt keeps 401 as a plain APIError for login/verify endpoints,
	// which must not trigger a global session purge.
	authExempt bool
}

func (c *Client) call(ctx context.Context, method, path, token string, body, out any, opts callOpts) error {
	if opts.timeout <= 0 {
		opts.timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncUpstream(opts.resource, "error")
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.IncUpstream(opts.resource, statusClass(resp.StatusCode))

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, path, opts)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// download fetches a binary resource, returning content and its declared type.
func (c *Client) download(ctx context.Context, path, token, resource string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncUpstream(resource, "error")
		return nil, "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.IncUpstream(resource, statusClass(resp.StatusCode))

	if resp.StatusCode >= 400 {
		return nil, "", c.decodeError(resp, path, callOpts{resource: resource})
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read download body: %w", err)
	}
	return content, resp.Header.Get("Content-Type"), nil
}

func (c *Client) decodeError(resp *http.Response, path string, opts callOpts) error {
	if resp.StatusCode == http.StatusUnauthorized && !opts.authExempt {
		c.log.Warn().Str("path", path).Msg("upstream returned 401, session must be revoked")
		return ErrUnauthorized
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = fallbackMessage(resp.StatusCode)
	}

	c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("message", msg).Msg("upstream error response")
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
