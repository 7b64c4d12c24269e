package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clinic-queue/internal/session"
	"clinic-queue/internal/status"
	"clinic-queue/utils"
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the shared clinic API client. Every request carries the bearer
// token from the injected session store and a request id for backend log
// correlation. All calls run under a circuit breaker so a flapping backend
// cannot be stormed by the refresh loop.
type Client struct {
	baseURL string
	session session.Store
	breaker *utils.CircuitBreaker
	hc      *http.Client
}

func NewClient(cfg ClientConfig, sess session.Store) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		session: sess,
		breaker: utils.NewCircuitBreaker("clinic-api", utils.Settings{}),
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.doOnce(ctx, method, path, query, body, out)
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	rec, err := c.session.Current(ctx)
	if err != nil {
		return fmt.Errorf("api: session: %w", err)
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("api: base url: %w", err)
	}
	endpoint = endpoint.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var bodyReader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("api: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", utils.RequestID())
	if rec.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rec.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return status.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return status.ErrNotFound
	case resp.StatusCode >= 400:
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("api: %s %s: %d: %s", method, path, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("api: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: %s %s: decode: %w", method, path, err)
	}
	return nil
}

// listEnvelope is the backend's list response shape.
type listEnvelope[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}
