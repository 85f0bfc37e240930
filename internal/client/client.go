package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"soccer_v3/pipeline/internal/metrics"
)

// HTTPStatusError is a non-200 response from a provider.
type HTTPStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// core is the HTTP engine shared by the provider clients: one rate limiter
// and retry policy per provider, JSON in and out. Transport failures and
// 429/503/504 retry with exponential backoff; auth and client errors fail
// immediately.
type core struct {
	provider   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	logger     zerolog.Logger
}

func newCore(provider string, timeout time.Duration, rps float64) *core {
	if rps <= 0 {
		rps = 1
	}
	return &core{
		provider:   provider,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxElapsed: 30 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.With().Str("component", "client").Str("provider", provider).Logger(),
	}
}

func (c *core) getJSON(ctx context.Context, endpoint, url string, headers, params map[string]string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, url, headers, params, nil, out)
}

func (c *core) postJSON(ctx context.Context, endpoint, url string, headers map[string]string, payload, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, url, headers, nil, payload, out)
}

func (c *core) doJSON(ctx context.Context, method, endpoint, url string, headers, params map[string]string, payload, out interface{}) error {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	start := time.Now()
	attempt := 0

	op := func() error {
		attempt++

		// Rate limiting: wait for a token
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var reader io.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Accept", "application/json")
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("method", method).
			Int("attempt", attempt).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to unmarshal response: %w", err))
			}
			return nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Msg("Received retryable error, will retry")
			return &HTTPStatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: truncate(respBody)}

		default:
			// Auth failures and other client errors are not retried
			return backoff.Permanent(&HTTPStatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: truncate(respBody)})
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	err := backoff.Retry(op, backoff.WithContext(bo, ctx))

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordAPICall(c.provider, endpoint, status, time.Since(start).Seconds())
	return err
}

// truncate keeps error bodies loggable.
func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
