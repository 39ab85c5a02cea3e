package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const maxPageBytes = 64 << 20

// ErrUnauthorized is returned when the API rejects the token.
var ErrUnauthorized = errors.New("platform api: authentication failed")

// StatusError is a non-retryable HTTP failure.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform api: unexpected status %d", e.Status)
}

// Client pages through the vulnerability query endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewClient creates an API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		cfg:            cfg,
		http:           &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:         logger,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
	}
}

// FetchAll requests pages by offset until the reported total is reached and
// returns each raw page body in order.
func (c *Client) FetchAll(ctx context.Context) ([][]byte, error) {
	limit := c.cfg.PageSize
	if limit <= 0 {
		limit = 500
	}

	var pages [][]byte
	for offset := 0; ; offset += limit {
		body, err := c.fetchPage(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		pages = append(pages, body)

		resources, meta, ferr := decodePage(body)
		if ferr != nil {
			return nil, ferr
		}
		c.logger.Debug("Fetched platform page",
			zap.Int("offset", offset),
			zap.Int("entries", len(resources)),
			zap.Int("total", meta.Total))

		if len(resources) == 0 || offset+limit >= meta.Total {
			break
		}
	}
	return pages, nil
}

func (c *Client) fetchPage(ctx context.Context, offset, limit int) ([]byte, error) {
	u, err := url.Parse(strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("platform api: invalid url: %w", err)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	if c.cfg.Filter != "" {
		q.Set("filter", c.cfg.Filter)
	}
	u.RawQuery = q.Encode()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialBackoff
	bo.MaxInterval = c.maxBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			// network errors and timeouts are retried
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
			if err != nil {
				return nil, err
			}
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, backoff.Permanent(ErrUnauthorized)
		case retryable(resp.StatusCode):
			_, _ = io.Copy(io.Discard, resp.Body)
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
			return nil, &StatusError{Status: resp.StatusCode}
		default:
			return nil, backoff.Permanent(&StatusError{Status: resp.StatusCode})
		}
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Platform request failed, retrying",
			zap.Int("offset", offset),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	maxTries := c.cfg.MaxRetries
	if maxTries < 0 {
		maxTries = 0
	}
	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(maxTries+1)),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
	}
	return body, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
