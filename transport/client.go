// Copyright (c) 2025 BVK Chaitanya

// Package transport sends signed, throttled requests to a venue. It is the
// glue between the auth signers and the throttle window: every outbound call
// is signed first, then waits for window capacity, then goes out on the
// wire.
package transport

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
	"strconv"
	"time"

	"github.com/bvk/inflight/auth"
	"github.com/bvk/inflight/ctxutil"
	"github.com/bvk/inflight/throttle"
)

type Client struct {
	opts Options

	client *http.Client

	authenticator auth.Authenticator
	throttler     *throttle.Throttler
}

// NewClient creates a REST client sending requests signed by the given
// authenticator and admitted by the given throttler.
func NewClient(authenticator auth.Authenticator, throttler *throttle.Throttler, opts *Options) (*Client, error) {
	if authenticator == nil || throttler == nil {
		return nil, fmt.Errorf("authenticator and throttler are required")
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Client{
		opts:          *opts,
		authenticator: authenticator,
		throttler:     throttler,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
	}, nil
}

// GetJSON performs one GET request and decodes the response body. The weight
// is counted against the throttle window.
func (c *Client) GetJSON(ctx context.Context, addrURL *url.URL, private bool, weight int64, responsePtr any) error {
	return c.doJSON(ctx, http.MethodGet, addrURL, nil, private, weight, responsePtr)
}

// PostJSON performs one POST request with a JSON body and decodes the
// response body.
func (c *Client) PostJSON(ctx context.Context, addrURL *url.URL, private bool, weight int64, request, responsePtr any) error {
	body, err := json.Marshal(request)
	if err != nil {
		slog.Error("could not marshal post request body to json", "err", err)
		return err
	}
	return c.doJSON(ctx, http.MethodPost, addrURL, body, private, weight, responsePtr)
}

func (c *Client) doJSON(ctx context.Context, method string, addrURL *url.URL, body []byte, private bool, weight int64, responsePtr any) error {
	resp, err := c.do(ctx, method, addrURL, body, private, weight)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not perform http request", "method", method, "url", addrURL, "err", err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if data, err := io.ReadAll(resp.Body); err == nil && len(data) != 0 {
			slog.Warn("http request was unsuccessful", "method", method, "status", resp.StatusCode, "response", string(data))
		}

		if resp.StatusCode == http.StatusBadGateway {
			ctxutil.Sleep(ctx, c.opts.RetryInterval)
			if err := context.Cause(ctx); err != nil {
				return err
			}
			return c.doJSON(ctx, method, addrURL, body, private, weight, responsePtr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			timeout := c.opts.RetryInterval
			if x := resp.Header.Get("Retry-After"); len(x) != 0 {
				if v, err := strconv.Atoi(x); err == nil {
					timeout = time.Duration(v) * time.Second
				}
			}
			ctxutil.Sleep(ctx, timeout)
			if err := context.Cause(ctx); err != nil {
				return err
			}
			return c.doJSON(ctx, method, addrURL, body, private, weight, responsePtr)
		}

		return fmt.Errorf("http %s returned %d", method, resp.StatusCode)
	}

	if responsePtr == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(responsePtr); err != nil {
		slog.Error("could not decode response to json", "err", err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, addrURL *url.URL, body []byte, private bool, weight int64) (*http.Response, error) {
	headers, err := c.authenticator.SignRequest(&auth.Request{
		Method:  method,
		Host:    addrURL.Host,
		Path:    addrURL.Path,
		Query:   addrURL.Query(),
		Body:    body,
		Private: private,
	})
	if err != nil {
		return nil, err
	}

	if err := c.throttler.Acquire(ctx, weight); err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) != 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, addrURL.String(), reader)
	if err != nil {
		slog.Error("could not create http request object with context", "method", method, "url", addrURL, "err", err)
		return nil, err
	}
	if len(body) != 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return c.client.Do(req)
}
