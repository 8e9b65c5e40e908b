// Package rest provides the HTTP transport used to talk to Guilded's API.
//
// It is deliberately thin: it knows how to authenticate, encode and decode
// JSON bodies, translate error responses, and honor Retry-After on 429s.
// The endpoint surface itself lives in the root package.
package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://www.guilded.gg/api/v1"

const maxRateLimitRetries = 3

// Client performs authenticated requests against the Guilded API.
type Client struct {
	BaseURL   string
	Token     string
	UserAgent string

	// HTTPClient is used for all requests. Defaults to a client with a 30
	// second timeout.
	HTTPClient *http.Client

	Logger logrus.FieldLogger
}

// NewClient creates a client for the given bearer token.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// Do performs a single API request. path must begin with "/". If in is
// non-nil it is marshaled as the JSON request body. If out is non-nil the
// response body is unmarshaled into it. Non-2xx responses are returned as
// *APIError.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		b, err := jsoniter.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "error marshaling request body")
		}
		body = b
	}

	for attempt := 0; ; attempt++ {
		retryAfter, err := c.do(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusTooManyRequests || attempt >= maxRateLimitRetries {
			return err
		}

		c.logger().WithFields(logrus.Fields{
			"path":        path,
			"retry_after": retryAfter,
		}).Warn("rate limited")

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) (time.Duration, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return 0, errors.Wrap(err, "error building request")
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "error reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return retryAfter(resp), newAPIError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := jsoniter.Unmarshal(respBody, out); err != nil {
			return 0, errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return 0, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if seconds, err := strconv.Atoi(s); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Second
}
