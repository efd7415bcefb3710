package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/archbot/archbot/internal/githubauth"
)

// NewClient creates a client for one repository. The token source is
// consulted per request, so rotated installation tokens take effect
// without rebuilding the client.
func NewClient(tokens githubauth.TokenSource, owner, repo string) *Client {
	return &Client{
		Tokens:  tokens,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing
// or a self-hosted instance).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Tokens:     c.Tokens,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Tokens:     c.Tokens,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
	}
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// doRequest performs an authenticated request. Transport failures,
// rate limiting (429, or 403 with the rate-limit header exhausted) and
// 5xx responses are retried with exponential backoff; other non-2xx
// responses return an *APIError immediately.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var respBody []byte
	var respHeader http.Header

	attempt := func() error {
		token, err := c.Tokens.Token()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("acquiring token: %w", err))
		}

		var reqBody io.Reader
		if jsonBody != nil {
			reqBody = bytes.NewReader(jsonBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		const maxResponseSize = 50 * 1024 * 1024
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		rateLimited := resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0")
		if rateLimited {
			// Honor a server-requested delay before handing control
			// back to the backoff schedule.
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					select {
					case <-ctx.Done():
						return backoff.Permanent(ctx.Err())
					case <-time.After(time.Duration(seconds) * time.Second):
					}
				}
			}
			return fmt.Errorf("rate limited (status %d)", resp.StatusCode)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error (status %d)", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Body: string(data)})
		}

		respBody = data
		respHeader = resp.Header
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newRequestBackOff(), MaxRetries), ctx)
	if err := backoff.Retry(attempt, bo); err != nil {
		return nil, nil, err
	}
	return respBody, respHeader, nil
}

// newRequestBackOff returns the retry schedule for one API request.
func newRequestBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute
	return bo
}

// linkNextPattern matches the "next" relation in Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageURL checks the Link header for a next page URL.
func nextPageURL(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, urlStr string, out interface{}) (http.Header, error) {
	respBody, headers, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return headers, nil
}
