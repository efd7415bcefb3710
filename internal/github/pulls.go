package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, title, head, base, body string) (*PullRequest, error) {
	reqBody := map[string]string{
		"title": title,
		"head":  head,
		"base":  base,
		"body":  body,
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	var pr PullRequest
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse pull request response: %w", err)
	}
	return &pr, nil
}

// MergePullRequest merges a pull request with a rebase merge, keeping
// history linear.
func (c *Client) MergePullRequest(ctx context.Context, number int, message string) error {
	reqBody := map[string]string{
		"commit_message": message,
		"merge_method":   "rebase",
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls/"+strconv.Itoa(number)+"/merge", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPut, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to merge pull request #%d: %w", number, err)
	}
	return nil
}

// GetPullRequest fetches a pull request by number. A plain issue
// number reports ok=false with a nil error.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, bool, error) {
	var pr PullRequest
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls/"+strconv.Itoa(number), nil)
	if _, err := c.getJSON(ctx, urlStr, &pr); err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch pull request #%d: %w", number, err)
	}
	return &pr, true, nil
}

// ListReviewComments returns all review comments on a pull request.
func (c *Client) ListReviewComments(ctx context.Context, number int) ([]ReviewComment, error) {
	var all []ReviewComment

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls/"+strconv.Itoa(number)+"/comments", map[string]string{
		"per_page": strconv.Itoa(MaxPageSize),
	})
	for page := 1; ; page++ {
		var comments []ReviewComment
		headers, err := c.getJSON(ctx, urlStr, &comments)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch review comments of #%d: %w", number, err)
		}
		all = append(all, comments...)

		next, ok := nextPageURL(headers)
		if !ok {
			break
		}
		urlStr = next

		if page >= MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}
	return all, nil
}

// SearchPullRequests runs an issue search restricted to this
// repository. queryTerms are joined with spaces; sort and order follow
// the search API ("updated", "asc", ...).
func (c *Client) SearchPullRequests(ctx context.Context, queryTerms []string, sort, order string) ([]Issue, error) {
	terms := append([]string{"repo:" + c.repoPath()}, queryTerms...)

	var all []Issue
	urlStr := c.buildURL("/search/issues", map[string]string{
		"q":        strings.Join(terms, " "),
		"sort":     sort,
		"order":    order,
		"per_page": strconv.Itoa(MaxPageSize),
	})
	for page := 1; ; page++ {
		var result searchResult
		headers, err := c.getJSON(ctx, urlStr, &result)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		all = append(all, result.Items...)

		next, ok := nextPageURL(headers)
		if !ok {
			break
		}
		urlStr = next

		if page >= MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}
	return all, nil
}
