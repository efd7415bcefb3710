package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// CommentOnIssue posts a comment on an issue (or pull request).
func (c *Client) CommentOnIssue(ctx context.Context, number int, body string) error {
	reqBody := map[string]string{"body": body}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number)+"/comments", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", number, err)
	}
	return nil
}

// CloseIssue closes an issue.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	reqBody := map[string]string{"state": "closed"}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	if _, _, err := c.doRequest(ctx, http.MethodPatch, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", number, err)
	}
	return nil
}

// GetIssueLabels returns the current label names on an issue or pull
// request.
func (c *Client) GetIssueLabels(ctx context.Context, number int) ([]string, error) {
	var labels []Label
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number)+"/labels", map[string]string{
		"per_page": strconv.Itoa(MaxPageSize),
	})
	if _, err := c.getJSON(ctx, urlStr, &labels); err != nil {
		return nil, fmt.Errorf("failed to fetch labels of #%d: %w", number, err)
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names, nil
}

// SetIssueLabels replaces the full label set of an issue or pull
// request.
func (c *Client) SetIssueLabels(ctx context.Context, number int, labels []string) error {
	reqBody := map[string][]string{"labels": labels}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/issues/"+strconv.Itoa(number)+"/labels", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPut, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to set labels of #%d: %w", number, err)
	}
	return nil
}
