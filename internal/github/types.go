// Package github is the bot's client for the repository-hosting REST
// API: repository metadata, git data (trees, commits, refs), pull
// requests, issues, labels, and search.
package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/archbot/archbot/internal/githubauth"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited or
	// transient failures.
	MaxRetries = 3

	// MaxPageSize is the page size used for paginated listings.
	MaxPageSize = 100

	// MaxPages caps pagination to guard against malformed Link headers.
	MaxPages = 1000
)

// Client provides methods to interact with the hosting REST API.
type Client struct {
	Tokens     githubauth.TokenSource
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.StatusCode)
}

// IsNotFound reports whether err is a 404 API response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Repository is the repository metadata the bot needs.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
}

// User is an account on the hosting service.
type User struct {
	Login string `json:"login"`
}

// Label is an issue or pull request label.
type Label struct {
	Name string `json:"name"`
}

// Issue is an issue (or a pull request seen through the issues API).
type Issue struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	State       string   `json:"state"`
	User        *User    `json:"user,omitempty"`
	Assignees   []User   `json:"assignees,omitempty"`
	Labels      []Label  `json:"labels"`
	PullRequest *PullRef `json:"pull_request,omitempty"` // Non-nil if this is a PR
}

// PullRef marks an issues-API result as a pull request.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// PullRequest is a pull request.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Labels    []Label    `json:"labels"`
	HTMLURL   string     `json:"html_url"`
}

// ReviewComment is a comment on a pull request review thread.
type ReviewComment struct {
	User      *User      `json:"user,omitempty"`
	Body      string     `json:"body"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// TreeEntry is one entry of a git tree listing, or one staged entry
// of a tree about to be created.
type TreeEntry struct {
	Path    string `json:"path"`
	Mode    string `json:"mode,omitempty"`
	Type    string `json:"type,omitempty"`
	SHA     string `json:"sha,omitempty"`
	Content string `json:"content,omitempty"`
}

// searchResult is the envelope of the issue search endpoint.
type searchResult struct {
	TotalCount int     `json:"total_count"`
	Items      []Issue `json:"items"`
}
