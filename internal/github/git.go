package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetRepository fetches the repository metadata (default branch name,
// HTML URL).
func (c *Client) GetRepository(ctx context.Context) (*Repository, error) {
	var repo Repository
	urlStr := c.buildURL("/repos/"+c.repoPath(), nil)
	if _, err := c.getJSON(ctx, urlStr, &repo); err != nil {
		return nil, fmt.Errorf("failed to fetch repository: %w", err)
	}
	return &repo, nil
}

// GetBranchSHA returns the commit SHA at the tip of a branch.
func (c *Client) GetBranchSHA(ctx context.Context, branch string) (string, error) {
	var out struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/branches/"+url.PathEscape(branch), nil)
	if _, err := c.getJSON(ctx, urlStr, &out); err != nil {
		return "", fmt.Errorf("failed to fetch branch %s: %w", branch, err)
	}
	return out.Commit.SHA, nil
}

// getTree fetches one level of a git tree.
func (c *Client) getTree(ctx context.Context, treeSHA string) ([]TreeEntry, error) {
	var out struct {
		Tree []TreeEntry `json:"tree"`
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/git/trees/"+treeSHA, nil)
	if _, err := c.getJSON(ctx, urlStr, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch tree %s: %w", treeSHA, err)
	}
	return out.Tree, nil
}

// commitTreeSHA resolves a commit SHA to its root tree SHA.
func (c *Client) commitTreeSHA(ctx context.Context, commitSHA string) (string, error) {
	var out struct {
		Tree struct {
			SHA string `json:"sha"`
		} `json:"tree"`
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/git/commits/"+commitSHA, nil)
	if _, err := c.getJSON(ctx, urlStr, &out); err != nil {
		return "", fmt.Errorf("failed to fetch commit %s: %w", commitSHA, err)
	}
	return out.Tree.SHA, nil
}

// ListDir returns the tree entries of a directory at a pinned commit.
// A directory absent from the snapshot yields an empty listing, not an
// error.
func (c *Client) ListDir(ctx context.Context, commitSHA, dir string) ([]TreeEntry, error) {
	treeSHA, err := c.commitTreeSHA(ctx, commitSHA)
	if err != nil {
		return nil, err
	}

	// Walk one tree level per path segment.
	for _, segment := range strings.Split(dir, "/") {
		entries, err := c.getTree(ctx, treeSHA)
		if err != nil {
			return nil, err
		}
		treeSHA = ""
		for _, e := range entries {
			if e.Path == segment && e.Type == "tree" {
				treeSHA = e.SHA
				break
			}
		}
		if treeSHA == "" {
			return nil, nil
		}
	}

	return c.getTree(ctx, treeSHA)
}

// GetFileContent returns the content of a file at a ref. A missing
// file reports ok=false with a nil error.
func (c *Client) GetFileContent(ctx context.Context, path, ref string) (string, bool, error) {
	var out struct {
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/contents/"+path, map[string]string{"ref": ref})
	if _, err := c.getJSON(ctx, urlStr, &out); err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch content of %s: %w", path, err)
	}
	if out.Encoding != "base64" {
		return "", false, fmt.Errorf("unexpected content encoding %q for %s", out.Encoding, path)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(out.Content, "\n", ""))
	if err != nil {
		return "", false, fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	return string(decoded), true, nil
}

// CreateTree creates a tree on top of a base tree. Entries carry
// inline content; the API stores the blobs.
func (c *Client) CreateTree(ctx context.Context, baseSHA string, entries []TreeEntry) (string, error) {
	for i := range entries {
		if entries[i].Mode == "" {
			entries[i].Mode = "100644"
		}
		if entries[i].Type == "" {
			entries[i].Type = "blob"
		}
	}
	reqBody := map[string]interface{}{
		"base_tree": baseSHA,
		"tree":      entries,
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/git/trees", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	var out struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse create tree response: %w", err)
	}
	return out.SHA, nil
}

// CreateCommit creates a commit with a single parent.
func (c *Client) CreateCommit(ctx context.Context, parentSHA, message, treeSHA string) (string, error) {
	reqBody := map[string]interface{}{
		"message": message,
		"tree":    treeSHA,
		"parents": []string{parentSHA},
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/git/commits", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	var out struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to parse create commit response: %w", err)
	}
	return out.SHA, nil
}

// CreateRef creates a fully qualified ref (refs/heads/...) pointing at
// a commit. Creating a ref that already exists is an error; concurrent
// draft-creation runs that allocated the same id collide here.
func (c *Client) CreateRef(ctx context.Context, ref, commitSHA string) error {
	reqBody := map[string]interface{}{
		"ref": ref,
		"sha": commitSHA,
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/git/refs", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody); err != nil {
		return fmt.Errorf("failed to create ref %s: %w", ref, err)
	}
	return nil
}
