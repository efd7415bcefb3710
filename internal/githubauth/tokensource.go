// Package githubauth supplies API tokens to the hosting client.
//
// Installation tokens expire on a shorter cadence than the stale-scan
// poll interval, so long-running loops must not cache a token across
// runs: they ask a TokenSource for a fresh value each time they build
// a client.
package githubauth

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// TokenSource yields the current API token.
type TokenSource interface {
	Token() (string, error)
}

// Static is a fixed token, typically a personal access token from the
// environment.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty token")
	}
	return string(s), nil
}

// FileTokenSource reads the token from a file that an external
// credential agent keeps refreshed. Token returns the value loaded at
// construction or by the watcher; callers get whatever is current
// without re-reading the file on every request.
type FileTokenSource struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewFileTokenSource loads the token file once. Run the returned
// source's Watch loop to pick up refreshed tokens.
func NewFileTokenSource(path string) (*FileTokenSource, error) {
	s := &FileTokenSource{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileTokenSource) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", fmt.Errorf("token file %s is empty", s.path)
	}
	return s.token, nil
}

func (s *FileTokenSource) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading token file: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return nil
}
