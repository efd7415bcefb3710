package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/archbot/archbot/internal/github"
	"github.com/archbot/archbot/internal/record"
)

// DirLister lists a directory of the repository at a pinned commit.
type DirLister interface {
	ListDir(ctx context.Context, commitSHA, dir string) ([]github.TreeEntry, error)
}

// AllocateID computes the next unused record number for a type at the
// given snapshot. Entries whose names do not parse as integers are
// ignored. The maximum defaults to 1 when nothing parses, so an empty
// type directory allocates 2.
func AllocateID(ctx context.Context, host DirLister, commitSHA string, t record.RecordType) (int, error) {
	entries, err := host.ListDir(ctx, commitSHA, t.Dir())
	if err != nil {
		return 0, fmt.Errorf("listing %s at %s: %w", t.Dir(), commitSHA, err)
	}

	maxID := 1
	found := false
	for _, e := range entries {
		n, err := strconv.Atoi(e.Path)
		if err != nil {
			continue
		}
		if !found || n > maxID {
			maxID = n
			found = true
		}
	}
	return maxID + 1, nil
}
