package stale

import (
	"context"
	"time"

	"github.com/archbot/archbot/internal/github"
)

// activitySource is one strategy for determining when a human last
// touched a review. Sources may fail or abstain (ok=false); the chain
// below always terminates because its last source cannot fail.
type activitySource func(ctx context.Context, d *Detector, host ReviewHost, pr *github.PullRequest) (time.Time, bool)

// activityChain is the ordered fallback list: the newest review
// comment by someone other than the bot, else the pull request's
// last-updated time, else its creation time, else epoch zero.
var activityChain = []activitySource{
	newestHumanReviewComment,
	pullUpdatedAt,
	pullCreatedAt,
	epochFloor,
}

// lastHumanActivity resolves the last-activity timestamp through the
// fallback chain. It never fails.
func lastHumanActivity(ctx context.Context, d *Detector, host ReviewHost, pr *github.PullRequest) time.Time {
	for _, source := range activityChain {
		if t, ok := source(ctx, d, host, pr); ok {
			return t
		}
	}
	// Unreachable: epochFloor always reports ok.
	return time.Unix(0, 0)
}

func newestHumanReviewComment(ctx context.Context, d *Detector, host ReviewHost, pr *github.PullRequest) (time.Time, bool) {
	comments, err := host.ListReviewComments(ctx, pr.Number)
	if err != nil {
		d.Log.Warn("listing review comments failed, falling back",
			"pr", pr.Number, "error", err)
		return time.Time{}, false
	}

	var newest time.Time
	found := false
	for _, c := range comments {
		if c.User != nil && c.User.Login == d.BotLogin {
			continue
		}
		if c.CreatedAt == nil {
			continue
		}
		if !found || c.CreatedAt.After(newest) {
			newest = *c.CreatedAt
			found = true
		}
	}
	return newest, found
}

func pullUpdatedAt(_ context.Context, _ *Detector, _ ReviewHost, pr *github.PullRequest) (time.Time, bool) {
	if pr.UpdatedAt == nil {
		return time.Time{}, false
	}
	return *pr.UpdatedAt, true
}

func pullCreatedAt(_ context.Context, _ *Detector, _ ReviewHost, pr *github.PullRequest) (time.Time, bool) {
	if pr.CreatedAt == nil {
		return time.Time{}, false
	}
	return *pr.CreatedAt, true
}

func epochFloor(_ context.Context, _ *Detector, _ ReviewHost, _ *github.PullRequest) (time.Time, bool) {
	return time.Unix(0, 0), true
}
