// Package stale flags open review pull requests whose discussion has
// gone quiet.
//
// The scan runs on a timer. Each run takes a fresh client handle (the
// underlying tokens expire on a shorter cadence than the poll
// interval) and carries no state between runs beyond the last-run
// timestamp, which is threaded through explicitly.
package stale

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/archbot/archbot/internal/bot"
	"github.com/archbot/archbot/internal/github"
)

// ReviewHost is the hosting surface the detector consumes.
// *github.Client satisfies it.
type ReviewHost interface {
	SearchPullRequests(ctx context.Context, queryTerms []string, sort, order string) ([]github.Issue, error)
	GetPullRequest(ctx context.Context, number int) (*github.PullRequest, bool, error)
	ListReviewComments(ctx context.Context, number int) ([]github.ReviewComment, error)
	GetIssueLabels(ctx context.Context, number int) ([]string, error)
	SetIssueLabels(ctx context.Context, number int, labels []string) error
}

// Detector finds stalled review discussions and labels them.
type Detector struct {
	// BotLogin is excluded when looking for human review activity.
	BotLogin string

	// StaleAfter is how long a review may sit without human activity
	// before it is flagged.
	StaleAfter time.Duration

	Log *slog.Logger
}

// Run performs one scan against a fresh host handle and returns the
// timestamp to carry forward as the next lastRun. Only the add-path
// exists: the stalled label is never removed here.
func (d *Detector) Run(ctx context.Context, host ReviewHost, now time.Time, lastRun time.Time) (time.Time, error) {
	thresh := now.Add(-d.StaleAfter)
	d.Log.Info("checking for stalled discussions", "threshold", thresh, "last_run", lastRun)

	// Multiple labels inside one label term are OR'd; separate label
	// terms are AND'd.
	results, err := host.SearchPullRequests(ctx, []string{
		"is:open",
		"is:pr",
		fmt.Sprintf("label:%q,%q", bot.StateNeedsReviewers, bot.StateBeingReviewed),
		fmt.Sprintf("-label:%q", bot.NoticeOverdue),
	}, "updated", "asc")
	if err != nil {
		return lastRun, err
	}
	d.Log.Info("top-level query found candidates", "count", len(results))

	for _, issue := range results {
		pr, ok, err := host.GetPullRequest(ctx, issue.Number)
		if err != nil {
			return lastRun, err
		}
		if !ok {
			d.Log.Info("search hit is not a pull request, ignoring", "issue", issue.Number)
			continue
		}

		lastActivity := lastHumanActivity(ctx, d, host, pr)
		d.Log.Debug("last human activity", "pr", pr.Number, "at", lastActivity)

		if !lastActivity.Before(thresh) {
			continue
		}
		if err := d.flag(ctx, host, pr.Number); err != nil {
			return lastRun, err
		}
	}

	return now, nil
}

// flag adds the stalled-discussion label, writing the label set back
// only when it actually changed.
func (d *Detector) flag(ctx context.Context, host ReviewHost, number int) error {
	labels, err := host.GetIssueLabels(ctx, number)
	if err != nil {
		return err
	}
	if slices.Contains(labels, bot.NoticeStalledDiscussion) {
		return nil
	}
	d.Log.Info("adding stalled-discussion label", "pr", number)
	return host.SetIssueLabels(ctx, number, append(labels, bot.NoticeStalledDiscussion))
}
