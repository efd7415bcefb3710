package stale

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/archbot/archbot/internal/bot"
	"github.com/archbot/archbot/internal/github"
)

type fakeReviewHost struct {
	searchResults  []github.Issue
	gotQuery       []string
	pulls          map[int]*github.PullRequest
	reviewComments map[int][]github.ReviewComment
	commentsErr    error
	labels         map[int][]string
	setLabels      map[int][]string // label sets written back
}

func (f *fakeReviewHost) SearchPullRequests(_ context.Context, terms []string, _, _ string) ([]github.Issue, error) {
	f.gotQuery = terms
	return f.searchResults, nil
}

func (f *fakeReviewHost) GetPullRequest(_ context.Context, number int) (*github.PullRequest, bool, error) {
	pr, ok := f.pulls[number]
	return pr, ok, nil
}

func (f *fakeReviewHost) ListReviewComments(_ context.Context, number int) ([]github.ReviewComment, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	return f.reviewComments[number], nil
}

func (f *fakeReviewHost) GetIssueLabels(_ context.Context, number int) ([]string, error) {
	return f.labels[number], nil
}

func (f *fakeReviewHost) SetIssueLabels(_ context.Context, number int, labels []string) error {
	if f.setLabels == nil {
		f.setLabels = make(map[int][]string)
	}
	f.setLabels[number] = labels
	return nil
}

func tp(t time.Time) *time.Time { return &t }

func testDetector() *Detector {
	return &Detector{
		BotLogin:   "arch-bot",
		StaleAfter: 40 * 24 * time.Hour,
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDetectorFlagsQuietPull(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	host := &fakeReviewHost{
		searchResults: []github.Issue{{Number: 5, PullRequest: &github.PullRef{}}},
		pulls: map[int]*github.PullRequest{
			// No review comments; last updated 41 days ago.
			5: {Number: 5, UpdatedAt: tp(now.Add(-41 * 24 * time.Hour))},
		},
		labels: map[int][]string{5: {bot.StateNeedsReviewers}},
	}
	d := testDetector()

	lastRun, err := d.Run(context.Background(), host, now, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !lastRun.Equal(now) {
		t.Errorf("lastRun = %v, want %v", lastRun, now)
	}

	got := host.setLabels[5]
	want := []string{bot.StateNeedsReviewers, bot.NoticeStalledDiscussion}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("labels written = %v, want %v", got, want)
	}
}

func TestDetectorSkipsRecentHumanComment(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	host := &fakeReviewHost{
		searchResults: []github.Issue{{Number: 5, PullRequest: &github.PullRef{}}},
		pulls: map[int]*github.PullRequest{
			5: {Number: 5, UpdatedAt: tp(now.Add(-41 * 24 * time.Hour))},
		},
		reviewComments: map[int][]github.ReviewComment{
			5: {
				{User: &github.User{Login: "reviewer"}, CreatedAt: tp(now.Add(-24 * time.Hour))},
			},
		},
		labels: map[int][]string{5: {bot.StateBeingReviewed}},
	}
	d := testDetector()

	if _, err := d.Run(context.Background(), host, now, time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.setLabels != nil {
		t.Errorf("labels written = %v, want none", host.setLabels)
	}
}

func TestDetectorIgnoresBotComments(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	host := &fakeReviewHost{
		searchResults: []github.Issue{{Number: 5, PullRequest: &github.PullRef{}}},
		pulls: map[int]*github.PullRequest{
			5: {Number: 5, UpdatedAt: tp(now.Add(-50 * 24 * time.Hour))},
		},
		reviewComments: map[int][]github.ReviewComment{
			// Only the bot itself has commented recently.
			5: {
				{User: &github.User{Login: "arch-bot"}, CreatedAt: tp(now.Add(-time.Hour))},
			},
		},
		labels: map[int][]string{5: {bot.StateBeingReviewed}},
	}
	d := testDetector()

	if _, err := d.Run(context.Background(), host, now, time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.setLabels[5] == nil {
		t.Error("bot-only comments must not count as activity; expected flagging")
	}
}

func TestDetectorLabelWriteOnlyOnChange(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	host := &fakeReviewHost{
		searchResults: []github.Issue{{Number: 5, PullRequest: &github.PullRef{}}},
		pulls: map[int]*github.PullRequest{
			5: {Number: 5, UpdatedAt: tp(now.Add(-41 * 24 * time.Hour))},
		},
		// Already flagged: nothing to write.
		labels: map[int][]string{5: {bot.StateNeedsReviewers, bot.NoticeStalledDiscussion}},
	}
	d := testDetector()

	if _, err := d.Run(context.Background(), host, now, time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.setLabels != nil {
		t.Errorf("labels written = %v, want no write for unchanged set", host.setLabels)
	}
}

func TestDetectorSkipsNonPullHits(t *testing.T) {
	now := time.Now()
	host := &fakeReviewHost{
		searchResults: []github.Issue{{Number: 9}},
		pulls:         map[int]*github.PullRequest{},
	}
	d := testDetector()

	if _, err := d.Run(context.Background(), host, now, time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if host.setLabels != nil {
		t.Errorf("labels written = %v, want none for non-PR hit", host.setLabels)
	}
}

func TestActivityFallbackChain(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	d := testDetector()
	ctx := context.Background()

	// Comment listing fails → PR updated time.
	host := &fakeReviewHost{commentsErr: errors.New("boom")}
	pr := &github.PullRequest{Number: 1, UpdatedAt: tp(now.Add(-time.Hour)), CreatedAt: tp(now.Add(-48 * time.Hour))}
	if got := lastHumanActivity(ctx, d, host, pr); !got.Equal(now.Add(-time.Hour)) {
		t.Errorf("fallback to UpdatedAt failed: got %v", got)
	}

	// No updated time → created time.
	pr = &github.PullRequest{Number: 1, CreatedAt: tp(now.Add(-48 * time.Hour))}
	host = &fakeReviewHost{}
	if got := lastHumanActivity(ctx, d, host, pr); !got.Equal(now.Add(-48 * time.Hour)) {
		t.Errorf("fallback to CreatedAt failed: got %v", got)
	}

	// Nothing at all → epoch zero, never an error.
	pr = &github.PullRequest{Number: 1}
	if got := lastHumanActivity(ctx, d, host, pr); !got.Equal(time.Unix(0, 0)) {
		t.Errorf("floor = %v, want epoch zero", got)
	}
}

func TestQueryShape(t *testing.T) {
	host := &fakeReviewHost{}
	d := testDetector()

	if _, err := d.Run(context.Background(), host, time.Now(), time.Time{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	joined := strings.Join(host.gotQuery, " ")
	for _, want := range []string{
		"is:open",
		"is:pr",
		`label:"state: needs-reviewers","state: being-reviewed"`,
		`-label:"notice: overdue"`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("query %q missing term %q", joined, want)
		}
	}
}
