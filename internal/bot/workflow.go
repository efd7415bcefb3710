// Package bot implements the record-lifecycle workflow engine: the
// command-driven draft-creation/supersession transaction and its
// supporting policies (authorization, id allocation, label
// vocabulary).
//
// Precondition: a user has opened an issue identifying the need for a
// record. An approver comments `/create adr` (or padr, ap), or
// `/supersede adr 12`. The bot allocates a unique id, renders a draft
// from the type's template, lands everything as one commit behind a
// pull request, merges it, and closes the issue. Postcondition: a
// record in the Draft state exists and its authors can edit it in
// their own branch.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/archbot/archbot/internal/command"
	"github.com/archbot/archbot/internal/config"
	"github.com/archbot/archbot/internal/github"
	"github.com/archbot/archbot/internal/record"
)

// Host is the repository-hosting surface the workflow consumes. The
// workflow holds no state between calls except the pinned snapshot
// SHA within one run. *github.Client satisfies it.
type Host interface {
	DirLister
	GetRepository(ctx context.Context) (*github.Repository, error)
	GetBranchSHA(ctx context.Context, branch string) (string, error)
	GetFileContent(ctx context.Context, path, ref string) (content string, ok bool, err error)
	CreateTree(ctx context.Context, baseSHA string, entries []github.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, parentSHA, message, treeSHA string) (string, error)
	CreateRef(ctx context.Context, ref, commitSHA string) error
	CreatePullRequest(ctx context.Context, title, head, base, body string) (*github.PullRequest, error)
	MergePullRequest(ctx context.Context, number int, message string) error
	CommentOnIssue(ctx context.Context, number int, body string) error
	CloseIssue(ctx context.Context, number int) error
}

// DraftRecordWorkflow turns one slash-command comment into one merged
// commit creating a draft record.
type DraftRecordWorkflow struct {
	Host    Host
	Cfg     *config.ArchBotConfig
	Enabled bool
	Log     *slog.Logger
}

// HandleIssueComment runs the workflow for one comment event. It runs
// to completion synchronously. Unrecognized or unauthorized comments
// are ignored silently; a BotError is reported back on the issue; any
// other error propagates to the caller.
func (w *DraftRecordWorkflow) HandleIssueComment(ctx context.Context, ev IssueCommentEvent) error {
	if !w.Enabled {
		w.Log.Debug("ignoring event: create-draft flow disabled")
		return nil
	}

	intent := command.Parse(ev.CommentBody)
	if intent.Kind == command.None {
		w.Log.Debug("ignoring comment", "issue", ev.IssueNumber, "body", ev.CommentBody)
		return nil
	}
	if !Authorized(ev.CommentAuthor, w.Cfg.RecordCreationApprovers) {
		// Deliberately silent: no comment explaining the rejection.
		w.Log.Debug("ignoring command from non-approver",
			"issue", ev.IssueNumber, "user", ev.CommentAuthor)
		return nil
	}

	err := w.createDraft(ctx, ev, intent)
	var botErr *BotError
	if errors.As(err, &botErr) {
		return w.Host.CommentOnIssue(ctx, ev.IssueNumber, botErr.Message)
	}
	return err
}

func (w *DraftRecordWorkflow) createDraft(ctx context.Context, ev IssueCommentEvent, intent command.Intent) error {
	repo, err := w.Host.GetRepository(ctx)
	if err != nil {
		return err
	}

	// Pin the default branch tip once: id allocation, template
	// lookup, supersession read, and the tree base all use this one
	// snapshot.
	baseSHA, err := w.Host.GetBranchSHA(ctx, repo.DefaultBranch)
	if err != nil {
		return err
	}
	w.Log.Debug("pinned default branch", "branch", repo.DefaultBranch, "sha", baseSHA)

	num, err := AllocateID(ctx, w.Host, baseSHA, intent.Type)
	if err != nil {
		return err
	}
	draftID := record.ID{Type: intent.Type, Num: num}
	w.Log.Info("creating draft record", "record", draftID.String(), "issue", ev.IssueNumber)

	// Compute every file mutation before writing anything, so a
	// supersession failure leaves no repository artifact.
	draftContent, err := w.draftContent(ctx, baseSHA, draftID, ev)
	if err != nil {
		return err
	}
	entries := []github.TreeEntry{{Path: draftID.RepoPath(), Content: draftContent}}

	if intent.Kind == command.Supersede {
		supersededID := record.ID{Type: intent.Type, Num: intent.Target}
		supersededContent, err := w.supersededContent(ctx, baseSHA, supersededID, num)
		if err != nil {
			return err
		}
		entries = append(entries, github.TreeEntry{Path: supersededID.RepoPath(), Content: supersededContent})
	}

	commitMessage := fmt.Sprintf("%s: Create draft\n\nFixes #%d", draftID, ev.IssueNumber)

	treeSHA, err := w.Host.CreateTree(ctx, baseSHA, entries)
	if err != nil {
		return err
	}
	commitSHA, err := w.Host.CreateCommit(ctx, baseSHA, commitMessage, treeSHA)
	if err != nil {
		return err
	}
	branch := draftID.BranchName()
	if err := w.Host.CreateRef(ctx, branch, commitSHA); err != nil {
		return err
	}

	pr, err := w.Host.CreatePullRequest(ctx, commitMessage, branch, repo.DefaultBranch,
		fmt.Sprintf("Create %s in draft state", draftID))
	if err != nil {
		return err
	}
	if err := w.Host.MergePullRequest(ctx, pr.Number, commitMessage); err != nil {
		return err
	}

	authors := recordAuthors(ev)
	mentions := make([]string, len(authors))
	for i, a := range authors {
		mentions[i] = "@" + a
	}
	announcement := fmt.Sprintf(
		"Closing following creation of [%s](%s)\n%s, please write your content in [%s](%s) and open a PR for %s acceptance.",
		draftID, draftID.PublishedURL(w.Cfg.PublishedURL),
		strings.Join(mentions, ", "),
		draftID.RepoPath(), blobLink(repo, draftID),
		draftID.Type)
	if err := w.Host.CommentOnIssue(ctx, ev.IssueNumber, announcement); err != nil {
		return err
	}

	return w.Host.CloseIssue(ctx, ev.IssueNumber)
}

// draftContent renders the new draft from the type's template at the
// pinned snapshot. The template body is kept untouched.
func (w *DraftRecordWorkflow) draftContent(ctx context.Context, baseSHA string, id record.ID, ev IssueCommentEvent) (string, error) {
	templatePath := record.TemplateID(id.Type).RepoPath()
	page, err := w.getPage(ctx, templatePath, baseSHA)
	if err != nil {
		return "", err
	}
	if page == nil {
		return "", fmt.Errorf("missing template %s at %s", templatePath, baseSHA)
	}

	page.FrontMatter.Num = id.Num
	page.FrontMatter.Title = ev.IssueTitle
	page.FrontMatter.Status = record.StatusDraft
	page.FrontMatter.Authors = recordAuthors(ev)
	page.FrontMatter.Tags = recordTags(ev.Labels)
	return page.ContentString()
}

// supersededContent loads the superseded record at the pinned snapshot
// and marks it superseded by the new record. A missing target is a
// user-facing error.
func (w *DraftRecordWorkflow) supersededContent(ctx context.Context, baseSHA string, id record.ID, supersededBy int) (string, error) {
	page, err := w.getPage(ctx, id.RepoPath(), baseSHA)
	if err != nil {
		return "", err
	}
	if page == nil {
		return "", &BotError{Message: fmt.Sprintf("There is no %s with number %d", id.Type, id.Num)}
	}

	page.FrontMatter.Status = record.StatusSuperseded
	page.FrontMatter.SupersededBy = &supersededBy
	return page.ContentString()
}

// getPage fetches and parses a record page, nil when absent.
func (w *DraftRecordWorkflow) getPage(ctx context.Context, path, ref string) (*record.Page, error) {
	content, ok, err := w.Host.GetFileContent(ctx, path, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	page, err := record.ParsePage(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return page, nil
}

// recordAuthors is the issue's assignees, or its author when nobody is
// assigned.
func recordAuthors(ev IssueCommentEvent) []string {
	if len(ev.Assignees) == 0 {
		return []string{ev.IssueAuthor}
	}
	return append([]string(nil), ev.Assignees...)
}

// recordTags picks the issue labels carrying the tag prefix and strips
// it.
func recordTags(labels []string) []string {
	tags := []string{}
	for _, l := range labels {
		if strings.HasPrefix(l, TagPrefix) {
			tags = append(tags, l[len(TagPrefix):])
		}
	}
	return tags
}

// blobLink formats the repository file link used in the announcement.
func blobLink(repo *github.Repository, id record.ID) string {
	return fmt.Sprintf("%s/blob/%s/%s", repo.HTMLURL, repo.DefaultBranch, id.RepoPath())
}
