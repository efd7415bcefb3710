package bot

// IssueCommentEvent is the inbound trigger for the draft-creation
// workflow: a comment created or edited on a tracking issue.
type IssueCommentEvent struct {
	IssueNumber   int
	IssueTitle    string
	IssueAuthor   string
	Assignees     []string
	Labels        []string
	CommentBody   string
	CommentAuthor string
}
