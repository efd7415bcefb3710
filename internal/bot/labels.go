package bot

// Label vocabulary used on tracking issues and review pull requests.
const (
	// TagPrefix marks issue labels that become record tags; the
	// prefix is stripped.
	TagPrefix = "type:"

	StateNeedsReviewers = "state: needs-reviewers"
	StateBeingReviewed  = "state: being-reviewed"

	NoticeOverdue           = "notice: overdue"
	NoticeStalledDiscussion = "notice: stalled-discussion"
)
