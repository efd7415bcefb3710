package bot

// BotError is a user-facing failure: the workflow reports it as a
// comment on the originating issue and stops, instead of letting it
// propagate as an operational error.
type BotError struct {
	Message string
}

func (e *BotError) Error() string {
	return e.Message
}
