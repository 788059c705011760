package service

// SuggestionError signals a successful analysis whose outcome is a
// structured suggestion for the user (exit code 2 at the CLI).
type SuggestionError struct {
	Msg string
}

func (e *SuggestionError) Error() string { return e.Msg }

// ConfirmationError signals that the operation needs interactive
// confirmation and none could be obtained (exit code 3 at the CLI).
type ConfirmationError struct {
	Msg string
}

func (e *ConfirmationError) Error() string { return e.Msg }
