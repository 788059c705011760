package cmd

import (
	"errors"

	"speck/internal/service"
)

// Exit codes expected by the surrounding tooling: 0 success, 1 validation
// or user error, 2 structured suggestion, 3 interactive confirmation
// required.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitSuggestion   = 2
	ExitConfirmation = 3
)

// ExitCode maps an Execute error onto the exit-code convention.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var sugg *service.SuggestionError
	if errors.As(err, &sugg) {
		return ExitSuggestion
	}
	var conf *service.ConfirmationError
	if errors.As(err, &conf) {
		return ExitConfirmation
	}
	return ExitError
}
