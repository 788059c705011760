package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"speck/internal/service"
)

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitSuggestion, ExitCode(&service.SuggestionError{Msg: "open a PR"}))
	assert.Equal(t, ExitConfirmation, ExitCode(&service.ConfirmationError{Msg: "confirm removal"}))

	// Wrapped typed errors still map.
	wrapped := fmt.Errorf("sync: %w", &service.SuggestionError{Msg: "open a PR"})
	assert.Equal(t, ExitSuggestion, ExitCode(wrapped))
}
