package stack

import (
	"fmt"
	"strings"
)

// ValidationError covers every rejected mutation: duplicate names, unknown
// branches, terminal-status transitions, removals with dependents. The
// message always names the offending branch and at least one remediation.
type ValidationError struct {
	Op     string // operation that was rejected, e.g. "add", "remove"
	Branch string
	Reason string
	Hint   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Op, e.Branch, e.Reason)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// CycleError reports a base-branch cycle, carrying the full path so callers
// can show "a -> b -> a" rather than a bare "cycle detected".
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("base-branch cycle detected: %s (re-point one of these branches at a branch outside the loop)",
		strings.Join(e.Path, " -> "))
}
