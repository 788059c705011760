// Package hooks runs user-configured scripts on store mutations. Hook
// registrations live in the local config as "event|script" pairs.
package hooks

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"speck/internal/config"
	"speck/internal/logs"
)

// Events hooks can attach to.
const (
	EventCreateBranch = "createBranch"
	EventUpdateStatus = "updateStatus"
	EventRemoveBranch = "removeBranch"
	EventRebaseBranch = "rebaseBranch"
	EventRenameBranch = "renameBranch"
)

func knownEvent(e string) bool {
	switch e {
	case EventCreateBranch, EventUpdateStatus, EventRemoveBranch, EventRebaseBranch, EventRenameBranch:
		return true
	}
	return false
}

func ListHooks() []string {
	raw := config.GetConfigValue("hooks")
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ";")
}

func AddHook(event, scriptPath string) error {
	if scriptPath == "" {
		return fmt.Errorf("hook script path cannot be empty")
	}
	if !knownEvent(event) {
		return fmt.Errorf("unknown hook event %q (valid: %s, %s, %s, %s, %s)",
			event, EventCreateBranch, EventUpdateStatus, EventRemoveBranch, EventRebaseBranch, EventRenameBranch)
	}

	hs := ListHooks()
	hs = append(hs, fmt.Sprintf("%s|%s", event, scriptPath))
	return config.SetConfigValue("hooks", strings.Join(hs, ";"), false)
}

// RunHooks fires every script registered for event. Hook failures are
// warnings; they never fail the operation that triggered them.
func RunHooks(event, arg string) {
	for _, h := range ListHooks() {
		parts := strings.SplitN(h, "|", 2)
		if len(parts) != 2 {
			logs.Warn("Invalid hook format: %q", h)
			continue
		}
		if parts[0] == event {
			runHookScript(parts[1], event, arg)
		}
	}
}

func runHookScript(script, event, arg string) {
	abs, err := filepath.Abs(script)
	if err != nil {
		logs.Warn("Failed to get absolute path for hook script %q: %v", script, err)
		return
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		logs.Warn("Hook script not found or is a directory: %q", abs)
		return
	}
	logs.Debug("Running hook script %q for event %q", abs, event)

	cmd := exec.Command(abs, event, arg)
	done := make(chan error, 1)
	go func() {
		out, e := cmd.CombinedOutput()
		if e != nil {
			logs.Warn("Hook script %q failed: %v\nOutput: %s", abs, e, string(out))
		} else {
			logs.Debug("Hook script %q finished.\nOutput: %s", abs, string(out))
		}
		done <- e
	}()

	select {
	case <-time.After(30 * time.Second):
		logs.Warn("Hook script %q timed out after 30s.", abs)
		_ = cmd.Process.Kill()
	case <-done:
	}
}
