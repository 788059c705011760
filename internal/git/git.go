// Package git wraps the git CLI commands the branch-stack subsystem needs:
// branch enumeration and creation, merge detection, default-branch and
// current-branch resolution. Every command runs in an explicit repository
// directory.
package git

import (
	"fmt"
	"os/exec"
	"strings"

	"speck/internal/logs"
)

// Client runs git in one repository's working directory.
type Client struct {
	Dir string
}

// New returns a client rooted at dir.
func New(dir string) *Client {
	return &Client{Dir: dir}
}

func (c *Client) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// IsGitRepo reports whether the client's directory is inside a git work
// tree, at any depth.
func (c *Client) IsGitRepo() bool {
	out, err := c.run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// TopLevel returns the root of the enclosing work tree, so commands behave
// identically from any subdirectory.
func (c *Client) TopLevel() (string, error) {
	return c.run("rev-parse", "--show-toplevel")
}

// CurrentBranch returns the checked-out branch (rev-parse --abbrev-ref HEAD).
func (c *Client) CurrentBranch() (string, error) {
	return c.run("rev-parse", "--abbrev-ref", "HEAD")
}

// DefaultBranch resolves origin's HEAD; without a remote it falls back to
// "main".
func (c *Client) DefaultBranch() (string, error) {
	out, err := c.run("symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err != nil {
		logs.Debug("No origin/HEAD in %s; assuming main: %v", c.Dir, err)
		return "main", nil
	}
	// origin/main -> main
	if i := strings.IndexByte(out, '/'); i >= 0 {
		out = out[i+1:]
	}
	return out, nil
}

// ListBranches enumerates local branch names.
func (c *Client) ListBranches() ([]string, error) {
	out, err := c.run("branch", "--list", "--format", "%(refname:short)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// BranchExists reports whether name is a local branch.
func (c *Client) BranchExists(name string) (bool, error) {
	branches, err := c.ListBranches()
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates name at base without checking it out.
func (c *Client) CreateBranch(name, base string) error {
	_, err := c.run("branch", name, base)
	return err
}

// Checkout switches the working tree to name.
func (c *Client) Checkout(name string) error {
	_, err := c.run("checkout", name)
	return err
}

// CreateWorktree adds a worktree for branch at path.
func (c *Client) CreateWorktree(path, branch string) error {
	_, err := c.run("worktree", "add", path, branch)
	return err
}

// RenameBranch renames a local branch.
func (c *Client) RenameBranch(oldName, newName string) error {
	_, err := c.run("branch", "-m", oldName, newName)
	return err
}

// MergedBranches lists local branches already merged into base
// (branch --merged).
func (c *Client) MergedBranches(base string) ([]string, error) {
	out, err := c.run("branch", "--merged", base, "--format", "%(refname:short)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var names []string
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if l != "" && l != base {
			names = append(names, l)
		}
	}
	return names, nil
}

// Rebase rebases branch onto onto. Conflicts abort the rebase and surface
// as an error; speck never resolves them itself.
func (c *Client) Rebase(branch, onto string) error {
	if err := c.Checkout(branch); err != nil {
		return err
	}
	if _, err := c.run("rebase", onto); err != nil {
		c.run("rebase", "--abort") //nolint:errcheck // best effort
		return fmt.Errorf("rebase %s onto %s failed; resolve manually: %w", branch, onto, err)
	}
	return nil
}

// HasRemote reports whether origin is configured.
func (c *Client) HasRemote() bool {
	out, err := c.run("remote")
	if err != nil {
		return false
	}
	for _, r := range strings.Split(out, "\n") {
		if strings.TrimSpace(r) == "origin" {
			return true
		}
	}
	return false
}
