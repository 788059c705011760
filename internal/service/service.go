// Package service orchestrates one logical transaction per command:
// detect context, load the store, run engine operations, save, fire hooks.
// A Service is built per invocation; nothing here is a process-wide
// singleton.
package service

import (
	"fmt"
	"os"

	"speck/internal/git"
	"speck/internal/multirepo"
)

// GitClient is the slice of the git CLI the service needs. *git.Client
// implements it; tests substitute fakes.
type GitClient interface {
	IsGitRepo() bool
	CurrentBranch() (string, error)
	DefaultBranch() (string, error)
	ListBranches() ([]string, error)
	BranchExists(name string) (bool, error)
	CreateBranch(name, base string) error
	Checkout(name string) error
	CreateWorktree(path, branch string) error
	RenameBranch(oldName, newName string) error
	MergedBranches(base string) ([]string, error)
	Rebase(branch, onto string) error
	HasRemote() bool
}

// Service carries the per-invocation context for one repository.
type Service struct {
	RepoRoot string
	Ctx      *multirepo.Context
	Git      GitClient
}

// New builds a service for the current working directory, resolving the
// enclosing work-tree root so commands behave the same from any
// subdirectory of the repository.
func New() (*Service, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	g := git.New(cwd)
	if !g.IsGitRepo() {
		return nil, fmt.Errorf("%s is not inside a git repository; run `git init` or cd into one", cwd)
	}
	root, err := g.TopLevel()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the repository root: %w", err)
	}
	return NewAt(root, git.New(root))
}

// NewAt builds a service for an explicit repository root with an explicit
// git client. Context detection runs exactly once, here.
func NewAt(repoRoot string, g GitClient) (*Service, error) {
	if !g.IsGitRepo() {
		return nil, fmt.Errorf("%s is not inside a git repository; run `git init` or cd into one", repoRoot)
	}
	ctx, err := multirepo.DetectContext(repoRoot)
	if err != nil {
		return nil, err
	}
	return &Service{RepoRoot: repoRoot, Ctx: ctx, Git: g}, nil
}
