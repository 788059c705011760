package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speck/internal/model"
	"speck/internal/stack"
	"speck/internal/store"
)

// fakeGit implements GitClient against in-memory branch state.
type fakeGit struct {
	branches map[string]bool
	merged   map[string]bool
	current  string
	def      string
	remote   bool

	created   []string
	checkouts []string
	rebases   []string
}

func newFakeGit(branches ...string) *fakeGit {
	g := &fakeGit{
		branches: map[string]bool{},
		merged:   map[string]bool{},
		current:  "main",
		def:      "main",
	}
	for _, b := range branches {
		g.branches[b] = true
	}
	return g
}

func (g *fakeGit) IsGitRepo() bool                { return true }
func (g *fakeGit) CurrentBranch() (string, error) { return g.current, nil }
func (g *fakeGit) DefaultBranch() (string, error) { return g.def, nil }
func (g *fakeGit) HasRemote() bool                { return g.remote }
func (g *fakeGit) ListBranches() ([]string, error) {
	var out []string
	for b := range g.branches {
		out = append(out, b)
	}
	return out, nil
}
func (g *fakeGit) BranchExists(name string) (bool, error) { return g.branches[name], nil }
func (g *fakeGit) CreateBranch(name, base string) error {
	g.branches[name] = true
	g.created = append(g.created, name)
	return nil
}
func (g *fakeGit) Checkout(name string) error {
	g.current = name
	g.checkouts = append(g.checkouts, name)
	return nil
}
func (g *fakeGit) CreateWorktree(path, branch string) error { return nil }
func (g *fakeGit) RenameBranch(oldName, newName string) error {
	delete(g.branches, oldName)
	g.branches[newName] = true
	return nil
}
func (g *fakeGit) MergedBranches(base string) ([]string, error) {
	var out []string
	for b := range g.merged {
		out = append(out, b)
	}
	return out, nil
}
func (g *fakeGit) Rebase(branch, onto string) error {
	g.rebases = append(g.rebases, branch+" onto "+onto)
	return nil
}

func newTestService(t *testing.T, g *fakeGit) *Service {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	svc, err := NewAt(root, g)
	require.NoError(t, err)
	return svc
}

func TestCreateBranchHappyPath(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)

	res, err := svc.CreateBranch(CreateOptions{Name: "feature/a", SpecID: "001-first"})
	require.NoError(t, err)
	assert.Equal(t, "main", res.Base)
	assert.Equal(t, model.StatusActive, res.Entry.Status)
	assert.Equal(t, []string{"feature/a"}, g.created)
	assert.Equal(t, []string{"feature/a"}, g.checkouts)

	// Persisted.
	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	require.NotNil(t, m.Entry("feature/a"))

	// No remote: warned, not failed.
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "no git remote")
}

func TestCreateBranchNoCheckout(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)

	_, err := svc.CreateBranch(CreateOptions{Name: "feature/a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	assert.Empty(t, g.checkouts)
}

func TestCreateBranchMissingBase(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)

	_, err := svc.CreateBranch(CreateOptions{Name: "feature/a", SpecID: "001-first", Base: "ghost"})
	var verr *stack.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "ghost")
	// No git branch was created for the rejected entry.
	assert.Empty(t, g.created)
}

func TestCreateBranchRejectedEntryCreatesNoGitBranch(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)

	_, err := svc.CreateBranch(CreateOptions{Name: "feature/a", SpecID: "001-first"})
	require.NoError(t, err)

	_, err = svc.CreateBranch(CreateOptions{Name: "feature/a", SpecID: "002-second"})
	var verr *stack.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"feature/a"}, g.created)
}

func TestUpdateStatusTerminalGuardThroughService(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus("a", model.StatusMerged, nil))
	err = svc.UpdateStatus("a", model.StatusActive, nil)
	var verr *stack.ValidationError
	require.ErrorAs(t, err, &verr)

	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMerged, m.Entry("a").Status)
}

func TestSyncMarksMergedBranches(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	for _, n := range []string{"a", "b", "c"} {
		_, err := svc.CreateBranch(CreateOptions{Name: n, SpecID: "001-first", Base: "main", NoCheckout: true})
		require.NoError(t, err)
	}
	require.NoError(t, svc.UpdateStatus("c", model.StatusAbandoned, nil))

	g.merged["a"] = true
	g.merged["c"] = true

	res, err := svc.Sync()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Marked)
	assert.Equal(t, []string{"c"}, res.Skipped)

	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMerged, m.Entry("a").Status)
	assert.Equal(t, model.StatusActive, m.Entry("b").Status)
	assert.Equal(t, model.StatusAbandoned, m.Entry("c").Status)
}

func TestRemoveWithDependentsThroughService(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	_, err = svc.CreateBranch(CreateOptions{Name: "b", SpecID: "001-first", Base: "a", NoCheckout: true})
	require.NoError(t, err)

	deps, err := svc.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, deps)

	_, err = svc.Remove("a", false)
	assert.Error(t, err)

	warnings, err := svc.Remove("a", true)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Nil(t, m.Entry("a"))
	assert.Equal(t, "a", m.Entry("b").BaseBranch)
}

func TestRebaseUpdatesStoreAndOptionallyGit(t *testing.T) {
	g := newFakeGit("main", "develop")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)

	require.NoError(t, svc.Rebase("a", "develop", false))
	assert.Empty(t, g.rebases)

	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Equal(t, "develop", m.Entry("a").BaseBranch)

	require.NoError(t, svc.Rebase("a", "main", true))
	assert.Equal(t, []string{"a onto main"}, g.rebases)
}

func TestRenameThroughService(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	_, err = svc.CreateBranch(CreateOptions{Name: "b", SpecID: "001-first", Base: "a", NoCheckout: true})
	require.NoError(t, err)

	require.NoError(t, svc.Rename("a", "a2"))
	assert.True(t, g.branches["a2"])
	assert.False(t, g.branches["a"])

	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Nil(t, m.Entry("a"))
	assert.Equal(t, "a2", m.Entry("b").BaseBranch)
}

func TestCheckMergeFeasibility(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	_, err = svc.CreateBranch(CreateOptions{Name: "b", SpecID: "001-first", Base: "a", NoCheckout: true})
	require.NoError(t, err)

	// b's ancestor a is still active.
	err = svc.CheckMergeFeasibility("b")
	var verr *stack.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `"a"`)

	require.NoError(t, svc.UpdateStatus("a", model.StatusMerged, nil))
	assert.NoError(t, svc.CheckMergeFeasibility("b"))

	// A merged branch itself is not mergeable again.
	err = svc.CheckMergeFeasibility("a")
	require.ErrorAs(t, err, &verr)
}

func TestSuggestPRs(t *testing.T) {
	g := newFakeGit("main")
	g.remote = true
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	_, err = svc.CreateBranch(CreateOptions{Name: "b", SpecID: "001-first", Base: "a", NoCheckout: true})
	require.NoError(t, err)

	// a bases on untracked main -> suggested; b waits on a.
	err = svc.SuggestPRs()
	var sugg *SuggestionError
	require.ErrorAs(t, err, &sugg)
	assert.Contains(t, sugg.Error(), "a")
	assert.NotContains(t, sugg.Error(), "b,")

	require.NoError(t, svc.RecordPR("a", 7))
	require.NoError(t, svc.UpdateStatus("a", model.StatusMerged, nil))

	err = svc.SuggestPRs()
	require.ErrorAs(t, err, &sugg)
	assert.Contains(t, sugg.Error(), "b")
}

func TestSuggestPRsWithoutRemoteIsQuiet(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)

	assert.NoError(t, svc.SuggestPRs())
}

func TestExportImportRoundTrip(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)
	_, err = svc.CreateBranch(CreateOptions{Name: "b", SpecID: "001-first", Base: "a", NoCheckout: true})
	require.NoError(t, err)

	snap := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, svc.Export(snap))

	// Import into a fresh repository.
	g2 := newFakeGit("main")
	svc2 := newTestService(t, g2)
	res, err := svc2.Import(snap, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Added)

	// Importing again without force aborts on the first duplicate...
	_, err = svc2.Import(snap, false)
	assert.Error(t, err)

	// ...and with force skips them all.
	res, err = svc2.Import(snap, true)
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Equal(t, []string{"a", "b"}, res.Skipped)
}

func TestImportStripsParentSpecOutsideChildRepos(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)

	// A snapshot taken in a multi-repo child carries parentSpecId.
	snapMapping := model.NewMapping()
	require.NoError(t, stack.AddBranch(snapMapping, model.BranchEntry{
		Name: "feature/a", SpecID: "001-first", BaseBranch: "main",
		ParentSpecID: "009-multi-repo-stacked",
	}))
	out, err := json.MarshalIndent(snapMapping, "", "  ")
	require.NoError(t, err)
	snap := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(snap, out, 0o644))

	res, err := svc.Import(snap, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/a"}, res.Added)

	// This repository is single-repo; the field must not survive the import.
	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	assert.Empty(t, m.Entry("feature/a").ParentSpecID)
}

func TestRepairFixesSeededDrift(t *testing.T) {
	g := newFakeGit("main")
	svc := newTestService(t, g)
	_, err := svc.CreateBranch(CreateOptions{Name: "a", SpecID: "001-first", NoCheckout: true})
	require.NoError(t, err)

	// Seed drift by hand.
	m, err := store.Load(svc.RepoRoot)
	require.NoError(t, err)
	m.SpecIndex = map[string][]string{"001-first": {"a", "ghost"}}
	require.NoError(t, store.Save(svc.RepoRoot, m))

	dirty, err := svc.Repair(true)
	require.NoError(t, err)
	assert.True(t, dirty)

	dirty, err = svc.Repair(false)
	require.NoError(t, err)
	assert.True(t, dirty)

	dirty, err = svc.Repair(true)
	require.NoError(t, err)
	assert.False(t, dirty)
}
