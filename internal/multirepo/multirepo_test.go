package multirepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speck/internal/model"
	"speck/internal/stack"
	"speck/internal/store"
)

// fakeRepo creates a directory that passes the .git presence check.
func fakeRepo(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func link(t *testing.T, root, child, name string) {
	t.Helper()
	require.NoError(t, LinkChild(root, child, name, ""))
}

func TestDetectContextSingleRepo(t *testing.T) {
	repo := fakeRepo(t, t.TempDir(), "solo")

	ctx, err := DetectContext(repo)
	require.NoError(t, err)
	assert.Equal(t, SingleRepo, ctx.Kind)
	assert.Equal(t, repo, ctx.RootPath)
}

func TestLinkMakesRootAndChildContexts(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	child := fakeRepo(t, base, "svc-a")

	require.NoError(t, LinkChild(root, child, "svc-a", "007-multi-repo-monorepo-support"))

	rootCtx, err := DetectContext(root)
	require.NoError(t, err)
	assert.Equal(t, MultiRepoRoot, rootCtx.Kind)

	childCtx, err := DetectContext(child)
	require.NoError(t, err)
	assert.Equal(t, MultiRepoChild, childCtx.Kind)
	assert.Equal(t, "007-multi-repo-monorepo-support", childCtx.ParentSpecID)
	assert.False(t, childCtx.Orphaned)
	assert.True(t, samePath(root, childCtx.RootPath))
}

func TestLinkRejectsBadParentSpec(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	child := fakeRepo(t, base, "svc-a")

	err := LinkChild(root, child, "svc-a", "not a spec")
	assert.Error(t, err)
}

func TestBrokenRootLinkFailsFast(t *testing.T) {
	base := t.TempDir()
	child := fakeRepo(t, base, "svc-a")
	speckDir := filepath.Join(child, store.SpeckDirName)
	require.NoError(t, os.MkdirAll(speckDir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), filepath.Join(speckDir, RootLinkName)))

	_, err := DetectContext(child)
	var cerr *ContextError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), RootLinkName)
	// Fail fast means no silent single-repo fallback; the hint names a fix.
	assert.Contains(t, cerr.Error(), "speck link")
}

func TestUninspectableSpeckDirFailsFast(t *testing.T) {
	repo := fakeRepo(t, t.TempDir(), "solo")
	// A regular file where the .speck directory belongs makes symlink
	// inspection fail with ENOTDIR, the same branch a permission error
	// takes. That must surface, not degrade to single-repo.
	require.NoError(t, os.WriteFile(filepath.Join(repo, store.SpeckDirName), []byte("junk"), 0o644))

	_, err := DetectContext(repo)
	var cerr *ContextError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), store.SpeckDirName)
}

func TestDiscoverSkipsNonGitTargets(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	child := fakeRepo(t, base, "svc-a")
	notARepo := filepath.Join(base, "plain-dir")
	require.NoError(t, os.MkdirAll(notARepo, 0o755))

	link(t, root, child, "svc-a")
	reposDir := filepath.Join(root, store.SpeckDirName, ReposDirName)
	require.NoError(t, os.Symlink(notARepo, filepath.Join(reposDir, "plain")))

	refs, warnings, err := DiscoverChildRepos(root)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "svc-a", refs[0].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not a git repository")
}

func TestDiscoverDanglingLinkIsContextError(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	reposDir := filepath.Join(root, store.SpeckDirName, ReposDirName)
	require.NoError(t, os.MkdirAll(reposDir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), filepath.Join(reposDir, "ghost")))

	_, _, err := DiscoverChildRepos(root)
	var cerr *ContextError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "ghost")
}

func TestAggregateKeepsReposSeparate(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	childA := fakeRepo(t, base, "svc-a")
	childB := fakeRepo(t, base, "svc-b")
	link(t, root, childA, "svc-a")
	link(t, root, childB, "svc-b")

	rootMapping := model.NewMapping()
	require.NoError(t, stack.AddBranch(rootMapping, model.BranchEntry{
		Name: "root-branch", SpecID: "001-root-spec", BaseBranch: "main",
	}))
	require.NoError(t, store.Save(root, rootMapping))

	aMapping := model.NewMapping()
	require.NoError(t, stack.AddBranch(aMapping, model.BranchEntry{
		Name: "a-branch", SpecID: "001-root-spec", BaseBranch: "main",
	}))
	require.NoError(t, store.Save(childA, aMapping))
	// svc-b has no store at all.

	agg, err := AggregateStores(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"svc-a", "svc-b"}, agg.ChildNames())
	assert.Equal(t, []string{"root-branch"}, agg.Root.SpecIndex["001-root-spec"])
	assert.Equal(t, []string{"a-branch"}, agg.Children["svc-a"].SpecIndex["001-root-spec"])

	// A child without a store still appears, as an empty mapping.
	require.Contains(t, agg.Children, "svc-b")
	assert.Empty(t, agg.Children["svc-b"].Branches)

	// Indexes stay per-repository even when spec ids coincide.
	assert.Len(t, agg.Root.SpecIndex["001-root-spec"], 1)
	assert.Len(t, agg.Children["svc-a"].SpecIndex["001-root-spec"], 1)
}

func TestCrossRepoBaseRejectedWithAlternatives(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	childA := fakeRepo(t, base, "svc-a")
	childB := fakeRepo(t, base, "svc-b")
	link(t, root, childA, "svc-a")
	link(t, root, childB, "svc-b")

	aMapping := model.NewMapping()
	require.NoError(t, stack.AddBranch(aMapping, model.BranchEntry{
		Name: "feature/only-in-a", SpecID: "001-root-spec", BaseBranch: "main",
	}))
	require.NoError(t, store.Save(childA, aMapping))

	ctxB, err := DetectContext(childB)
	require.NoError(t, err)

	err = CheckBaseNotCrossRepo(ctxB, "feature/only-in-a")
	var xerr *CrossRepoError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "feature/only-in-a", xerr.Base)
	assert.Equal(t, "svc-a", xerr.FoundIn)
	// The rejection enumerates the supported alternatives.
	assert.Contains(t, xerr.Error(), "merge")
	assert.Contains(t, xerr.Error(), "shared contract")
	assert.Contains(t, xerr.Error(), "merge order")

	// A name nobody owns is not a cross-repo error.
	assert.NoError(t, CheckBaseNotCrossRepo(ctxB, "feature/nowhere"))
}

func TestUnlinkLeavesOrphanedStore(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	child := fakeRepo(t, base, "svc-a")
	link(t, root, child, "svc-a")

	m := model.NewMapping()
	require.NoError(t, stack.AddBranch(m, model.BranchEntry{
		Name: "a-branch", SpecID: "001-root-spec", BaseBranch: "main",
	}))
	require.NoError(t, store.Save(child, m))

	orphaned, err := UnlinkChild(root, "svc-a")
	require.NoError(t, err)
	assert.Equal(t, store.Path(child), orphaned)

	// The store file survives the unlink.
	assert.True(t, store.Exists(child))

	// And the root no longer sees the child.
	agg, err := AggregateStores(root)
	require.NoError(t, err)
	assert.Empty(t, agg.Children)
}

func TestUnlinkUnknownChild(t *testing.T) {
	root := fakeRepo(t, t.TempDir(), "root")
	_, err := UnlinkChild(root, "nope")
	assert.Error(t, err)
}

func TestOrphanFlagOnChildAfterManualRootCleanup(t *testing.T) {
	base := t.TempDir()
	root := fakeRepo(t, base, "root")
	child := fakeRepo(t, base, "svc-a")
	link(t, root, child, "svc-a")

	// Simulate a root whose link was removed by hand, leaving the child's
	// back-link in place.
	require.NoError(t, os.Remove(filepath.Join(root, store.SpeckDirName, ReposDirName, "svc-a")))

	ctx, err := DetectContext(child)
	require.NoError(t, err)
	assert.Equal(t, MultiRepoChild, ctx.Kind)
	assert.True(t, ctx.Orphaned)
}
