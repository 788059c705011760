package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speck/internal/model"
	"speck/internal/stack"
)

func writeStore(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, SpeckDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
}

func TestLoadMissingFileReturnsEmptyMapping(t *testing.T) {
	root := t.TempDir()

	m, rep, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.True(t, rep.Created)
	assert.Equal(t, model.VersionCurrent, m.Version)
	assert.Empty(t, m.Branches)
	assert.NotNil(t, m.SpecIndex)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	m := model.NewMapping()
	require.NoError(t, stack.AddBranch(m, model.BranchEntry{
		Name: "feature/auth-db", SpecID: "009-multi-repo-stacked", BaseBranch: "main",
	}))
	pr := 12
	require.NoError(t, stack.UpdateBranchStatus(m, "feature/auth-db", model.StatusSubmitted, &pr))
	require.NoError(t, Save(root, m))

	got, rep, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.False(t, rep.Dirty())
	assert.Equal(t, m.Version, got.Version)
	require.Len(t, got.Branches, 1)
	assert.Equal(t, "feature/auth-db", got.Branches[0].Name)
	require.NotNil(t, got.Branches[0].PR)
	assert.Equal(t, 12, *got.Branches[0].PR)
	assert.Equal(t, m.SpecIndex, got.SpecIndex)
	assert.True(t, m.Branches[0].CreatedAt.Equal(got.Branches[0].CreatedAt))
}

const legacyFile = `{
  "version": "1.0.0",
  "branches": [
    {
      "name": "feature/auth-db",
      "specId": "009-multi-repo-stacked",
      "baseBranch": "main",
      "status": "active",
      "pr": null,
      "createdAt": "2025-11-19T00:00:00.000Z",
      "updatedAt": "2025-11-19T00:00:00.000Z"
    }
  ],
  "specIndex": { "009-multi-repo-stacked": ["feature/auth-db"] }
}`

func TestLegacyMigration(t *testing.T) {
	root := t.TempDir()
	writeStore(t, root, legacyFile)

	m, rep, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.True(t, rep.Migrated)
	assert.Equal(t, model.VersionCurrent, m.Version)
	require.Len(t, m.Branches, 1)
	assert.Empty(t, m.Branches[0].ParentSpecID)

	// Persisting then reloading must be a stable fixpoint: no second
	// migration, identical content.
	require.NoError(t, Save(root, m))
	again, rep2, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.False(t, rep2.Migrated)
	assert.Equal(t, m, again)

	// The written file must not have grown a parentSpecId.
	raw, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "parentSpecId")
}

func TestStaleSpecIndexIsRebuilt(t *testing.T) {
	root := t.TempDir()
	writeStore(t, root, `{
  "version": "1.1.0",
  "branches": [
    {"name": "a", "specId": "001-first", "baseBranch": "main", "status": "active", "pr": null,
     "createdAt": "2025-11-19T00:00:00Z", "updatedAt": "2025-11-19T00:00:00Z"}
  ],
  "specIndex": { "001-first": ["a", "ghost"] }
}`)

	m, rep, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.True(t, rep.RepairedIndex)
	assert.Equal(t, []string{"a"}, m.SpecIndex["001-first"])
	assert.True(t, stack.SpecIndexConsistent(m))
}

func TestInvalidTimestampsRewritten(t *testing.T) {
	root := t.TempDir()
	writeStore(t, root, `{
  "version": "1.1.0",
  "branches": [
    {"name": "a", "specId": "001-first", "baseBranch": "main", "status": "active", "pr": null,
     "createdAt": "yesterday", "updatedAt": ""}
  ],
  "specIndex": { "001-first": ["a"] }
}`)

	m, rep, err := LoadWithReport(root)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.RepairedTimestamps)
	assert.False(t, m.Branches[0].CreatedAt.IsZero())
	assert.False(t, m.Branches[0].UpdatedAt.IsZero())
}

func TestStructuralErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `{"version": "1.1.0", "branches": [`,
		"missing version": `{"branches": [], "specIndex": {}}`,
		"unknown version": `{"version": "9.9.9", "branches": [], "specIndex": {}}`,
		"missing field": `{"version": "1.1.0", "branches": [
			{"specId": "001-first", "baseBranch": "main", "status": "active"}], "specIndex": {}}`,
		"bad status": `{"version": "1.1.0", "branches": [
			{"name": "a", "specId": "001-first", "baseBranch": "main", "status": "done"}], "specIndex": {}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeStore(t, root, content)

			_, _, err := LoadWithReport(root)
			var serr *StructuralError
			require.ErrorAs(t, err, &serr)
			// Every structural error points at version-control recovery.
			assert.Contains(t, serr.Error(), "version control")
		})
	}
}

func TestSaveIsAtomicOverExisting(t *testing.T) {
	root := t.TempDir()
	m := model.NewMapping()
	require.NoError(t, stack.AddBranch(m, model.BranchEntry{
		Name: "a", SpecID: "001-first", BaseBranch: "main",
	}))
	require.NoError(t, Save(root, m))
	require.NoError(t, stack.AddBranch(m, model.BranchEntry{
		Name: "b", SpecID: "001-first", BaseBranch: "a",
	}))
	require.NoError(t, Save(root, m))

	// No temp files may survive a save.
	entries, err := os.ReadDir(filepath.Join(root, SpeckDirName))
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{FileName}, names)

	// And the final file is valid JSON with both entries.
	raw, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded["branches"], 2)
}

func TestDecodeSnapshot(t *testing.T) {
	m, rep, err := Decode("snapshot.json", []byte(legacyFile))
	require.NoError(t, err)
	assert.True(t, rep.Migrated)
	require.Len(t, m.Branches, 1)
	assert.Equal(t, "feature/auth-db", m.Branches[0].Name)
}
