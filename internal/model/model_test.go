package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"active", "submitted", "merged", "abandoned"} {
		s, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(s))
	}

	_, err := ParseStatus("done")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.True(t, StatusMerged.IsTerminal())
	assert.True(t, StatusAbandoned.IsTerminal())
}

func TestValidSpecID(t *testing.T) {
	assert.True(t, ValidSpecID("009-multi-repo-stacked"))
	assert.True(t, ValidSpecID("123-x"))

	assert.False(t, ValidSpecID("9-short-number"))
	assert.False(t, ValidSpecID("009-Upper-Case"))
	assert.False(t, ValidSpecID("009_snake_case"))
	assert.False(t, ValidSpecID("no-number"))
	assert.False(t, ValidSpecID("009-"))
	assert.False(t, ValidSpecID(""))
}

func TestEntryAndDependents(t *testing.T) {
	m := NewMapping()
	m.Branches = []BranchEntry{
		{Name: "a", SpecID: "001-first", BaseBranch: "main", Status: StatusActive},
		{Name: "b", SpecID: "001-first", BaseBranch: "a", Status: StatusActive},
		{Name: "c", SpecID: "002-second", BaseBranch: "a", Status: StatusActive},
	}

	require.NotNil(t, m.Entry("b"))
	assert.Equal(t, "a", m.Entry("b").BaseBranch)
	assert.Nil(t, m.Entry("zz"))

	assert.ElementsMatch(t, []string{"b", "c"}, m.Dependents("a"))
	assert.Empty(t, m.Dependents("c"))
}
