// Package model defines the persisted branch-mapping schema: one store per
// repository, tracking every stacked branch, its base, its spec linkage, and
// PR state.
package model

import (
	"fmt"
	"regexp"
	"time"
)

// Schema versions for the persisted store. VersionLegacy predates multi-repo
// support (no parentSpecId on entries); VersionCurrent is what Save writes.
const (
	VersionLegacy  = "1.0.0"
	VersionCurrent = "1.1.0"
)

// Status is the lifecycle state of a tracked branch. Merged and Abandoned are
// terminal: no transition away from them is permitted.
type Status string

const (
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
	StatusMerged    Status = "merged"
	StatusAbandoned Status = "abandoned"
)

// ParseStatus validates a user-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusSubmitted, StatusMerged, StatusAbandoned:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q (valid: active, submitted, merged, abandoned)", s)
}

// IsTerminal reports whether no further status transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusMerged || s == StatusAbandoned
}

var specIDPattern = regexp.MustCompile(`^[0-9]{3}-[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSpecID reports whether id matches the NNN-kebab-name spec id format.
func ValidSpecID(id string) bool {
	return specIDPattern.MatchString(id)
}

// BranchEntry is one tracked branch in a repository's store.
type BranchEntry struct {
	Name       string    `json:"name"`
	SpecID     string    `json:"specId"`
	BaseBranch string    `json:"baseBranch"`
	Status     Status    `json:"status"`
	PR         *int      `json:"pr"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// ParentSpecID is only set on entries in a multi-repo child repository,
	// naming the root-level spec this child's work implements.
	ParentSpecID string `json:"parentSpecId,omitempty"`
}

// BranchMapping is the store for one repository. SpecIndex is a derived cache
// over Branches (spec id -> branch names, in Branches order); it must always
// be reproducible from the Branches slice and is never authoritative.
type BranchMapping struct {
	Version   string              `json:"version"`
	Branches  []BranchEntry       `json:"branches"`
	SpecIndex map[string][]string `json:"specIndex"`
}

// NewMapping returns an empty store at the current schema version. This is
// what Load hands back when a repository has no store file yet.
func NewMapping() *BranchMapping {
	return &BranchMapping{
		Version:   VersionCurrent,
		Branches:  []BranchEntry{},
		SpecIndex: map[string][]string{},
	}
}

// Entry returns a pointer to the named entry, or nil.
func (m *BranchMapping) Entry(name string) *BranchEntry {
	for i := range m.Branches {
		if m.Branches[i].Name == name {
			return &m.Branches[i]
		}
	}
	return nil
}

// Dependents returns the names of entries whose BaseBranch is name.
func (m *BranchMapping) Dependents(name string) []string {
	var out []string
	for i := range m.Branches {
		if m.Branches[i].BaseBranch == name {
			out = append(out, m.Branches[i].Name)
		}
	}
	return out
}
