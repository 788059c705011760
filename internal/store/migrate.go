package store

import (
	"encoding/json"
	"fmt"
	"time"

	"speck/internal/model"
	"speck/internal/stack"
)

// The file is parsed into a version-tagged raw shape first, then migrated
// once into the canonical in-memory model. Business logic never sees a
// legacy shape or probes for optional fields.

type rawEntry struct {
	Name         string `json:"name"`
	SpecID       string `json:"specId"`
	BaseBranch   string `json:"baseBranch"`
	Status       string `json:"status"`
	PR           *int   `json:"pr"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	ParentSpecID string `json:"parentSpecId,omitempty"`
}

type rawMapping struct {
	Version   string              `json:"version"`
	Branches  []rawEntry          `json:"branches"`
	SpecIndex map[string][]string `json:"specIndex"`
}

func decode(path string, content []byte) (*model.BranchMapping, Report, error) {
	var rep Report

	var raw rawMapping
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, rep, &StructuralError{Path: path, Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	switch raw.Version {
	case model.VersionLegacy:
		// Legacy files predate parentSpecId; the field is simply absent.
		// Migration is additive: bump the version, nothing else.
		rep.Migrated = true
	case model.VersionCurrent:
	case "":
		return nil, rep, &StructuralError{Path: path, Reason: "missing required field \"version\""}
	default:
		return nil, rep, &StructuralError{Path: path, Reason: fmt.Sprintf("unknown schema version %q", raw.Version)}
	}

	m := model.NewMapping()
	now := time.Now().UTC()
	for i, re := range raw.Branches {
		if re.Name == "" || re.SpecID == "" || re.BaseBranch == "" {
			return nil, rep, &StructuralError{
				Path:   path,
				Reason: fmt.Sprintf("branch entry %d is missing a required field (name/specId/baseBranch)", i),
			}
		}
		status, err := model.ParseStatus(re.Status)
		if err != nil {
			return nil, rep, &StructuralError{
				Path:   path,
				Reason: fmt.Sprintf("branch entry %q: %v", re.Name, err),
			}
		}

		entry := model.BranchEntry{
			Name:         re.Name,
			SpecID:       re.SpecID,
			BaseBranch:   re.BaseBranch,
			Status:       status,
			PR:           re.PR,
			ParentSpecID: re.ParentSpecID,
		}
		entry.CreatedAt, entry.UpdatedAt = parseTimestamps(re.CreatedAt, re.UpdatedAt, now, &rep)
		m.Branches = append(m.Branches, entry)
	}

	// The index is a cache; drift is repaired, never fatal.
	m.SpecIndex = raw.SpecIndex
	if m.SpecIndex == nil {
		m.SpecIndex = map[string][]string{}
	}
	if !stack.SpecIndexConsistent(m) {
		stack.RebuildSpecIndex(m)
		rep.RepairedIndex = true
	}
	return m, rep, nil
}

// parseTimestamps rewrites unparseable timestamps with now, counting each
// repair once per entry.
func parseTimestamps(created, updated string, now time.Time, rep *Report) (time.Time, time.Time) {
	repaired := false
	c, err := time.Parse(time.RFC3339, created)
	if err != nil {
		c = now
		repaired = true
	}
	u, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		u = now
		repaired = true
	}
	if repaired {
		rep.RepairedTimestamps++
	}
	return c, u
}
