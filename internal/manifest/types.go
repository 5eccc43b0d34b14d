package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/agentx-labs/bootkeeper/internal/digest"
)

// Entry is one installable script bundle.
type Entry struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	RemotePath  string `yaml:"file" json:"file"`
	LocalPath   string `yaml:"local_name" json:"local_name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`

	// IsDefault is derived from the manifest's default id.
	IsDefault bool `yaml:"-" json:"-"`
}

// DisplayName returns the entry name, falling back to its id.
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Manifest is the ordered set of entries published by the update server.
type Manifest struct {
	Entries           []Entry `yaml:"scripts" json:"scripts"`
	DefaultID         string  `yaml:"default" json:"default"`
	SupervisorVersion string  `yaml:"supervisor_version,omitempty" json:"supervisor_version,omitempty"`
}

// Group is a run of entries sharing a category.
type Group struct {
	Category string
	Entries  []Entry
}

// UncategorizedLabel is used for entries without a category.
const UncategorizedLabel = "other"

// Lookup returns the entry with the given id.
func (m *Manifest) Lookup(id string) (*Entry, bool) {
	for i := range m.Entries {
		if m.Entries[i].ID == id {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Default returns the declared default entry, or the first entry when the
// default id does not resolve. Returns nil for an empty manifest.
func (m *Manifest) Default() *Entry {
	if e, ok := m.Lookup(m.DefaultID); ok {
		return e
	}
	if len(m.Entries) == 0 {
		return nil
	}
	return &m.Entries[0]
}

// IDs returns the entry ids in manifest order.
func (m *Manifest) IDs() []string {
	ids := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Groups returns the entries grouped by category. Groups appear in the order
// their category is first seen; entries keep manifest order within a group.
func (m *Manifest) Groups() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range m.Entries {
		cat := e.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, Group{Category: cat})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Canonical returns the canonical serialization used for change detection
// and for the on-disk cache. It is itself a valid manifest document.
func (m *Manifest) Canonical() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}
	return data, nil
}

// Digest returns the digest of the canonical serialization.
func (m *Manifest) Digest() (digest.Digest, error) {
	data, err := m.Canonical()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Sum(data), nil
}

// AddedSince returns the ids present in m but absent from prev.
func (m *Manifest) AddedSince(prev *Manifest) []string {
	if prev == nil {
		return nil
	}
	var added []string
	for _, e := range m.Entries {
		if _, ok := prev.Lookup(e.ID); !ok {
			added = append(added, e.ID)
		}
	}
	return added
}
