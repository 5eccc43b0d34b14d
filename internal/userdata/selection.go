package userdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/faults"
	"github.com/agentx-labs/bootkeeper/internal/storage"
	"go.yaml.in/yaml/v3"
)

// Selection is the operator's persisted bundle choice.
type Selection struct {
	SelectedID string    `yaml:"selected_script_id"`
	SelectedAt time.Time `yaml:"selected_at,omitempty"`
}

// SelectionStore persists the Selection as a yaml document.
type SelectionStore struct {
	store storage.Storage
	path  string
	now   func() time.Time
}

// NewSelectionStore returns a SelectionStore for the document at path.
func NewSelectionStore(store storage.Storage, path string) *SelectionStore {
	return &SelectionStore{store: store, path: path, now: time.Now}
}

// Path returns the document path.
func (s *SelectionStore) Path() string {
	return s.path
}

// Load reads the persisted selection.
// Returns nil, nil if nothing is persisted. A document that does not decode
// or names no script is reported as nil with an error wrapping
// faults.ErrParse; callers treat it as absent.
func (s *SelectionStore) Load() (*Selection, error) {
	data, err := s.store.ReadFile(s.path)
	if storage.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sel Selection
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return nil, faults.Wrap(faults.ErrParse, "parsing selection", err)
	}
	sel.SelectedID = strings.TrimSpace(sel.SelectedID)
	if sel.SelectedID == "" {
		return nil, faults.Wrap(faults.ErrParse, "parsing selection", fmt.Errorf("%s has no selected_script_id", s.path))
	}
	return &sel, nil
}

// Save overwrites the persisted selection with id.
func (s *SelectionStore) Save(id string) error {
	sel := Selection{SelectedID: id, SelectedAt: s.now().UTC().Truncate(time.Second)}
	data, err := yaml.Marshal(&sel)
	if err != nil {
		return fmt.Errorf("marshaling selection: %w", err)
	}
	return s.store.WriteFile(s.path, data)
}
