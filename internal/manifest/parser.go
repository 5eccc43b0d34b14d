package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/bootkeeper/internal/faults"
	"go.yaml.in/yaml/v3"
)

// IssuesError lists the schema violations of a rejected manifest.
type IssuesError struct {
	Issues []ValidationIssue
}

func (e *IssuesError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "manifest failed validation: " + strings.Join(parts, "; ")
}

// Parse decodes and validates a manifest document. JSON is the wire format;
// YAML is accepted too since the decoder is a YAML decoder. Every failure
// wraps faults.ErrParse.
func Parse(data []byte) (*Manifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, faults.Wrap(faults.ErrParse, "validating manifest", err)
	}
	if !result.Valid {
		return nil, faults.Wrap(faults.ErrParse, "validating manifest", &IssuesError{Issues: result.Issues})
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, faults.Wrap(faults.ErrParse, "decoding manifest", err)
	}

	seen := make(map[string]bool, len(m.Entries))
	for i := range m.Entries {
		e := &m.Entries[i]
		if seen[e.ID] {
			return nil, faults.Wrap(faults.ErrParse, "decoding manifest", fmt.Errorf("duplicate script id %q", e.ID))
		}
		seen[e.ID] = true

		if !filepath.IsLocal(filepath.FromSlash(e.LocalPath)) {
			return nil, faults.Wrap(faults.ErrParse, "decoding manifest", fmt.Errorf("script %q: local_name %q escapes the install directory", e.ID, e.LocalPath))
		}
	}

	if d := m.Default(); d != nil {
		d.IsDefault = true
	}

	return &m, nil
}
