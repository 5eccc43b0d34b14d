package userdata

import (
	"path/filepath"
	"testing"
)

func TestSelectionPath(t *testing.T) {
	got := SelectionPath(filepath.Join("var", "state"))
	want := filepath.Join("var", "state", "selection.yaml")
	if got != want {
		t.Errorf("SelectionPath() = %q, want %q", got, want)
	}
}

func TestInstallPath(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "elsewhere", "x.py")

	tests := []struct {
		name  string
		local string
		want  string
	}{
		{"plain", "snake.py", filepath.Join(root, "snake.py")},
		{"nested slash path", "games/snake.py", filepath.Join(root, "games", "snake.py")},
		{"absolute", abs, abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InstallPath(root, tt.local); got != tt.want {
				t.Errorf("InstallPath(%q) = %q, want %q", tt.local, got, tt.want)
			}
		})
	}
}
