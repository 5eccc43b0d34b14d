package userdata

import (
	"os"
	"path/filepath"
)

// File name constants for the state directory.
const (
	SelectionFile = "selection.yaml"
)

// Permission constants.
const (
	DirPermSecure os.FileMode = 0700
	DirPermNormal os.FileMode = 0755
)

// SelectionPath returns the selection document path inside stateDir.
func SelectionPath(stateDir string) string {
	return filepath.Join(stateDir, SelectionFile)
}

// InstallPath resolves a manifest local name against installDir.
// Absolute names are returned unchanged.
func InstallPath(installDir, localName string) string {
	localName = filepath.FromSlash(localName)
	if filepath.IsAbs(localName) {
		return localName
	}
	return filepath.Join(installDir, localName)
}
