package updater

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two version strings using semver.
// Returns -1 if current < other, 0 if equal, 1 if current > other.
// A leading "v" is ignored.
func CompareVersions(current, other string) (int, error) {
	cv, err := parseSemver(current)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", current, err)
	}
	ov, err := parseSemver(other)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", other, err)
	}
	return cv.Compare(ov), nil
}

// IsSupervisorNewer reports whether the manifest advertises a supervisor
// version newer than current. An empty advertised version never is.
func IsSupervisorNewer(current, advertised string) (bool, error) {
	if advertised == "" {
		return false, nil
	}
	cmp, err := CompareVersions(current, advertised)
	if err != nil {
		return false, err
	}
	return cmp == -1, nil
}

// NormalizeVersion renders v in canonical semver form, or returns it
// unchanged when it does not parse.
func NormalizeVersion(v string) string {
	sv, err := parseSemver(v)
	if err != nil {
		return v
	}
	return sv.String()
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}
