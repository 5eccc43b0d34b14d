// Package branding provides compile-time identity values for the supervisor.
//
// Device images override branding.yaml before `make build`; Go's //go:embed
// bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	ManifestURL string `yaml:"manifest_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "bootkeeper",
			DisplayName: "Bootkeeper",
			Description: "Self-updating bootstrap supervisor for game devices",
			HomeDir:     ".bootkeeper",
			EnvPrefix:   "BOOTKEEPER",
			GoModule:    "github.com/agentx-labs/bootkeeper",
			ManifestURL: "https://updates.bootkeeper.dev/stable/",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "bootkeeper").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".bootkeeper").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "BOOTKEEPER").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// ManifestURL returns the default base URL the manifest and bundle files are
// served from.
func ManifestURL() string { load(); return defaults.ManifestURL }

// UserAgent returns the User-Agent header sent with every download.
func UserAgent() string { load(); return defaults.CLIName + "-supervisor" }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "BOOTKEEPER_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
