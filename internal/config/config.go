package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyManifestURL       = "manifest.url"
	KeyManifestPath      = "manifest.path"
	KeyStateDir          = "paths.state_dir"
	KeyInstallDir        = "paths.install_dir"
	KeySelfRemotePath    = "self.remote_path"
	KeySelfLocalPath     = "self.local_path"
	KeyInterruptWindow   = "interrupt.window"
	KeyInterruptKey      = "interrupt.key"
	KeyMenuTimeout       = "menu.timeout"
	KeyRecoveryDelay     = "recovery.delay"
	KeyRestartCommand    = "restart.command"
	KeyLaunchInterpreter = "launch.interpreter"
	KeyHTTPTimeout       = "http.timeout"
	KeyHTTPToken         = "http.token"
	KeyHTTPUserAgent     = "http.user_agent"
)

// Keys lists every recognized config key.
var Keys = []string{
	KeyManifestURL, KeyManifestPath, KeyStateDir, KeyInstallDir,
	KeySelfRemotePath, KeySelfLocalPath, KeyInterruptWindow, KeyInterruptKey,
	KeyMenuTimeout, KeyRecoveryDelay, KeyRestartCommand, KeyLaunchInterpreter,
	KeyHTTPTimeout, KeyHTTPToken, KeyHTTPUserAgent,
}

// IsKey reports whether key is a recognized config key.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// explicitFile is set by the --config flag.
var explicitFile string

// Settings is the resolved supervisor configuration.
type Settings struct {
	ManifestURL       string
	ManifestPath      string
	StateDir          string
	InstallDir        string
	SelfRemotePath    string
	SelfLocalPath     string // empty means the running executable
	InterruptWindow   time.Duration
	InterruptKey      string
	MenuTimeout       time.Duration
	RecoveryDelay     time.Duration
	RestartCommand    []string
	LaunchInterpreter []string
	HTTPTimeout       time.Duration
	HTTPToken         string
	UserAgent         string
}

// Dir returns the path to the config directory (~/.bootkeeper/).
// BOOTKEEPER_HOME overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	if explicitFile != "" {
		return explicitFile
	}
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// SetFile overrides the config file location.
func SetFile(path string) {
	explicitFile = path
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.Reset()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func registerDefaults() {
	dir := Dir()
	viper.SetDefault(KeyManifestURL, branding.ManifestURL())
	viper.SetDefault(KeyManifestPath, "manifest.json")
	viper.SetDefault(KeyStateDir, filepath.Join(dir, "state"))
	viper.SetDefault(KeyInstallDir, filepath.Join(dir, "installed"))
	viper.SetDefault(KeySelfRemotePath, branding.CLIName())
	viper.SetDefault(KeySelfLocalPath, "")
	viper.SetDefault(KeyInterruptWindow, 3*time.Second)
	viper.SetDefault(KeyInterruptKey, "m")
	viper.SetDefault(KeyMenuTimeout, 60*time.Second)
	viper.SetDefault(KeyRecoveryDelay, 5*time.Second)
	viper.SetDefault(KeyRestartCommand, []string{})
	viper.SetDefault(KeyLaunchInterpreter, []string{})
	viper.SetDefault(KeyHTTPTimeout, 30*time.Second)
	viper.SetDefault(KeyHTTPToken, "")
	viper.SetDefault(KeyHTTPUserAgent, branding.UserAgent())
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// LoadSettings resolves and validates the settings from the loaded config.
// Load must be called first.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		ManifestURL:       viper.GetString(KeyManifestURL),
		ManifestPath:      viper.GetString(KeyManifestPath),
		StateDir:          os.ExpandEnv(viper.GetString(KeyStateDir)),
		InstallDir:        os.ExpandEnv(viper.GetString(KeyInstallDir)),
		SelfRemotePath:    viper.GetString(KeySelfRemotePath),
		SelfLocalPath:     os.ExpandEnv(viper.GetString(KeySelfLocalPath)),
		InterruptWindow:   viper.GetDuration(KeyInterruptWindow),
		InterruptKey:      viper.GetString(KeyInterruptKey),
		MenuTimeout:       viper.GetDuration(KeyMenuTimeout),
		RecoveryDelay:     viper.GetDuration(KeyRecoveryDelay),
		RestartCommand:    viper.GetStringSlice(KeyRestartCommand),
		LaunchInterpreter: viper.GetStringSlice(KeyLaunchInterpreter),
		HTTPTimeout:       viper.GetDuration(KeyHTTPTimeout),
		HTTPToken:         os.ExpandEnv(viper.GetString(KeyHTTPToken)),
		UserAgent:         viper.GetString(KeyHTTPUserAgent),
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// Validate checks the settings for errors.
func (s *Settings) Validate() error {
	if s.ManifestURL == "" {
		return fmt.Errorf("%s is required", KeyManifestURL)
	}
	u, err := url.Parse(s.ManifestURL)
	if err != nil {
		return fmt.Errorf("%s: %w", KeyManifestURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https: %s", KeyManifestURL, s.ManifestURL)
	}
	if s.ManifestPath == "" {
		return fmt.Errorf("%s is required", KeyManifestPath)
	}
	if s.StateDir == "" {
		return fmt.Errorf("%s is required", KeyStateDir)
	}
	if s.InstallDir == "" {
		return fmt.Errorf("%s is required", KeyInstallDir)
	}
	if s.SelfRemotePath == "" {
		return fmt.Errorf("%s is required", KeySelfRemotePath)
	}
	if strings.TrimSpace(s.InterruptKey) == "" {
		return fmt.Errorf("%s must not be empty", KeyInterruptKey)
	}

	for key, d := range map[string]time.Duration{
		KeyInterruptWindow: s.InterruptWindow,
		KeyMenuTimeout:     s.MenuTimeout,
		KeyRecoveryDelay:   s.RecoveryDelay,
		KeyHTTPTimeout:     s.HTTPTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative: %s", key, d)
		}
	}

	return nil
}

// StateFile returns the path of a file inside the state directory.
func (s *Settings) StateFile(name string) string {
	return filepath.Join(s.StateDir, name)
}
