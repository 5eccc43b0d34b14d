package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BOOTKEEPER_HOME", dir)
	SetFile("")
	t.Cleanup(func() { SetFile("") })
	return dir
}

func TestDir_EnvOverride(t *testing.T) {
	dir := isolate(t)
	if got := Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
	if got := FilePath(); got != filepath.Join(dir, "config.yaml") {
		t.Errorf("FilePath() = %q, want config.yaml under %q", got, dir)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	dir := isolate(t)
	Load()

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}

	if s.ManifestPath != "manifest.json" {
		t.Errorf("ManifestPath = %q, want manifest.json", s.ManifestPath)
	}
	if s.StateDir != filepath.Join(dir, "state") {
		t.Errorf("StateDir = %q, want %q", s.StateDir, filepath.Join(dir, "state"))
	}
	if s.InstallDir != filepath.Join(dir, "installed") {
		t.Errorf("InstallDir = %q, want %q", s.InstallDir, filepath.Join(dir, "installed"))
	}
	if s.InterruptWindow != 3*time.Second {
		t.Errorf("InterruptWindow = %v, want 3s", s.InterruptWindow)
	}
	if s.InterruptKey != "m" {
		t.Errorf("InterruptKey = %q, want m", s.InterruptKey)
	}
	if s.RecoveryDelay != 5*time.Second {
		t.Errorf("RecoveryDelay = %v, want 5s", s.RecoveryDelay)
	}
	if s.SelfRemotePath != "bootkeeper" {
		t.Errorf("SelfRemotePath = %q, want bootkeeper", s.SelfRemotePath)
	}
	if s.SelfLocalPath != "" {
		t.Errorf("SelfLocalPath = %q, want empty", s.SelfLocalPath)
	}
	if len(s.RestartCommand) != 0 {
		t.Errorf("RestartCommand = %v, want empty", s.RestartCommand)
	}
}

func TestLoadSettings_FromFile(t *testing.T) {
	dir := isolate(t)
	content := `manifest:
  url: https://games.example.com/channel/
  path: bundles.json
paths:
  install_dir: /opt/games
interrupt:
  window: 1500ms
  key: S
restart:
  command: [systemctl, reboot]
launch:
  interpreter: [python3, -u]
`
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644)
	Load()

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}

	if s.ManifestURL != "https://games.example.com/channel/" {
		t.Errorf("ManifestURL = %q", s.ManifestURL)
	}
	if s.ManifestPath != "bundles.json" {
		t.Errorf("ManifestPath = %q, want bundles.json", s.ManifestPath)
	}
	if s.InstallDir != "/opt/games" {
		t.Errorf("InstallDir = %q, want /opt/games", s.InstallDir)
	}
	if s.InterruptWindow != 1500*time.Millisecond {
		t.Errorf("InterruptWindow = %v, want 1.5s", s.InterruptWindow)
	}
	if s.InterruptKey != "S" {
		t.Errorf("InterruptKey = %q, want S", s.InterruptKey)
	}
	if !reflect.DeepEqual(s.RestartCommand, []string{"systemctl", "reboot"}) {
		t.Errorf("RestartCommand = %v", s.RestartCommand)
	}
	if !reflect.DeepEqual(s.LaunchInterpreter, []string{"python3", "-u"}) {
		t.Errorf("LaunchInterpreter = %v", s.LaunchInterpreter)
	}
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("manifest:\n  url: https://file.example.com/\n"), 0644)
	t.Setenv("BOOTKEEPER_MANIFEST_URL", "https://env.example.com/")
	t.Setenv("BOOTKEEPER_RESTART_COMMAND", "shutdown -r now")
	Load()

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if s.ManifestURL != "https://env.example.com/" {
		t.Errorf("ManifestURL = %q, want env value", s.ManifestURL)
	}
	if !reflect.DeepEqual(s.RestartCommand, []string{"shutdown", "-r", "now"}) {
		t.Errorf("RestartCommand = %v, want [shutdown -r now]", s.RestartCommand)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad scheme", "manifest:\n  url: ftp://example.com/\n", "http or https"},
		{"negative delay", "recovery:\n  delay: -1s\n", "must not be negative"},
		{"empty key", "interrupt:\n  key: \" \"\n", "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0644)
			Load()

			_, err := LoadSettings()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	dir := isolate(t)
	Load()

	if err := Set(KeyManifestURL, "https://set.example.com/"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	Load()
	if got := Get(KeyManifestURL); got != "https://set.example.com/" {
		t.Errorf("Get after reload = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestSetFile(t *testing.T) {
	isolate(t)
	custom := filepath.Join(t.TempDir(), "device.yaml")
	os.WriteFile(custom, []byte("interrupt:\n  key: x\n"), 0644)
	SetFile(custom)
	Load()

	if got := Get(KeyInterruptKey); got != "x" {
		t.Errorf("Get(interrupt.key) = %q, want x", got)
	}
}

func TestIsKey(t *testing.T) {
	for _, k := range Keys {
		if !IsKey(k) {
			t.Errorf("IsKey(%q) = false", k)
		}
	}
	if IsKey("mirror") {
		t.Error("IsKey(mirror) = true, want false")
	}
}
