package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agentx-labs/bootkeeper/internal/config"
	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/logging"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/menu"
	"github.com/agentx-labs/bootkeeper/internal/platform"
	"github.com/agentx-labs/bootkeeper/internal/runtime"
	"github.com/agentx-labs/bootkeeper/internal/storage"
	"github.com/agentx-labs/bootkeeper/internal/supervisor"
	"github.com/agentx-labs/bootkeeper/internal/transport"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
)

// wiring builds the supervisor's capabilities from the loaded settings.
type wiring struct {
	settings  *config.Settings
	transport transport.Transport
	store     storage.Storage
	selfPath  string
}

// newWiring resolves settings and capabilities. With readOnly set every
// write through the returned storage fails.
func newWiring(readOnly bool) (*wiring, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	t, err := transport.NewHTTP(s.ManifestURL,
		transport.WithTimeout(s.HTTPTimeout),
		transport.WithToken(s.HTTPToken),
		transport.WithUserAgent(s.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring transport: %w", err)
	}

	selfPath, err := resolveSelfPath(s.SelfLocalPath)
	if err != nil {
		return nil, err
	}

	var store storage.Storage = storage.NewDir(s.InstallDir)
	if readOnly {
		store = storage.ReadOnly(store)
	}

	return &wiring{
		settings:  s,
		transport: t,
		store:     store,
		selfPath:  selfPath,
	}, nil
}

// resolveSelfPath returns the configured supervisor path, or the running
// executable with symlinks resolved.
func resolveSelfPath(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("finding current binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

func (w *wiring) fetcher() *manifest.Fetcher {
	cache := manifest.NewCache(w.store, w.settings.StateFile(manifest.CacheFileName))
	return manifest.NewFetcher(w.transport, cache, w.settings.ManifestPath, logging.Component(logger, "manifest"))
}

func (w *wiring) selections() *userdata.SelectionStore {
	return userdata.NewSelectionStore(w.store, userdata.SelectionPath(w.settings.StateDir))
}

func (w *wiring) updater(dryRun bool) *updater.Updater {
	return updater.New(w.transport, w.store,
		updater.WithLogger(logging.Component(logger, "updater")),
		updater.WithDryRun(dryRun),
	)
}

func (w *wiring) restarter() platform.Restarter {
	return platform.NewRestarter(w.settings.RestartCommand, w.selfPath)
}

func (w *wiring) supervisor(in console.Input, out io.Writer, dryRun bool) *supervisor.Supervisor {
	s := w.settings
	cfg := supervisor.Config{
		Version:         buildVersion,
		SelfLocalPath:   w.selfPath,
		SelfRemotePath:  s.SelfRemotePath,
		InstallDir:      s.InstallDir,
		InterruptWindow: s.InterruptWindow,
		InterruptKey:    s.InterruptKey,
		RecoveryDelay:   s.RecoveryDelay,
	}
	deps := supervisor.Deps{
		Manifests:  w.fetcher(),
		Selections: w.selections(),
		Updater:    w.updater(dryRun),
		Input:      in,
		Menu:       menu.New(in, out, s.MenuTimeout),
		Launcher: &runtime.ProcessLauncher{
			Interpreter: s.LaunchInterpreter,
			Dir:         s.InstallDir,
		},
		Restarter: w.restarter(),
		Out:       out,
		Logger:    logger,
	}
	return supervisor.New(cfg, deps)
}
