package supervisor

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/menu"
	"github.com/agentx-labs/bootkeeper/internal/platform"
	"github.com/agentx-labs/bootkeeper/internal/runtime"
	"github.com/agentx-labs/bootkeeper/internal/storage"
	"github.com/agentx-labs/bootkeeper/internal/testutil"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
	"github.com/rs/zerolog"
)

const (
	stateDir     = "/state"
	installDir   = "/games"
	selfLocal    = "/opt/bootkeeper/bootkeeper"
	selfRemote   = "bootkeeper"
	manifestPath = "manifest.json"

	selectionPath = stateDir + "/" + userdata.SelectionFile
	cachePath     = stateDir + "/" + manifest.CacheFileName

	selfBuild = "supervisor build 1"
)

const twoScripts = `{"default": "snake", "supervisor_version": "1.1.0", "scripts": [
	{"id": "snake", "name": "Snake", "category": "games", "file": "bundles/snake.py", "local_name": "snake.py"},
	{"id": "clock", "name": "Clock", "category": "tools", "file": "bundles/clock.py", "local_name": "clock.py"}]}`

const snakeOnly = `{"default": "snake", "scripts": [
	{"id": "snake", "name": "Snake", "category": "games", "file": "bundles/snake.py", "local_name": "snake.py"}]}`

// harness wires a Supervisor to in-memory capabilities.
type harness struct {
	t *testing.T

	tr    *testutil.MemTransport
	store *testutil.MemStorage
	input *testutil.ScriptedInput
	out   bytes.Buffer

	launched  []string
	launchErr error
	restarts  int
	sleeps    []time.Duration

	cfg Config
}

func newHarness(t *testing.T, manifestDoc string) *harness {
	t.Helper()
	h := &harness{
		t: t,
		tr: testutil.NewMemTransport(map[string][]byte{
			manifestPath:       []byte(manifestDoc),
			selfRemote:         []byte(selfBuild),
			"bundles/snake.py": []byte("snake v1"),
			"bundles/clock.py": []byte("clock v1"),
		}),
		store: testutil.NewMemStorage(nil),
		input: &testutil.ScriptedInput{},
		cfg: Config{
			Version:         "1.0.0",
			SelfLocalPath:   selfLocal,
			SelfRemotePath:  selfRemote,
			InstallDir:      installDir,
			InterruptWindow: 3 * time.Second,
			InterruptKey:    "m",
			RecoveryDelay:   5 * time.Second,
		},
	}
	return h
}

// installed seeds local files so they match the remote copies.
func (h *harness) installed(files map[string]string) {
	for path, content := range files {
		if err := h.store.WriteFile(path, []byte(content)); err != nil {
			h.t.Fatalf("seeding %s: %v", path, err)
		}
	}
}

func (h *harness) selected(id string) {
	if err := userdata.NewSelectionStore(h.store, selectionPath).Save(id); err != nil {
		h.t.Fatalf("seeding selection: %v", err)
	}
}

func (h *harness) cached(doc string) {
	m, err := manifest.Parse([]byte(doc))
	if err != nil {
		h.t.Fatalf("parsing cache seed: %v", err)
	}
	if err := manifest.NewCache(h.store, cachePath).Save(m); err != nil {
		h.t.Fatalf("seeding cache: %v", err)
	}
}

func (h *harness) deps(store storage.Storage, dryRun bool) Deps {
	return Deps{
		Manifests:  manifest.NewFetcher(h.tr, manifest.NewCache(store, cachePath), manifestPath, zerolog.Nop()),
		Selections: userdata.NewSelectionStore(store, selectionPath),
		Updater:    updater.New(h.tr, store, updater.WithDryRun(dryRun)),
		Input:      h.input,
		Menu:       menu.New(h.input, &h.out, time.Minute),
		Launcher: runtime.LauncherFunc(func(_ context.Context, path string) error {
			h.launched = append(h.launched, path)
			return h.launchErr
		}),
		Restarter: platform.RestarterFunc(func(context.Context) error {
			h.restarts++
			return nil
		}),
		Sleep: func(_ context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return nil
		},
		Out:    &h.out,
		Logger: zerolog.Nop(),
	}
}

func (h *harness) run() Result {
	h.t.Helper()
	res := New(h.cfg, h.deps(h.store, false)).Run(context.Background())
	if h.restarts != 1 {
		h.t.Fatalf("restarted %d times, want exactly 1", h.restarts)
	}
	return res
}

func (h *harness) check() *CheckReport {
	h.t.Helper()
	report, err := New(h.cfg, h.deps(storage.ReadOnly(h.store), true)).Check(context.Background())
	if err != nil {
		h.t.Fatalf("Check error: %v", err)
	}
	return report
}

func (h *harness) file(path string) string {
	data, ok := h.store.File(path)
	if !ok {
		return "<missing>"
	}
	return string(data)
}

func (h *harness) selection() string {
	sel, err := userdata.NewSelectionStore(h.store, selectionPath).Load()
	if err != nil || sel == nil {
		return fmt.Sprintf("<none: %v>", err)
	}
	return sel.SelectedID
}

func visited(res Result, s State) bool {
	for _, st := range res.Trail {
		if st == s {
			return true
		}
	}
	return false
}
