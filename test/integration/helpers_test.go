//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/menu"
	"github.com/agentx-labs/bootkeeper/internal/platform"
	"github.com/agentx-labs/bootkeeper/internal/runtime"
	"github.com/agentx-labs/bootkeeper/internal/storage"
	"github.com/agentx-labs/bootkeeper/internal/supervisor"
	"github.com/agentx-labs/bootkeeper/internal/transport"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
	"github.com/rs/zerolog"
)

// testEnv is a device with a real install directory talking to a local
// update server.
type testEnv struct {
	StateDir   string // selection and manifest cache
	InstallDir string // installed programs
	SelfPath   string // the supervisor's own file
	MarkerDir  string // programs record their runs here

	server *httptest.Server
	mu     sync.Mutex
	files  map[string]string
	down   bool
}

// setupTestEnv creates isolated directories and starts the update server.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	env := &testEnv{
		StateDir:   filepath.Join(root, "state"),
		InstallDir: filepath.Join(root, "installed"),
		SelfPath:   filepath.Join(root, "bin", "bootkeeper"),
		MarkerDir:  filepath.Join(root, "markers"),
		files:      map[string]string{},
	}
	if err := os.MkdirAll(env.MarkerDir, 0755); err != nil {
		t.Fatalf("creating marker dir: %v", err)
	}

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		defer env.mu.Unlock()
		if env.down {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		body, ok := env.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(env.server.Close)

	env.publish("bootkeeper", "supervisor build 1")
	return env
}

// publish serves content at path.
func (e *testEnv) publish(path, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[path] = content
}

// setDown makes every request fail with 503.
func (e *testEnv) setDown(down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.down = down
}

// program returns a shell script that records its run in the marker dir
// and exits with code.
func (e *testEnv) program(name string, code int) string {
	return "#!/bin/sh\necho run >> " + filepath.Join(e.MarkerDir, name) + "\nexit " + strconv.Itoa(code) + "\n"
}

// runs returns how many times a program recorded a run.
func (e *testEnv) runs(t *testing.T, name string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.MarkerDir, name))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("reading marker %s: %v", name, err)
	}
	return strings.Count(string(data), "run")
}

// bootResult is one boot with everything it printed.
type bootResult struct {
	supervisor.Result
	Out      string
	Restarts int
	Sleeps   []time.Duration
}

// boot runs one full boot against the environment. input is what the
// operator types; empty means no console.
func (e *testEnv) boot(t *testing.T, input string) bootResult {
	t.Helper()

	tr, err := transport.NewHTTP(e.server.URL, transport.WithHTTPClient(e.server.Client()))
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	store := storage.NewDir(e.InstallDir)

	var in console.Input = console.New(strings.NewReader(input), input != "")
	var out bytes.Buffer
	var res bootResult

	cache := manifest.NewCache(store, filepath.Join(e.StateDir, manifest.CacheFileName))
	deps := supervisor.Deps{
		Manifests:  manifest.NewFetcher(tr, cache, "manifest.json", zerolog.Nop()),
		Selections: userdata.NewSelectionStore(store, userdata.SelectionPath(e.StateDir)),
		Updater:    updater.New(tr, store),
		Input:      in,
		Menu:       menu.New(in, &out, time.Second),
		Launcher: &runtime.ProcessLauncher{
			Interpreter: []string{"/bin/sh"},
			Stdout:      &out,
			Stderr:      &out,
		},
		Restarter: platform.RestarterFunc(func(context.Context) error {
			res.Restarts++
			return nil
		}),
		Sleep: func(_ context.Context, d time.Duration) error {
			res.Sleeps = append(res.Sleeps, d)
			return nil
		},
		Out:    &out,
		Logger: zerolog.Nop(),
	}
	cfg := supervisor.Config{
		Version:         "1.0.0",
		SelfLocalPath:   e.SelfPath,
		SelfRemotePath:  "bootkeeper",
		InstallDir:      e.InstallDir,
		InterruptWindow: 200 * time.Millisecond,
		InterruptKey:    "m",
		RecoveryDelay:   5 * time.Second,
	}

	res.Result = supervisor.New(cfg, deps).Run(context.Background())
	res.Out = out.String()
	if res.Restarts != 1 {
		t.Fatalf("boot restarted %d times, want 1", res.Restarts)
	}
	return res
}

// installSelf places the published supervisor build so boots do not
// self-update.
func (e *testEnv) installSelf(t *testing.T) {
	t.Helper()
	e.mu.Lock()
	content := e.files["bootkeeper"]
	e.mu.Unlock()
	writeFile(t, e.SelfPath, content)
}

// selectedID returns the persisted selection, or "" when none.
func (e *testEnv) selectedID(t *testing.T) string {
	t.Helper()
	sel, err := userdata.NewSelectionStore(storage.NewDir(""), userdata.SelectionPath(e.StateDir)).Load()
	if err != nil {
		t.Fatalf("loading selection: %v", err)
	}
	if sel == nil {
		return ""
	}
	return sel.SelectedID
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist", path)
	}
}

func assertTrail(t *testing.T, got []supervisor.State, want ...supervisor.State) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("trail = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trail = %v, want %v", got, want)
		}
	}
}
