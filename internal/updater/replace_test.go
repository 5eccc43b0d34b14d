package updater

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/agentx-labs/bootkeeper/internal/testutil"
)

func TestBackupPath(t *testing.T) {
	if got := BackupPath("/opt/games/snake.py"); got != "/opt/games/snake.py.bak" {
		t.Errorf("BackupPath() = %q", got)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	local := "/opt/games/snake.py"
	store := testutil.NewMemStorage(map[string][]byte{
		local:             []byte("v2"),
		BackupPath(local): []byte("v1"),
	})
	u := New(testutil.NewMemTransport(nil), store)

	if err := u.Restore(local); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if got, _ := store.File(local); string(got) != "v1" {
		t.Errorf("installed = %q, want v1", got)
	}
	if got, _ := store.File(BackupPath(local)); string(got) != "v2" {
		t.Errorf("backup = %q, want v2", got)
	}

	if err := u.Restore(local); err != nil {
		t.Fatalf("second Restore error: %v", err)
	}
	if got, _ := store.File(local); string(got) != "v2" {
		t.Errorf("installed after undo = %q, want v2", got)
	}
}

func TestRestore_NoBackup(t *testing.T) {
	store := testutil.NewMemStorage(map[string][]byte{"/opt/a.py": []byte("v1")})
	u := New(testutil.NewMemTransport(nil), store)

	err := u.Restore("/opt/a.py")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Restore error = %v, want not-exist", err)
	}
}

func TestRestore_MissingCurrent(t *testing.T) {
	local := "/opt/a.py"
	store := testutil.NewMemStorage(map[string][]byte{BackupPath(local): []byte("v1")})
	u := New(testutil.NewMemTransport(nil), store)

	if err := u.Restore(local); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if got, _ := store.File(local); string(got) != "v1" {
		t.Errorf("installed = %q, want v1", got)
	}
}

func TestRestore_DryRun(t *testing.T) {
	local := "/opt/a.py"
	store := testutil.NewMemStorage(map[string][]byte{local: []byte("v2"), BackupPath(local): []byte("v1")})
	u := New(testutil.NewMemTransport(nil), store, WithDryRun(true))

	if err := u.Restore(local); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if n := len(store.Writes()); n != 0 {
		t.Errorf("dry-run restore caused %d writes", n)
	}
}
