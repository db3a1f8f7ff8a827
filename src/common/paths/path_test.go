package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	t.Setenv("ROWKEEP_TEST_DIR", "/srv/rowkeep")

	if got := Expand("$ROWKEEP_TEST_DIR/db"); got != "/srv/rowkeep/db" {
		t.Fatalf("expected env expansion, got %s", got)
	}
	if got := Expand("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path should be untouched, got %s", got)
	}

	home := Expand("~")
	if home == "~" {
		t.Skip("no home directory available")
	}
	if got := Expand("~/rowkeep.db"); got != filepath.Join(home, "rowkeep.db") {
		t.Fatalf("unexpected home expansion: %s", got)
	}
}

func TestEnsureDirAndExists(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "rowkeep.db")

	if Exists(filepath.Dir(target)) {
		t.Fatal("directory should not exist yet")
	}
	if err := EnsureDir(target); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !Exists(filepath.Dir(target)) {
		t.Fatal("directory should exist")
	}
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !Exists(target) {
		t.Fatal("file should exist")
	}
}
