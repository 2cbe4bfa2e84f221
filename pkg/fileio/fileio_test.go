package fileio

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestCollectFilesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	top := filepath.Join(dir, "top.txt")
	nested := filepath.Join(sub, "nested.txt")
	writeFile(t, top, "top")
	writeFile(t, nested, "nested")

	files, err := CollectFiles([]string{dir}, false)
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}

	sort.Strings(files)
	want := []string{nested, top}
	sort.Strings(want)
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("CollectFiles = %v, want %v", files, want)
	}
}

func TestCollectFilesMissingPath(t *testing.T) {
	_, err := CollectFiles([]string{filepath.Join(t.TempDir(), "absent")}, false)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCollectFilesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	writeFile(t, target, "content")

	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	// Not following: the symlink itself is skipped, so naming only the
	// link collects nothing.
	files, err := CollectFiles([]string{link}, false)
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected symlink to be skipped, got %v", files)
	}

	files, err = CollectFiles([]string{link}, true)
	if err != nil {
		t.Fatalf("CollectFiles with symlinks failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one resolved file, got %v", files)
	}
}

func TestCollectFilesRejectsUnreadableInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "locked.bin")
	writeFile(t, path, "secret")
	if err := os.Chmod(path, 0o000); err != nil {
		t.Fatalf("failed to chmod fixture: %v", err)
	}
	defer os.Chmod(path, 0o644)

	if _, err := CollectFiles([]string{path}, false); err == nil {
		t.Fatal("expected error for input with no read permission")
	}
}

func TestCollectFromListings(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "one.bin")
	f2 := filepath.Join(dir, "two.bin")
	writeFile(t, f1, "one")
	writeFile(t, f2, "two")

	listing := filepath.Join(dir, "listing.txt")
	writeFile(t, listing, f1+"\n\n"+f2+"\n")

	files, err := CollectFromListings([]string{listing}, false)
	if err != nil {
		t.Fatalf("CollectFromListings failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}

	sort.Strings(files)
	if files[0] != f1 || files[1] != f2 {
		t.Errorf("CollectFromListings = %v, want [%s %s]", files, f1, f2)
	}
}

func TestCollectFromListingsMissingEntry(t *testing.T) {
	dir := t.TempDir()
	listing := filepath.Join(dir, "listing.txt")
	writeFile(t, listing, filepath.Join(dir, "ghost")+"\n")

	if _, err := CollectFromListings([]string{listing}, false); err == nil {
		t.Fatal("expected error for listing entry that does not exist")
	}
}
