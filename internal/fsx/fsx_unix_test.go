//go:build unix

package fsx

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func exdevRename(oldpath, newpath string) error {
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
}

func TestMoveFileCrossDeviceFallsBackToCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.mp3")
	dst := filepath.Join(dir, "out.mp3")
	if err := os.WriteFile(src, []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}

	old := renameFunc
	renameFunc = exdevRename
	defer func() { renameFunc = old }()

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if Exists(src) {
		t.Error("source should be removed after copy")
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "payload" {
		t.Errorf("content = %q", b)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestMoveFileCrossDeviceDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "folder")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatal(err)
	}

	old := renameFunc
	renameFunc = exdevRename
	defer func() { renameFunc = old }()

	err := MoveFile(src, filepath.Join(dir, "elsewhere"))
	if !IsCrossDevice(err) {
		t.Fatalf("expected CrossDeviceError, got %v", err)
	}
	if !IsDir(src) {
		t.Error("source directory must be untouched")
	}
}
