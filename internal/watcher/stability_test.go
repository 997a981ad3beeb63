package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForStableStaticFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.pdf")
	if err := os.WriteFile(path, []byte("complete"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStabilityChecker(50 * time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); err != nil {
		t.Errorf("WaitForStable: %v", err)
	}
}

func TestWaitForStableMissingFile(t *testing.T) {
	s := NewStabilityChecker(50 * time.Millisecond)
	err := s.WaitForStable(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestWaitForStableGrowingFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_, _ = f.Write([]byte("x"))
			}
		}
	}()
	defer close(stop)

	s := NewStabilityChecker(200 * time.Millisecond).WithTimeout(300 * time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); !errors.Is(err, ErrFileUnstable) {
		t.Errorf("expected ErrFileUnstable, got %v", err)
	}
}

func TestWaitForStableCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStabilityChecker(time.Second)
	if err := s.WaitForStable(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
