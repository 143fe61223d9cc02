package surface

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collectEvents(t *testing.T, dir string) (<-chan Event, context.CancelFunc) {
	t.Helper()

	events := make(chan Event, 32)
	zone, err := NewDropZone(DropZoneConfig{Dir: dir, SettleDelay: 50 * time.Millisecond}, func(ev Event) {
		events <- ev
	}, nil)
	if err != nil {
		t.Fatalf("NewDropZone: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- zone.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run did not stop")
		}
	})

	// Give the watcher time to register
	time.Sleep(50 * time.Millisecond)
	return events, cancel
}

func waitForDrop(t *testing.T, events <-chan Event) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == Drop {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for drop")
		}
	}
}

func TestDropZone_CreatedFileBecomesDrop(t *testing.T) {
	dir := t.TempDir()
	events, _ := collectEvents(t, dir)

	content := []byte("12/01/2024, 10:00 - Ana: hi\n")
	if err := os.WriteFile(filepath.Join(dir, "chat.txt"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	ev := waitForDrop(t, events)
	if len(ev.Files) != 1 {
		t.Fatalf("expected one file, got %d", len(ev.Files))
	}
	if ev.Files[0].Name != "chat.txt" {
		t.Errorf("Name = %q", ev.Files[0].Name)
	}
	if ev.Files[0].SizeBytes != int64(len(content)) {
		t.Errorf("SizeBytes = %d, want %d", ev.Files[0].SizeBytes, len(content))
	}
}

func TestDropZone_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	events, _ := collectEvents(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".chat.txt.swp"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o750); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev.Kind)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewDropZone_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "chat.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"", filepath.Join(t.TempDir(), "missing"), file} {
		if _, err := NewDropZone(DropZoneConfig{Dir: dir}, func(Event) {}, nil); err == nil {
			t.Errorf("expected error for %q", dir)
		}
	}
}

func TestIgnored(t *testing.T) {
	tests := map[string]bool{
		"/drop/chat.txt":      false,
		"/drop/.chat.txt.swp": true,
		"/drop/chat.txt~":     true,
		"/drop/.DS_Store":     true,
	}
	for path, want := range tests {
		if got := ignored(path); got != want {
			t.Errorf("ignored(%q) = %v, want %v", path, got, want)
		}
	}
}
