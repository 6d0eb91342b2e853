package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/artemshloyda/aspectcrop/internal/scanner"
)

func TestWatcher_EmitsSortedBatch(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.SetDebounceTime(150 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	for _, name := range []string{"b.png", "a.jpg", "notes.txt", ".hidden.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "resize"), 0755); err != nil {
		t.Fatal(err)
	}

	var got []scanner.File
	deadline := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case batch := <-batches:
			got = append(got, batch...)
		case <-deadline:
			t.Fatalf("timeout, got %d files", len(got))
		}
	}

	// файлы могут прийти разными пачками
	sort.Slice(got, func(i, j int) bool { return got[i].Name < got[j].Name })
	if len(got) != 2 {
		t.Fatalf("got %d files, want 2", len(got))
	}
	if got[0].Name != "a.jpg" || got[1].Name != "b.png" {
		t.Errorf("names = %s, %s; want a.jpg, b.png", got[0].Name, got[1].Name)
	}
	if got[0].Info.Size != 1 {
		t.Errorf("Info.Size = %d, want 1", got[0].Info.Size)
	}

	cancel()
	select {
	case _, ok := <-batches:
		for ok {
			_, ok = <-batches
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := w.Watch(context.Background()); err == nil {
		t.Error("Watch() on missing dir should fail")
	}
}
