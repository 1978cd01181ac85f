package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), config.UploadsConfig{
		Dir:        t.TempDir(),
		PublicPath: "/uploads",
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestSave(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	file, err := store.Save(context.Background(), "drill.JPG", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(file.Name, "images-1700000000000-") {
		t.Errorf("unexpected name %q", file.Name)
	}
	if !strings.HasSuffix(file.Name, ".jpg") {
		t.Errorf("extension not lowercased: %q", file.Name)
	}
	if file.URL != "/uploads/"+file.Name {
		t.Errorf("unexpected URL %q", file.URL)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("stored content = %q", data)
	}
}

func TestDiscard(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(context.Background(), "a.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save(context.Background(), "b.png", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Discard([]StoredFile{first, second}); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := os.Stat(first.Path); !os.IsNotExist(err) {
		t.Errorf("first file still present: %v", err)
	}

	// Discarding again is a no-op.
	if err := store.Discard([]StoredFile{first}); err != nil {
		t.Errorf("second Discard: %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	file, err := store.Save(context.Background(), "c.webp", strings.NewReader("c"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Remove(file.URL); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(file.Path); !os.IsNotExist(err) {
		t.Errorf("file still present after Remove")
	}
	if err := store.Remove(file.URL); err != nil {
		t.Errorf("Remove of missing file: %v", err)
	}
}

func TestRemoveRejectsForeignPaths(t *testing.T) {
	store := newTestStore(t)

	for _, url := range []string{
		"/etc/passwd",
		"uploads/x.png",
		"/uploads/../secret.txt",
		"/uploads/../../secret.txt",
	} {
		if err := store.Remove(url); err == nil {
			t.Errorf("Remove(%q) succeeded, want error", url)
		}
	}

	// The guard must not delete outside the root even under traversal.
	outside := filepath.Join(filepath.Dir(store.Root()), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("seeding outside file: %v", err)
	}
	_ = store.Remove("/uploads/../secret.txt")
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("outside file was deleted")
	}
}

func TestListAndModifiedBefore(t *testing.T) {
	store := newTestStore(t)

	file, err := store.Save(context.Background(), "d.png", strings.NewReader("d"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	urls, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(urls) != 1 || urls[0] != file.URL {
		t.Errorf("List = %v, want [%s]", urls, file.URL)
	}

	old, err := store.ModifiedBefore(file.URL, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ModifiedBefore: %v", err)
	}
	if old {
		t.Errorf("fresh file reported older than cutoff")
	}

	recent, err := store.ModifiedBefore(file.URL, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ModifiedBefore: %v", err)
	}
	if !recent {
		t.Errorf("file not reported older than future cutoff")
	}
}
