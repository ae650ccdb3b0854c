package checksum_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alnah/go-blogbook/internal/checksum"
)

func TestSum_Deterministic(t *testing.T) {
	t.Parallel()

	a := checksum.Sum([]byte("hello"))
	b := checksum.Sum([]byte("hello"))
	c := checksum.Sum([]byte("hellp"))

	if a != b {
		t.Errorf("Sum not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Error("one-byte change should change the digest")
	}
	if a != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("Sum(hello) = %s", a)
	}
}

func TestDigest_IndependentOfPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.md")
	p2 := filepath.Join(dir, "nested", "b.md")
	for _, p := range []string{p1, p2} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("same bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d1, err := checksum.Digest(p1)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	d2, err := checksum.Digest(p2)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if d1 != d2 || d1 != checksum.Sum([]byte("same bytes")) {
		t.Errorf("digests differ: %s %s", d1, d2)
	}

	if _, err := checksum.Digest(filepath.Join(dir, "missing.md")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Digest(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestStore_LoadSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &checksum.Store{Path: filepath.Join(dir, checksum.DefaultStoreName)}

	if got := store.Load(); got == nil || len(got) != 0 {
		t.Fatalf("Load(missing) = %v, want empty map", got)
	}

	if err := store.Save(checksum.Map{"a.md": "1", "b.md": "2"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(checksum.Map{"c.md": "3"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := store.Load()
	if !reflect.DeepEqual(got, checksum.Map{"c.md": "3"}) {
		t.Errorf("Load() = %v, want full overwrite with only c.md", got)
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("[1,2"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := &checksum.Store{Path: path}
	if got := store.Load(); got == nil || len(got) != 0 {
		t.Errorf("Load(malformed) = %v, want empty map", got)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"design-patterns/singleton.md": "# Singleton",
		"design-patterns/info.json":    "{}",
		"top.md":                       "# Top",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := checksum.Collect(root, ".md", nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := checksum.Map{
		"design-patterns/singleton.md": checksum.Sum([]byte("# Singleton")),
		"top.md":                       checksum.Sum([]byte("# Top")),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %v, want %v", got, want)
	}

	if _, err := checksum.Collect(filepath.Join(root, "nope"), ".md", nil); err == nil {
		t.Error("Collect(missing root) expected error")
	}
}

func TestChangedAndRemoved(t *testing.T) {
	t.Parallel()

	prev := checksum.Map{"a.md": "1", "b.md": "2", "gone.md": "9"}
	cur := checksum.Map{"a.md": "1", "b.md": "3", "new.md": "4"}

	if got := checksum.Changed(prev, cur); !reflect.DeepEqual(got, []string{"b.md", "new.md"}) {
		t.Errorf("Changed() = %v", got)
	}
	if got := checksum.Removed(prev, cur); !reflect.DeepEqual(got, []string{"gone.md"}) {
		t.Errorf("Removed() = %v", got)
	}
	if got := checksum.Changed(cur, cur); got != nil {
		t.Errorf("Changed(same) = %v, want nil", got)
	}
}
