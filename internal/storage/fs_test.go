package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newVault(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newVault(t)
	content := []byte("Met @Jane Doe re #iot\n- [ ] ship it")

	if err := fs.Write("daily/2026-08-28.md", content); err != nil {
		t.Fatal(err)
	}
	got, err := fs.Read("daily/2026-08-28.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("read = %q", got)
	}
}

func TestListOnlyMarkdown(t *testing.T) {
	fs := newVault(t)
	if err := fs.Write("long-term.md", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write("daily/2026-08-28.md", []byte("b")); err != nil {
		t.Fatal(err)
	}
	// Non-markdown files are ignored.
	if err := os.WriteFile(filepath.Join(fs.root, "photo.png"), []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := fs.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 {
		t.Errorf("metas = %v, want 2", metas)
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("empty checksum for %s", m.Path)
		}
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	fs := newVault(t)
	if _, err := fs.Read("../outside.md"); err == nil {
		t.Error("expected traversal rejection")
	}
	if err := fs.Write("/abs/path.md", []byte("x")); err == nil {
		t.Error("expected absolute path rejection")
	}
}

func TestDeleteAndMove(t *testing.T) {
	fs := newVault(t)
	if err := fs.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Move("a.md", "daily/b.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Read("a.md"); err == nil {
		t.Error("old path still readable after move")
	}
	if err := fs.Delete("daily/b.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Read("daily/b.md"); err == nil {
		t.Error("file still readable after delete")
	}
}
