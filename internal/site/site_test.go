package site

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestDirReadsRelativeNames(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "js"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "js", "app.js"), []byte("app"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lookup := Dir(base)
	if got := lookup("js/app.js"); !bytes.Equal(got, []byte("app")) {
		t.Fatalf("expected file contents, got %q", got)
	}
	if got := lookup("js/missing.js"); got != nil {
		t.Fatalf("expected nil for missing file, got %q", got)
	}
}

func TestFSRejectsEscapes(t *testing.T) {
	lookup := FS(fstest.MapFS{
		"index.html": {Data: []byte("<html></html>")},
	})

	if got := lookup("index.html"); got == nil {
		t.Fatal("expected index.html to resolve")
	}
	if got := lookup("/index.html"); got == nil {
		t.Fatal("expected leading slash to be tolerated")
	}
	for _, name := range []string{"..", "../secret", "."} {
		if got := lookup(name); got != nil {
			t.Fatalf("expected %q to be rejected, got %q", name, got)
		}
	}
}
