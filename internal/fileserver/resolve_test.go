package fileserver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestServer builds a FileServer over a temp root populated by populate,
// which receives the root path.
func newTestServer(t *testing.T, populate func(root string)) (*FileServer, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if populate != nil {
		populate(root)
	}
	return New(root, NewMimeTable(nil), nil), root
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_File(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "sub", "a.txt"), "hi")
	})

	resolved, info, err := fs.Resolve("sub/a.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != filepath.Join(root, "sub", "a.txt") {
		t.Errorf("resolved = %q", resolved)
	}
	if info.IsDir() {
		t.Error("expected a regular file")
	}
}

func TestResolve_Root(t *testing.T) {
	fs, root := newTestServer(t, nil)
	resolved, info, err := fs.Resolve("/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != root {
		t.Errorf("resolved = %q, want root", resolved)
	}
	if !info.IsDir() {
		t.Error("root must resolve to a directory")
	}
}

func TestResolve_NotFound(t *testing.T) {
	fs, _ := newTestServer(t, nil)
	_, _, err := fs.Resolve("missing.txt")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_TraversalRejected(t *testing.T) {
	// The parent directory exists, so a lax resolver would happily serve it.
	fs, _ := newTestServer(t, nil)
	for _, p := range []string{"..", "../", "../../etc/passwd", "sub/../../x"} {
		_, _, err := fs.Resolve(p)
		if err == nil {
			t.Errorf("Resolve(%q) succeeded, want rejection", p)
			continue
		}
		if !errors.Is(err, ErrPathEscape) && !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) err = %v", p, err)
		}
	}
}

func TestResolve_SymlinkEscapeRejected(t *testing.T) {
	outside := t.TempDir()
	mustWrite(t, filepath.Join(outside, "secret.txt"), "secret")

	fs, root := newTestServer(t, nil)
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, _, err := fs.Resolve("link.txt")
	if !errors.Is(err, ErrPathEscape) {
		t.Fatalf("err = %v, want ErrPathEscape", err)
	}
}

func TestResolve_SymlinkInsideRootAllowed(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "real.txt"), "ok")
	})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	resolved, _, err := fs.Resolve("alias.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != filepath.Join(root, "real.txt") {
		t.Errorf("resolved = %q, want the link target", resolved)
	}
}
