package fileserver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBody_RawFileNoOverride(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "data.bin"), "\x00\x01binary")
	})
	body, override, err := fs.Body(filepath.Join(root, "data.bin"))
	if err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	if override != "" {
		t.Errorf("override = %q, want empty for a raw file", override)
	}
	if string(body) != "\x00\x01binary" {
		t.Errorf("body = %q", body)
	}
}

func TestBody_MarkdownRenderedToHTML(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "readme.md"), "# Title\n\nSome *text*.\n")
	})
	body, override, err := fs.Body(filepath.Join(root, "readme.md"))
	if err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	if override != "text/html; charset=utf-8" {
		t.Errorf("override = %q", override)
	}
	html := string(body)
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Errorf("rendered page lacks heading: %s", html)
	}
	if !strings.Contains(html, "<em>text</em>") {
		t.Errorf("rendered page lacks emphasis: %s", html)
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Error("markdown body must be a full page")
	}
}

func TestBody_MarkdownExtensionCaseInsensitive(t *testing.T) {
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "NOTES.MD"), "# Hello\n")
	})
	_, override, err := fs.Body(filepath.Join(root, "NOTES.MD"))
	if err != nil {
		t.Fatal(err)
	}
	if override != "text/html; charset=utf-8" {
		t.Errorf("override = %q, want markdown rendering for .MD", override)
	}
}

func TestBody_PermissionDenied(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	fs, root := newTestServer(t, func(root string) {
		mustWrite(t, filepath.Join(root, "locked.txt"), "no")
	})
	if err := os.Chmod(filepath.Join(root, "locked.txt"), 0o000); err != nil {
		t.Fatal(err)
	}
	_, _, err := fs.Body(filepath.Join(root, "locked.txt"))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestMimeTable_Precedence(t *testing.T) {
	table := NewMimeTable(map[string]string{".Custom": "application/x-custom"})

	cases := []struct {
		path string
		want string
	}{
		{"a.custom", "application/x-custom"},
		{"b.CUSTOM", "application/x-custom"},
		{"pic.png", "image/png"},
		{"no-extension", "application/octet-stream"},
		{"weird.zzzz", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := table.Lookup(tc.path); got != tc.want {
			t.Errorf("Lookup(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestMimeTable_TextTypesCarryCharset(t *testing.T) {
	table := NewMimeTable(nil)
	for _, path := range []string{"a.html", "a.css", "a.txt"} {
		got := table.Lookup(path)
		if !strings.HasPrefix(got, "text/") || !strings.Contains(got, "charset") {
			t.Errorf("Lookup(%q) = %q, want a text type with charset", path, got)
		}
	}
}
