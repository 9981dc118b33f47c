// Package fileserver confines request paths to a document root and produces
// response bodies: raw file bytes, rendered markdown pages, and directory
// listing pages.
package fileserver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benzlokzik/singlefile-webserver/internal/logger"
	"github.com/benzlokzik/singlefile-webserver/internal/markdown"
	"github.com/benzlokzik/singlefile-webserver/internal/page"
)

const markdownPageContentType = "text/html; charset=utf-8"

// FileServer serves files beneath a canonicalized document root.
type FileServer struct {
	root string
	mime *MimeTable
	log  *logger.Logger
}

// New creates a FileServer over root, which must already be absolute with
// symlinks resolved (config validation guarantees this).
func New(root string, mime *MimeTable, log *logger.Logger) *FileServer {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &FileServer{root: root, mime: mime, log: log}
}

// MimeType resolves the Content-Type for a path via the configured table.
func (f *FileServer) MimeType(path string) string {
	return f.mime.Lookup(path)
}

// Body reads a resolved regular file and returns the response payload plus a
// Content-Type override. Markdown files are rendered to a full HTML page and
// override the type; everything else returns raw bytes with no override.
func (f *FileServer) Body(resolved string) ([]byte, string, error) {
	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsPermission(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrPermissionDenied, resolved)
		}
		return nil, "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	if strings.EqualFold(filepath.Ext(resolved), ".md") {
		return []byte(f.renderMarkdownPage(string(data))), markdownPageContentType, nil
	}
	return data, "", nil
}

// renderMarkdownPage wraps the converted fragment in the card and page shell.
func (f *FileServer) renderMarkdownPage(source string) string {
	fragment := markdown.Render(source)
	body := fmt.Sprintf(`
    <div class="card">
      <h2>Markdown</h2>
      <div style="padding:16px">%s</div>
    </div>
    `, fragment)
	return page.Render("Markdown Render", body, "")
}
