package fileserver

import (
	"mime"
	"path/filepath"
	"strings"
)

const octetStreamMimeType = "application/octet-stream"

// builtinMimeTypes is the fallback table consulted when Go's mime package has
// no registration for an extension. It covers the media types the directory
// preview pane knows how to render plus the usual document formats.
var builtinMimeTypes = map[string]string{
	".aac":   "audio/aac",
	".avif":  "image/avif",
	".avi":   "video/x-msvideo",
	".bin":   "application/octet-stream",
	".bmp":   "image/bmp",
	".css":   "text/css; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".flac":  "audio/flac",
	".gif":   "image/gif",
	".gz":    "application/gzip",
	".htm":   "text/html; charset=utf-8",
	".html":  "text/html; charset=utf-8",
	".ico":   "image/vnd.microsoft.icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".m4a":   "audio/mp4",
	".md":    "text/markdown; charset=utf-8",
	".mkv":   "video/x-matroska",
	".mov":   "video/quicktime",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".oga":   "audio/ogg",
	".ogv":   "video/ogg",
	".opus":  "audio/opus",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".tif":   "image/tiff",
	".tiff":  "image/tiff",
	".ttf":   "font/ttf",
	".txt":   "text/plain; charset=utf-8",
	".wav":   "audio/wav",
	".weba":  "audio/webm",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml; charset=utf-8",
	".zip":   "application/zip",
	".7z":    "application/x-7z-compressed",
}

// MimeTable resolves file extensions to MIME types with custom mappings
// taking precedence over the standard library and the builtin table.
type MimeTable struct {
	custom map[string]string
}

// NewMimeTable builds a MimeTable from custom config mappings. Keys are
// lowercased and must include the leading dot.
func NewMimeTable(custom map[string]string) *MimeTable {
	t := &MimeTable{custom: make(map[string]string, len(custom))}
	for ext, mimeType := range custom {
		t.custom[strings.ToLower(ext)] = mimeType
	}
	return t
}

// Lookup determines the MIME type for a path. Precedence:
// 1. custom mappings from configuration
// 2. Go's mime.TypeByExtension
// 3. the builtin table
// 4. application/octet-stream
func (t *MimeTable) Lookup(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return octetStreamMimeType
	}
	if mimeType, ok := t.custom[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	if mimeType, ok := builtinMimeTypes[ext]; ok {
		return mimeType
	}
	return octetStreamMimeType
}
