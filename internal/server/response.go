package server

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentKind tells the response builder how to pick the Content-Type.
// Override wins over Directory, which wins over extension inference.
type ContentKind struct {
	Directory bool
	Override  string
}

// ResponseBuilder maps a parsed request plus a content payload into wire
// bytes. The MIME lookup is an injected pure function; the builder itself
// holds no per-request state.
type ResponseBuilder struct {
	ServerName string
	MimeType   func(path string) string
}

const htmlContentType = "text/html; charset=utf-8"

// Fixed literal status lines for the error paths. Error responses carry
// minimal or no body; success and redirect lines echo the request's own
// version token instead.
var errorStatusLines = map[int]string{
	400: "HTTP/1.1 400 Bad Request",
	403: "HTTP/1.1 403 Forbidden",
	404: "HTTP/1.1 404 Not Found",
	405: "HTTP/1.1 405 Method Not Allowed",
	431: "HTTP/1.1 431 Request Header Fields Too Large",
	500: "HTTP/1.1 500 Internal Server Error",
}

// Build produces the full response for a 200. The body is omitted for HEAD
// requests, but Content-Length still reflects the payload that a GET would
// have carried.
func (b *ResponseBuilder) Build(req *Request, body []byte, kind ContentKind) []byte {
	contentType := b.contentTypeFor(req.Path, kind)

	var sb strings.Builder
	sb.WriteString(req.Version)
	sb.WriteString(" 200 OK\r\n")
	writeHeader(&sb, "Server", b.ServerName)
	writeHeader(&sb, "Connection", "close")
	writeHeader(&sb, "X-Content-Type-Options", "nosniff")
	writeHeader(&sb, "Content-Type", contentType)
	writeHeader(&sb, "Content-Length", strconv.Itoa(len(body)))
	sb.WriteString("\r\n")

	if req.Method == "HEAD" {
		return []byte(sb.String())
	}
	return append([]byte(sb.String()), body...)
}

func (b *ResponseBuilder) contentTypeFor(path string, kind ContentKind) string {
	switch {
	case kind.Override != "":
		return kind.Override
	case kind.Directory:
		return htmlContentType
	}
	contentType := "application/octet-stream"
	if b.MimeType != nil {
		if mt := b.MimeType(path); mt != "" {
			contentType = mt
		}
	}
	// charset only applies to the text/* top-level category, and the lookup
	// table may already carry one.
	if strings.HasPrefix(contentType, "text/") && !strings.Contains(contentType, "charset") {
		contentType += "; charset=utf-8"
	}
	return contentType
}

// BuildError produces a minimal error response for one of the fixed status
// codes. 405 carries the Allow header for the two supported methods.
func BuildError(code int) []byte {
	line, ok := errorStatusLines[code]
	if !ok {
		line = errorStatusLines[500]
	}
	if code == 405 {
		return []byte(line + "\r\nAllow: GET, HEAD\r\n\r\n")
	}
	return []byte(line + "\r\n\r\n")
}

// BuildRedirect produces the 301 used for directory trailing-slash
// normalization, echoing the request's version token.
func BuildRedirect(version, location string) []byte {
	return []byte(fmt.Sprintf("%s 301 Moved Permanently\r\nLocation: %s\r\nConnection: close\r\n\r\n", version, location))
}

func writeHeader(sb *strings.Builder, name, value string) {
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\r\n")
}
