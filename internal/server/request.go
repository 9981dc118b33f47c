package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/benzlokzik/singlefile-webserver/internal/logger"
)

// Parse and framing failures surfaced to the connection handler. Each maps to
// exactly one HTTP status there.
var (
	// ErrHeaderTooLarge means the header byte budget was exhausted before the
	// blank-line terminator was seen. The caller must answer 431 and stop
	// reading from the connection.
	ErrHeaderTooLarge = errors.New("header block exceeds size budget")
	// ErrNoRequest means the peer closed the connection before sending any
	// bytes. Not an error condition; the caller closes silently.
	ErrNoRequest = errors.New("connection closed before any request bytes")
	// ErrMalformedRequestLine means the request line did not split into
	// method, path and version.
	ErrMalformedRequestLine = errors.New("malformed request line")
)

// Request is one parsed HTTP request. Built once per connection from the raw
// header block and never mutated afterwards.
type Request struct {
	Method  string
	Path    string
	Version string
	// Headers holds header values under canonical MIME casing; duplicate
	// names are last-one-wins.
	Headers map[string]string
}

// ReadHeaderBlock reads raw header bytes from br until the blank-line
// terminator, enforcing maxBytes as a budget over everything consumed
// (terminator included). The returned block excludes the terminator line.
//
// The budget is a byte count, not a wall-clock bound: a slow sender that
// stays under it is never aborted here.
func ReadHeaderBlock(br *bufio.Reader, maxBytes int) (string, error) {
	var sb strings.Builder
	total := 0
	readAny := false

	for {
		line, err := br.ReadString('\n')
		total += len(line)
		if total > maxBytes {
			return "", ErrHeaderTooLarge
		}
		if line != "" {
			readAny = true
		}
		// Only the CRLF form ends the block; a bare LF line is kept as header
		// text like any other.
		if err == nil && line == "\r\n" {
			break
		}
		sb.WriteString(line)
		if err != nil {
			if !readAny {
				return "", ErrNoRequest
			}
			if errors.Is(err, io.EOF) {
				// Peer closed mid-headers; hand what we have to the parser.
				break
			}
			return "", fmt.Errorf("reading header block: %w", err)
		}
	}
	return sb.String(), nil
}

// ParseRequest turns a raw header block into a Request.
//
// The request line must yield at least method, path and version. The raw path
// is percent-decoded, stripped of its query suffix (first '?' wins) and of
// leading slashes — except the bare "/" which is preserved verbatim. Trailing
// slashes survive; they signal a directory. Header lines without a ": "
// separator are skipped with a warning, never fatally.
func ParseRequest(raw string, log *logger.Logger) (*Request, error) {
	if log == nil {
		log = logger.NewDiscard()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty request", ErrMalformedRequestLine)
	}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	tokens := strings.Fields(lines[0])
	if len(tokens) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, lines[0])
	}
	method := strings.ToUpper(tokens[0])
	rawPath := tokens[1]
	version := strings.Join(tokens[2:], " ")

	// Decode before stripping the query, matching the documented order.
	// Invalid percent escapes leave the path untouched rather than failing
	// the request.
	path := rawPath
	if decoded, err := url.PathUnescape(rawPath); err == nil {
		path = decoded
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path != "/" {
		path = strings.TrimLeft(path, "/")
	}

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ": ")
		if !found {
			log.Warn("skipping invalid header line", logger.LogFields{"line": line})
			continue
		}
		headers[textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return &Request{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
	}, nil
}
