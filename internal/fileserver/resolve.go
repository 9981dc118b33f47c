package fileserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolution and read failures. The connection handler folds the first three
// into a single 404 on the wire; the distinction exists for logging and tests.
var (
	ErrNotFound         = errors.New("no such file or directory under root")
	ErrPathEscape       = errors.New("resolved path escapes document root")
	ErrResolution       = errors.New("path resolution failed")
	ErrPermissionDenied = errors.New("permission denied reading file")
	ErrReadFailed       = errors.New("file read failed")
)

// Resolve maps a request path onto the filesystem and confines it to the
// document root. Symlinks are followed before the containment check, so a
// link pointing outside the root is rejected even though the raw join looked
// safe. The root itself is canonicalized once at config validation.
func (f *FileServer) Resolve(requestPath string) (string, os.FileInfo, error) {
	joined := filepath.Join(f.root, strings.TrimLeft(requestPath, "/"))

	canonical, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotFound, requestPath)
		}
		return "", nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	if canonical != f.root && !strings.HasPrefix(canonical, f.root+string(filepath.Separator)) {
		return "", nil, fmt.Errorf("%w: %s", ErrPathEscape, requestPath)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrNotFound, requestPath)
		}
		return "", nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return canonical, info, nil
}
