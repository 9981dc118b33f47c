package server

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benzlokzik/singlefile-webserver/internal/fileserver"
	"github.com/benzlokzik/singlefile-webserver/internal/logger"
)

// handleConn drives one connection through the pipeline:
// read headers -> parse -> method check -> resolve -> branch on kind ->
// build response -> write. Every failure is translated into exactly one
// fixed-status response here; nothing propagates out, and the connection is
// closed exactly once on every path.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	fields := logger.LogFields{
		"conn_id": uuid.NewString()[:8],
		"remote":  conn.RemoteAddr().String(),
	}
	s.log.Debug("connection accepted", fields)

	br := bufio.NewReader(conn)
	raw, err := ReadHeaderBlock(br, s.cfg.Server.MaxHeaderBytes)
	switch {
	case errors.Is(err, ErrHeaderTooLarge):
		s.log.Warn("header block over budget", fields)
		s.writeResponse(conn, BuildError(431), fields)
		return
	case errors.Is(err, ErrNoRequest):
		return
	case err != nil:
		s.log.Warn("header read failed", withField(fields, "error", err.Error()))
		return
	}
	if raw == "" {
		return
	}

	req, err := ParseRequest(raw, s.log)
	if err != nil {
		s.log.Warn("invalid request", withField(fields, "error", err.Error()))
		s.writeResponse(conn, BuildError(400), fields)
		return
	}
	fields["method"] = req.Method
	fields["path"] = req.Path

	if !s.writeResponse(conn, s.route(req, fields), fields) {
		return
	}
	fields["duration_ms"] = time.Since(start).Milliseconds()
	s.log.Info("request served", fields)
}

// writeResponse writes a complete response, logging a failed write instead of
// propagating it; the connection is closing either way.
func (s *Server) writeResponse(conn net.Conn, response []byte, fields logger.LogFields) bool {
	if _, err := conn.Write(response); err != nil {
		s.log.Warn("response write failed", withField(fields, "error", err.Error()))
		return false
	}
	return true
}

// route maps a parsed request to complete response bytes. This is the single
// exhaustive error-kind match of the pipeline.
func (s *Server) route(req *Request, fields logger.LogFields) []byte {
	if req.Method != "GET" && req.Method != "HEAD" {
		return BuildError(405)
	}

	resolved, info, err := s.files.Resolve(req.Path)
	if err != nil {
		// Escape attempts, resolution failures and genuine not-found all
		// answer 404: the wire response must not reveal which one it was.
		if errors.Is(err, fileserver.ErrPathEscape) {
			s.log.Warn("path escape attempt", fields)
		}
		return BuildError(404)
	}

	if info.IsDir() {
		if !strings.HasSuffix(req.Path, "/") && req.Path != "/" {
			return BuildRedirect(req.Version, "/"+req.Path+"/")
		}
		body, err := s.files.Listing(resolved)
		if err != nil {
			s.log.Error("directory listing failed", withField(fields, "error", err.Error()))
			return BuildError(500)
		}
		return s.resp.Build(req, body, ContentKind{Directory: true})
	}

	body, override, err := s.files.Body(resolved)
	switch {
	case errors.Is(err, fileserver.ErrPermissionDenied):
		s.log.Warn("permission denied", withField(fields, "error", err.Error()))
		return BuildError(403)
	case err != nil:
		s.log.Error("file read failed", withField(fields, "error", err.Error()))
		return BuildError(500)
	}
	return s.resp.Build(req, body, ContentKind{Override: override})
}

func withField(fields logger.LogFields, key string, value interface{}) logger.LogFields {
	out := make(logger.LogFields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
