package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/benzlokzik/singlefile-webserver/internal/config"
	"github.com/benzlokzik/singlefile-webserver/internal/fileserver"
	"github.com/benzlokzik/singlefile-webserver/internal/logger"
)

// Startup failures surfaced by Run. ErrBindUnavailable and ErrSelfTestFailed
// are per-port outcomes; ErrNoUsablePort is the aggregate when every candidate
// loses the race.
var (
	ErrBindUnavailable = errors.New("port could not be bound")
	ErrSelfTestFailed  = errors.New("bound port failed self-test")
	ErrNoUsablePort    = errors.New("no candidate port became usable")
)

// Server owns the listener lifecycle: it races the candidate ports, promotes
// the first self-tested winner and serves connections on it until the context
// is cancelled.
type Server struct {
	cfg   *config.Config
	log   *logger.Logger
	files *fileserver.FileServer
	resp  *ResponseBuilder
}

// New wires a Server from validated configuration. The document root must
// already be resolved and checked by config validation.
func New(cfg *config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDiscard()
	}
	files := fileserver.New(cfg.Server.DocumentRoot, fileserver.NewMimeTable(cfg.MimeTypes), log)
	return &Server{
		cfg:   cfg,
		log:   log,
		files: files,
		resp: &ResponseBuilder{
			ServerName: cfg.Server.Name,
			MimeType:   files.MimeType,
		},
	}
}

// Run races the configured candidate ports and then blocks serving the winner
// until ctx is cancelled or the winner's accept loop dies. It returns
// ErrNoUsablePort when every candidate fails to bind or self-test.
func (s *Server) Run(ctx context.Context) error {
	winner, err := s.racePorts(ctx)
	if err != nil {
		return err
	}
	s.log.Info("serving", logger.LogFields{
		"port": winner.port,
		"addr": winner.ln.Addr().String(),
		"root": s.cfg.Server.DocumentRoot,
	})

	go func() {
		<-ctx.Done()
		winner.ln.Close()
	}()
	<-winner.done
	if ctx.Err() != nil {
		s.log.Info("shutdown complete", logger.LogFields{"port": winner.port})
		return nil
	}
	return fmt.Errorf("accept loop on port %d terminated unexpectedly", winner.port)
}

func (s *Server) addr(port int) string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.BindHost, port)
}
