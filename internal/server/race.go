package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/benzlokzik/singlefile-webserver/internal/logger"
	"github.com/benzlokzik/singlefile-webserver/internal/util"
)

const selfTestTimeout = 2 * time.Second

// raceResult is one candidate port's outcome. On success ln is the live
// listener whose accept loop (started at bind time so the self-test has
// something to talk to) is already running; done closes when that loop exits.
type raceResult struct {
	port int
	ln   net.Listener
	done chan struct{}
	err  error
}

// racePorts attempts every candidate port concurrently and returns the first
// one that both binds and passes its self-test. Listeners of later successes
// are closed; the winner's accept loop keeps running and becomes the server's
// long-lived loop.
func (s *Server) racePorts(ctx context.Context) (*raceResult, error) {
	ports := s.cfg.Server.CandidatePorts
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan *raceResult, len(ports))
	for _, port := range ports {
		go func(port int) {
			results <- s.attemptPort(raceCtx, port)
		}(port)
	}

	var winner *raceResult
	for range ports {
		res := <-results
		if res.err != nil {
			s.log.Warn("candidate port failed", logger.LogFields{
				"port":  res.port,
				"error": res.err.Error(),
			})
			continue
		}
		if winner == nil {
			winner = res
			// First usable port wins; tell the still-running attempts to
			// stand down.
			cancel()
			continue
		}
		// A second port also came up before cancellation reached it. Tear it
		// down fully before moving on so no stray accept loop outlives the
		// race.
		s.log.Debug("closing extra successful candidate", logger.LogFields{"port": res.port})
		res.ln.Close()
		<-res.done
	}

	if winner == nil {
		return nil, fmt.Errorf("%w: tried %v", ErrNoUsablePort, ports)
	}
	return winner, nil
}

// attemptPort binds one candidate, starts its accept loop, and verifies the
// port actually answers requests before reporting success. A bind or
// self-test failure cleans up and reports the reason; cancellation during the
// attempt counts as a loss.
func (s *Server) attemptPort(ctx context.Context, port int) *raceResult {
	res := &raceResult{port: port}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr(port))
	if err != nil {
		if util.IsAddrInUse(err) {
			res.err = fmt.Errorf("%w: port %d in use", ErrBindUnavailable, port)
		} else {
			res.err = fmt.Errorf("%w: %v", ErrBindUnavailable, err)
		}
		return res
	}

	// The accept loop starts now, not after promotion: the self-test below is
	// a real client of this listener.
	res.ln = ln
	res.done = make(chan struct{})
	go s.acceptLoop(ln, res.done)

	if err := s.selfTest(ctx, port); err != nil {
		ln.Close()
		<-res.done
		res.ln = nil
		res.done = nil
		res.err = fmt.Errorf("%w: %v", ErrSelfTestFailed, err)
		return res
	}

	if ctx.Err() != nil {
		// Lost the race while self-testing.
		ln.Close()
		<-res.done
		res.ln = nil
		res.done = nil
		res.err = fmt.Errorf("%w: cancelled", ErrBindUnavailable)
		return res
	}
	s.log.Debug("candidate port passed self-test", logger.LogFields{"port": port})
	return res
}

// selfTest dials the freshly bound port as an ordinary client and requires a
// non-empty response. Both loopback and the configured bind host are checked
// so a port that binds but cannot answer on its advertised address is never
// promoted.
func (s *Server) selfTest(ctx context.Context, port int) error {
	hosts := []string{"127.0.0.1"}
	if bh := s.cfg.Server.BindHost; bh != "" && bh != "127.0.0.1" && bh != "localhost" {
		hosts = append(hosts, bh)
	}
	for _, host := range hosts {
		if err := s.ping(ctx, host, port); err != nil {
			return fmt.Errorf("ping %s:%d: %w", host, port, err)
		}
	}
	return nil
}

func (s *Server) ping(ctx context.Context, host string, port int) error {
	dialCtx, cancel := context.WithTimeout(ctx, selfTestTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(selfTestTimeout))
	if _, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")); err != nil {
		return err
	}
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("empty response")
	}
	return nil
}

// acceptLoop serves the listener until it is closed, spawning one goroutine
// per connection. It closes done on exit so teardown can wait for it.
func (s *Server) acceptLoop(ln net.Listener, done chan struct{}) {
	defer close(done)
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed (shutdown or a lost race) or a fatal accept
			// error; either way this loop is finished.
			return
		}
		go s.handleConn(conn)
	}
}
