package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

// Server accepts connections on a listening FD and drives each one through
// its per-connection state machine, via a shared ioring.Submitter — the
// completion-based analogue of the teacher's BaseServer/ShockwaveServer
// pair (server/server.go, server_shockwave.go), restructured around the
// slot table spec section 4.6 requires instead of a bare accept-loop.
type Server struct {
	cfg Config
	sub ioring.Submitter

	mu           sync.Mutex
	slots        *slotTable
	shuttingDown atomic.Bool
	done         chan struct{}
	doneOnce     sync.Once
}

// New builds a Server bound to sub, applying Config defaults and
// validating the result — an invalid Config is rejected here rather than
// surfacing as a panic deep in a connection's state machine.
func New(cfg Config, sub ioring.Submitter) (*Server, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Server{
		cfg:   cfg,
		sub:   sub,
		slots: newSlotTable(),
		done:  make(chan struct{}),
	}, nil
}

// Run accepts connections on listenFD until the context is canceled or
// RequestShutdown has been called, dispatching each to its own connection
// goroutine. The shutdown flag is checked between Accept calls: an Accept
// already waiting is not interrupted, and a connection it returns after
// shutdown is closed at once. Run itself returns once the accept loop
// stops; call Done to wait for in-flight connections to finish draining.
func (s *Server) Run(ctx context.Context, listenFD ioring.FD) error {
	for {
		if s.shuttingDown.Load() {
			return nil
		}

		fd, _, err := s.sub.Accept(ctx, listenFD)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.cfg.Logger.Printf("ringhttp/server: accept error: %v", err)
			continue
		}

		s.mu.Lock()
		if s.shuttingDown.Load() {
			s.mu.Unlock()
			s.sub.Close(fd)
			continue
		}
		if s.cfg.MaxConnections > 0 && s.slots.count() >= s.cfg.MaxConnections {
			s.mu.Unlock()
			s.sub.Close(fd)
			continue
		}
		conn := newConnection(0, fd, s.sub, &s.cfg, s.cfg.Handler, &s.shuttingDown)
		id := s.slots.acquire(conn)
		conn.id = id
		s.mu.Unlock()

		go s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, c *connection) {
	c.run(ctx)
	s.mu.Lock()
	s.slots.release(c.id)
	empty := s.slots.count() == 0
	s.mu.Unlock()
	c.release()
	if empty && s.shuttingDown.Load() {
		s.closeDone()
	}
}

func (s *Server) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// RequestShutdown marks the server as draining (which ends Run's accept
// loop at its next pass, see Run), and closes every currently idle
// connection immediately — spec section 4.6:
// "iterates current slots and closes any connection not currently
// processing". Connections mid-request keep going; decideClose (per
// connection_phases.go) consults the same flag so each one closes after
// its current response instead of re-entering keep-alive. done only
// closes once every slot is empty (spec section 3's invariant), which may
// already be true by the time this returns.
func (s *Server) RequestShutdown() {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	var toClose []*connection
	s.slots.forEach(func(c *connection) {
		if c.waitingIdle.Load() {
			toClose = append(toClose, c)
		}
	})
	empty := s.slots.count() == 0
	s.mu.Unlock()

	for _, c := range toClose {
		c.forceClose()
	}
	if empty {
		s.closeDone()
	}
}

// Done returns a channel closed once shutdown has been requested and every
// connection slot has emptied out (spec section 3's "done" invariant).
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Shutdown calls RequestShutdown and blocks until Done closes, or ctx is
// done first (spec section 8 property "shutdown quiescence": no
// connection is dropped mid-response).
func (s *Server) Shutdown(ctx context.Context) error {
	s.RequestShutdown()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveConnections returns the current occupied-slot count.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.count()
}

// ConnStats is a point-in-time snapshot of one connection's observability
// counters, grounded on http11/connection.go's RequestCount/IdleTime.
type ConnStats struct {
	ID           int
	RequestCount int
	IdleTime     time.Duration
}

// Stats returns a snapshot of every currently active connection, useful for
// a shutdown-quiescence decision (spec section 4.6) or for an operator
// dashboard.
func (s *Server) Stats() []ConnStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConnStats, 0, s.slots.count())
	s.slots.forEach(func(c *connection) {
		out = append(out, ConnStats{ID: c.id, RequestCount: c.RequestCount(), IdleTime: c.IdleTime()})
	})
	return out
}
