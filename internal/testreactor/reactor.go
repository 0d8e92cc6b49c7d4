// Package testreactor is a synchronous, in-memory fake of ioring.Submitter
// used to drive the server and client connection state machines in tests
// without a real socket. Every FD is backed by one side of a net.Pipe, so
// Recv/Send are real (blocking, deadline-bound) I/O calls against an
// in-memory conduit — tests can feed bytes one at a time to exercise
// fragmentation handling deterministically.
package testreactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

// ListenFD is the single fake listening descriptor every Reactor exposes;
// there is only ever one in this harness; a test dials in with Connect and
// picks the peer end up with Accept.
const ListenFD ioring.FD = 0

type fakeAddr string

func (a fakeAddr) Network() string { return "pipe" }
func (a fakeAddr) String() string  { return string(a) }

type pendingAccept struct {
	fd   ioring.FD
	addr net.Addr
}

// Reactor is a mu-guarded table of net.Pipe conns keyed by ioring.FD, and
// a queue of server-side pipe ends waiting to be picked up by Accept —
// mirroring the connection-table-plus-state-hook shape of a production
// test harness, simplified down to the one property this module's tests
// need: deterministic, fragmentable, two-sided byte streams.
type Reactor struct {
	mu      sync.Mutex
	nextFD  ioring.FD
	conns   map[ioring.FD]net.Conn
	pending chan pendingAccept
}

// NewReactor returns a Reactor ready to accept Connect calls.
func NewReactor() *Reactor {
	return &Reactor{
		conns:   make(map[ioring.FD]net.Conn),
		pending: make(chan pendingAccept, 64),
	}
}

func (r *Reactor) allocFD(c net.Conn) ioring.FD {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextFD++
	fd := r.nextFD
	r.conns[fd] = c
	return fd
}

// Dial is the test-side shortcut for ConnectWithTimeout: it creates a pipe
// pair, queues the server half for Accept, and returns the client half's
// FD directly, without going through the Submitter interface.
func (r *Reactor) Dial() ioring.FD {
	fd, _ := r.ConnectWithTimeout(context.Background(), "pipe", "test", 0)
	return fd
}

// Accept implements ioring.Submitter.
func (r *Reactor) Accept(ctx context.Context, listenFD ioring.FD) (ioring.FD, net.Addr, error) {
	select {
	case p := <-r.pending:
		return p.fd, p.addr, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

// ConnectWithTimeout implements ioring.Submitter. It ignores network/addr
// and timeout (the fake pipe never blocks on connection setup) and always
// succeeds, immediately queuing the peer end for a concurrent Accept call.
func (r *Reactor) ConnectWithTimeout(ctx context.Context, network, addr string, timeout time.Duration) (ioring.FD, error) {
	clientConn, serverConn := net.Pipe()
	clientFD := r.allocFD(clientConn)
	serverFD := r.allocFD(serverConn)
	r.pending <- pendingAccept{fd: serverFD, addr: fakeAddr(fmt.Sprintf("pipe:%d", clientFD))}
	return clientFD, nil
}

// RecvWithTimeout implements ioring.Submitter.
func (r *Reactor) RecvWithTimeout(ctx context.Context, fd ioring.FD, buf []byte, timeout time.Duration) ioring.Result {
	conn, ok := r.lookup(fd)
	if !ok {
		return ioring.Result{Err: fmt.Errorf("testreactor: unknown fd %d", fd)}
	}
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		conn.SetReadDeadline(time.Time{})
	}
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ioring.Result{N: n, Err: ioring.ErrCanceled}
		}
		if errors.Is(err, io.EOF) {
			return ioring.Result{N: 0, Err: nil}
		}
		return ioring.Result{N: n, Err: err}
	}
	return ioring.Result{N: n}
}

// SendWithTimeout implements ioring.Submitter.
func (r *Reactor) SendWithTimeout(ctx context.Context, fd ioring.FD, buf []byte, timeout time.Duration) ioring.Result {
	conn, ok := r.lookup(fd)
	if !ok {
		return ioring.Result{Err: fmt.Errorf("testreactor: unknown fd %d", fd)}
	}
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	} else {
		conn.SetWriteDeadline(time.Time{})
	}
	n, err := conn.Write(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ioring.Result{N: n, Err: ioring.ErrCanceled}
		}
		return ioring.Result{N: n, Err: err}
	}
	return ioring.Result{N: n}
}

// Timeout implements ioring.Submitter with a plain context-bound sleep.
func (r *Reactor) Timeout(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return ioring.ErrCanceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements ioring.Submitter.
func (r *Reactor) Close(fd ioring.FD) error {
	r.mu.Lock()
	conn, ok := r.conns[fd]
	delete(r.conns, fd)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return conn.Close()
}

func (r *Reactor) lookup(fd ioring.FD) (net.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[fd]
	return c, ok
}
