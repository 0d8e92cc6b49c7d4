// Package netio is a reference ioring.Submitter backed by real TCP
// sockets (net.Listener / net.Conn), adapted from the teacher's
// ShockwaveServer accept loop (server/server_shockwave.go) — the same
// listen-then-Accept-in-a-loop shape, but producing ioring.FD values and
// deadline-bound Recv/Send instead of invoking a handler directly.
//
// This is what an embedder reaches for before they have a real io_uring
// reactor wired up: it satisfies ioring.Submitter completely, just without
// the completion-queue batching a true io_uring backend would add.
package netio

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

// Submitter implements ioring.Submitter over net.Listener/net.Conn.
type Submitter struct {
	mu        sync.Mutex
	nextFD    ioring.FD
	listeners map[ioring.FD]net.Listener
	conns     map[ioring.FD]net.Conn
}

// New returns an empty Submitter; use Listen to register a listener and
// obtain the ioring.FD to pass to server.Server.Run.
func New() *Submitter {
	return &Submitter{
		listeners: make(map[ioring.FD]net.Listener),
		conns:     make(map[ioring.FD]net.Conn),
	}
}

// Listen opens a TCP listener on addr and registers it, returning the FD
// Server.Run's listenFD argument expects.
func (s *Submitter) Listen(network, addr string) (ioring.FD, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.nextFD++
	fd := s.nextFD
	s.listeners[fd] = ln
	s.mu.Unlock()
	return fd, nil
}

// CloseListener closes and unregisters a listener FD, unblocking any
// Accept call in progress on it.
func (s *Submitter) CloseListener(fd ioring.FD) error {
	s.mu.Lock()
	ln, ok := s.listeners[fd]
	delete(s.listeners, fd)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("netio: unknown listener fd %d", fd)
	}
	return ln.Close()
}

func (s *Submitter) allocConn(c net.Conn) ioring.FD {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFD++
	fd := s.nextFD
	s.conns[fd] = c
	return fd
}

func (s *Submitter) lookupConn(fd ioring.FD) (net.Conn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[fd]
	return c, ok
}

// Accept implements ioring.Submitter. A listener Close (from
// CloseListener, typically during server shutdown) unblocks it with the
// listener's own error, which the caller treats the same as ctx.Done.
func (s *Submitter) Accept(ctx context.Context, listenFD ioring.FD) (ioring.FD, net.Addr, error) {
	s.mu.Lock()
	ln, ok := s.listeners[listenFD]
	s.mu.Unlock()
	if !ok {
		return 0, nil, fmt.Errorf("netio: unknown listener fd %d", listenFD)
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	resCh := make(chan acceptResult, 1)
	go func() {
		c, err := ln.Accept()
		resCh <- acceptResult{c, err}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			return 0, nil, r.err
		}
		fd := s.allocConn(r.conn)
		return fd, r.conn.RemoteAddr(), nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

// ConnectWithTimeout implements ioring.Submitter.
func (s *Submitter) ConnectWithTimeout(ctx context.Context, network, addr string, timeout time.Duration) (ioring.FD, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return 0, err
	}
	return s.allocConn(conn), nil
}

// RecvWithTimeout implements ioring.Submitter.
func (s *Submitter) RecvWithTimeout(ctx context.Context, fd ioring.FD, buf []byte, timeout time.Duration) ioring.Result {
	conn, ok := s.lookupConn(fd)
	if !ok {
		return ioring.Result{Err: fmt.Errorf("netio: unknown fd %d", fd)}
	}
	if timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(timeout))
	}
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ioring.Result{N: n, Err: ioring.ErrCanceled}
		}
		if errors.Is(err, io.EOF) {
			return ioring.Result{N: n}
		}
		return ioring.Result{N: n, Err: err}
	}
	return ioring.Result{N: n}
}

// SendWithTimeout implements ioring.Submitter.
func (s *Submitter) SendWithTimeout(ctx context.Context, fd ioring.FD, buf []byte, timeout time.Duration) ioring.Result {
	conn, ok := s.lookupConn(fd)
	if !ok {
		return ioring.Result{Err: fmt.Errorf("netio: unknown fd %d", fd)}
	}
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
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
func (s *Submitter) Timeout(ctx context.Context, d time.Duration) error {
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
func (s *Submitter) Close(fd ioring.FD) error {
	s.mu.Lock()
	conn, ok := s.conns[fd]
	delete(s.conns, fd)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return conn.Close()
}
