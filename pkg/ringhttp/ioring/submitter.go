// Package ioring defines the completion-based I/O boundary this module is
// built against: an io_uring-style reactor that accepts submissions and
// resolves them asynchronously, rather than a net.Conn the caller reads
// and writes synchronously. No implementation lives here — the reactor
// itself, and any TLS termination layered under it, are external
// collaborators supplied by the embedder.
package ioring

import (
	"context"
	"net"
	"time"
)

// FD identifies an accepted or connected socket within a Submitter. Its
// meaning (file descriptor, handle, slot index) is entirely up to the
// Submitter implementation; this module only ever compares FDs for
// equality and passes them back into later calls.
type FD int

// Result carries the outcome of one completed submission.
type Result struct {
	N   int   // bytes transferred, for Recv/Send
	Err error // non-nil on failure; ErrCanceled if the linked timeout fired first
}

// Submitter is the abstraction a connection state machine in server or
// client submits work to. Every method blocks the calling goroutine until
// its submission resolves and returns the result directly; how the reactor
// resolves it underneath is the implementation's choice. Each server
// connection runs on its own goroutine, so a blocked call holds up only
// that connection.
//
// Accept, ConnectWithTimeout, RecvWithTimeout, and SendWithTimeout all take
// a context.Context to carry the submission's linked timeout and
// cancellation; Timeout exists separately for a bare delay with no
// associated I/O (spec section 6). The connection state machines in this
// module do not call Timeout: the server's idle wait is a RecvWithTimeout
// bounded by Config.IdleTimeout.
type Submitter interface {
	// Accept submits an accept on the given listening FD. It resolves to a
	// newly accepted FD and the peer's address once a connection arrives.
	Accept(ctx context.Context, listenFD FD) (FD, net.Addr, error)

	// ConnectWithTimeout submits a connect to addr, canceled if it hasn't
	// resolved within timeout.
	ConnectWithTimeout(ctx context.Context, network, addr string, timeout time.Duration) (FD, error)

	// RecvWithTimeout submits a read of up to len(buf) bytes into buf from
	// fd, canceled if it hasn't resolved within timeout. Result.N == 0 with
	// a nil error indicates the peer closed its write side (EOF).
	RecvWithTimeout(ctx context.Context, fd FD, buf []byte, timeout time.Duration) Result

	// SendWithTimeout submits a write of buf to fd, canceled if it hasn't
	// resolved within timeout. A short write (Result.N < len(buf)) with a
	// nil error is possible; the caller resubmits the remainder.
	SendWithTimeout(ctx context.Context, fd FD, buf []byte, timeout time.Duration) Result

	// Timeout submits a bare delay with no associated I/O, resolving (with
	// ErrCanceled) after d unless ctx is canceled first.
	Timeout(ctx context.Context, d time.Duration) error

	// Close releases fd and any reactor-side state associated with it.
	Close(fd FD) error
}
