package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

// phase is the per-connection state of spec section 4.4.
type phase uint8

const (
	phaseReceivingHeaders phase = iota
	phaseReceivingContent
	phaseSending
	phaseIdle
	phaseClosing
)

// connection is one accepted connection's state, driven entirely by its
// own goroutine calling into the shared ioring.Submitter — the completion-
// based analogue of the teacher's Connection.Serve() loop over a blocking
// net.Conn (http11/connection.go). Only that goroutine writes these fields,
// and — same as the teacher's per-connection fields — there is no locking;
// the two fields other goroutines touch (waitingIdle, shuttingDown) are
// atomics.
type connection struct {
	id  int
	fd  ioring.FD
	sub ioring.Submitter
	cfg *Config

	handler Handler

	phase phase

	headerBuf    *bytebufferpool.ByteBuffer
	headerProfile int // 0 = ClientHeaderBufferSize, >=1 = large-buffer increment count
	scanPos      int
	requestStart int

	rl               *http1.RequestLineScanner
	hb               *http1.HeaderBlockScanner
	rlDone           bool
	headerBlockStart int

	reqMethod  http1.Method
	reqURI     http1.Span
	reqVersion http1.Version
	reqFields  http1.Fields

	bodyBuf          *bytebufferpool.ByteBuffer
	contentLength    int64
	haveContentLen   bool
	contentRemaining int64

	sendBuf *bytebufferpool.ByteBuffer

	requestCount int
	keepAlive    bool
	closeAfter   bool
	idleSince    time.Time

	// waitingIdle is set only while the connection's goroutine is blocked
	// in idle()'s recv, so RequestShutdown can tell a connection sitting
	// between requests apart from one mid-request (spec section 4.6).
	waitingIdle atomic.Bool
	// shuttingDown points at the owning Server's flag; decideClose
	// consults it to suppress keep-alive once shutdown has been
	// requested, without taking the Server's lock.
	shuttingDown *atomic.Bool
}

// RequestCount returns the number of requests fully served on this
// connection so far, grounded on http11/connection.go's RequestCount.
func (c *connection) RequestCount() int { return c.requestCount }

// IdleTime returns how long the connection has been sitting in the Idle
// phase, or zero if it isn't currently idle, grounded on
// http11/connection.go's IdleTime.
func (c *connection) IdleTime() time.Duration {
	if c.phase != phaseIdle {
		return 0
	}
	return time.Since(c.idleSince)
}

// connPool recycles *connection structs across accepted connections, the
// same way bytebufferpool recycles their buffers — grounded on
// http11/pool.go's sync.Pool-of-objects convention, applied here to the
// connection itself rather than Request/ResponseWriter.
var connPool = sync.Pool{New: func() any { return new(connection) }}

func newConnection(id int, fd ioring.FD, sub ioring.Submitter, cfg *Config, handler Handler, shuttingDown *atomic.Bool) *connection {
	c := connPool.Get().(*connection)
	*c = connection{
		id:           id,
		fd:           fd,
		sub:          sub,
		cfg:          cfg,
		handler:      handler,
		headerBuf:    bytebufferpool.Get(),
		bodyBuf:      bytebufferpool.Get(),
		sendBuf:      bytebufferpool.Get(),
		shuttingDown: shuttingDown,
	}
	if cap(c.sendBuf.B) < cfg.ResponseBufferSize {
		c.sendBuf.B = make([]byte, 0, cfg.ResponseBufferSize)
	}
	c.rl = http1.NewRequestLineScanner(http1.DefaultMethodMaxLen, http1.DefaultURIMaxLen, http1.DefaultVersionMaxLen)
	c.hb = http1.NewHeaderBlockScanner(cfg.maxHeaderLen())
	c.handler.Start()
	return c
}

func (c *connection) release() {
	bytebufferpool.Put(c.headerBuf)
	bytebufferpool.Put(c.bodyBuf)
	bytebufferpool.Put(c.sendBuf)
	c.sub.Close(c.fd)
	connPool.Put(c)
}

// forceClose closes the connection's fd directly, used by RequestShutdown
// to reclaim connections sitting idle between requests. release() (called
// once the connection's own goroutine notices the closed fd and unwinds)
// calls sub.Close again on the same fd; both ioring.Submitter
// implementations treat a second Close on an already-removed fd as a
// no-op.
func (c *connection) forceClose() {
	c.sub.Close(c.fd)
}

// run drives the connection through its phases until it reaches Closing.
// It returns only once the connection is fully done (spec section 4.4's
// "Closing" terminal phase) — a dispatch error never leaves the loop, it
// transitions straight into the error-response-then-close path.
func (c *connection) run(ctx context.Context) {
	for c.phase != phaseClosing {
		var err error
		switch c.phase {
		case phaseReceivingHeaders:
			err = c.receiveHeaders(ctx)
		case phaseReceivingContent:
			err = c.receiveContent(ctx)
		case phaseSending:
			err = c.send(ctx)
		case phaseIdle:
			err = c.idle(ctx)
		}
		if err != nil {
			c.handleError(ctx, err)
		}
	}
}

func (c *connection) resetForNextRequest() {
	c.headerBuf.Reset()
	c.bodyBuf.Reset()
	c.sendBuf.Reset()
	c.headerProfile = 0
	c.scanPos = 0
	c.requestStart = 0
	c.rl.Reset()
	c.hb.Reset()
	c.rlDone = false
	c.headerBlockStart = 0
	c.haveContentLen = false
	c.contentRemaining = 0
	c.phase = phaseReceivingHeaders
}

// growHeaderBuf implements the small→large→large×N buffer growth policy
// of spec section 5: ClientHeaderBufferSize initially, then
// LargeClientHeaderBufferSize increments up to
// LargeClientHeaderBufferMaxCount before giving up.
func (c *connection) growHeaderBuf() error {
	if c.headerProfile >= c.cfg.LargeClientHeaderBufferMaxCount {
		return http1.ErrHeaderFieldsTooLong
	}
	c.headerProfile++
	return nil
}

func (c *connection) recv(ctx context.Context, buf *bytebufferpool.ByteBuffer, chunkSize int) (int, error) {
	start := len(buf.B)
	grown := append(buf.B, make([]byte, chunkSize)...)
	buf.B = grown[:start]
	res := c.sub.RecvWithTimeout(ctx, c.fd, grown[start:start+chunkSize], c.cfg.RecvTimeout)
	if res.Err != nil {
		if errors.Is(res.Err, ioring.ErrCanceled) {
			return 0, http1.ErrCanceled
		}
		return 0, res.Err
	}
	buf.B = grown[:start+res.N]
	if res.N == 0 {
		return 0, http1.ErrUnexpectedEOF
	}
	return res.N, nil
}
