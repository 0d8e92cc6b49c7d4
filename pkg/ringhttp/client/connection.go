// Package client implements the client-side half of spec section 4.5:
// a single connection driven through connect/send/recv-headers/
// recv-body/close phases against an ioring.Submitter, symmetric to
// package server's state machine.
package client

import (
	"context"
	"errors"

	"github.com/valyala/bytebufferpool"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

// Connection is one outbound HTTP/1.x connection. Like server's
// connection, it belongs to a single goroutine at a time; nothing here
// is locked.
type Connection struct {
	cfg *Config
	sub ioring.Submitter

	fd        ioring.FD
	connected bool

	sendBuf *bytebufferpool.ByteBuffer

	headerBuf        *bytebufferpool.ByteBuffer
	scanPos          int
	headerBlockStart int

	sl     *http1.StatusLineScanner
	hb     *http1.HeaderBlockScanner
	slDone bool

	resp Response

	bodyBuf           *bytebufferpool.ByteBuffer
	haveContentLength bool
	contentRemaining  int64
	headersOnly       bool

	requestCount int
}

// NewConnection builds an unconnected Connection bound to sub, applying
// Config defaults and validating the result — an invalid Config is
// rejected here rather than surfacing as a panic deep in the state
// machine.
func NewConnection(cfg Config, sub ioring.Submitter) (*Connection, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &Connection{
		cfg:       &cfg,
		sub:       sub,
		sendBuf:   bytebufferpool.Get(),
		headerBuf: bytebufferpool.Get(),
		bodyBuf:   bytebufferpool.Get(),
	}
	c.sl = http1.NewStatusLineScanner(http1.DefaultVersionMaxLen, http1.DefaultReasonMaxLen)
	c.hb = http1.NewHeaderBlockScanner(cfg.ResponseHeaderBufMaxLen)
	return c, nil
}

// Connect dials addr over network ("tcp" in the ordinary case) via the
// Submitter, per spec section 4.5's connect phase.
func (c *Connection) Connect(ctx context.Context, network, addr string) error {
	fd, err := c.sub.ConnectWithTimeout(ctx, network, addr, c.cfg.ConnectTimeout)
	if err != nil {
		return err
	}
	c.fd = fd
	c.connected = true
	return nil
}

// Close releases the connection unconditionally — no linger, no retry,
// matching spec section 5's cancellation policy.
func (c *Connection) Close() error {
	bytebufferpool.Put(c.sendBuf)
	bytebufferpool.Put(c.headerBuf)
	bytebufferpool.Put(c.bodyBuf)
	if !c.connected {
		return nil
	}
	c.connected = false
	return c.sub.Close(c.fd)
}

// RequestCount reports how many full request/response cycles this
// connection has completed, mirroring server.connection's counterpart
// (http11/connection.go's RequestCount, per DESIGN.md).
func (c *Connection) RequestCount() int { return c.requestCount }

func (c *Connection) resetForNextResponse() {
	c.headerBuf.Reset()
	c.bodyBuf.Reset()
	c.scanPos = 0
	c.headerBlockStart = 0
	c.sl.Reset()
	c.hb.Reset()
	c.slDone = false
	c.haveContentLength = false
	c.contentRemaining = 0
	c.headersOnly = false
}

// chunkSize returns the next recv size, per spec section 4.5's "grows in
// ini_len increments" policy — a plain fixed increment, unlike the
// server's separate small/large buffer sizes, since the client has only
// one configured increment (ResponseHeaderBufIniLen) between the initial
// size and the absolute cap.
func (c *Connection) chunkSize() int {
	return c.cfg.ResponseHeaderBufIniLen
}

func (c *Connection) recv(ctx context.Context, buf *bytebufferpool.ByteBuffer, chunkSize int) (int, error) {
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
		if start > 0 {
			return 0, http1.ErrUnexpectedEOF
		}
		return 0, http1.ErrConnectionClosed
	}
	return res.N, nil
}
