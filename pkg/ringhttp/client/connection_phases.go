package client

import (
	"context"
	"errors"

	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

// SendFull writes buf to the connection in full, per spec section 4.5's
// send phase. Callers build the request line, header block, and any body
// into buf themselves — the client package doesn't own request framing
// the way server owns response framing, since a caller already has a
// concrete request in hand before Connect is even called.
func (c *Connection) SendFull(ctx context.Context, buf []byte) error {
	for len(buf) > 0 {
		res := c.sub.SendWithTimeout(ctx, c.fd, buf, c.cfg.SendTimeout)
		if res.Err != nil {
			if errors.Is(res.Err, ioring.ErrCanceled) {
				return http1.ErrCanceled
			}
			return res.Err
		}
		buf = buf[res.N:]
	}
	return nil
}

// RecvResponseHeader scans the status line and header block, growing the
// response-header buffer in ResponseHeaderBufIniLen increments up to
// ResponseHeaderBufMaxLen (spec section 4.5). A peer close before the
// header block completes surfaces as ErrUnexpectedEOF if any bytes had
// already been read, matching the "recv==0 with partial data" policy.
func (c *Connection) RecvResponseHeader(ctx context.Context) (Response, error) {
	for {
		if !c.slDone {
			newPos, done, err := c.sl.Scan(c.headerBuf.B, c.scanPos)
			c.scanPos = newPos
			if err != nil {
				return Response{}, err
			}
			if done {
				c.slDone = true
				c.headerBlockStart = c.scanPos
			}
		}
		if c.slDone {
			newPos, done, err := c.hb.Scan(c.headerBuf.B, c.scanPos)
			c.scanPos = newPos
			if err != nil {
				if errors.Is(err, http1.ErrBadRequest) {
					return Response{}, http1.ErrInvalidResponse
				}
				return Response{}, err
			}
			if done {
				fields, ferr := http1.NewFields(c.headerBuf.B, c.headerBlockStart, c.scanPos)
				if ferr != nil {
					return Response{}, ferr
				}
				return c.finishHeaders(fields)
			}
		}
		if len(c.headerBuf.B) >= c.cfg.ResponseHeaderBufMaxLen {
			return Response{}, http1.ErrHeaderFieldsTooLong
		}
		chunk := c.chunkSize()
		if remaining := c.cfg.ResponseHeaderBufMaxLen - len(c.headerBuf.B); chunk > remaining {
			chunk = remaining
		}
		if _, err := c.recv(ctx, c.headerBuf, chunk); err != nil {
			return Response{}, err
		}
	}
}

// finishHeaders resolves Content-Length and assembles the Response view,
// per spec section 4.5's policy: absent Content-Length means the
// response is considered complete after headers (open question 2's
// server-side policy applied symmetrically on the client).
func (c *Connection) finishHeaders(fields http1.Fields) (Response, error) {
	n, ok, err := fields.GetContentLength(c.headerBuf.B)
	if err != nil {
		return Response{}, err
	}
	c.haveContentLength = ok
	c.contentRemaining = n
	c.headersOnly = !ok

	c.resp = Response{
		Buf:        c.headerBuf.B,
		Version:    c.sl.Version,
		StatusCode: c.sl.StatusCode,
		Reason:     c.sl.Reason,
		Fields:     fields,
	}
	return c.resp, nil
}

// RecvResponseContentFragment returns the next body fragment and whether
// it was the last one, per spec section 4.5's receive-body-fragments
// phase. Calling it once FullyReadResponseContent would already report
// true returns an empty last fragment immediately without touching the
// wire.
func (c *Connection) RecvResponseContentFragment(ctx context.Context) ([]byte, bool, error) {
	if c.FullyReadResponseContent() {
		return nil, true, nil
	}
	// Body bytes that arrived in the same recv as the header block are
	// returned first, before any further recv.
	if extra := c.headerBuf.B[c.scanPos:]; len(extra) > 0 {
		if int64(len(extra)) > c.contentRemaining {
			extra = extra[:c.contentRemaining]
		}
		c.scanPos += len(extra)
		c.contentRemaining -= int64(len(extra))
		return extra, c.FullyReadResponseContent(), nil
	}
	c.bodyBuf.Reset()
	want := int64(c.cfg.ResponseBodyBufLen)
	if want > c.contentRemaining {
		want = c.contentRemaining
	}
	n, err := c.recv(ctx, c.bodyBuf, int(want))
	if err != nil {
		if errors.Is(err, http1.ErrConnectionClosed) {
			return nil, false, http1.ErrUnexpectedEOF
		}
		return nil, false, err
	}
	c.contentRemaining -= int64(n)
	return c.bodyBuf.B[:n], c.FullyReadResponseContent(), nil
}

// FullyReadResponseContent reports whether no further body bytes remain,
// per spec section 4.5: true once content_length_read_so_far reaches
// content_length, or immediately when Content-Length was absent.
func (c *Connection) FullyReadResponseContent() bool {
	return c.headersOnly || (c.haveContentLength && c.contentRemaining <= 0)
}

// FinishResponse tears down scanner/buffer state for the next request on
// this connection, then increments the completed-request counter. Call
// it once FullyReadResponseContent is true.
func (c *Connection) FinishResponse() {
	c.requestCount++
	c.resetForNextResponse()
}
