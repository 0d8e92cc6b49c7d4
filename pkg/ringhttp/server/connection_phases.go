package server

import (
	"context"
	"errors"
	"time"

	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"
	"github.com/watt-toolkit/ringhttp/pkg/ringhttp/ioring"
)

func (c *connection) chunkSize() int {
	if c.headerProfile == 0 {
		return c.cfg.ClientHeaderBufferSize
	}
	return c.cfg.LargeClientHeaderBufferSize
}

// receiveHeaders scans the request line and header block, growing
// headerBuf and recv'ing more bytes as needed, until both are complete or
// an error occurs (spec section 4.4 "ReceivingHeaders").
func (c *connection) receiveHeaders(ctx context.Context) error {
	for {
		if !c.rlDone {
			newPos, done, err := c.rl.Scan(c.headerBuf.B, c.scanPos)
			c.scanPos = newPos
			if err != nil {
				return err
			}
			if done {
				c.rlDone = true
				c.reqMethod = c.rl.Method
				c.reqURI = c.rl.URI
				c.reqVersion = c.rl.Version
				c.headerBlockStart = c.scanPos
			}
		}
		if c.rlDone {
			newPos, done, err := c.hb.Scan(c.headerBuf.B, c.scanPos)
			c.scanPos = newPos
			if err != nil {
				return err
			}
			if done {
				fields, ferr := http1.NewFields(c.headerBuf.B, c.headerBlockStart, c.scanPos)
				if ferr != nil {
					return ferr
				}
				c.reqFields = fields
				return c.finishHeaders(ctx)
			}
		}
		if len(c.headerBuf.B) >= c.cfg.ClientHeaderBufferSize+c.headerProfile*c.cfg.LargeClientHeaderBufferSize {
			if err := c.growHeaderBuf(); err != nil {
				return err
			}
		}
		if _, err := c.recv(ctx, c.headerBuf, c.chunkSize()); err != nil {
			return err
		}
	}
}

// finishHeaders validates Content-Length/Transfer-Encoding, dispatches
// OnRequestHeaders, and decides whether a body follows (spec section 4.2
// open question 2: absent Content-Length means no body, reported as a
// single empty isLast fragment).
func (c *connection) finishHeaders(ctx context.Context) error {
	if c.reqFields.HasTransferEncoding(c.headerBuf.B) {
		return http1.ErrBadRequest
	}
	n, ok, err := c.reqFields.GetContentLength(c.headerBuf.B)
	if err != nil {
		return err
	}
	c.haveContentLen = ok
	c.contentLength = n
	c.contentRemaining = n

	result := c.handler.OnRequestHeaders(RequestHeaders{
		Buf:     c.headerBuf.B,
		Method:  c.reqMethod,
		URI:     c.reqURI,
		Version: c.reqVersion,
		Fields:  c.reqFields,
	})

	c.applyResult(result)

	if !ok || n == 0 {
		bodyResult := c.handler.OnBodyFragment(nil, true)
		c.applyResult(bodyResult)
		c.phase = phaseSending
		return nil
	}

	// Body bytes that arrived in the same recv as the header block are
	// handed to the handler before any further recv.
	if extra := c.headerBuf.B[c.scanPos:]; len(extra) > 0 {
		if int64(len(extra)) > c.contentRemaining {
			extra = extra[:c.contentRemaining]
		}
		c.contentRemaining -= int64(len(extra))
		c.applyResult(c.handler.OnBodyFragment(extra, c.contentRemaining == 0))
		if c.contentRemaining == 0 {
			c.phase = phaseSending
			return nil
		}
	}

	c.phase = phaseReceivingContent
	return nil
}

// receiveContent feeds body bytes to the handler fragment by fragment
// until contentRemaining reaches zero (spec section 4.4
// "ReceivingContent").
func (c *connection) receiveContent(ctx context.Context) error {
	for c.contentRemaining > 0 {
		c.bodyBuf.Reset()
		want := int64(c.cfg.ClientBodyBufferSize)
		if want > c.contentRemaining {
			want = c.contentRemaining
		}
		n, err := c.recv(ctx, c.bodyBuf, int(want))
		if err != nil {
			return err
		}
		c.contentRemaining -= int64(n)
		isLast := c.contentRemaining == 0
		result := c.handler.OnBodyFragment(c.bodyBuf.B[:n], isLast)
		c.applyResult(result)
	}
	c.phase = phaseSending
	return nil
}

// applyResult folds a handler Result into the pending response buffer and
// close decision. Calling it more than once per request accumulates body
// writes, letting OnRequestHeaders write a header-only response and
// OnBodyFragment append to it, or OnBodyFragment alone assemble the whole
// thing on its isLast call.
func (c *connection) applyResult(r Result) {
	if r.Close {
		c.closeAfter = true
	}
	if r.StatusCode != 0 {
		c.writeStatusLine(r.StatusCode)
		for _, h := range r.Headers {
			c.writeHeader(h.Name, h.Value)
		}
		c.writeHeader("Content-Length", itoa(len(r.Body)))
		c.writeCRLF()
	}
	c.sendBuf.Write(r.Body)
}

func (c *connection) writeStatusLine(code http1.StatusCode) {
	c.sendBuf.WriteString(c.reqVersion.String())
	c.sendBuf.WriteString(" ")
	c.sendBuf.WriteString(code.String())
	c.sendBuf.WriteString("\r\n")
}

func (c *connection) writeHeader(name, value string) {
	c.sendBuf.WriteString(name)
	c.sendBuf.WriteString(": ")
	c.sendBuf.WriteString(value)
	c.sendBuf.WriteString("\r\n")
}

func (c *connection) writeCRLF() {
	c.sendBuf.WriteString("\r\n")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// send flushes sendBuf to the peer, then decides keep-alive per spec
// section 4.2's Connection-token truth table, grounded on the teacher's
// shouldCloseAfterRequest (http11/connection.go).
func (c *connection) send(ctx context.Context) error {
	b := c.sendBuf.B
	for len(b) > 0 {
		res := c.sub.SendWithTimeout(ctx, c.fd, b, c.cfg.SendTimeout)
		if res.Err != nil {
			if errors.Is(res.Err, ioring.ErrCanceled) {
				return http1.ErrCanceled
			}
			return res.Err
		}
		b = b[res.N:]
	}
	c.requestCount++
	if c.decideClose() {
		c.phase = phaseClosing
		return nil
	}
	c.resetForNextRequest()
	c.phase = phaseIdle
	return nil
}

// decideClose implements the keep-alive truth table: HTTP/1.1 defaults to
// keep-alive unless Connection: close is present; HTTP/1.0 defaults to
// close unless Connection: keep-alive is present. A handler-requested
// Close always wins, and so does a pending server shutdown (spec section
// 4.6: the flag suppresses keep-alive so draining connections close after
// their current response instead of going idle again).
func (c *connection) decideClose() bool {
	if c.closeAfter {
		return true
	}
	if c.shuttingDown != nil && c.shuttingDown.Load() {
		return true
	}
	switch c.reqVersion.Kind {
	case http1.VersionHTTP11:
		return c.reqFields.HasConnectionToken(c.headerBuf.B, []byte("close"))
	case http1.VersionHTTP10:
		return !c.reqFields.HasConnectionToken(c.headerBuf.B, []byte("keep-alive"))
	default:
		return true
	}
}

// idle waits for the next request's first byte, or the idle timeout,
// whichever comes first (spec section 4.4 "Idle").
func (c *connection) idle(ctx context.Context) error {
	c.idleSince = time.Now()
	c.waitingIdle.Store(true)
	defer c.waitingIdle.Store(false)
	buf := make([]byte, c.cfg.ClientHeaderBufferSize)
	res := c.sub.RecvWithTimeout(ctx, c.fd, buf, c.cfg.IdleTimeout)
	if res.Err != nil {
		c.phase = phaseClosing
		return nil
	}
	if res.N == 0 {
		c.phase = phaseClosing
		return nil
	}
	c.headerBuf.Write(buf[:res.N])
	c.phase = phaseReceivingHeaders
	return nil
}

// handleError maps a scanner/connection error to a response per spec
// section 7, sends it best-effort, and closes the connection.
func (c *connection) handleError(ctx context.Context, err error) {
	code := errorStatusCode(err)
	if code != 0 && c.phase != phaseClosing {
		c.sendBuf.Reset()
		c.writeErrorResponse(code)
		b := c.sendBuf.B
		for len(b) > 0 {
			res := c.sub.SendWithTimeout(ctx, c.fd, b, c.cfg.SendTimeout)
			if res.Err != nil || res.N == 0 {
				break
			}
			b = b[res.N:]
		}
	}
	c.phase = phaseClosing
}

// writeErrorResponse writes a self-contained status-line-plus-headers
// response for a connection-level error, always as HTTP/1.1 — a request
// that failed to scan (VersionNotSupported chief among them) may never
// have reached a recognized version field, so there's nothing of the
// request's own to echo back.
func (c *connection) writeErrorResponse(code http1.StatusCode) {
	c.sendBuf.WriteString("HTTP/1.1 ")
	c.sendBuf.WriteString(code.String())
	c.sendBuf.WriteString("\r\n")
	c.writeHeader("Content-Length", "0")
	c.writeCRLF()
}

// errorStatusCode maps the http1 error taxonomy to a response status, per
// spec section 7's error table. ErrUnexpectedEOF and ErrCanceled (no peer
// left to respond to) return 0; any error not named here, including a
// Submitter's own I/O error, maps to 500.
func errorStatusCode(err error) http1.StatusCode {
	switch {
	case errors.Is(err, http1.ErrUriTooLong):
		return http1.StatusURITooLong
	case errors.Is(err, http1.ErrVersionNotSupported):
		return http1.StatusHTTPVersionNotSupported
	case errors.Is(err, http1.ErrHeaderFieldsTooLong):
		return http1.StatusBadRequest
	case errors.Is(err, http1.ErrInvalidContentLength):
		return http1.StatusBadRequest
	case errors.Is(err, http1.ErrInvalidField):
		return http1.StatusBadRequest
	case errors.Is(err, http1.ErrInvalidInput):
		return http1.StatusBadRequest
	case errors.Is(err, http1.ErrBadRequest):
		return http1.StatusBadRequest
	case errors.Is(err, http1.ErrUnexpectedEOF), errors.Is(err, http1.ErrCanceled):
		return 0
	default:
		return http1.StatusInternalServerError
	}
}
