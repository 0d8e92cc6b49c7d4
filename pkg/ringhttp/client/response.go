package client

import "github.com/watt-toolkit/ringhttp/pkg/ringhttp/http1"

// Response is the parsed view of a status line and header block, valid
// only against the connection's headerBuf and only until FinishResponse
// resets that buffer for the next response (same non-owning-view contract as
// server.RequestHeaders).
type Response struct {
	Buf        []byte
	Version    http1.Version
	StatusCode http1.StatusCode
	Reason     http1.Span
	Fields     http1.Fields
}

// ReasonText returns the reason-phrase bytes the peer actually sent,
// which may differ from StatusCode.Reason()'s canonical text.
func (r Response) ReasonText() []byte {
	return r.Buf[r.Reason.Off : r.Reason.Off+r.Reason.Len]
}
