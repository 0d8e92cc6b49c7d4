package http1

import "errors"

// Scanner and field-parse errors — pre-allocated, matched with errors.Is.
//
// These map to the wire response codes in the table of spec section 7;
// the server and client connection state machines do that mapping, the
// scanners and field accessors here only ever return these sentinels.
var (
	// ErrBadRequest covers every malformed-input case the scanners and
	// field accessors detect that isn't one of the more specific errors
	// below (stray CR, empty field name, double SP, bad version token...).
	ErrBadRequest = errors.New("http1: bad request")

	// ErrUriTooLong indicates the request-line URI exceeded its configured
	// maximum length.
	ErrUriTooLong = errors.New("http1: uri too long")

	// ErrVersionNotSupported indicates HTTP/0.9 (bare CR after the URI,
	// no version token) or another version this layer does not parse.
	ErrVersionNotSupported = errors.New("http1: http version not supported")

	// ErrHeaderFieldsTooLong indicates the header block exceeded the
	// configured buffer growth cap before a terminating blank line was seen.
	ErrHeaderFieldsTooLong = errors.New("http1: header fields too long")

	// ErrInvalidContentLength indicates a malformed or duplicate-and-differing
	// Content-Length header.
	ErrInvalidContentLength = errors.New("http1: invalid content-length")

	// ErrInvalidField indicates a header line with no colon before CRLF.
	ErrInvalidField = errors.New("http1: invalid header field")

	// ErrInvalidInput indicates a header block not terminated by CRLF CRLF,
	// detected at Fields construction time.
	ErrInvalidInput = errors.New("http1: invalid input")

	// ErrScannerDone is the programming-error signal returned when Scan is
	// called again after a scanner already reported done.
	ErrScannerDone = errors.New("http1: scanner already done")
)

// Connection and transport-level errors, used by the server and client
// state machines (spec section 7's right-hand columns).
var (
	// ErrUnexpectedEOF indicates the peer closed mid-message (recv==0 with
	// some bytes already scanned for the current message).
	ErrUnexpectedEOF = errors.New("http1: unexpected eof")

	// ErrCanceled indicates a recv/send/connect was canceled by its linked
	// timeout.
	ErrCanceled = errors.New("http1: canceled")

	// ErrInternalServerError indicates the handler itself failed while
	// processing a fully-parsed request.
	ErrInternalServerError = errors.New("http1: internal server error")

	// ErrInvalidResponse indicates a malformed client-side status line or
	// header block.
	ErrInvalidResponse = errors.New("http1: invalid response")

	// ErrConnectionClosed indicates the peer closed the connection (recv==0)
	// before sending any byte of a new message.
	ErrConnectionClosed = errors.New("http1: connection closed")
)
