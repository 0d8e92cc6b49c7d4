// Package http1 implements the incremental, resumable HTTP/1.x message
// scanners and the byte-offset field model they share with the server and
// client connection state machines in sibling packages.
package http1

// Method IDs, for O(1) switching instead of string comparison on every
// dispatch. MethodCustom marks a token outside the canonical set; its text
// lives in Method.Custom, not in this table.
const (
	MethodGET uint8 = iota + 1
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH
	MethodCustom
)

var (
	methodGETBytes     = []byte("GET")
	methodHEADBytes    = []byte("HEAD")
	methodPOSTBytes    = []byte("POST")
	methodPUTBytes     = []byte("PUT")
	methodDELETEBytes  = []byte("DELETE")
	methodCONNECTBytes = []byte("CONNECT")
	methodOPTIONSBytes = []byte("OPTIONS")
	methodTRACEBytes   = []byte("TRACE")
	methodPATCHBytes   = []byte("PATCH")
)

// Protocol byte/string constants shared by the request-line and
// status-line scanners.
var (
	http10Bytes = []byte("HTTP/1.0")
	http11Bytes = []byte("HTTP/1.1")
	httpSlash   = []byte("HTTP/")
	crlf        = []byte("\r\n")
)

const (
	sp = ' '
	cr = '\r'
	lf = '\n'
	ht = '\t'
)

// Well-known header names, compared case-insensitively via bytescase.
var (
	headerContentLength    = []byte("Content-Length")
	headerConnection       = []byte("Connection")
	headerTransferEncoding = []byte("Transfer-Encoding")
	tokenKeepAlive         = []byte("keep-alive")
	tokenClose             = []byte("close")
	tokenChunked           = []byte("chunked")
)

// Default scanner/buffer limits (spec section 6's per-field defaults).
// The server and client connections build their scanners with these
// values; neither server.Config nor client.Config exposes them. The
// scanners themselves take the limits as constructor arguments so a
// single process can run scanners with different bounds concurrently.
const (
	DefaultMethodMaxLen  = 32
	DefaultURIMaxLen     = 8192
	DefaultVersionMaxLen = len("HTTP/1.1")
	DefaultReasonMaxLen  = 256
)
