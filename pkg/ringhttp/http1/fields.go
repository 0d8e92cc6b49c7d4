package http1

import (
	"iter"
	"strconv"

	"github.com/intuitivelabs/bytescase"
)

// Field is one "name: value" header line, as offsets into the buffer a
// Fields view was built over. Both spans have OWS already trimmed.
type Field struct {
	Name  Span
	Value Span
}

// Fields is a read-only view over a header block already known to end in
// a blank line (CRLF CRLF), per spec section 4.2. It owns no storage; Off
// is the offset of the first header line (or the terminating CRLF, if the
// block is empty), relative to buf.
type Fields struct {
	Off int
	End int // offset one past the terminating CRLF CRLF
}

// NewFields builds a Fields view over buf[off:end], where end must point
// one past a CRLF CRLF terminator already confirmed by the header-block
// scanner. NewFields itself only confirms the terminator (a lone CRLF for
// an empty block, CRLF CRLF otherwise); it does not re-validate grammar the
// scanner already checked field-by-field.
func NewFields(buf []byte, off, end int) (Fields, error) {
	n := end - off
	if n < 2 || buf[end-2] != cr || buf[end-1] != lf {
		return Fields{}, ErrInvalidInput
	}
	if n > 2 && (n < 4 || buf[end-4] != cr || buf[end-3] != lf) {
		return Fields{}, ErrInvalidInput
	}
	return Fields{Off: off, End: end}, nil
}

// Iterate walks the header block's fields in wire order.
func (f Fields) Iterate(buf []byte) iter.Seq[Field] {
	return func(yield func(Field) bool) {
		pos := f.Off
		for pos < f.End {
			if buf[pos] == cr {
				return // blank line: end of block
			}
			nameStart := pos
			for pos < f.End && buf[pos] != ':' {
				pos++
			}
			if pos >= f.End {
				return
			}
			name := trimOWS(buf, Span{Off: nameStart, Len: pos - nameStart})
			pos++ // skip ':'
			valueStart := pos
			for pos < f.End && buf[pos] != cr {
				pos++
			}
			value := trimOWS(buf, Span{Off: valueStart, Len: pos - valueStart})
			pos += 2 // skip CRLF
			if !yield(Field{Name: name, Value: value}) {
				return
			}
		}
	}
}

// Len returns the number of fields in the block, counted by walking it —
// Fields stores only the block's bounds, not a count, so this is O(n).
func (f Fields) Len(buf []byte) int {
	n := 0
	for range f.Iterate(buf) {
		n++
	}
	return n
}

// VisitAll calls fn once per field in wire order, stopping early if fn
// returns false. It's Iterate's callback-style equivalent, for callers that
// predate range-over-func iterators or prefer the explicit form.
func (f Fields) VisitAll(buf []byte, fn func(name, value Span) bool) {
	for field := range f.Iterate(buf) {
		if !fn(field.Name, field.Value) {
			return
		}
	}
}

// Get returns the value span of the first field named name (case-
// insensitive), and whether it was found.
func (f Fields) Get(buf []byte, name []byte) (Span, bool) {
	for field := range f.Iterate(buf) {
		if bytescase.CmpEq(field.Name.Bytes(buf), name) {
			return field.Value, true
		}
	}
	return Span{}, false
}

// GetContentLength returns the request/response body length declared by
// Content-Length, per spec section 4.2. Absence is reported as (0, false,
// nil) — callers distinguish "no Content-Length" from "Content-Length: 0"
// via the bool. Multiple Content-Length fields that disagree, or a value
// that isn't a non-negative decimal integer, return ErrInvalidContentLength.
func (f Fields) GetContentLength(buf []byte) (int64, bool, error) {
	var n int64
	found := false
	for field := range f.Iterate(buf) {
		if !bytescase.CmpEq(field.Name.Bytes(buf), headerContentLength) {
			continue
		}
		v, err := strconv.ParseInt(string(field.Value.Bytes(buf)), 10, 64)
		if err != nil || v < 0 {
			return 0, false, ErrInvalidContentLength
		}
		if found && v != n {
			return 0, false, ErrInvalidContentLength
		}
		n, found = v, true
	}
	return n, found, nil
}

// HasConnectionToken reports whether any Connection header's value
// contains tok as a comma-separated token, matched case-insensitively per
// spec section 4.2's keep-alive decision input. A request may repeat the
// Connection header; every occurrence is scanned, not just the first.
func (f Fields) HasConnectionToken(buf []byte, tok []byte) bool {
	for field := range f.Iterate(buf) {
		if !bytescase.CmpEq(field.Name.Bytes(buf), headerConnection) {
			continue
		}
		b := field.Value.Bytes(buf)
		start := 0
		for i := 0; i <= len(b); i++ {
			if i == len(b) || b[i] == ',' {
				t := trimOWSBytes(b[start:i])
				if bytescase.CmpEq(t, tok) {
					return true
				}
				start = i + 1
			}
		}
	}
	return false
}

// HasTransferEncoding reports whether a Transfer-Encoding header is
// present at all — this module treats chunked transfer-coding as a
// non-goal (spec section 1), so connections that see this header on an
// inbound message are rejected rather than parsed.
func (f Fields) HasTransferEncoding(buf []byte) bool {
	_, ok := f.Get(buf, headerTransferEncoding)
	return ok
}

func trimOWSBytes(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isOWSByte(b[start]) {
		start++
	}
	for end > start && isOWSByte(b[end-1]) {
		end--
	}
	return b[start:end]
}
