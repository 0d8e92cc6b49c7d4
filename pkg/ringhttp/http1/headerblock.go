package http1

// HeaderBlockScanner incrementally scans a header block — zero or more
// "field-name: field-value CRLF" lines, terminated by a standalone CRLF —
// per spec section 4.2/4.3. Like RequestLineScanner and StatusLineScanner
// it resumes across arbitrarily fragmented input.
//
// It does not build a Fields view itself; once Scan reports done, the
// caller builds one with NewFields(buf, blockStart, blockEnd) using the
// offsets Scan was given and returned. This keeps the scanner from having
// to re-walk lines it already validated.
//
// Obsolete line folding (a continuation line starting with SP/HTAB) is not
// supported — a folded continuation looks like a malformed field-name to
// this scanner and is rejected with ErrBadRequest, matching spec section
// 4.2's "no line-folding" note. Every malformed line (bad name or value
// byte, SP before the colon, CR without LF) is rejected with ErrBadRequest.
type HeaderBlockScanner struct {
	state    hbState
	MaxLen   int // total header-block bytes, including the terminating CRLF
	started  bool
	blockOff int
	nameSpan Span
}

type hbState uint8

const (
	hbLineStart hbState = iota
	hbName
	hbAfterName
	hbValue
	hbValueCR
	hbBlockCR
	hbDone
)

// NewHeaderBlockScanner builds a scanner bounded to maxLen total bytes
// (from the first line's first byte through the terminating blank line).
func NewHeaderBlockScanner(maxLen int) *HeaderBlockScanner {
	return &HeaderBlockScanner{MaxLen: maxLen}
}

// Reset rewinds the scanner for connection reuse.
func (s *HeaderBlockScanner) Reset() {
	*s = HeaderBlockScanner{MaxLen: s.MaxLen}
}

// Scan consumes buf[pos:]. On completion it returns the offset one past
// the terminating CRLF CRLF; blockStart (the first call's pos) and that
// return value bound the block NewFields expects.
func (s *HeaderBlockScanner) Scan(buf []byte, pos int) (newPos int, done bool, err error) {
	if s.state == hbDone {
		return pos, false, ErrScannerDone
	}
	if !s.started {
		s.blockOff = pos
		s.started = true
	}
	i := pos
	for i < len(buf) {
		if i-s.blockOff+1 > s.MaxLen {
			return i, false, ErrHeaderFieldsTooLong
		}
		b := buf[i]
		switch s.state {
		case hbLineStart:
			if b == cr {
				s.state = hbBlockCR
				i++
				continue
			}
			if !IsTChar(b) {
				return i, false, ErrBadRequest
			}
			s.nameSpan.set(i)
			s.state = hbName

		case hbName:
			if b == ':' {
				s.nameSpan.extend(i)
				s.state = hbAfterName
				i++
				continue
			}
			if IsOWS(b) {
				// SP/HTAB before the colon (RFC 7230 section 3.2.4):
				// reject rather than silently tolerate.
				return i, false, ErrBadRequest
			}
			if !IsTChar(b) {
				return i, false, ErrBadRequest
			}
			i++

		case hbAfterName:
			if IsOWS(b) {
				i++
				continue
			}
			s.state = hbValue
			// re-examine the same byte as the first value byte (or CR for
			// an empty value), no advance.

		case hbValue:
			if b == cr {
				s.state = hbValueCR
				i++
				continue
			}
			if !IsFieldVChar(b) && !IsOWS(b) {
				return i, false, ErrBadRequest
			}
			i++

		case hbValueCR:
			if b != lf {
				return i, false, ErrBadRequest
			}
			s.state = hbLineStart
			i++

		case hbBlockCR:
			if b != lf {
				return i, false, ErrBadRequest
			}
			s.state = hbDone
			return i + 1, true, nil
		}
	}
	return i, false, nil
}
