package http1

// RequestLineScanner incrementally parses "method SP request-target SP
// HTTP-version CRLF" per spec section 4.3. Scan may be called repeatedly
// as more bytes of buf become available; it resumes from its saved state
// rather than re-scanning from the start, so the caller can feed it
// arbitrarily fragmented chunks (spec section 8 property 1).
//
// A zero-value RequestLineScanner's limits are all zero, which rejects
// everything; use NewRequestLineScanner.
type RequestLineScanner struct {
	state       rlState
	MaxMethod   int
	MaxURI      int
	MaxVersion  int
	Method      Method
	URI         Span
	Version     Version
	methodSpan  Span
	versionSpan Span
}

type rlState uint8

const (
	rlMethodStart rlState = iota
	rlMethod
	rlURIStart
	rlURI
	rlVersionStart
	rlVersion
	rlCR
	rlDone
)

// NewRequestLineScanner builds a scanner with the given field-length caps
// (in bytes). Use DefaultMethodMaxLen/DefaultURIMaxLen/DefaultVersionMaxLen
// for the teacher-derived defaults.
func NewRequestLineScanner(maxMethod, maxURI, maxVersion int) *RequestLineScanner {
	return &RequestLineScanner{MaxMethod: maxMethod, MaxURI: maxURI, MaxVersion: maxVersion}
}

// Reset rewinds the scanner to its initial state, for connection reuse
// across keep-alive requests (spec section 8 property 5).
func (s *RequestLineScanner) Reset() {
	*s = RequestLineScanner{MaxMethod: s.MaxMethod, MaxURI: s.MaxURI, MaxVersion: s.MaxVersion}
}

// Scan consumes buf[pos:] and returns the offset immediately past the
// terminating CRLF once done. If the line isn't fully present yet, it
// returns (len(buf), false, nil); the caller re-invokes Scan with the same
// buf (grown) and the returned pos once more bytes have arrived.
//
// Calling Scan again after it has already returned done is a programming
// error and returns ErrScannerDone.
func (s *RequestLineScanner) Scan(buf []byte, pos int) (newPos int, done bool, err error) {
	if s.state == rlDone {
		return pos, false, ErrScannerDone
	}
	i := pos
	for i < len(buf) {
		b := buf[i]
		switch s.state {
		case rlMethodStart:
			if b == sp {
				return i, false, ErrBadRequest
			}
			if !IsTChar(b) {
				return i, false, ErrBadRequest
			}
			s.methodSpan.set(i)
			s.state = rlMethod
			// re-examine the same byte under rlMethod, no advance.

		case rlMethod:
			if b == sp {
				s.methodSpan.extend(i)
				s.Method = ParseMethod(buf, s.methodSpan)
				s.state = rlURIStart
				i++
				continue
			}
			if !IsTChar(b) {
				return i, false, ErrBadRequest
			}
			if i-s.methodSpan.Off+1 > s.MaxMethod {
				return i, false, ErrBadRequest
			}
			i++

		case rlURIStart:
			if b == sp {
				// double SP between method and request-target
				return i, false, ErrBadRequest
			}
			s.URI.set(i)
			s.state = rlURI
			// re-examine the same byte under rlURI, no advance.

		case rlURI:
			if b == sp {
				s.URI.extend(i)
				s.state = rlVersionStart
				i++
				continue
			}
			if b == cr {
				// request-target followed directly by CRLF: no version
				// token at all (HTTP/0.9-style request line).
				return i, false, ErrVersionNotSupported
			}
			if !IsVChar(b) && !IsObsText(b) {
				return i, false, ErrBadRequest
			}
			if i-s.URI.Off+1 > s.MaxURI {
				return i, false, ErrUriTooLong
			}
			i++

		case rlVersionStart:
			if b == sp || b == cr {
				// blank or missing version token before CR
				return i, false, ErrVersionNotSupported
			}
			s.versionSpan.set(i)
			s.state = rlVersion
			// re-examine the same byte under rlVersion, no advance.

		case rlVersion:
			if b == cr {
				s.versionSpan.extend(i)
				v, ok := ParseVersion(buf, s.versionSpan)
				if !ok || v.Kind == VersionOther {
					return i, false, ErrVersionNotSupported
				}
				s.Version = v
				s.state = rlCR
				i++
				continue
			}
			if b == sp {
				return i, false, ErrBadRequest
			}
			if i-s.versionSpan.Off+1 > s.MaxVersion {
				return i, false, ErrBadRequest
			}
			i++

		case rlCR:
			if b != lf {
				return i, false, ErrBadRequest
			}
			s.state = rlDone
			return i + 1, true, nil
		}
	}
	return i, false, nil
}
