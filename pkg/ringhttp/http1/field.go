package http1

// Span is a non-owning offset pair into a caller-held buffer. Every
// scanner result and every Field name/value in this package is a Span
// rather than a copied []byte — spec section 3's "the parser produces
// only offsets into this buffer; no owned substrings are copied."
//
// A Span is only meaningful relative to the buffer it was produced
// against; it carries no reference to that buffer itself.
type Span struct {
	Off int
	Len int
}

// Empty reports whether the span has zero length.
func (s Span) Empty() bool { return s.Len == 0 }

// End returns the offset one past the span's last byte.
func (s Span) End() int { return s.Off + s.Len }

// Bytes returns the slice of buf described by the span.
func (s Span) Bytes(buf []byte) []byte {
	return buf[s.Off : s.Off+s.Len]
}

// set points the span at [off, off) — an empty span anchored at off, used
// by scanners to mark where a field begins before its length is known.
func (s *Span) set(off int) {
	s.Off = off
	s.Len = 0
}

// extend grows the span so it ends at end (end must be >= s.Off).
func (s *Span) extend(end int) {
	s.Len = end - s.Off
}

// trimOWS narrows a span within buf to drop leading/trailing SP and HTAB,
// per spec section 4.2's header-value trimming rule.
func trimOWS(buf []byte, s Span) Span {
	start, end := s.Off, s.Off+s.Len
	for start < end && isOWSByte(buf[start]) {
		start++
	}
	for end > start && isOWSByte(buf[end-1]) {
		end--
	}
	return Span{Off: start, Len: end - start}
}

func isOWSByte(b byte) bool { return b == sp || b == ht }
