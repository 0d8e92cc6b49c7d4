package http1

// Byte-class predicates for the RFC 7230/9110 grammar productions the
// scanners and field accessors test against. Each set is a 256-bit table
// (four uint64 words) built once in init(), so membership is a shift and
// mask rather than a chain of comparisons — the same flat-lookup
// philosophy the teacher's header storage uses for name comparison,
// applied here to single-byte grammar classes instead of whole names.

type byteSet [4]uint64

func (s *byteSet) set(b byte) {
	s[b>>6] |= 1 << (b & 63)
}

func (s *byteSet) has(b byte) bool {
	return s[b>>6]&(1<<(b&63)) != 0
}

var (
	tcharSet      byteSet
	delimSet      byteSet
	vcharSet      byteSet
	obsTextSet    byteSet
	fieldVCharSet byteSet
	qdtextSet     byteSet
	quotedPairSet byteSet
)

func init() {
	// delim = the RFC 7230 tchar-excluded delimiter set.
	for _, b := range []byte(`"(),/:;<=>?@[\]{}`) {
		delimSet.set(b)
	}

	// tchar = visible ASCII minus delim, plus the RFC 7230 "!#$%&'*+-.^_`|~" extras.
	for b := byte(0x21); b < 0x7F; b++ {
		if !delimSet.has(b) {
			tcharSet.set(b)
		}
	}

	// vchar = 0x21..0x7E.
	for b := byte(0x21); b <= 0x7E; b++ {
		vcharSet.set(b)
	}

	// obs-text = 0x80..0xFF.
	for b := 0x80; b <= 0xFF; b++ {
		obsTextSet.set(byte(b))
	}

	// field-vchar = vchar / obs-text.
	fieldVCharSet = vcharSet
	for i := range fieldVCharSet {
		fieldVCharSet[i] |= obsTextSet[i]
	}

	// qdtext = HTAB / SP / %x21 / %x23-5B / %x5D-7E / obs-text
	qdtextSet.set(ht)
	qdtextSet.set(sp)
	qdtextSet.set(0x21)
	for b := 0x23; b <= 0x5B; b++ {
		qdtextSet.set(byte(b))
	}
	for b := 0x5D; b <= 0x7E; b++ {
		qdtextSet.set(byte(b))
	}
	for i := range qdtextSet {
		qdtextSet[i] |= obsTextSet[i]
	}

	// quoted-pair's second octet = HTAB / SP / VCHAR / obs-text.
	quotedPairSet.set(ht)
	quotedPairSet.set(sp)
	for i := range quotedPairSet {
		quotedPairSet[i] |= vcharSet[i] | obsTextSet[i]
	}
}

// IsTChar reports whether b is a valid RFC 7230 "tchar" (token character):
// used for method names and header field names.
func IsTChar(b byte) bool { return tcharSet.has(b) }

// IsDelim reports whether b is one of the RFC 7230 token delimiters.
func IsDelim(b byte) bool { return delimSet.has(b) }

// IsVChar reports whether b is a visible ASCII character (0x21-0x7E).
func IsVChar(b byte) bool { return vcharSet.has(b) }

// IsObsText reports whether b is in the obs-text range (0x80-0xFF),
// permitted in header field values and quoted strings for historical
// compatibility.
func IsObsText(b byte) bool { return obsTextSet.has(b) }

// IsFieldVChar reports whether b is valid inside a header field value
// (vchar or obs-text).
func IsFieldVChar(b byte) bool { return fieldVCharSet.has(b) }

// IsOWS reports whether b is optional whitespace (SP or HTAB).
func IsOWS(b byte) bool { return b == sp || b == ht }

// IsQDText reports whether b is valid unescaped quoted-string text.
func IsQDText(b byte) bool { return qdtextSet.has(b) }

// IsQuotedPairOctet reports whether b is a valid second octet of a
// quoted-pair (the character following a backslash inside a quoted string).
func IsQuotedPairOctet(b byte) bool { return quotedPairSet.has(b) }
