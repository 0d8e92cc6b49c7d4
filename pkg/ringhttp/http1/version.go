package http1

import "github.com/intuitivelabs/bytescase"

// Version is the tagged-variant HTTP version of spec section 3: HTTP/1.0,
// HTTP/1.1, or VersionOther carrying the major/minor digits found on the
// wire. HTTP/0.9 (no version token at all) never produces a Version value.
// ParseVersion models HTTP/2.0 and any other digit pair besides 1.0/1.1 as
// VersionOther; the request-line scanner rejects both HTTP/0.9 and every
// VersionOther with ErrVersionNotSupported, while the status-line scanner
// accepts VersionOther.
type Version struct {
	Kind  VersionKind
	Major byte
	Minor byte
}

// VersionKind discriminates the Version variant.
type VersionKind uint8

const (
	VersionHTTP10 VersionKind = iota + 1
	VersionHTTP11
	VersionOther
)

// String renders the canonical wire form.
func (v Version) String() string {
	switch v.Kind {
	case VersionHTTP10:
		return "HTTP/1.0"
	case VersionHTTP11:
		return "HTTP/1.1"
	default:
		return "HTTP/" + string(rune('0'+v.Major)) + "." + string(rune('0'+v.Minor))
	}
}

// ParseVersion classifies a "HTTP/" DIGIT "." DIGIT token span (exactly
// len("HTTP/1.1") bytes, already validated by the caller) into a Version.
// Returns ok=false if the prefix isn't "HTTP/" (case-insensitive, per
// bytescase) or the digits aren't ASCII digits.
func ParseVersion(buf []byte, tok Span) (Version, bool) {
	b := tok.Bytes(buf)
	if len(b) != 8 {
		return Version{}, false
	}
	if !bytescase.CmpEq(b[:5], httpSlash) {
		return Version{}, false
	}
	major, minor := b[5], b[7]
	if major < '0' || major > '9' || b[6] != '.' || minor < '0' || minor > '9' {
		return Version{}, false
	}
	switch {
	case major == '1' && minor == '0':
		return Version{Kind: VersionHTTP10, Major: 1, Minor: 0}, true
	case major == '1' && minor == '1':
		return Version{Kind: VersionHTTP11, Major: 1, Minor: 1}, true
	default:
		return Version{Kind: VersionOther, Major: major - '0', Minor: minor - '0'}, true
	}
}
