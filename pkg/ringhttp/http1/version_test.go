package http1

import "testing"

func parseVersionStr(s string) (Version, bool) {
	buf := []byte(s)
	return ParseVersion(buf, Span{Off: 0, Len: len(buf)})
}

func TestParseVersionHTTP11(t *testing.T) {
	v, ok := parseVersionStr("HTTP/1.1")
	if !ok || v.Kind != VersionHTTP11 {
		t.Fatalf("v=%v ok=%v", v, ok)
	}
	if v.String() != "HTTP/1.1" {
		t.Fatalf("String() = %q", v.String())
	}
}

func TestParseVersionHTTP10(t *testing.T) {
	v, ok := parseVersionStr("HTTP/1.0")
	if !ok || v.Kind != VersionHTTP10 {
		t.Fatalf("v=%v ok=%v", v, ok)
	}
}

func TestParseVersionCaseInsensitivePrefix(t *testing.T) {
	v, ok := parseVersionStr("http/1.1")
	if !ok || v.Kind != VersionHTTP11 {
		t.Fatalf("v=%v ok=%v", v, ok)
	}
}

func TestParseVersionOther(t *testing.T) {
	v, ok := parseVersionStr("HTTP/2.0")
	if !ok || v.Kind != VersionOther {
		t.Fatalf("v=%v ok=%v", v, ok)
	}
	if v.String() != "HTTP/2.0" {
		t.Fatalf("String() = %q", v.String())
	}
}

func TestParseVersionBadPrefix(t *testing.T) {
	if _, ok := parseVersionStr("XTTP/1.1"); ok {
		t.Fatalf("expected ok=false")
	}
}

func TestParseVersionWrongLength(t *testing.T) {
	if _, ok := parseVersionStr("HTTP/1.11"); ok {
		t.Fatalf("expected ok=false")
	}
}

func TestParseVersionNonDigit(t *testing.T) {
	if _, ok := parseVersionStr("HTTP/a.1"); ok {
		t.Fatalf("expected ok=false")
	}
}
