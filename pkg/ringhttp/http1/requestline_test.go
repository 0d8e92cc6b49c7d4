package http1

import "testing"

func scanAllRequestLine(t *testing.T, chunks []string) (*RequestLineScanner, error) {
	t.Helper()
	s := NewRequestLineScanner(DefaultMethodMaxLen, DefaultURIMaxLen, DefaultVersionMaxLen)
	var buf []byte
	pos := 0
	for _, c := range chunks {
		buf = append(buf, c...)
		newPos, done, err := s.Scan(buf, pos)
		pos = newPos
		if err != nil {
			return s, err
		}
		if done {
			return s, nil
		}
	}
	t.Fatalf("scan never completed, chunks=%v", chunks)
	return s, nil
}

func TestRequestLineScannerWholeLine(t *testing.T) {
	s, err := scanAllRequestLine(t, []string{"GET /index.html HTTP/1.1\r\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Method.ID != MethodGET {
		t.Fatalf("method = %v, want GET", s.Method.ID)
	}
	if s.Version.Kind != VersionHTTP11 {
		t.Fatalf("version = %v, want HTTP/1.1", s.Version)
	}
}

// Fragmentation-invariance (spec section 8 property 1): splitting the
// same bytes across arbitrary chunk boundaries, down to one byte at a
// time, must reach the same final state.
func TestRequestLineScannerByteAtATime(t *testing.T) {
	line := "POST /submit?x=1 HTTP/1.1\r\n"
	var chunks []string
	for i := range line {
		chunks = append(chunks, string(line[i]))
	}
	s, err := scanAllRequestLine(t, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Method.ID != MethodPOST {
		t.Fatalf("method = %v, want POST", s.Method.ID)
	}
	if s.Version.Kind != VersionHTTP11 {
		t.Fatalf("version = %v, want HTTP/1.1", s.Version)
	}
}

func TestRequestLineScannerDoubleSpace(t *testing.T) {
	_, err := scanAllRequestLine(t, []string{"GET  /x HTTP/1.1\r\n"})
	if err != ErrBadRequest {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestRequestLineScannerHTTP09Rejected(t *testing.T) {
	_, err := scanAllRequestLine(t, []string{"GET /x\r\n"})
	if err != ErrVersionNotSupported {
		t.Fatalf("err = %v, want ErrVersionNotSupported", err)
	}
}

func TestRequestLineScannerURITooLong(t *testing.T) {
	s := NewRequestLineScanner(DefaultMethodMaxLen, 8, DefaultVersionMaxLen)
	buf := []byte("GET /this-uri-is-too-long HTTP/1.1\r\n")
	_, _, err := s.Scan(buf, 0)
	if err != ErrUriTooLong {
		t.Fatalf("err = %v, want ErrUriTooLong", err)
	}
}

func TestRequestLineScannerBareCRWithoutLF(t *testing.T) {
	s := NewRequestLineScanner(DefaultMethodMaxLen, DefaultURIMaxLen, DefaultVersionMaxLen)
	buf := []byte("GET / HTTP/1.1\rX")
	_, _, err := s.Scan(buf, 0)
	if err != ErrBadRequest {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestRequestLineScannerDoneTwiceIsProgrammingError(t *testing.T) {
	s := NewRequestLineScanner(DefaultMethodMaxLen, DefaultURIMaxLen, DefaultVersionMaxLen)
	buf := []byte("GET / HTTP/1.1\r\n")
	if _, done, err := s.Scan(buf, 0); !done || err != nil {
		t.Fatalf("first scan: done=%v err=%v", done, err)
	}
	if _, _, err := s.Scan(buf, len(buf)); err != ErrScannerDone {
		t.Fatalf("err = %v, want ErrScannerDone", err)
	}
}

func TestRequestLineScannerResetAllowsReuse(t *testing.T) {
	s := NewRequestLineScanner(DefaultMethodMaxLen, DefaultURIMaxLen, DefaultVersionMaxLen)
	buf := []byte("GET / HTTP/1.1\r\n")
	s.Scan(buf, 0)
	s.Reset()
	buf2 := []byte("POST /a HTTP/1.1\r\n")
	_, done, err := s.Scan(buf2, 0)
	if err != nil || !done {
		t.Fatalf("done=%v err=%v", done, err)
	}
	if s.Method.ID != MethodPOST {
		t.Fatalf("method = %v, want POST", s.Method.ID)
	}
}
