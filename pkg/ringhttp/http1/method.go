package http1

// Method is the tagged-variant request method of spec section 3: either
// one of the canonical IDs below, or MethodCustom with Custom holding the
// token span from the original buffer. It round-trips through text via
// MethodBytes/ParseMethod.
type Method struct {
	ID     uint8
	Custom Span
}

// MethodBytes returns the method's token bytes given the buffer the
// request line was scanned from. Canonical methods return pre-compiled
// constant bytes; MethodCustom slices buf at Custom.
//
// Allocation behavior: 0 allocs/op for the canonical case.
func (m Method) MethodBytes(buf []byte) []byte {
	switch m.ID {
	case MethodGET:
		return methodGETBytes
	case MethodHEAD:
		return methodHEADBytes
	case MethodPOST:
		return methodPOSTBytes
	case MethodPUT:
		return methodPUTBytes
	case MethodDELETE:
		return methodDELETEBytes
	case MethodCONNECT:
		return methodCONNECTBytes
	case MethodOPTIONS:
		return methodOPTIONSBytes
	case MethodTRACE:
		return methodTRACEBytes
	case MethodPATCH:
		return methodPATCHBytes
	default:
		return m.Custom.Bytes(buf)
	}
}

// ParseMethod classifies a token span already known to contain only tchar
// bytes (the request-line scanner enforces that before calling this) into
// a Method value. Unrecognized tokens become MethodCustom, carrying tok
// unchanged rather than rejecting the request — spec section 3 leaves
// method extensibility to the caller.
//
// Allocation behavior: 0 allocs/op.
func ParseMethod(buf []byte, tok Span) Method {
	b := tok.Bytes(buf)
	switch len(b) {
	case 3: // GET, PUT
		if b[0] == 'G' && b[1] == 'E' && b[2] == 'T' {
			return Method{ID: MethodGET}
		}
		if b[0] == 'P' && b[1] == 'U' && b[2] == 'T' {
			return Method{ID: MethodPUT}
		}

	case 4: // POST, HEAD
		if b[0] == 'P' && b[1] == 'O' && b[2] == 'S' && b[3] == 'T' {
			return Method{ID: MethodPOST}
		}
		if b[0] == 'H' && b[1] == 'E' && b[2] == 'A' && b[3] == 'D' {
			return Method{ID: MethodHEAD}
		}

	case 5: // PATCH, TRACE
		if b[0] == 'P' && b[1] == 'A' && b[2] == 'T' && b[3] == 'C' && b[4] == 'H' {
			return Method{ID: MethodPATCH}
		}
		if b[0] == 'T' && b[1] == 'R' && b[2] == 'A' && b[3] == 'C' && b[4] == 'E' {
			return Method{ID: MethodTRACE}
		}

	case 6: // DELETE
		if b[0] == 'D' && b[1] == 'E' && b[2] == 'L' && b[3] == 'E' && b[4] == 'T' && b[5] == 'E' {
			return Method{ID: MethodDELETE}
		}

	case 7: // OPTIONS, CONNECT
		if b[0] == 'O' && b[1] == 'P' && b[2] == 'T' && b[3] == 'I' && b[4] == 'O' && b[5] == 'N' && b[6] == 'S' {
			return Method{ID: MethodOPTIONS}
		}
		if b[0] == 'C' && b[1] == 'O' && b[2] == 'N' && b[3] == 'N' && b[4] == 'E' && b[5] == 'C' && b[6] == 'T' {
			return Method{ID: MethodCONNECT}
		}
	}

	return Method{ID: MethodCustom, Custom: tok}
}
