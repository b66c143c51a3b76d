// Package rfc9110 implements the range request semantics of RFC 9110 (HTTP Semantics),
// Section 14, for a server that returns a single byte range per response.
//
// The RFC text is quoted next to the code implementing it, one file per section.
package rfc9110

// ResolveRange translates the value of a request's Range header into the byte window
// the server is going to transfer, given the current length of the representation.
//
// The returned boolean reports whether a range request is being honored.
// It is false when the header is empty or uses a range unit other than "bytes"; the
// caller is then expected to fall back to WholeRange.
//
// Windows wider than maxChunk are narrowed to start + maxChunk. A maxChunk of zero or
// less disables the cap.
//
// Errors are always of type *RangeError and wrap ErrMalformedRange, ErrUnsupportedRange
// or ErrRangeNotSatisfiable.
func ResolveRange(header string, length, maxChunk int64) (ByteRange, bool, error) {
	spec, ok := rangeSpecifier(header)
	if !ok {
		return ByteRange{}, false, nil
	}
	ir, err := parseRangeSet(spec)
	if err != nil {
		return ByteRange{}, true, &RangeError{Header: header, Length: length, Err: err}
	}
	br, err := ir.resolve(length)
	if err != nil {
		return ByteRange{}, true, &RangeError{Header: header, Length: length, Err: err}
	}
	return br.clamp(maxChunk), true, nil
}

// WholeRange is the window transferred when no range is requested:
// the representation from its first byte, capped the same way ResolveRange caps windows.
// The zero ByteRange is returned for an empty representation.
func WholeRange(length, maxChunk int64) ByteRange {
	if length <= 0 {
		return ByteRange{}
	}
	return ByteRange{Start: 0, End: length - 1, Length: length}.clamp(maxChunk)
}
