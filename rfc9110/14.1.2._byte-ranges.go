package rfc9110

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// §  14.1.2.  Byte Ranges
// §
// §     The "bytes" range unit is used to express subranges of a
// §     representation data's octet sequence.  Each byte range is expressed
// §     as an integer range at some offset, relative to either the beginning
// §     (int-range) or end (suffix-range) of the representation data.  Byte
// §     ranges do not use the other-range format.
// §
// §     The first-pos value in a bytes int-range gives the offset of the
// §     first byte in a range.  The last-pos value gives the offset of the
// §     last byte in the range; that is, the byte positions specified are
// §     inclusive.  Byte offsets start at zero.
// §
// §       int-range     = first-pos "-" [ last-pos ]
// §       first-pos     = 1*DIGIT
// §       last-pos      = 1*DIGIT
// §
// §     An int-range is invalid if the last-pos value is present and less
// §     than the first-pos.

// ByteRange is an inclusive window [Start, End] into a representation of Length bytes.
type ByteRange struct {
	Start  int64
	End    int64
	Length int64
}

// ChunkLength is the number of bytes in the window.
func (r ByteRange) ChunkLength() int64 {
	return r.End - r.Start + 1
}

// IsFinal reports whether the window ends at the last byte of the representation.
func (r ByteRange) IsFinal() bool {
	return r.End == r.Length-1
}

// Limit returns the window actually transferred when at most max bytes may be sent.
// The start is kept; the end is moved so that the window holds min(ChunkLength, max) bytes.
func (r ByteRange) Limit(max int64) ByteRange {
	if max > 0 && r.ChunkLength() > max {
		r.End = r.Start + max - 1
	}
	return r
}

// clamp applies the server's maximum chunk size to a resolved window.
// Note the resulting window may still hold max+1 bytes; Limit trims it to max.
func (r ByteRange) clamp(max int64) ByteRange {
	if max > 0 && r.End-r.Start > max {
		r.End = min64(r.Length-1, r.Start+max)
	}
	return r
}

type intRange struct {
	first   int64
	last    int64
	hasLast bool
}

func parseIntRange(spec string) (intRange, error) {
	firstStr, lastStr, found := strings.Cut(spec, "-")
	if !found {
		return intRange{}, ErrMalformedRange
	}
	firstStr, lastStr = trimOWS(firstStr), trimOWS(lastStr)
	if firstStr == "" {
		// §  suffix-range  = "-" suffix-length
		return intRange{}, ErrUnsupportedRange
	}
	first, ok := parseDigits(firstStr)
	if !ok {
		return intRange{}, ErrMalformedRange
	}
	ir := intRange{first: first}
	if lastStr == "" {
		return ir, nil
	}
	last, ok := parseDigits(lastStr)
	if !ok {
		return intRange{}, ErrMalformedRange
	}
	// §  An int-range is invalid if the last-pos value is present and less
	// §  than the first-pos.
	if last < first {
		return intRange{}, ErrMalformedRange
	}
	ir.last, ir.hasLast = last, true
	return ir, nil
}

// §     A client can limit the number of bytes requested without knowing the
// §     size of the selected representation.  If the last-pos value is
// §     absent, or if the value is greater than or equal to the current
// §     length of the representation data, the byte range is interpreted as
// §     the remainder of the representation (i.e., the server replaces the
// §     value of last-pos with a value that is one less than the current
// §     length of the selected representation).
//
// A first-pos at or beyond the current length does not overlap the representation
// and makes the range unsatisfiable.
func (ir intRange) resolve(length int64) (ByteRange, error) {
	if ir.first >= length {
		return ByteRange{}, ErrRangeNotSatisfiable
	}
	end := length - 1
	if ir.hasLast {
		end = min64(end, ir.last)
	}
	return ByteRange{Start: ir.first, End: end, Length: length}, nil
}

// parseDigits parses 1*DIGIT. Signs and other characters accepted by strconv are rejected.
// Positions too large for an int64 saturate to math.MaxInt64; they lie past any representation.
func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
