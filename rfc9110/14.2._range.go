package rfc9110

import (
	"errors"
	"fmt"
	"strings"
)

// §  14.2.  Range
// §
// §     The "Range" header field on a GET request modifies the method
// §     semantics to request transfer of only one or more subranges of the
// §     selected representation data (Section 8.1), rather than the entire
// §     selected representation.
// §
// §       Range = ranges-specifier
// §
// §     A server MAY ignore the Range header field.  However, origin servers
// §     and intermediate caches ought to support byte ranges when possible,
// §     since they support efficient recovery from partially failed
// §     transfers and partial retrieval of large representations.
// §
// §     A server MUST ignore a Range header field received with a request
// §     method that is unrecognized or for which range handling is not
// §     defined.  For this specification, GET is the only method for which
// §     range handling is defined.
// §
// §     An origin server MUST ignore a Range header field that contains a
// §     range unit it does not understand.

var (
	// ErrMalformedRange is returned for a bytes range that does not follow the int-range grammar.
	ErrMalformedRange = errors.New("malformed range")
	// ErrUnsupportedRange is returned for multiple ranges and suffix ranges.
	ErrUnsupportedRange = errors.New("unsupported range")
	// ErrRangeNotSatisfiable is returned when the range starts beyond the representation.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

// RangeError records a Range header that could not be honored.
type RangeError struct {
	Header string
	Length int64
	Err    error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %q (length %d): %v", e.Header, e.Length, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// §  range-set        = 1#range-spec
//
// Only a single int-range is supported.
func parseRangeSet(set string) (intRange, error) {
	set = trimOWS(set)
	if set == "" {
		return intRange{}, ErrMalformedRange
	}
	if strings.Contains(set, ",") {
		return intRange{}, ErrUnsupportedRange
	}
	return parseIntRange(set)
}

// trimOWS removes optional whitespace (SP / HTAB).
func trimOWS(s string) string {
	return strings.Trim(s, " \t")
}
