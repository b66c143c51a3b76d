package rfc9110

import "strings"

// §  14.1.  Range Units
// §
// §     Representation data can be partitioned into subranges when there are
// §     addressable structural units inherent to that data's content coding
// §     or media type.  For example, octet (a.k.a. byte) boundaries are a
// §     structural unit common to all representation data, allowing
// §     partitions of the data to be identified as a range of bytes at some
// §     offset from the start or end of that data.
// §
// §       range-unit       = token
// §
// §     All range unit names are case-insensitive and ought to be registered
// §     within the "HTTP Range Unit Registry", as defined in Section 16.5.1.
// §
// §  14.1.1.  Range Specifiers
// §
// §       ranges-specifier = range-unit "=" range-set
// §       range-set        = 1#range-spec
// §       range-spec       = int-range
// §                        / suffix-range
// §                        / other-range

// BytesUnit is the only range unit understood by this package.
const BytesUnit = "bytes"

// rangeSpecifier returns the range-set of a bytes ranges-specifier.
// It returns false if the header is empty or names another range unit.
func rangeSpecifier(header string) (string, bool) {
	unit, set, found := strings.Cut(header, "=")
	if !found {
		return "", false
	}
	// §  All range unit names are case-insensitive [...]
	if !strings.EqualFold(strings.TrimSpace(unit), BytesUnit) {
		return "", false
	}
	return set, true
}
