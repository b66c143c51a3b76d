package rfc9110

import (
	"net/http"
	"strconv"
)

// §  14.4.  Content-Range
// §
// §     The "Content-Range" header field is sent in a single part 206
// §     (Partial Content) response to indicate the partial range of the
// §     selected representation enclosed as the message content, sent in
// §     each part of a multipart 206 response to indicate the range enclosed
// §     within each body part (Section 14.6), and sent in 416 (Range Not
// §     Satisfiable) responses to provide information about the selected
// §     representation.
// §
// §       Content-Range       = range-unit SP
// §                             ( range-resp / unsatisfied-range )
// §
// §       range-resp          = incl-range "/" ( complete-length / "*" )
// §       incl-range          = first-pos "-" last-pos
// §       unsatisfied-range   = "*/" complete-length
// §
// §       complete-length     = 1*DIGIT

// ContentRange formats the window as a range-resp, e.g. "bytes 0-499/1234".
func (r ByteRange) ContentRange() string {
	return BytesUnit + " " +
		strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) +
		"/" + strconv.FormatInt(r.Length, 10)
}

// §     If a 416 (Range Not Satisfiable) response to a byte-range request,
// §     the sender SHOULD send a Content-Range header field with an
// §     unsatisfied-range value, as in the following example:
// §
// §     Content-Range: bytes */1234

// UnsatisfiedRange formats an unsatisfied-range for a representation of the given length.
func UnsatisfiedRange(length int64) string {
	return BytesUnit + " */" + strconv.FormatInt(length, 10)
}

// SetContentRange sets the Content-Range and Content-Length headers for a window.
func SetContentRange(h http.Header, r ByteRange) {
	h.Set("Content-Range", r.ContentRange())
	h.Set("Content-Length", strconv.FormatInt(r.ChunkLength(), 10))
}
