package rfc9110

import "net/http"

// §  15.3.7.  206 Partial Content
// §
// §     The 206 (Partial Content) status code indicates that the server is
// §     successfully fulfilling a range request for the target resource by
// §     transferring one or more parts of the selected representation.
// §
// §     A server that supports range requests (Section 14) will usually
// §     attempt to satisfy all of the requested ranges, since sending less
// §     data will likely result in another client request for the remainder.
// §     However, a server might want to send only a subset of the data
// §     requested for reasons of its own, such as temporary unavailability,
// §     cache efficiency, load balancing, etc.  Since a 206 response is self-
// §     descriptive, the client can still understand a response that only
// §     partially satisfies its range request.

// StatusFor returns the status code of a successful response.
// Every honored range request gets 206, including one whose window reaches the end of
// the representation; only a request without a (honored) range gets 200.
func StatusFor(ranged bool) int {
	if ranged {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

// §  15.5.17.  416 Range Not Satisfiable
// §
// §     The 416 (Range Not Satisfiable) status code indicates that the set of
// §     ranges in the request's Range header field (Section 14.2) has been
// §     rejected either because none of the requested ranges are satisfiable
// §     or because the client has requested an excessive number of small or
// §     overlapping ranges (a potential denial of service attack).

// RejectRange writes a 416 response for a representation of the given length.
func RejectRange(w http.ResponseWriter, length int64) {
	w.Header().Set("Content-Range", UnsatisfiedRange(length))
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
}
