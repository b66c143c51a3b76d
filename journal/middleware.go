package journal

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	meter "github.com/always-cache/range-stream/pkg/response-meter"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

// Middleware records an entry for every response of the wrapped handler.
// Entries are also recorded when the handler aborts the connection by panicking,
// in which case the panic is passed on.
// A response whose body is shorter than its Content-Length is recorded as aborted.
func Middleware(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := meter.NewResponseMeter(w)
			aborted := true
			defer func() {
				if err := p.Record(newEntry(r, m, aborted)); err != nil {
					hlog.FromRequest(r).Error().Err(err).Msg("Could not record journal entry")
				}
			}()
			next.ServeHTTP(m, r)
			aborted = incomplete(r, m)
		})
	}
}

func newEntry(r *http.Request, m *meter.ResponseMeter, aborted bool) Entry {
	return Entry{
		ID:           uuid.NewString(),
		ServedAt:     m.CreatedAt,
		Method:       r.Method,
		Path:         r.URL.Path,
		RemoteAddr:   getRequestSourceIp(r),
		Range:        r.Header.Get("Range"),
		Status:       m.StatusCode(),
		ContentRange: m.Header().Get("Content-Range"),
		Bytes:        m.Written(),
		Duration:     m.Duration().Round(time.Microsecond),
		Aborted:      aborted,
	}
}

// incomplete reports whether fewer body bytes were written than Content-Length declared,
// e.g. because the client went away mid-body.
func incomplete(r *http.Request, m *meter.ResponseMeter) bool {
	if r.Method == http.MethodHead {
		return false
	}
	declared, err := strconv.ParseInt(m.Header().Get("Content-Length"), 10, 64)
	if err != nil {
		return false
	}
	return m.Written() < declared
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}
