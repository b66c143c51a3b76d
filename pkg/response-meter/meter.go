package meter

import (
	"net/http"
	"time"
)

// ResponseMeter is a wrapper around http.ResponseWriter that records what was sent:
// the status code, the number of body bytes, and when the response started.
// Headers are written to the underlying http.ResponseWriter as usual.
type ResponseMeter struct {
	rw           http.ResponseWriter
	status       int
	written      int64
	wroteHeaders bool
	CreatedAt    time.Time
}

// Implementation of http.ResponseWriter
func (m *ResponseMeter) Header() http.Header {
	return m.rw.Header()
}

// Implementation of http.ResponseWriter
func (m *ResponseMeter) WriteHeader(statusCode int) {
	// only the first call counts, like net/http
	if m.wroteHeaders {
		return
	}
	m.wroteHeaders = true
	m.status = statusCode
	m.rw.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (m *ResponseMeter) Write(b []byte) (int, error) {
	if !m.wroteHeaders {
		m.WriteHeader(http.StatusOK)
	}
	n, err := m.rw.Write(b)
	m.written += int64(n)
	return n, err
}

// Unwrap returns the underlying http.ResponseWriter.
// It lets http.ResponseController reach write deadlines and flushing.
func (m *ResponseMeter) Unwrap() http.ResponseWriter {
	return m.rw
}

// StatusCode returns the status code of the response,
// or zero if nothing was written.
func (m *ResponseMeter) StatusCode() int {
	return m.status
}

// Written returns the number of body bytes written.
func (m *ResponseMeter) Written() int64 {
	return m.written
}

// Duration returns the time since the meter was created.
func (m *ResponseMeter) Duration() time.Duration {
	return time.Since(m.CreatedAt)
}

// NewResponseMeter returns a new ResponseMeter writing to w.
func NewResponseMeter(w http.ResponseWriter) *ResponseMeter {
	return &ResponseMeter{
		CreatedAt: time.Now(),
		rw:        w,
	}
}
