package rangestream

import (
	"bytes"
	_ "embed"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog/hlog"
)

//go:embed index.html
var defaultIndexPage []byte

// DefaultIndexPage returns the built-in page, with its video element pointing at watchPath.
func DefaultIndexPage(watchPath string) []byte {
	return bytes.ReplaceAll(defaultIndexPage, []byte("{{WATCH_PATH}}"), []byte(watchPath))
}

// StaticResponder serves a fixed document. It has no range semantics.
type StaticResponder struct {
	body        []byte
	contentType string
}

// NewStaticResponder creates a responder for body.
// The content type defaults to HTML.
func NewStaticResponder(body []byte, contentType string) *StaticResponder {
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	return &StaticResponder{body: body, contentType: contentType}
}

// LoadStaticResponder reads the page at path once.
// If path is empty, the default page is used.
func LoadStaticResponder(path, watchPath string) (*StaticResponder, error) {
	if path == "" {
		return NewStaticResponder(DefaultIndexPage(watchPath), ""), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticResponder(body, http.DetectContentType(body)), nil
}

// ServeHTTP implements the http.Handler interface.
func (s *StaticResponder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", s.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(s.body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(s.body); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Could not write page")
	}
}
