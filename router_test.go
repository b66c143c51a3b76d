package rangestream

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/always-cache/range-stream/journal"

	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T, j journal.Provider) http.Handler {
	t.Helper()
	data := testData(1_000_000)
	s := New(Config{
		Open:         func() (Media, error) { return newTestMedia(data), nil },
		MaxChunkSize: testMaxChunk,
	})
	page, err := LoadStaticResponder("", "/watch")
	if err != nil {
		t.Fatal(err)
	}
	return NewRouter(Routes{}, s, page, j, zerolog.Nop())
}

func TestRouterWatch(t *testing.T) {
	j := journal.NewMemJournal()
	router := newTestRouter(t, j)

	req := httptest.NewRequest("GET", "/watch", nil)
	req.Header.Set("Range", "bytes=100000-")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("Status code is %d", rr.Code)
	}
	if cr := rr.Header().Get("Content-Range"); cr != "bytes 100000-611999/1000000" {
		t.Fatalf("Content-Range is %s", cr)
	}
	if rr.Body.Len() != testMaxChunk {
		t.Fatalf("Body has %d bytes", rr.Body.Len())
	}
	if rr.Header().Get("Request-Id") == "" {
		t.Fatal("No request id")
	}

	entries, _ := j.Recent(1)
	if len(entries) != 1 || entries[0].Status != 206 || entries[0].Bytes != testMaxChunk ||
		entries[0].ContentRange != "bytes 100000-611999/1000000" {
		t.Fatalf("Journal entries are %+v", entries)
	}
}

func TestRouterIndex(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/index", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `src="/watch"`) {
		t.Fatalf("Response is %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/index" {
		t.Fatalf("Response is %d to %s", rr.Code, rr.Header().Get("Location"))
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/watch", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Status code is %d", rr.Code)
	}
}

func TestRouterStats(t *testing.T) {
	router := newTestRouter(t, journal.NewMemJournal())

	for _, header := range []string{"", "bytes=0-99", "bytes=2000000-"} {
		req := httptest.NewRequest("GET", "/watch", nil)
		if header != "" {
			req.Header.Set("Range", header)
		}
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Status code is %d", rr.Code)
	}
	var got stats
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := journal.Summary{Requests: 3, Partial: 1, Unsatisfiable: 1, Bytes: testMaxChunk + 100}
	if got.Summary != want {
		t.Fatalf("Summary is %+v, expected %+v", got.Summary, want)
	}
	if len(got.Recent) != 3 || got.Recent[0].Status != 416 {
		t.Fatalf("Recent entries are %+v", got.Recent)
	}
}

func TestRouterWithoutJournal(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/stats", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Status code is %d", rr.Code)
	}
}

// failingWriter accepts the first write and fails every later one, like a client
// dropping the connection while a chunk is sent.
type failingWriter struct {
	*httptest.ResponseRecorder
	writes int
}

func (w *failingWriter) Write(b []byte) (int, error) {
	w.writes++
	if w.writes > 1 {
		return 0, errors.New("connection reset by peer")
	}
	return w.ResponseRecorder.Write(b)
}

func TestRouterJournalsClientGoneMidBody(t *testing.T) {
	j := journal.NewMemJournal()
	router := newTestRouter(t, j)

	req := httptest.NewRequest("GET", "/watch", nil)
	req.Header.Set("Range", "bytes=0-")
	router.ServeHTTP(&failingWriter{ResponseRecorder: httptest.NewRecorder()}, req)

	entries, _ := j.Recent(1)
	if len(entries) != 1 {
		t.Fatalf("Recorded %d entries", len(entries))
	}
	e := entries[0]
	if !e.Aborted || e.Status != 206 || e.Bytes != DefaultBufferSize || e.ContentRange != "bytes 0-511999/1000000" {
		t.Fatalf("Entry is %+v", e)
	}
}
