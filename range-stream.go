package rangestream

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/always-cache/range-stream/rfc9110"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	// DefaultMaxChunkSize is the most bytes sent in a single response.
	DefaultMaxChunkSize = 512_000
	// DefaultBufferSize is the size of the buffer used to copy the media to the client.
	DefaultBufferSize = 32 * 1024
	// DefaultContentType is the media type of the served file.
	DefaultContentType = "video/mp4"
)

type Config struct {
	// Path of the media file to serve. Ignored if Open is set.
	MediaPath string
	// Optional function opening the media for each request.
	// Use it e.g. for serving media that is not a regular file.
	Open MediaOpener
	// Content-Type of the media. Defaults to DefaultContentType.
	ContentType string
	// Most bytes sent per response, whatever the client asked for.
	// Defaults to DefaultMaxChunkSize.
	MaxChunkSize int64
	// Size of the copy buffer. Defaults to DefaultBufferSize.
	BufferSize int
	// Deadline for writing each buffer to the client. Zero disables deadlines.
	WriteTimeout time.Duration
	// Logger to use when the request carries none. A console logger is used if nil.
	Logger *zerolog.Logger
}

// Streamer serves one media file, honoring single byte range requests.
// It holds no per-request state and is safe for concurrent use.
type Streamer struct {
	open         MediaOpener
	contentType  string
	maxChunkSize int64
	bufferSize   int
	writeTimeout time.Duration
	log          zerolog.Logger
}

// New creates a Streamer for the given config.
func New(config Config) *Streamer {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	s := &Streamer{
		open:         config.Open,
		contentType:  config.ContentType,
		maxChunkSize: config.MaxChunkSize,
		bufferSize:   config.BufferSize,
		writeTimeout: config.WriteTimeout,
		log:          logger.With().Str("media", config.MediaPath).Logger(),
	}
	if s.open == nil {
		s.open = FileOpener(config.MediaPath)
	}
	if s.contentType == "" {
		s.contentType = DefaultContentType
	}
	if s.maxChunkSize <= 0 {
		s.maxChunkSize = DefaultMaxChunkSize
	}
	if s.bufferSize <= 0 {
		s.bufferSize = DefaultBufferSize
	}
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := s.logger(r)

	media, err := s.open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error().Err(err).Msg("Media not found")
			http.Error(w, "media not found", http.StatusNotFound)
		} else {
			logger.Error().Err(err).Msg("Could not open media")
			http.Error(w, "could not open media", http.StatusInternalServerError)
		}
		return
	}
	defer media.Close()

	size := media.Size()
	window, ranged := s.resolve(r, size, logger)
	if window == nil {
		rfc9110.RejectRange(w, size)
		return
	}

	header := w.Header()
	rfc9110.SetAcceptRanges(header)
	header.Set("Content-Type", s.contentType)

	if size == 0 {
		header.Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
		return
	}

	logger.Trace().Int64("requested", window.ChunkLength()).Msg("Chunk size requested")
	eff := window.Limit(s.maxChunkSize)

	if _, err := media.Seek(eff.Start, io.SeekStart); err != nil {
		logger.Error().Err(err).Int64("start", eff.Start).Msg("Could not seek media")
		header.Del("Accept-Ranges")
		http.Error(w, "could not read media", http.StatusInternalServerError)
		return
	}

	rfc9110.SetContentRange(header, eff)
	status := rfc9110.StatusFor(ranged)
	w.WriteHeader(status)
	logger.Debug().
		Int("status", status).
		Str("contentRange", eff.ContentRange()).
		Msg("Sending media chunk")

	if r.Method == http.MethodHead {
		return
	}

	written, err := s.copyChunk(r, w, media, eff.ChunkLength(), logger)
	if err != nil {
		var shortRead *ShortReadError
		if errors.As(err, &shortRead) {
			// headers promised more bytes than we have, so the response cannot be completed
			logger.Error().Err(err).Msg("Aborting response")
			panic(http.ErrAbortHandler)
		}
		logger.Debug().Err(err).Int64("written", written).Msg("Client went away")
		return
	}
	logger.Trace().Msgf("Wrote body (%d bytes)", written)
}

// resolve returns the window to send and whether it answers a range request.
// A nil window means the range is not satisfiable.
func (s *Streamer) resolve(r *http.Request, size int64, logger *zerolog.Logger) (*rfc9110.ByteRange, bool) {
	header := r.Header.Get("Range")
	// range handling is only defined for GET
	if r.Method != http.MethodGet {
		header = ""
	}
	if header != "" {
		logger.Trace().Str("range", header).Msg("Range requested")
	}

	window, ranged, err := rfc9110.ResolveRange(header, size, s.maxChunkSize)
	switch {
	case err == nil && ranged:
		return &window, true
	case errors.Is(err, rfc9110.ErrRangeNotSatisfiable):
		logger.Debug().Err(err).Msg("Rejecting range")
		return nil, false
	case err != nil:
		// malformed and unsupported ranges are ignored, as the server MAY do
		logger.Warn().Err(err).Msg("Ignoring range")
	}
	whole := rfc9110.WholeRange(size, s.maxChunkSize)
	return &whole, false
}

func (s *Streamer) logger(r *http.Request) *zerolog.Logger {
	if l := hlog.FromRequest(r); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}
