package rangestream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// maxEmptyReads is how many reads may return neither bytes nor an error before giving up.
const maxEmptyReads = 100

// copyChunk copies exactly want bytes from src to w, one buffer at a time.
// It returns a *ShortReadError if src runs out before want bytes are copied,
// and stops at the first failed write or when the request is canceled.
func (s *Streamer) copyChunk(r *http.Request, w http.ResponseWriter, src io.Reader, want int64, logger *zerolog.Logger) (int64, error) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	deadlines := s.writeTimeout > 0

	buf := make([]byte, s.bufferSize)
	var written int64
	empty := 0
	for written < want {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		toRead := len(buf)
		if remaining := want - written; remaining < int64(toRead) {
			toRead = int(remaining)
		}
		n, rerr := src.Read(buf[:toRead])
		if n > toRead {
			logger.Warn().
				Int("read", n).
				Int("requested", toRead).
				Msg("More bytes have been read than requested")
			n = toRead
		}
		logger.Trace().Int("read", n).Msg("Bytes read from media")

		if n > 0 {
			empty = 0
			if deadlines {
				if err := rc.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
					if !errors.Is(err, http.ErrNotSupported) {
						return written, fmt.Errorf("set write deadline: %w", err)
					}
					logger.Debug().Msg("Write deadlines not supported")
					deadlines = false
				}
			}
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, fmt.Errorf("write chunk: %w", werr)
			}
			if wn != n {
				return written, fmt.Errorf("write chunk: %w", io.ErrShortWrite)
			}
		} else if rerr == nil {
			empty++
			if empty >= maxEmptyReads {
				return written, &ShortReadError{Want: want, Got: written, Err: io.ErrNoProgress}
			}
		}

		if rerr != nil && written < want {
			if rerr == io.EOF {
				return written, &ShortReadError{Want: want, Got: written}
			}
			return written, &ShortReadError{Want: want, Got: written, Err: rerr}
		}
	}
	return written, nil
}
