package rangestream

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Media is an open, seekable handle on the served file.
// Each request opens its own Media, so implementations need not be safe for concurrent use.
type Media interface {
	io.ReadSeekCloser
	// Size is the length of the media in bytes at the time it was opened.
	Size() int64
}

// MediaOpener opens a new handle on the served media.
type MediaOpener func() (Media, error)

type fileMedia struct {
	*os.File
	size int64
}

func (f *fileMedia) Size() int64 {
	return f.size
}

// OpenFile opens a regular file as Media.
func OpenFile(path string) (Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%s is not a regular file: %w", path, fs.ErrInvalid)
	}
	return &fileMedia{File: f, size: info.Size()}, nil
}

// FileOpener returns a MediaOpener for the file at path.
func FileOpener(path string) MediaOpener {
	return func() (Media, error) {
		return OpenFile(path)
	}
}
