package rangestream

import "fmt"

// ShortReadError reports that the media ended or failed before the number of bytes
// declared in Content-Length could be sent.
type ShortReadError struct {
	Want int64
	Got  int64
	Err  error
}

func (e *ShortReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("short read: sent %d of %d bytes: %v", e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("short read: sent %d of %d bytes", e.Got, e.Want)
}

func (e *ShortReadError) Unwrap() error {
	return e.Err
}
