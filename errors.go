package dmi

import (
	"errors"
	"fmt"
)

// ErrMissingMetadata is returned when a PNG carries no DMI metadata
// chunk.
var ErrMissingMetadata = errors.New("dmi: no DMI metadata chunk found")

// GeometryError reports an inconsistency between the pixel grid and
// the icon's metadata: an image not divisible into cells, a grid too
// small for the declared frames, or a document whose frame data
// violates its own invariants. When raised by Encode it signals a
// programming error, since every mutation operation checks its
// invariant eagerly.
type GeometryError struct {
	State string // offending state name, if any
	Dir   int    // offending direction index, or -1
	Frame int    // offending frame index, or -1
	Msg   string
}

func (e *GeometryError) Error() string {
	s := "dmi: geometry mismatch: "
	if e.State != "" {
		s += fmt.Sprintf("state %q: ", e.State)
	}
	if e.Dir >= 0 {
		s += fmt.Sprintf("dir %d: ", e.Dir)
	}
	if e.Frame >= 0 {
		s += fmt.Sprintf("frame %d: ", e.Frame)
	}
	return s + e.Msg
}

func geometryErrorf(format string, args ...interface{}) *GeometryError {
	return &GeometryError{Dir: -1, Frame: -1, Msg: fmt.Sprintf(format, args...)}
}
