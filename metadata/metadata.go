/*
Package metadata implements the textual metadata block embedded in DMI
files.

The block is a line-oriented grammar. A header declares the format
version and the cell size, then each icon state contributes a
`state = "name"` line followed by indented key/value settings:

	# BEGIN DMI
	version = 4.0
		width = 32
		height = 32
	state = "open"
		dirs = 4
		frames = 2
		delay = 1,1.5
	# END DMI

Keys the package does not recognize are retained verbatim, in order, so
that settings written by newer tools survive a round trip.
*/
package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	header  = "# BEGIN DMI"
	trailer = "# END DMI"
)

// DefaultSize is the cell width and height assumed when the header
// omits them.
const DefaultSize = 32

// Permitted direction counts for an icon state.
const (
	DirsOne   = 1
	DirsFour  = 4
	DirsEight = 8
)

// ValidDirs reports whether n is a direction count the format permits.
func ValidDirs(n int) bool {
	return n == DirsOne || n == DirsFour || n == DirsEight
}

// Version is the DMI format version declared in the header.
type Version struct {
	Major, Minor int
}

// Current is the version written by this package.
var Current = Version{4, 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseVersion parses a "major.minor" version string.
func ParseVersion(s string) (Version, error) {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return Version{}, fmt.Errorf("metadata: malformed version %q", s)
	}
	major, err := strconv.Atoi(s[:i])
	if err != nil {
		return Version{}, fmt.Errorf("metadata: malformed version %q", s)
	}
	minor, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Version{}, fmt.Errorf("metadata: malformed version %q", s)
	}
	return Version{major, minor}, nil
}

// Hotspot marks a pixel of one animation frame, used as the click
// location when the state serves as a cursor. Frame is the 1-based
// frame ordinal the hotspot belongs to. Y counts from the bottom of
// the cell.
type Hotspot struct {
	X, Y  int
	Frame int
}

// Setting is a key/value pair this package does not interpret.
type Setting struct {
	Key, Value string
}

// State is the metadata of one icon state, without pixel data.
type State struct {
	Name     string
	Dirs     int
	Frames   int
	Delay    []float64 // one entry per frame; nil means every frame takes one tick
	Loop     int       // 0 = loop forever
	Rewind   bool
	Movement bool
	Hotspots []Hotspot
	Unknown  []Setting
}

// Metadata is the parsed form of a complete DMI metadata block.
type Metadata struct {
	Version Version
	Width   int
	Height  int
	States  []*State
}

// TotalFrames is the number of grid cells the states claim, in
// declaration order.
func (m *Metadata) TotalFrames() int {
	var n int
	for _, s := range m.States {
		n += s.Dirs * s.Frames
	}
	return n
}

// SyntaxError reports a grammar violation, with the 1-based line it
// occurred on and the state block being parsed, when any.
type SyntaxError struct {
	Line  int
	State string
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("metadata: line %d: state %q: %s", e.Line, e.State, e.Msg)
	}
	return fmt.Sprintf("metadata: line %d: %s", e.Line, e.Msg)
}

// VersionError reports a format version this package does not
// understand. Unrecognized versions always fail; fields are never
// guessed at.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("metadata: unsupported version %q", e.Version)
}

// ErrUnexpectedEOF is returned when the metadata block ends before its
// trailer.
var ErrUnexpectedEOF = errors.New("metadata: unexpected end of input")
