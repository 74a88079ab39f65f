/*
Package dmi implements a decoder and encoder for the DMI icon format.

A DMI file is a PNG sprite sheet whose zTXt chunk describes how the
grid of equally sized cells divides into named icon states. Each state
holds one frame sequence per facing direction; every sequence within a
state has the same length and every frame is exactly the document cell
size. States are ordered, names are not required to be unique, and the
cells of the sheet are consumed in declaration order.

A loaded Icon has no internal shared mutable state, so any number of
goroutines may read it concurrently. It is not safe for concurrent
mutation; callers wanting parallel processing must partition states
between goroutines themselves.
*/
package dmi

import (
	"fmt"
	"image"

	"github.com/bodgit/dmi/chunk"
	"github.com/bodgit/dmi/metadata"
)

// Version of the DMI format. Alias of the metadata type so documents
// can be built without importing both packages.
type Version = metadata.Version

// Hotspot marks a pixel of one frame. Alias of the metadata type.
type Hotspot = metadata.Hotspot

// Frame is one image and timing unit within a direction's sequence.
// The image dimensions must equal the owning document's cell size.
type Frame struct {
	Image    *image.NRGBA
	Delay    float64 // animation ticks, one tick is a tenth of a second
	Hotspots []Hotspot
}

func (f *Frame) clone() *Frame {
	c := &Frame{Delay: f.Delay}
	if f.Image != nil {
		c.Image = cloneNRGBA(f.Image)
	}
	c.Hotspots = append([]Hotspot(nil), f.Hotspots...)
	return c
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// IconState is one named animation within an Icon.
type IconState struct {
	Name     string
	Loop     int // 0 = loop forever
	Rewind   bool
	Movement bool
	Unknown  []metadata.Setting // settings retained verbatim from parsing

	dirs int
	seq  [][]*Frame // indexed by direction, then frame
}

// NewState returns a state with the given direction and frame counts.
// Every frame starts with a one tick delay and no image; images must
// be assigned before the state is added to an Icon.
func NewState(name string, dirs, frames int) (*IconState, error) {
	if !metadata.ValidDirs(dirs) {
		return nil, fmt.Errorf("dmi: dirs must be 1, 4 or 8, found %d", dirs)
	}
	if frames < 1 {
		return nil, fmt.Errorf("dmi: frames must be at least 1, found %d", frames)
	}

	s := &IconState{
		Name: name,
		dirs: dirs,
		seq:  make([][]*Frame, dirs),
	}
	for d := range s.seq {
		s.seq[d] = make([]*Frame, frames)
		for f := range s.seq[d] {
			s.seq[d][f] = &Frame{Delay: 1}
		}
	}

	return s, nil
}

// Dirs returns the direction count, one of 1, 4 or 8.
func (s *IconState) Dirs() int {
	return s.dirs
}

// Frames returns the number of frames per direction.
func (s *IconState) Frames() int {
	if s.dirs == 0 {
		return 0
	}
	return len(s.seq[0])
}

// Frame returns the frame at the given direction and frame index.
func (s *IconState) Frame(dir, frame int) (*Frame, error) {
	if dir < 0 || dir >= s.dirs {
		return nil, fmt.Errorf("dmi: state %q: dir %d out of range (0..%d)", s.Name, dir, s.dirs-1)
	}
	if frame < 0 || frame >= s.Frames() {
		return nil, fmt.Errorf("dmi: state %q: frame %d out of range (0..%d)", s.Name, frame, s.Frames()-1)
	}
	return s.seq[dir][frame], nil
}

// SetDirs changes the direction count. Shrinking drops the surplus
// directions; growing duplicates the first direction's frames, pixel
// data included, so the state stays structurally valid.
func (s *IconState) SetDirs(n int) error {
	if !metadata.ValidDirs(n) {
		return fmt.Errorf("dmi: dirs must be 1, 4 or 8, found %d", n)
	}
	switch {
	case n < s.dirs:
		s.seq = s.seq[:n]
	case n > s.dirs:
		for d := s.dirs; d < n; d++ {
			frames := make([]*Frame, len(s.seq[0]))
			for f, fr := range s.seq[0] {
				frames[f] = fr.clone()
			}
			s.seq = append(s.seq, frames)
		}
	}
	s.dirs = n
	return nil
}

// SetFrames changes the frame count of every direction. Shrinking
// truncates each sequence; growing appends copies of each direction's
// last frame.
func (s *IconState) SetFrames(n int) error {
	if n < 1 {
		return fmt.Errorf("dmi: frames must be at least 1, found %d", n)
	}
	for d := range s.seq {
		switch {
		case n < len(s.seq[d]):
			s.seq[d] = s.seq[d][:n]
		case n > len(s.seq[d]):
			for f := len(s.seq[d]); f < n; f++ {
				s.seq[d] = append(s.seq[d], s.seq[d][len(s.seq[d])-1].clone())
			}
		}
	}
	return nil
}

// SetDelay sets the delay of one frame index across every direction,
// keeping the per-frame timing consistent between facings.
func (s *IconState) SetDelay(frame int, delay float64) error {
	if frame < 0 || frame >= s.Frames() {
		return fmt.Errorf("dmi: state %q: frame %d out of range (0..%d)", s.Name, frame, s.Frames()-1)
	}
	if delay <= 0 {
		return fmt.Errorf("dmi: state %q: delay must be positive, found %v", s.Name, delay)
	}
	for d := range s.seq {
		s.seq[d][frame].Delay = delay
	}
	return nil
}

// validate checks the state invariants against the document cell size.
func (s *IconState) validate(width, height int) *GeometryError {
	fail := func(dir, frame int, format string, args ...interface{}) *GeometryError {
		return &GeometryError{State: s.Name, Dir: dir, Frame: frame, Msg: fmt.Sprintf(format, args...)}
	}

	if !metadata.ValidDirs(s.dirs) || len(s.seq) != s.dirs {
		return fail(-1, -1, "invalid direction count %d", s.dirs)
	}
	frames := len(s.seq[0])
	if frames < 1 {
		return fail(-1, -1, "no frames")
	}
	for d := range s.seq {
		if len(s.seq[d]) != frames {
			return fail(d, -1, "direction has %d frames, expected %d", len(s.seq[d]), frames)
		}
		for f, fr := range s.seq[d] {
			if fr == nil || fr.Image == nil {
				return fail(d, f, "missing frame image")
			}
			b := fr.Image.Bounds()
			if b.Dx() != width || b.Dy() != height {
				return fail(d, f, "frame image is %dx%d, cell size is %dx%d", b.Dx(), b.Dy(), width, height)
			}
			if fr.Delay != s.seq[0][f].Delay {
				return fail(d, f, "delay %v differs from first direction's %v", fr.Delay, s.seq[0][f].Delay)
			}
		}
	}

	return nil
}

// metadata returns the state's grammar-level record. Delays come from
// the first direction; hotspots are collected from its frames in frame
// order with their ordinals normalized.
func (s *IconState) metadata() *metadata.State {
	ms := &metadata.State{
		Name:     s.Name,
		Dirs:     s.dirs,
		Frames:   s.Frames(),
		Loop:     s.Loop,
		Rewind:   s.Rewind,
		Movement: s.Movement,
		Unknown:  s.Unknown,
	}
	ms.Delay = make([]float64, ms.Frames)
	for f, fr := range s.seq[0] {
		ms.Delay[f] = fr.Delay
		for _, h := range fr.Hotspots {
			ms.Hotspots = append(ms.Hotspots, Hotspot{X: h.X, Y: h.Y, Frame: f + 1})
		}
	}
	return ms
}

// Icon is a complete DMI document: global properties plus the ordered
// icon state collection.
type Icon struct {
	Version Version
	Width   int // cell width in pixels
	Height  int // cell height in pixels
	States  []*IconState

	// Text holds ancillary text chunks found alongside the DMI
	// metadata; they are written back out untouched on Encode.
	Text []chunk.Chunk
}

// New returns an empty Icon with the given cell size.
func New(width, height int) *Icon {
	return &Icon{
		Version: metadata.Current,
		Width:   width,
		Height:  height,
	}
}

// AddState appends s after checking it against the document cell size.
func (ic *Icon) AddState(s *IconState) error {
	if err := s.validate(ic.Width, ic.Height); err != nil {
		return err
	}
	ic.States = append(ic.States, s)
	return nil
}

// RemoveState removes and returns the state at index i.
func (ic *Icon) RemoveState(i int) (*IconState, error) {
	if i < 0 || i >= len(ic.States) {
		return nil, fmt.Errorf("dmi: state index %d out of range (0..%d)", i, len(ic.States)-1)
	}
	s := ic.States[i]
	ic.States = append(ic.States[:i], ic.States[i+1:]...)
	return s, nil
}

// MoveState moves the state at index i to index j, shifting the states
// in between.
func (ic *Icon) MoveState(i, j int) error {
	if i < 0 || i >= len(ic.States) || j < 0 || j >= len(ic.States) {
		return fmt.Errorf("dmi: state index out of range (0..%d)", len(ic.States)-1)
	}
	s := ic.States[i]
	ic.States = append(ic.States[:i], ic.States[i+1:]...)
	ic.States = append(ic.States[:j], append([]*IconState{s}, ic.States[j:]...)...)
	return nil
}

// State returns every state with the given name, in declaration order.
// Duplicate names are structurally valid; finding them is the caller's
// concern.
func (ic *Icon) State(name string) []*IconState {
	var states []*IconState
	for _, s := range ic.States {
		if s.Name == name {
			states = append(states, s)
		}
	}
	return states
}

// Validate checks every document invariant: positive cell size and, for
// each state, direction and frame counts, frame image dimensions and
// per-frame delay consistency.
func (ic *Icon) Validate() error {
	if ic.Width <= 0 || ic.Height <= 0 {
		return geometryErrorf("invalid cell size %dx%d", ic.Width, ic.Height)
	}
	for _, s := range ic.States {
		if err := s.validate(ic.Width, ic.Height); err != nil {
			return err
		}
	}
	return nil
}

// metadata returns the document's grammar-level form.
func (ic *Icon) metadata() *metadata.Metadata {
	m := &metadata.Metadata{
		Version: ic.Version,
		Width:   ic.Width,
		Height:  ic.Height,
	}
	for _, s := range ic.States {
		m.States = append(m.States, s.metadata())
	}
	return m
}
