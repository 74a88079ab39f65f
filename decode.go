package dmi

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"io/ioutil"

	"github.com/bodgit/dmi/chunk"
	"github.com/bodgit/dmi/metadata"
)

// Keyword is the zTXt keyword carrying the DMI metadata block.
const Keyword = "Description"

// Decode reads a DMI file from r and returns the assembled document.
func Decode(r io.Reader) (*Icon, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dmi: read: %w", err)
	}

	chunks, err := chunk.Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("dmi: read container: %w", err)
	}

	var (
		text  string
		found bool
		extra []chunk.Chunk
	)
	for _, c := range chunks {
		switch c.Type {
		case chunk.ZTXT:
			keyword, t, err := c.ZTXT()
			if err != nil {
				return nil, fmt.Errorf("dmi: %w", err)
			}
			if keyword == Keyword && !found {
				text, found = t, true
				continue
			}
			extra = append(extra, c)
		case chunk.TEXT, chunk.ITXT:
			extra = append(extra, c)
		}
	}
	if !found {
		return nil, ErrMissingMetadata
	}

	meta, err := metadata.Parse([]byte(text))
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("dmi: decode png: %w", err)
	}
	sheet := toNRGBA(img)

	bounds := sheet.Bounds()
	grid, err := resolveGrid(bounds.Dx(), bounds.Dy(), meta.Width, meta.Height, meta.TotalFrames())
	if err != nil {
		return nil, err
	}

	icon := &Icon{
		Version: meta.Version,
		Width:   meta.Width,
		Height:  meta.Height,
		Text:    extra,
	}
	for _, ms := range meta.States {
		s, err := newStateFromMetadata(ms)
		if err != nil {
			return nil, err
		}
		icon.States = append(icon.States, s)
	}

	// Slice one owned sub-image per cell, never mutating the sheet.
	var index int
	_ = eachFrame(icon.States, func(s *IconState, dir, frame int) error {
		s.seq[dir][frame].Image = crop(sheet, grid.cell(index, icon.Width, icon.Height))
		index++
		return nil
	})

	return icon, nil
}

// DecodeMetadata reads only the metadata of a DMI file, without
// decoding any pixel data. It is considerably faster than Decode for
// callers that only inspect state declarations.
func DecodeMetadata(r io.Reader) (*metadata.Metadata, error) {
	s := chunk.NewScanner(r)
	for s.Next() {
		c := s.Chunk()
		switch c.Type {
		case chunk.ZTXT:
			keyword, text, err := c.ZTXT()
			if err != nil {
				return nil, fmt.Errorf("dmi: %w", err)
			}
			if keyword != Keyword {
				continue
			}
			return metadata.Parse([]byte(text))
		case chunk.IDAT, chunk.IEND:
			// The metadata chunk always precedes the image data.
			return nil, ErrMissingMetadata
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("dmi: read container: %w", err)
	}
	return nil, ErrMissingMetadata
}

func newStateFromMetadata(ms *metadata.State) (*IconState, error) {
	s, err := NewState(ms.Name, ms.Dirs, ms.Frames)
	if err != nil {
		return nil, err
	}
	s.Loop = ms.Loop
	s.Rewind = ms.Rewind
	s.Movement = ms.Movement
	s.Unknown = ms.Unknown

	if ms.Delay != nil {
		for f, d := range ms.Delay {
			for dir := range s.seq {
				s.seq[dir][f].Delay = d
			}
		}
	}
	for _, h := range ms.Hotspots {
		// The parser guarantees the frame ordinal is in range. A
		// hotspot marks a cell of the animation rather than one
		// facing, so it lives on the first direction's frame.
		f := s.seq[0][h.Frame-1]
		f.Hotspots = append(f.Hotspots, h)
	}

	return s, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return nrgba
}

func crop(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}
