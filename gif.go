package dmi

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"

	"github.com/ericpauley/go-quantize/quantize"
)

// GIF renders one direction's frame sequence as an animated GIF,
// honouring per-frame delays, the rewind flag (forward then backward)
// and the loop count. Each frame is quantized to its own 256 color
// palette with a transparent entry.
func (s *IconState) GIF(dir int) (*gif.GIF, error) {
	if dir < 0 || dir >= s.dirs {
		return nil, fmt.Errorf("dmi: state %q: dir %d out of range (0..%d)", s.Name, dir, s.dirs-1)
	}

	frames := s.seq[dir]
	sequence := make([]*Frame, 0, 2*len(frames))
	sequence = append(sequence, frames...)
	if s.Rewind {
		// Play back to the start without repeating either endpoint.
		for f := len(frames) - 2; f > 0; f-- {
			sequence = append(sequence, frames[f])
		}
	}

	q := quantize.MedianCutQuantizer{AddTransparent: true}

	g := &gif.GIF{LoopCount: s.Loop}
	for f, fr := range sequence {
		if fr.Image == nil {
			return nil, fmt.Errorf("dmi: state %q: frame %d has no image", s.Name, f)
		}
		b := fr.Image.Bounds()
		p := q.Quantize(make(color.Palette, 0, 256), fr.Image)
		pm := image.NewPaletted(b, p)
		draw.Draw(pm, b, fr.Image, b.Min, draw.Src)
		g.Image = append(g.Image, pm)
		// A DMI tick is a tenth of a second; GIF delays count
		// hundredths.
		g.Delay = append(g.Delay, int(fr.Delay*10))
	}

	return g, nil
}
