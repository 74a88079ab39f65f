package dmi

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/bodgit/dmi/chunk"
)

// Encode writes the Icon to w in DMI format. The sprite sheet is
// repacked from the document's current state order into the most
// square grid that fits, so encoding an unchanged document twice
// produces byte-identical output.
func Encode(w io.Writer, icon *Icon) error {
	if err := icon.Validate(); err != nil {
		return err
	}

	grid := packGrid(totalFrames(icon.States))
	sheet := image.NewNRGBA(image.Rect(0, 0, grid.columns*icon.Width, grid.rows*icon.Height))

	var index int
	_ = eachFrame(icon.States, func(s *IconState, dir, frame int) error {
		fr := s.seq[dir][frame]
		draw.Draw(sheet, grid.cell(index, icon.Width, icon.Height), fr.Image, fr.Image.Bounds().Min, draw.Src)
		index++
		return nil
	})

	text, err := icon.metadata().MarshalText()
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, sheet); err != nil {
		return fmt.Errorf("dmi: encode png: %w", err)
	}

	chunks, err := chunk.Read(buf)
	if err != nil {
		return fmt.Errorf("dmi: encode container: %w", err)
	}

	ztxt, err := chunk.NewZTXT(Keyword, string(text))
	if err != nil {
		return fmt.Errorf("dmi: encode metadata: %w", err)
	}

	// Metadata goes immediately after IHDR, followed by any text
	// chunks carried over from decoding, then the rest of the image.
	out := make([]chunk.Chunk, 0, len(chunks)+len(icon.Text)+1)
	out = append(out, chunks[0], ztxt)
	out = append(out, icon.Text...)
	out = append(out, chunks[1:]...)

	return chunk.Write(w, out)
}
