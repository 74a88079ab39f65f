package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Write encodes chunks to w as a PNG stream, prepending the signature
// and appending the length and CRC of each chunk.
func Write(w io.Writer, chunks []Chunk) error {
	if _, err := w.Write(Signature); err != nil {
		return err
	}

	for _, c := range chunks {
		if !validType(c.Type) {
			return fmt.Errorf("%w: %q", errBadType, c.Type)
		}

		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[:4], uint32(len(c.Data)))
		copy(hdr[4:], c.Type)
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}

		if _, err := w.Write(c.Data); err != nil {
			return err
		}

		var crc [4]byte
		binary.BigEndian.PutUint32(crc[:], c.crc())
		if _, err := w.Write(crc[:]); err != nil {
			return err
		}
	}

	return nil
}
