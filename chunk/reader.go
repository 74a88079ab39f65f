package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrBadSignature is returned when the stream does not start with
	// the PNG signature.
	ErrBadSignature = errors.New("chunk: bad PNG signature")

	// ErrNoEnd is returned when the stream ends without an IEND chunk.
	ErrNoEnd = errors.New("chunk: no IEND chunk before end of stream")

	errBadType = errors.New("chunk: invalid chunk type")
)

// CRCError is returned when a chunk's stated CRC does not match the one
// calculated over its type and data.
type CRCError struct {
	Type       string
	Stated     uint32
	Calculated uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("chunk: %s CRC mismatch (stated %#08x, calculated %#08x)", e.Type, e.Stated, e.Calculated)
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Scanner reads a PNG stream one chunk at a time. Scanning stops after
// the IEND chunk; a stream ending before IEND is an error.
type Scanner struct {
	r    io.Reader
	c    Chunk
	err  error
	sig  bool
	done bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r}
}

// Next advances to the next chunk. It returns false when IEND has been
// consumed or an error occurs.
func (s *Scanner) Next() bool {
	if s.err != nil || s.done {
		return false
	}

	if !s.sig {
		var sig [8]byte
		if err := readFull(s.r, sig[:]); err != nil {
			s.err = err
			return false
		}
		if !bytes.Equal(sig[:], Signature) {
			s.err = ErrBadSignature
			return false
		}
		s.sig = true
	}

	var hdr [8]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		if err == io.EOF {
			// Clean end of stream at a chunk boundary, but IEND
			// was never seen.
			s.err = ErrNoEnd
		} else {
			s.err = io.ErrUnexpectedEOF
		}
		return false
	}

	length := binary.BigEndian.Uint32(hdr[:4])
	typ := string(hdr[4:8])
	if !validType(typ) {
		s.err = fmt.Errorf("%w: %q", errBadType, typ)
		return false
	}

	data := make([]byte, length)
	if err := readFull(s.r, data); err != nil {
		s.err = err
		return false
	}

	var crc [4]byte
	if err := readFull(s.r, crc[:]); err != nil {
		s.err = err
		return false
	}

	c := Chunk{Type: typ, Data: data}
	if stated := binary.BigEndian.Uint32(crc[:]); stated != c.crc() {
		s.err = &CRCError{Type: typ, Stated: stated, Calculated: c.crc()}
		return false
	}

	if typ == IEND {
		s.done = true
	}
	s.c = c
	return true
}

// Chunk returns the chunk read by the last call to Next.
func (s *Scanner) Chunk() Chunk {
	return s.c
}

// Err returns the first error encountered while scanning.
func (s *Scanner) Err() error {
	return s.err
}

// Read parses a complete PNG stream into its chunks. The first chunk
// must be IHDR and the last is always IEND.
func Read(r io.Reader) ([]Chunk, error) {
	s := NewScanner(r)

	var chunks []Chunk
	for s.Next() {
		chunks = append(chunks, s.Chunk())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if len(chunks) == 0 || chunks[0].Type != IHDR {
		return nil, errors.New("chunk: IHDR is not the first chunk")
	}

	return chunks, nil
}
