package chunk

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunks(t *testing.T) []Chunk {
	t.Helper()

	// A real PNG stream is the easiest well-formed chunk fixture.
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	chunks, err := Read(b)
	require.NoError(t, err)
	return chunks
}

func TestRead(t *testing.T) {
	chunks := testChunks(t)

	require.True(t, len(chunks) >= 3)
	assert.Equal(t, IHDR, chunks[0].Type)
	assert.Equal(t, IEND, chunks[len(chunks)-1].Type)
}

func TestReadBadSignature(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("GIF89a not a png")))
	assert.Equal(t, ErrBadSignature, err)
}

func TestReadTruncated(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	// Lop off the IEND chunk entirely.
	_, err := Read(bytes.NewReader(b.Bytes()[:b.Len()-12]))
	assert.Equal(t, ErrNoEnd, err)

	// Cut mid-chunk.
	_, err = Read(bytes.NewReader(b.Bytes()[:b.Len()-6]))
	assert.Error(t, err)
}

func TestReadCRCMismatch(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	// Corrupt one byte of the IHDR data.
	raw := b.Bytes()
	raw[8+8] ^= 0xff

	_, err := Read(bytes.NewReader(raw))
	require.Error(t, err)

	var crcErr *CRCError
	require.True(t, errors.As(err, &crcErr))
	assert.Equal(t, IHDR, crcErr.Type)
}

func TestWriteRoundTrip(t *testing.T) {
	chunks := testChunks(t)

	b := new(bytes.Buffer)
	require.NoError(t, Write(b, chunks))

	again, err := Read(b)
	require.NoError(t, err)
	assert.Equal(t, chunks, again)
}

func TestZTXTRoundTrip(t *testing.T) {
	c, err := NewZTXT("Description", "# BEGIN DMI\nversion = 4.0\n# END DMI\n")
	require.NoError(t, err)
	assert.Equal(t, ZTXT, c.Type)

	keyword, text, err := c.ZTXT()
	require.NoError(t, err)
	assert.Equal(t, "Description", keyword)
	assert.Equal(t, "# BEGIN DMI\nversion = 4.0\n# END DMI\n", text)
}

func TestZTXTBadKeyword(t *testing.T) {
	_, err := NewZTXT("", "text")
	assert.Error(t, err)

	_, err = NewZTXT("has\x00null", "text")
	assert.Error(t, err)
}

func TestTextRoundTrip(t *testing.T) {
	c, err := NewText("Software", "dmi")
	require.NoError(t, err)

	keyword, text, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, "Software", keyword)
	assert.Equal(t, "dmi", text)

	// Type mismatch is an error.
	_, _, err = c.ZTXT()
	assert.Error(t, err)
}

func TestScannerStopsAtEnd(t *testing.T) {
	chunks := testChunks(t)

	b := new(bytes.Buffer)
	require.NoError(t, Write(b, chunks))
	// Trailing garbage after IEND is never read.
	b.WriteString("trailing garbage")

	s := NewScanner(b)
	var n int
	for s.Next() {
		n++
	}
	require.NoError(t, s.Err())
	assert.Equal(t, len(chunks), n)
}
