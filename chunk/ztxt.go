package chunk

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io/ioutil"
)

var errNotText = errors.New("chunk: not a text chunk")

// NewZTXT builds a zTXt chunk holding text compressed with zlib under
// the given keyword.
func NewZTXT(keyword, text string) (Chunk, error) {
	if err := checkKeyword(keyword); err != nil {
		return Chunk{}, err
	}

	var buf bytes.Buffer
	buf.WriteString(keyword)
	buf.WriteByte(0) // null separator
	buf.WriteByte(0) // compression method, 0 = zlib

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		return Chunk{}, err
	}
	if err := zw.Close(); err != nil {
		return Chunk{}, err
	}

	return Chunk{Type: ZTXT, Data: buf.Bytes()}, nil
}

// ZTXT returns the keyword and decompressed text of a zTXt chunk.
func (c Chunk) ZTXT() (string, string, error) {
	if c.Type != ZTXT {
		return "", "", errNotText
	}

	i := bytes.IndexByte(c.Data, 0)
	if i < 0 || i+2 > len(c.Data) {
		return "", "", errors.New("chunk: malformed zTXt data")
	}
	if method := c.Data[i+1]; method != 0 {
		return "", "", fmt.Errorf("chunk: unsupported zTXt compression method %d", method)
	}

	zr, err := zlib.NewReader(bytes.NewReader(c.Data[i+2:]))
	if err != nil {
		return "", "", fmt.Errorf("chunk: decompress zTXt: %w", err)
	}
	defer zr.Close()

	text, err := ioutil.ReadAll(zr)
	if err != nil {
		return "", "", fmt.Errorf("chunk: decompress zTXt: %w", err)
	}

	return string(c.Data[:i]), string(text), nil
}

// NewText builds an uncompressed tEXt chunk.
func NewText(keyword, text string) (Chunk, error) {
	if err := checkKeyword(keyword); err != nil {
		return Chunk{}, err
	}

	data := make([]byte, 0, len(keyword)+1+len(text))
	data = append(data, keyword...)
	data = append(data, 0)
	data = append(data, text...)

	return Chunk{Type: TEXT, Data: data}, nil
}

// Text returns the keyword and text of a tEXt chunk.
func (c Chunk) Text() (string, string, error) {
	if c.Type != TEXT {
		return "", "", errNotText
	}

	i := bytes.IndexByte(c.Data, 0)
	if i < 0 {
		return "", "", errors.New("chunk: malformed tEXt data")
	}

	return string(c.Data[:i]), string(c.Data[i+1:]), nil
}

func checkKeyword(keyword string) error {
	if len(keyword) == 0 || len(keyword) > 79 {
		return fmt.Errorf("chunk: keyword %q must be between 1 and 79 bytes", keyword)
	}
	if bytes.IndexByte([]byte(keyword), 0) >= 0 {
		return fmt.Errorf("chunk: keyword %q contains a null byte", keyword)
	}
	return nil
}
