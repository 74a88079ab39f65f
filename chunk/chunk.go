/*
Package chunk implements a low-level PNG chunk reader and writer.

A PNG file is an eight byte signature followed by a sequence of chunks.
Each chunk carries a four byte big-endian data length, a four byte type,
the data itself and a CRC-32 computed over the type and data. The DMI
format stores its metadata in a zTXt chunk with the keyword
"Description", which standard image decoders silently discard, so the
chunk stream has to be handled directly.
*/
package chunk

import "hash/crc32"

// Signature is the eight byte magic at the start of every PNG file.
var Signature = []byte{137, 80, 78, 71, 13, 10, 26, 10}

// Well-known chunk types.
const (
	IHDR = "IHDR"
	PLTE = "PLTE"
	IDAT = "IDAT"
	IEND = "IEND"
	ZTXT = "zTXt"
	TEXT = "tEXt"
	ITXT = "iTXt"
)

// Chunk is a single PNG chunk. The length and CRC fields of the wire
// format are derived from Type and Data and are not stored.
type Chunk struct {
	Type string
	Data []byte
}

func (c Chunk) crc() uint32 {
	return crc32.Update(crc32.ChecksumIEEE([]byte(c.Type)), crc32.IEEETable, c.Data)
}

func validType(t string) bool {
	if len(t) != 4 {
		return false
	}
	for i := 0; i < len(t); i++ {
		b := t[i]
		if (b < 'A' || b > 'Z') && (b < 'a' || b > 'z') {
			return false
		}
	}
	return true
}
