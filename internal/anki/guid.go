package anki

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// base91Table is Anki's note-GUID alphabet: ASCII letters, digits, then
// the punctuation set Anki appends for base91 encoding.
const base91Table = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!#$%&()*+,-./:;<=>?@[]^_`{|}~"

// GUID synthesizes a stable note identifier from the note's field values:
// the first 8 bytes of SHA-256 over the "__"-joined values, base91-encoded
// with Anki's alphabet. Identical content always yields the same GUID, so
// re-importing a rebuilt package updates notes instead of duplicating them.
func GUID(fields []string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "__")))
	n := binary.BigEndian.Uint64(sum[:8])

	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base91Table[n%uint64(len(base91Table))]
		n /= uint64(len(base91Table))
	}
	return string(buf[i:])
}

// fieldChecksum computes the notes.csum column: the integer value of the
// first 8 hex digits of SHA-1 over the sort field.
func fieldChecksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}
