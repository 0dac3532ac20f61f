// Package checksum provides the content digests used to identify catalog
// candidates: a 32-bit CRC for compatibility with archive headers and
// existing catalog records, and a BLAKE3 content address for strong
// identification.
package checksum

import (
	"encoding/hex"
	"hash/crc32"
	"strings"

	"github.com/zeebo/blake3"
)

// CRC32 computes the IEEE CRC-32 of data. This matches the checksum stored
// in zip entry headers, so archive entries can be identified without
// decompression.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ContentAddress returns the BLAKE3-256 digest of data as lowercase hex.
func ContentAddress(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HexUpper renders a binary checksum payload as upper-case hexadecimal
// text, the form catalog entries store.
func HexUpper(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
