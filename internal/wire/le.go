// Package wire encodes and decodes the on-disk trace format: the
// little-endian primitives, the per-record layout, and the fixed header.
package wire

import "encoding/binary"

// PutUint16LE writes v at dst[0:2] in little-endian order. The caller is
// responsible for dst having at least 2 bytes available; this is a hot-path
// primitive and performs no bounds checking beyond what the slice index
// itself enforces.
func PutUint16LE(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst, v)
}

// PutUint32LE writes v at dst[0:4] in little-endian order.
func PutUint32LE(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

// PutUint64LE writes v at dst[0:8] in little-endian order.
func PutUint64LE(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// Uint16LE reads a little-endian uint16 from src[0:2].
func Uint16LE(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src)
}

// Uint32LE reads a little-endian uint32 from src[0:4].
func Uint32LE(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// Uint64LE reads a little-endian uint64 from src[0:8].
func Uint64LE(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}
