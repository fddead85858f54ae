// Package binfmt provides the fixed-width little-endian integer helpers and
// the variable-length tag codec spec.md §4.2 describes. Every on-disk
// structure in eventlog and index is built from these primitives; nothing
// in this package touches a file or a syscall.
package binfmt

import "encoding/binary"

// Align8 rounds n up to the next multiple of 8, matching the 8-byte
// alignment spec.md §3 requires of every record and pool entry.
func Align8(n int) int {
	return (n + 7) &^ 7
}

// Align8U64 is Align8 for uint64-typed offsets and sizes.
func Align8U64(n uint64) uint64 {
	return (n + 7) &^ 7
}

// PutU16 writes v little-endian at buf[0:2].
func PutU16(buf []byte, v uint16) { binary.LittleEndian.PutUint16(buf, v) }

// PutU32 writes v little-endian at buf[0:4].
func PutU32(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }

// PutU64 writes v little-endian at buf[0:8].
func PutU64(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }

// PutI64 writes v little-endian at buf[0:8] as its bit pattern.
func PutI64(buf []byte, v int64) { binary.LittleEndian.PutUint64(buf, uint64(v)) }

// U16 reads a little-endian uint16 from buf[0:2].
func U16(buf []byte) uint16 { return binary.LittleEndian.Uint16(buf) }

// U32 reads a little-endian uint32 from buf[0:4].
func U32(buf []byte) uint32 { return binary.LittleEndian.Uint32(buf) }

// U64 reads a little-endian uint64 from buf[0:8].
func U64(buf []byte) uint64 { return binary.LittleEndian.Uint64(buf) }

// I64 reads a little-endian int64 from buf[0:8].
func I64(buf []byte) int64 { return int64(binary.LittleEndian.Uint64(buf)) }
