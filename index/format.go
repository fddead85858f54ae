// Package index implements the generic, open-addressed-via-chaining hash
// index spec.md §4.4 describes, and the six concrete indices (id, pubkey,
// kind, pubkey+kind, tag, timeline) built on top of it. Layout: IndexHeader
// (64 bytes) ‖ bucket_count u64 bucket slots ‖ entry pool.
package index

import "github.com/Hakkadaikon/nostrdb/binfmt"

// HeaderSize is the fixed 64-byte IndexHeader size (spec.md §3).
const HeaderSize = 64

// FormatVersion is the only version this build understands.
const FormatVersion uint32 = 1

// BucketSlotSize is the size of one bucket table slot: a pool offset, 0
// meaning empty.
const BucketSlotSize = 8

// entryFixedSize is every PoolEntry field except the variable-length key:
// event_offset(8) + created_at(8) + next_entry_offset(8) + flags(4).
const entryFixedSize = 8 + 8 + 8 + 4

// TombstoneFlag is PoolEntry.Flags bit 0.
const TombstoneFlag uint32 = 1

// Kind names which of the six concrete index shapes a Header describes.
// It is not itself part of the on-disk layout; it only selects magic and
// entry size in code.
type Kind int

const (
	KindID Kind = iota
	KindPubkey
	KindKind
	KindPubkeyKind
	KindTag
	KindTimeline
)

// Magic strings, exactly 8 ASCII bytes each, per spec.md §6.
var magics = map[Kind]string{
	KindID:         "NDB_ID01",
	KindPubkey:     "NDB_PK01",
	KindKind:       "NDB_KN01",
	KindPubkeyKind: "NDB_PKK1",
	KindTag:        "NDB_TG01",
	KindTimeline:   "NDB_TL01",
}

// KeySize returns the fixed key width for kind, per spec.md §4.4's table.
func KeySize(k Kind) int {
	switch k {
	case KindID:
		return 32
	case KindPubkey:
		return 32
	case KindKind:
		return 4
	case KindPubkeyKind:
		return 36
	case KindTag:
		return 33 // 1-byte name + 32-byte value
	case KindTimeline:
		return 0 // degenerate: single logical chain, no key
	default:
		return 0
	}
}

// Unique reports whether kind enforces key uniqueness (only id does).
func Unique(k Kind) bool { return k == KindID }

// entrySize returns the 8-byte-aligned PoolEntry size for keySize.
func entrySize(keySize int) int {
	return binfmt.Align8(keySize + entryFixedSize)
}

// header mirrors IndexHeader (spec.md §3).
type header struct {
	BucketCount    uint64
	EntryCount     uint64
	PoolNextOffset uint64
	PoolSize       uint64
}

func encodeNewHeader(k Kind, bucketCount uint64, poolSize uint64) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], magics[k])
	binfmt.PutU32(buf[8:12], FormatVersion)
	binfmt.PutU32(buf[12:16], 0) // flags
	binfmt.PutU64(buf[16:24], bucketCount)
	binfmt.PutU64(buf[24:32], 0) // entry_count
	binfmt.PutU64(buf[32:40], 0) // pool_next_offset
	binfmt.PutU64(buf[40:48], poolSize)
	return buf
}

func readHeader(buf []byte) header {
	return header{
		BucketCount:    binfmt.U64(buf[16:24]),
		EntryCount:     binfmt.U64(buf[24:32]),
		PoolNextOffset: binfmt.U64(buf[32:40]),
		PoolSize:       binfmt.U64(buf[40:48]),
	}
}

func writeHeaderFields(buf []byte, h header) {
	binfmt.PutU64(buf[16:24], h.BucketCount)
	binfmt.PutU64(buf[24:32], h.EntryCount)
	binfmt.PutU64(buf[32:40], h.PoolNextOffset)
	binfmt.PutU64(buf[40:48], h.PoolSize)
}

func validateMagicVersion(buf []byte, k Kind) (ok bool, versionOK bool) {
	if len(buf) < 12 {
		return false, false
	}
	if string(buf[0:8]) != magics[k] {
		return false, false
	}
	return true, binfmt.U32(buf[8:12]) == FormatVersion
}

// bucketTableOffset returns the byte offset of the bucket table, directly
// after the header.
func bucketTableOffset() uint64 { return HeaderSize }

// poolOffset returns the byte offset the entry pool begins at, directly
// after the bucket table.
func poolOffset(bucketCount uint64) uint64 {
	return bucketTableOffset() + bucketCount*BucketSlotSize
}

// poolEntry mirrors PoolEntry (spec.md §3) for a given keySize.
type poolEntry struct {
	Key             []byte
	EventOffset     uint64
	CreatedAt       int64
	NextEntryOffset uint64
	Flags           uint32
}

func encodePoolEntry(buf []byte, e poolEntry, keySize int) {
	copy(buf[0:keySize], e.Key)
	off := keySize
	binfmt.PutU64(buf[off:], e.EventOffset)
	off += 8
	binfmt.PutI64(buf[off:], e.CreatedAt)
	off += 8
	binfmt.PutU64(buf[off:], e.NextEntryOffset)
	off += 8
	binfmt.PutU32(buf[off:], e.Flags)
}

func decodePoolEntry(buf []byte, keySize int) poolEntry {
	var e poolEntry
	e.Key = make([]byte, keySize)
	copy(e.Key, buf[0:keySize])
	off := keySize
	e.EventOffset = binfmt.U64(buf[off:])
	off += 8
	e.CreatedAt = binfmt.I64(buf[off:])
	off += 8
	e.NextEntryOffset = binfmt.U64(buf[off:])
	off += 8
	e.Flags = binfmt.U32(buf[off:])
	return e
}
