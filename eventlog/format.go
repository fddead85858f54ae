// Package eventlog implements the events log spec.md §4.3 describes: a
// memory-mapped, self-describing, fixed-layout file holding EventsHeader
// followed by a sequence of EventRecord structures, with soft-delete
// semantics and a monotonically growing write cursor.
package eventlog

import (
	"github.com/Hakkadaikon/nostrdb/binfmt"
	"github.com/Hakkadaikon/nostrdb/event"
)

// EventsMagic identifies the events log file, per spec.md §3.
const EventsMagic = "NOSTRDB1"

// FormatVersion is the only version this build understands. A version
// mismatch on open is a hard error (spec.md §4.1).
const FormatVersion uint32 = 1

// HeaderSize is the fixed 64-byte EventsHeader size (spec.md §3).
const HeaderSize = 64

// DeletedFlag is EventHeader.Flags bit 0.
const DeletedFlag uint32 = 1

// EventHeaderSize is the fixed 48-byte on-disk EventHeader size.
const EventHeaderSize = 48

// EventBodySize is the fixed 104-byte on-disk EventBody size.
const EventBodySize = 104

// EventsHeader is the 64-byte file header at offset 0 of events.dat.
type EventsHeader struct {
	EventCount      uint64
	NextWriteOffset uint64
	DeletedCount    uint64
	FileSize        uint64
}

// encodeEventsHeader writes a freshly created EventsHeader image, magic
// and version included, ready to hand to pagedfile.OpenOrCreate.
func encodeEventsHeader(fileSize int64) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], EventsMagic)
	binfmt.PutU32(buf[8:12], FormatVersion)
	binfmt.PutU32(buf[12:16], 0) // flags
	binfmt.PutU64(buf[16:24], 0) // event_count
	binfmt.PutU64(buf[24:32], uint64(HeaderSize))
	binfmt.PutU64(buf[32:40], 0) // deleted_count
	binfmt.PutU64(buf[40:48], uint64(fileSize))
	return buf
}

func readEventsHeader(buf []byte) EventsHeader {
	return EventsHeader{
		EventCount:      binfmt.U64(buf[16:24]),
		NextWriteOffset: binfmt.U64(buf[24:32]),
		DeletedCount:    binfmt.U64(buf[32:40]),
		FileSize:        binfmt.U64(buf[40:48]),
	}
}

func writeEventsHeaderFields(buf []byte, h EventsHeader) {
	binfmt.PutU64(buf[16:24], h.EventCount)
	binfmt.PutU64(buf[24:32], h.NextWriteOffset)
	binfmt.PutU64(buf[32:40], h.DeletedCount)
	binfmt.PutU64(buf[40:48], h.FileSize)
}

// eventHeader is the 48-byte on-disk record header.
type eventHeader struct {
	TotalLength uint32
	Flags       uint32
	ID          [event.IDSize]byte
	CreatedAt   int64
}

func encodeEventHeader(buf []byte, h eventHeader) {
	binfmt.PutU32(buf[0:4], h.TotalLength)
	binfmt.PutU32(buf[4:8], h.Flags)
	copy(buf[8:40], h.ID[:])
	binfmt.PutI64(buf[40:48], h.CreatedAt)
}

func decodeEventHeader(buf []byte) eventHeader {
	var h eventHeader
	h.TotalLength = binfmt.U32(buf[0:4])
	h.Flags = binfmt.U32(buf[4:8])
	copy(h.ID[:], buf[8:40])
	h.CreatedAt = binfmt.I64(buf[40:48])
	return h
}

// eventBody is the 104-byte on-disk record body.
type eventBody struct {
	PubKey        [event.PubKeySize]byte
	Sig           [event.SigSize]byte
	Kind          uint32
	ContentLength uint32
}

func encodeEventBody(buf []byte, b eventBody) {
	copy(buf[0:32], b.PubKey[:])
	copy(buf[32:96], b.Sig[:])
	binfmt.PutU32(buf[96:100], b.Kind)
	binfmt.PutU32(buf[100:104], b.ContentLength)
}

func decodeEventBody(buf []byte) eventBody {
	var b eventBody
	copy(b.PubKey[:], buf[0:32])
	copy(b.Sig[:], buf[32:96])
	b.Kind = binfmt.U32(buf[96:100])
	b.ContentLength = binfmt.U32(buf[100:104])
	return b
}

// RecordSize computes the total, 8-byte-aligned size of the on-disk record
// for an event with the given content length and serialized tag length,
// per spec.md §4.3 step 1.
func RecordSize(contentLength, tagsLength int) int {
	return binfmt.Align8(EventHeaderSize + EventBodySize + contentLength + tagsLength)
}
