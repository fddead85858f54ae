package eventlog

import (
	"github.com/Hakkadaikon/nostrdb/binfmt"
	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/event"
	"github.com/Hakkadaikon/nostrdb/metrics"
	"github.com/Hakkadaikon/nostrdb/pagedfile"
)

// Log is the memory-mapped events file. It has no knowledge of the index
// family; relay.Relay drives both together and is responsible for keeping
// them consistent (spec.md §4.3 step 5: index failures are reported via
// stats, not rolled back).
type Log struct {
	pf *pagedfile.File
}

// Open opens or creates the events log file at path.
func Open(path string, initialSize int64) (*Log, error) {
	header := encodeEventsHeader(initialSize)
	pf, created, err := pagedfile.OpenOrCreate(path, "events", HeaderSize, initialSize, header)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := validateHeader(pf.Header()); err != nil {
			pf.Close()
			return nil, err
		}
	}
	return &Log{pf: pf}, nil
}

func validateHeader(buf []byte) error {
	if len(buf) < HeaderSize || string(buf[0:8]) != EventsMagic {
		return errs.ErrInvalidMagic
	}
	if binfmt.U32(buf[8:12]) != FormatVersion {
		return errs.ErrVersionMismatch
	}
	return nil
}

func (l *Log) header() EventsHeader {
	return readEventsHeader(l.pf.Header())
}

// Stats returns the header counters relay.Stats surfaces.
func (l *Log) Stats() (eventCount, deletedCount, fileSize uint64) {
	h := l.header()
	return h.EventCount, h.DeletedCount, uint64(l.pf.Size())
}

// Append writes a validated event as a new EventRecord and advances the
// write cursor. It returns the byte offset the record was written at, for
// the caller to hand to every applicable index's insert. On any error the
// header is left unchanged (spec.md §4.3 step 5's rollback applies to the
// caller's id-index DUPLICATE path, which happens before any header
// mutation here — Append itself never partially commits).
func (l *Log) Append(e *event.Event, tagBytes []byte) (offset uint64, err error) {
	if e == nil {
		return 0, errs.ErrNullParam
	}

	recSize := RecordSize(len(e.Content), len(tagBytes))
	h := l.header()
	offset = h.NextWriteOffset
	end := int64(offset) + int64(recSize)

	if err := l.pf.EnsureCapacity(end); err != nil {
		return 0, errs.ErrFull
	}

	buf := l.pf.Data()
	rec := buf[offset : offset+uint64(recSize)]
	for i := range rec {
		rec[i] = 0
	}

	encodeEventHeader(rec[0:EventHeaderSize], eventHeader{
		TotalLength: uint32(recSize),
		Flags:       0,
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
	})
	encodeEventBody(rec[EventHeaderSize:EventHeaderSize+EventBodySize], eventBody{
		PubKey:        e.PubKey,
		Sig:           e.Sig,
		Kind:          e.Kind,
		ContentLength: uint32(len(e.Content)),
	})
	copy(rec[EventHeaderSize+EventBodySize:], e.Content)
	copy(rec[EventHeaderSize+EventBodySize+len(e.Content):], tagBytes)

	h.NextWriteOffset = offset + uint64(recSize)
	h.EventCount++
	h.FileSize = uint64(l.pf.Size())
	writeEventsHeaderFields(l.pf.Header(), h)

	metrics.EventsWritten.Inc()
	metrics.PagedFileBytes.WithLabelValues("events").Set(float64(l.pf.Size()))
	return offset, nil
}

// Rollback undoes the header advance an Append performed, used by the
// facade when the id-index insert reports DUPLICATE (spec.md §4.3 step 5).
// It does not reclaim the bytes already written; they are simply never
// referenced by any index.
func (l *Log) Rollback(offset uint64) {
	h := l.header()
	h.NextWriteOffset = offset
	h.EventCount--
	writeEventsHeaderFields(l.pf.Header(), h)
}

// record is a bounds-checked, decoded view over one on-disk EventRecord.
type record struct {
	Header  eventHeader
	Body    eventBody
	Content string
	Tags    []byte // still-serialized; callers deserialize lazily
}

// readRecord bounds-checks and decodes the record at offset. It returns
// errs.ErrIndexCorrupt if the record's declared total_length would run
// past the mapped file, matching spec.md §3's invariant that every stored
// offset's record fits within next_write_offset.
func (l *Log) readRecord(offset uint64) (record, error) {
	data := l.pf.Data()
	if offset+EventHeaderSize > uint64(len(data)) {
		return record{}, errs.ErrIndexCorrupt
	}
	eh := decodeEventHeader(data[offset : offset+EventHeaderSize])
	if eh.TotalLength < EventHeaderSize+EventBodySize {
		return record{}, errs.ErrIndexCorrupt
	}
	end := offset + uint64(eh.TotalLength)
	if end > uint64(len(data)) {
		return record{}, errs.ErrIndexCorrupt
	}

	bodyStart := offset + EventHeaderSize
	eb := decodeEventBody(data[bodyStart : bodyStart+EventBodySize])
	contentStart := bodyStart + EventBodySize
	if contentStart+uint64(eb.ContentLength) > end {
		return record{}, errs.ErrIndexCorrupt
	}
	content := string(data[contentStart : contentStart+uint64(eb.ContentLength)])
	tagsStart := contentStart + uint64(eb.ContentLength)
	tags := data[tagsStart:end]

	return record{Header: eh, Body: eb, Content: content, Tags: tags}, nil
}

// ReadEvent decodes the full logical event at offset, including tags. It
// returns errs.ErrNotFound if the record is DELETED.
func (l *Log) ReadEvent(offset uint64, deserializeTags func([]byte) ([]event.Tag, int, error)) (*event.Event, error) {
	rec, err := l.readRecord(offset)
	if err != nil {
		return nil, err
	}
	if rec.Header.Flags&DeletedFlag != 0 {
		return nil, errs.ErrNotFound
	}
	tags, _, err := deserializeTags(rec.Tags)
	if err != nil {
		return nil, errs.ErrIndexCorrupt
	}
	return &event.Event{
		ID:        rec.Header.ID,
		PubKey:    rec.Body.PubKey,
		Sig:       rec.Body.Sig,
		Kind:      rec.Body.Kind,
		CreatedAt: rec.Header.CreatedAt,
		Content:   rec.Content,
		Tags:      tags,
	}, nil
}

// IsLive reports whether the record at offset is present and not DELETED,
// without paying for tag deserialization. Used by the query post-filter.
func (l *Log) IsLive(offset uint64) (createdAt int64, live bool, err error) {
	rec, err := l.readRecord(offset)
	if err != nil {
		return 0, false, err
	}
	return rec.Header.CreatedAt, rec.Header.Flags&DeletedFlag == 0, nil
}

// CreatedAtKindAuthor reads just the fields the query post-filter needs to
// check the filter dimensions the chosen strategy didn't already cover.
func (l *Log) CreatedAtKindAuthor(offset uint64) (createdAt int64, kind uint32, pubkey [event.PubKeySize]byte, id [event.IDSize]byte, live bool, err error) {
	rec, err := l.readRecord(offset)
	if err != nil {
		return 0, 0, pubkey, id, false, err
	}
	return rec.Header.CreatedAt, rec.Body.Kind, rec.Body.PubKey, rec.Header.ID, rec.Header.Flags&DeletedFlag == 0, nil
}

// MarkDeleted sets the DELETED flag on the record at offset.
func (l *Log) MarkDeleted(offset uint64) error {
	rec, err := l.readRecord(offset)
	if err != nil {
		return err
	}
	if rec.Header.Flags&DeletedFlag != 0 {
		return errs.ErrNotFound
	}
	data := l.pf.Data()
	flagsOff := offset + 4
	binfmt.PutU32(data[flagsOff:flagsOff+4], rec.Header.Flags|DeletedFlag)

	h := l.header()
	h.DeletedCount++
	writeEventsHeaderFields(l.pf.Header(), h)
	metrics.EventsDeleted.Inc()
	return nil
}

// Sync flushes the mapping to disk.
func (l *Log) Sync(async bool) error { return l.pf.Sync(async) }

// Close unmaps and closes events.dat.
func (l *Log) Close() error { return l.pf.Close() }
