package binfmt

import (
	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/event"
)

// Wire-format limits (spec.md §4.2): these bound what the length-prefix
// fields can represent, not the application's tighter caps. A name of 255
// bytes round-trips through the codec even though event.Validate would
// never let such a tag reach storage.
const (
	wireMaxNameLen  = 255   // name_len is a u8
	wireMaxValueLen = 65535 // value_len is a u16
)

// TagSetSize returns the exact number of bytes Serialize would write for
// tags, without encoding anything. Callers use this to size the record
// before reserving paged-file space.
func TagSetSize(tags []event.Tag) int {
	n := 2 // tag_count
	for _, t := range tags {
		n += 1 + 1 + len(t.Name) // value_count + name_len + name bytes
		for _, v := range t.Values {
			n += 2 + len(v) // value_len + value bytes
		}
	}
	return n
}

// SerializeTags encodes tags into buf per spec.md §4.2:
//
//	tag_count: u16
//	for each tag:
//	    value_count: u8
//	    name_len: u8
//	    name_bytes[name_len]
//	    for each value:
//	        value_len: u16
//	        value_bytes[value_len]
//
// Returns the number of bytes written. Returns errs.ErrInvalidEvent if buf
// is too small, any tag has more than 255 values, any name exceeds 255
// bytes, or any value exceeds 65535 bytes.
func SerializeTags(tags []event.Tag, buf []byte) (int, error) {
	need := TagSetSize(tags)
	if len(buf) < need {
		return 0, errs.ErrInvalidEvent
	}
	if len(tags) > 0xFFFF {
		return 0, errs.ErrInvalidEvent
	}

	off := 0
	PutU16(buf[off:], uint16(len(tags)))
	off += 2

	for _, t := range tags {
		if len(t.Values) > 0xFF {
			return 0, errs.ErrInvalidEvent
		}
		if len(t.Name) > wireMaxNameLen {
			return 0, errs.ErrInvalidEvent
		}
		buf[off] = byte(len(t.Values))
		off++
		buf[off] = byte(len(t.Name))
		off++
		copy(buf[off:], t.Name)
		off += len(t.Name)

		for _, v := range t.Values {
			if len(v) > wireMaxValueLen {
				return 0, errs.ErrInvalidEvent
			}
			PutU16(buf[off:], uint16(len(v)))
			off += 2
			copy(buf[off:], v)
			off += len(v)
		}
	}
	return off, nil
}

// DeserializeTags decodes a tag array previously written by SerializeTags.
// It enforces the configured maxima from the event package on every field
// (spec.md §4.2: "these mirror the in-memory event caps and MUST be
// enforced on deserialize"), returning errs.ErrInvalidEvent on truncation,
// a length that would overflow buf, or a count exceeding its maximum.
//
// Returns the decoded tags and the number of bytes consumed from buf.
func DeserializeTags(buf []byte) ([]event.Tag, int, error) {
	if len(buf) < 2 {
		return nil, 0, errs.ErrInvalidEvent
	}
	off := 0
	tagCount := U16(buf[off:])
	off += 2
	if int(tagCount) > event.MaxTagCount {
		return nil, 0, errs.ErrInvalidEvent
	}

	tags := make([]event.Tag, 0, tagCount)
	for i := 0; i < int(tagCount); i++ {
		if off+2 > len(buf) {
			return nil, 0, errs.ErrInvalidEvent
		}
		valueCount := int(buf[off])
		off++
		nameLen := int(buf[off])
		off++
		if valueCount > event.MaxTagValueCount || nameLen > event.MaxTagNameLen || nameLen == 0 {
			return nil, 0, errs.ErrInvalidEvent
		}
		if off+nameLen > len(buf) {
			return nil, 0, errs.ErrInvalidEvent
		}
		name := string(buf[off : off+nameLen])
		off += nameLen

		var values []string
		if valueCount > 0 {
			values = make([]string, 0, valueCount)
		}
		for j := 0; j < valueCount; j++ {
			if off+2 > len(buf) {
				return nil, 0, errs.ErrInvalidEvent
			}
			valueLen := int(U16(buf[off:]))
			off += 2
			if valueLen > event.MaxTagValueLen {
				return nil, 0, errs.ErrInvalidEvent
			}
			if off+valueLen > len(buf) {
				return nil, 0, errs.ErrInvalidEvent
			}
			values = append(values, string(buf[off:off+valueLen]))
			off += valueLen
		}
		tags = append(tags, event.Tag{Name: name, Values: values})
	}
	return tags, off, nil
}
