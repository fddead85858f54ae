// Package event defines the logical Nostr event and tag types the storage
// core operates on. JSON parsing and signature verification happen
// upstream (spec.md §1): this package only validates structural bounds —
// the same bounds original_source/src/nostr/validate/nostr_event.c checks
// before accepting an event from the wire.
package event

import "github.com/Hakkadaikon/nostrdb/errs"

// Size limits mirrored from spec.md §3 and §4.2. These are the caps the
// tag codec MUST enforce on deserialize, and the same caps validation
// enforces on write.
const (
	MaxContentLength = 1 << 20 // 2^20 bytes
	MaxTagCount      = 2048
	MaxTagNameLen    = 31
	MaxTagValueCount = 16
	MaxTagValueLen   = 511

	IDSize  = 32
	PubKeySize = 32
	SigSize = 64
)

// Tag is a short name plus an ordered list of values, as spec.md §3 defines.
type Tag struct {
	Name   string
	Values []string
}

// Event is the logical, in-memory representation of a signed Nostr event.
// Id, PubKey and Sig are fixed-width; Kind, CreatedAt, Content and Tags are
// variable.
type Event struct {
	ID        [IDSize]byte
	PubKey    [PubKeySize]byte
	Sig       [SigSize]byte
	Kind      uint32
	CreatedAt int64
	Content   string
	Tags      []Tag
}

// Validate enforces the structural bounds spec.md §3/§4.2 require of every
// event before it is written or after it is deserialized. It does not
// check signatures or JSON well-formedness — those run upstream.
func Validate(e *Event) error {
	if e == nil {
		return errs.ErrNullParam
	}
	if len(e.Content) > MaxContentLength {
		return errs.ErrInvalidEvent
	}
	if len(e.Tags) > MaxTagCount {
		return errs.ErrInvalidEvent
	}
	for _, t := range e.Tags {
		if len(t.Name) == 0 || len(t.Name) > MaxTagNameLen {
			return errs.ErrInvalidEvent
		}
		if len(t.Values) > MaxTagValueCount {
			return errs.ErrInvalidEvent
		}
		for _, v := range t.Values {
			if len(v) > MaxTagValueLen {
				return errs.ErrInvalidEvent
			}
		}
	}
	return nil
}
