// Package nostrfilter implements the NIP-01 style Filter and the
// ResultSet a query accumulates matches into.
package nostrfilter

import "github.com/Hakkadaikon/nostrdb/errs"

// Maxima spec.md §4.5 fixes for a single filter.
const (
	MaxIDs        = 256
	MaxAuthors    = 256
	MaxKinds      = 64
	MaxTagFilters = 26 // one per ASCII letter
	MaxTagValues  = 256
)

// DefaultLimit is used when Filter.Limit is 0.
const DefaultLimit = 500

// TagFilter constrains events carrying a tag named Name to one of Values.
type TagFilter struct {
	Name   byte
	Values [][]byte // each up to 32 raw bytes; folded via index.TagValueKey before lookup
}

// Filter is the zero-value-means-unconstrained query predicate spec.md
// §4.5 describes.
type Filter struct {
	IDs     [][32]byte
	Authors [][32]byte
	Kinds   []uint32
	Tags    []TagFilter
	Since   int64 // 0 = open
	Until   int64 // 0 = open
	Limit   uint32
}

// Validate enforces the maxima and since/until ordering spec.md §4.5
// requires, returning errs.ErrInvalidEvent on any violation.
func (f *Filter) Validate() error {
	if len(f.IDs) > MaxIDs {
		return errs.ErrInvalidEvent
	}
	if len(f.Authors) > MaxAuthors {
		return errs.ErrInvalidEvent
	}
	if len(f.Kinds) > MaxKinds {
		return errs.ErrInvalidEvent
	}
	if len(f.Tags) > MaxTagFilters {
		return errs.ErrInvalidEvent
	}
	for _, tf := range f.Tags {
		if len(tf.Values) > MaxTagValues {
			return errs.ErrInvalidEvent
		}
	}
	if f.Since != 0 && f.Until != 0 && f.Since > f.Until {
		return errs.ErrInvalidEvent
	}
	return nil
}

// EffectiveLimit returns Limit, or DefaultLimit when Limit is 0.
func (f *Filter) EffectiveLimit() int {
	if f.Limit == 0 {
		return DefaultLimit
	}
	return int(f.Limit)
}

// MatchesKind reports whether kind passes f's kind constraint (vacuously
// true when f.Kinds is empty).
func (f *Filter) MatchesKind(kind uint32) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// MatchesAuthor reports whether pubkey passes f's author constraint.
func (f *Filter) MatchesAuthor(pubkey [32]byte) bool {
	if len(f.Authors) == 0 {
		return true
	}
	for _, a := range f.Authors {
		if a == pubkey {
			return true
		}
	}
	return false
}

// MatchesID reports whether id passes f's id constraint.
func (f *Filter) MatchesID(id [32]byte) bool {
	if len(f.IDs) == 0 {
		return true
	}
	for _, want := range f.IDs {
		if want == id {
			return true
		}
	}
	return false
}

// MatchesTime reports whether createdAt falls within [Since, Until].
func (f *Filter) MatchesTime(createdAt int64) bool {
	if f.Since != 0 && createdAt < f.Since {
		return false
	}
	if f.Until != 0 && createdAt > f.Until {
		return false
	}
	return true
}
