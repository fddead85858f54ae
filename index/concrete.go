package index

import (
	"path/filepath"

	"github.com/Hakkadaikon/nostrdb/binfmt"
)

// Set bundles the six concrete indices spec.md §4.4 names. relay.Relay
// owns one Set per open database directory.
type Set struct {
	ID         *Index // key: event ID, unique
	Pubkey     *Index // key: pubkey
	Kind       *Index // key: kind, 4 bytes LE
	PubkeyKind *Index // key: pubkey ‖ kind
	Tag        *Index // key: tag name byte ‖ 32-byte folded tag value
	Timeline   *Index // no key: single global newest-first chain
}

// fileNames are the six on-disk files a Set opens under a database
// directory, named for what they index rather than their on-disk Kind
// constant to keep an `ls` of the directory self-explanatory.
var fileNames = map[Kind]string{
	KindID:         "idx_id.dat",
	KindPubkey:     "idx_pubkey.dat",
	KindKind:       "idx_kind.dat",
	KindPubkeyKind: "idx_pubkey_kind.dat",
	KindTag:        "idx_tag.dat",
	KindTimeline:   "idx_timeline.dat",
}

// OpenSet opens (or creates) all six index files under dir. bucketCounts
// supplies the per-index bucket count (must be a power of two for every
// kind except KindTimeline, which is always exactly 1 bucket since it
// holds a single global chain). initialPoolSize seeds every index's pool;
// bloomEnabled turns on the in-memory Bloom accelerator for every index
// except the timeline index, whose chain is always walked in full anyway.
func OpenSet(dir string, bucketCounts map[Kind]uint64, initialPoolSize int64, bloomEnabled bool) (*Set, error) {
	open := func(k Kind, bloom bool) (*Index, error) {
		bc := bucketCounts[k]
		if k == KindTimeline {
			bc = 1
		}
		return Open(filepath.Join(dir, fileNames[k]), k, bc, initialPoolSize, bloom)
	}

	id, err := open(KindID, bloomEnabled)
	if err != nil {
		return nil, err
	}
	pubkey, err := open(KindPubkey, bloomEnabled)
	if err != nil {
		id.Close()
		return nil, err
	}
	kind, err := open(KindKind, bloomEnabled)
	if err != nil {
		id.Close()
		pubkey.Close()
		return nil, err
	}
	pubkeyKind, err := open(KindPubkeyKind, bloomEnabled)
	if err != nil {
		id.Close()
		pubkey.Close()
		kind.Close()
		return nil, err
	}
	tag, err := open(KindTag, bloomEnabled)
	if err != nil {
		id.Close()
		pubkey.Close()
		kind.Close()
		pubkeyKind.Close()
		return nil, err
	}
	timeline, err := open(KindTimeline, false)
	if err != nil {
		id.Close()
		pubkey.Close()
		kind.Close()
		pubkeyKind.Close()
		tag.Close()
		return nil, err
	}

	return &Set{
		ID:         id,
		Pubkey:     pubkey,
		Kind:       kind,
		PubkeyKind: pubkeyKind,
		Tag:        tag,
		Timeline:   timeline,
	}, nil
}

// Close closes every index in the set, collecting the first error but
// still attempting to close the rest.
func (s *Set) Close() error {
	var first error
	for _, ix := range []*Index{s.ID, s.Pubkey, s.Kind, s.PubkeyKind, s.Tag, s.Timeline} {
		if err := ix.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Sync flushes every index in the set.
func (s *Set) Sync(async bool) error {
	var first error
	for _, ix := range []*Index{s.ID, s.Pubkey, s.Kind, s.PubkeyKind, s.Tag, s.Timeline} {
		if err := ix.Sync(async); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// KindKey encodes a kind number into the 4-byte little-endian key the
// kind index stores.
func KindKey(kind uint32) []byte {
	buf := make([]byte, 4)
	binfmt.PutU32(buf, kind)
	return buf
}

// PubkeyKindKey encodes the 36-byte pubkey‖kind composite key the
// pubkey+kind index stores.
func PubkeyKindKey(pubkey [32]byte, kind uint32) []byte {
	buf := make([]byte, 36)
	copy(buf[:32], pubkey[:])
	binfmt.PutU32(buf[32:], kind)
	return buf
}

// TagKey encodes the 33-byte tag index key: the tag's first-letter name
// byte, followed by the 32-byte folded value from TagValueKey. spec.md
// §4.4 restricts tag indexing to single-letter tag names (e.g. "e", "p"),
// matching NIP-01's #e/#p filter convention.
func TagKey(tagName byte, value []byte) []byte {
	buf := make([]byte, 33)
	buf[0] = tagName
	folded := TagValueKey(value)
	copy(buf[1:], folded[:])
	return buf
}
