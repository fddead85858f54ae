package index

import (
	"bytes"

	"github.com/Hakkadaikon/nostrdb/binfmt"
	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/logger"
	"github.com/Hakkadaikon/nostrdb/metrics"
	"github.com/Hakkadaikon/nostrdb/pagedfile"
)

// growthFactor is the pool's doubling factor, mirroring pagedfile's own
// file-growth factor (spec.md §4.4: "grow the underlying paged file by
// doubling").
const growthFactor = 2

// Index is one of the six concrete hash indices, laid on a paged file.
// Not safe for concurrent use without an external lock (spec.md §5).
type Index struct {
	pf          *pagedfile.File
	kind        Kind
	keySize     int
	entrySz     int
	unique      bool
	bucketCount uint64
	label       string
	filter      *bloom

	// chainHasMatch is set by walkChainRaw whenever at least one entry in
	// the most recently walked chain matched the queried key, tombstoned
	// entries included.
	chainHasMatch bool
}

// Open opens or creates the on-disk file for kind at path. bucketCount
// must be a power of two (enforced by config.Config.Validate, not
// re-checked here since this is an internal invariant, not external
// input). For an existing file, the bucket count stored in its header is
// used and bucketCount is ignored. If bloomEnabled, Open rebuilds an
// in-memory Bloom filter from every entry currently in the pool.
func Open(path string, kind Kind, bucketCount uint64, initialPoolSize int64, bloomEnabled bool) (*Index, error) {
	keySize := KeySize(kind)
	entrySz := entrySize(keySize)
	poolOff := poolOffset(bucketCount)
	initialSize := int64(poolOff) + initialPoolSize

	header := encodeNewHeader(kind, bucketCount, uint64(initialPoolSize))
	pf, created, err := pagedfile.OpenOrCreate(path, label(kind), HeaderSize, initialSize, header)
	if err != nil {
		return nil, err
	}
	if !created {
		ok, versionOK := validateMagicVersion(pf.Header(), kind)
		if !ok {
			pf.Close()
			return nil, errs.ErrInvalidMagic
		}
		if !versionOK {
			pf.Close()
			return nil, errs.ErrVersionMismatch
		}
		bucketCount = readHeader(pf.Header()).BucketCount
	}

	idx := &Index{
		pf:          pf,
		kind:        kind,
		keySize:     keySize,
		entrySz:     entrySz,
		unique:      Unique(kind),
		bucketCount: bucketCount,
		label:       label(kind),
	}

	if bloomEnabled {
		idx.rebuildBloom()
	}

	return idx, nil
}

func label(k Kind) string {
	switch k {
	case KindID:
		return "idx_id"
	case KindPubkey:
		return "idx_pubkey"
	case KindKind:
		return "idx_kind"
	case KindPubkeyKind:
		return "idx_pubkey_kind"
	case KindTag:
		return "idx_tag"
	case KindTimeline:
		return "idx_timeline"
	default:
		return "idx_unknown"
	}
}

func (ix *Index) h() header { return readHeader(ix.pf.Header()) }

// EntryCount returns the total number of entries ever inserted, for
// relay.Stats; tombstoned entries are not subtracted.
func (ix *Index) EntryCount() uint64 { return ix.h().EntryCount }

func (ix *Index) rebuildBloom() {
	h := ix.h()
	expected := h.EntryCount
	if expected == 0 {
		expected = 1024
	}
	ix.filter = newBloom(expected)
	data := ix.pf.Data()
	poolOff := poolOffset(ix.bucketCount)
	for off := uint64(0); off+uint64(ix.entrySz) <= h.PoolNextOffset; off += uint64(ix.entrySz) {
		abs := poolOff + off
		e := decodePoolEntry(data[abs:abs+uint64(ix.entrySz)], ix.keySize)
		ix.filter.add(e.Key)
	}
	logger.L().Debugw("index bloom filter rebuilt", "index", ix.label, "bits_set", ix.filter.populationHint())
}

// bucketSlotOffset returns the absolute file offset of the bucket slot key
// hashes to. For the timeline index (keySize 0, bucketCount 1) this is
// always the single bucket at slot 0.
func (ix *Index) bucketSlotOffset(key []byte) uint64 {
	bucket := uint64(0)
	if ix.bucketCount > 1 {
		bucket = bucketHash(key, ix.bucketCount)
	}
	return bucketTableOffset() + bucket*BucketSlotSize
}

// growPoolIfNeeded ensures the pool has room for one more entry, doubling
// the paged file's pool region when it doesn't (spec.md §4.4).
func (ix *Index) growPoolIfNeeded() error {
	h := ix.h()
	if h.PoolNextOffset+uint64(ix.entrySz) <= h.PoolSize {
		return nil
	}
	newPoolSize := h.PoolSize * growthFactor
	if newPoolSize < h.PoolNextOffset+uint64(ix.entrySz) {
		newPoolSize = h.PoolNextOffset + uint64(ix.entrySz)
	}
	newFileSize := int64(poolOffset(ix.bucketCount) + newPoolSize)
	if err := ix.pf.EnsureCapacity(newFileSize); err != nil {
		return errs.ErrFull
	}
	h.PoolSize = newPoolSize
	writeHeaderFields(ix.pf.Header(), h)
	metrics.PagedFileBytes.WithLabelValues(ix.label).Set(float64(ix.pf.Size()))
	return nil
}

// Insert adds key → (eventOffset, createdAt). For a unique index, it
// returns errs.ErrDuplicate if key is already present among non-tombstone
// entries, per spec.md §4.4.
func (ix *Index) Insert(key []byte, eventOffset uint64, createdAt int64) error {
	if len(key) != ix.keySize {
		return errs.ErrNullParam
	}

	if ix.unique {
		if _, err := ix.lookupLive(key); err == nil {
			return errs.ErrDuplicate
		} else if err != errs.ErrNotFound {
			return err
		}
	}

	if err := ix.growPoolIfNeeded(); err != nil {
		return err
	}

	h := ix.h()
	slotOff := ix.bucketSlotOffset(key)
	data := ix.pf.Data()
	head := binfmt.U64(data[slotOff:])

	entryAbs := poolOffset(ix.bucketCount) + h.PoolNextOffset
	encodePoolEntry(data[entryAbs:entryAbs+uint64(ix.entrySz)], poolEntry{
		Key:             key,
		EventOffset:     eventOffset,
		CreatedAt:       createdAt,
		NextEntryOffset: head,
		Flags:           0,
	}, ix.keySize)

	binfmt.PutU64(data[slotOff:], entryAbs)

	h.PoolNextOffset += uint64(ix.entrySz)
	h.EntryCount++
	writeHeaderFields(ix.pf.Header(), h)

	if ix.filter != nil {
		ix.filter.add(key)
	}
	metrics.IndexEntries.WithLabelValues(ix.label).Set(float64(h.EntryCount))
	return nil
}

// lookupLive walks key's chain and returns the first non-tombstone entry's
// event offset, or errs.ErrNotFound.
func (ix *Index) lookupLive(key []byte) (uint64, error) {
	var found uint64
	ok := false
	err := ix.walkChain(key, func(e poolEntry) (stop bool, err error) {
		if e.Flags&TombstoneFlag == 0 {
			found = e.EventOffset
			ok = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.ErrNotFound
	}
	return found, nil
}

// Lookup is the unique-index point lookup spec.md §4.4 describes.
func (ix *Index) Lookup(key []byte) (uint64, error) {
	if ix.filter != nil && !ix.filter.mightContain(key) {
		return 0, errs.ErrNotFound
	}
	return ix.lookupLive(key)
}

// IterateFunc is called once per matching live entry, newest-first when
// the chain happens to be arrival-ordered. Returning false stops
// iteration early, same as reaching limit.
type IterateFunc func(eventOffset uint64, createdAt int64) bool

// Iterate walks key's chain (or, when key is nil, the single global chain
// a degenerate one-bucket index like the timeline index holds), invoking
// fn for every live entry whose created_at falls in [since, until] (0
// meaning open on that side), until fn returns false or limit entries
// have been emitted. limit <= 0 means unbounded.
func (ix *Index) Iterate(key []byte, since, until int64, limit int, fn IterateFunc) error {
	if key != nil && ix.filter != nil && !ix.filter.mightContain(key) {
		return nil
	}

	emitted := 0
	err := ix.walkChain(key, func(e poolEntry) (bool, error) {
		if e.Flags&TombstoneFlag != 0 {
			return false, nil
		}
		if since != 0 && e.CreatedAt < since {
			return false, nil
		}
		if until != 0 && e.CreatedAt > until {
			return false, nil
		}
		if !fn(e.EventOffset, e.CreatedAt) {
			return true, nil
		}
		emitted++
		if limit > 0 && emitted >= limit {
			return true, nil
		}
		return false, nil
	})
	return err
}

// MarkTombstone flags the entry matching (key, eventOffset) as a
// tombstone. Used by delete_event against the id index (spec.md §4.3).
func (ix *Index) MarkTombstone(key []byte, eventOffset uint64) error {
	data := ix.pf.Data()
	found := false
	err := ix.walkChainRaw(key, func(absOffset uint64, e poolEntry) (bool, error) {
		if e.EventOffset == eventOffset && e.Flags&TombstoneFlag == 0 {
			flagsOff := absOffset + uint64(ix.keySize) + 8 + 8 + 8
			binfmt.PutU32(data[flagsOff:], e.Flags|TombstoneFlag)
			found = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return errs.ErrNotFound
	}
	return nil
}

func (ix *Index) walkChain(key []byte, visit func(poolEntry) (stop bool, err error)) error {
	return ix.walkChainRaw(key, func(_ uint64, e poolEntry) (bool, error) {
		return visit(e)
	})
}

// walkChainRaw is walkChain plus each entry's absolute file offset, needed
// by MarkTombstone to flip a bit in place.
func (ix *Index) walkChainRaw(key []byte, visit func(absOffset uint64, e poolEntry) (stop bool, err error)) error {
	ix.chainHasMatch = false
	data := ix.pf.Data()
	fileSize := uint64(len(data))

	var slotOff uint64
	if key != nil {
		slotOff = ix.bucketSlotOffset(key)
	} else {
		slotOff = bucketTableOffset()
	}
	if slotOff+BucketSlotSize > fileSize {
		return errs.ErrIndexCorrupt
	}
	cur := binfmt.U64(data[slotOff:])

	seen := 0
	maxChainLen := ix.h().EntryCount + 1
	for cur != 0 {
		seen++
		if uint64(seen) > maxChainLen+1 {
			return errs.ErrIndexCorrupt
		}
		if cur+uint64(ix.entrySz) > fileSize {
			return errs.ErrIndexCorrupt
		}
		e := decodePoolEntry(data[cur:cur+uint64(ix.entrySz)], ix.keySize)
		if key == nil || bytes.Equal(e.Key, key) {
			ix.chainHasMatch = true
			stop, err := visit(cur, e)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		cur = e.NextEntryOffset
	}
	return nil
}

// Sync flushes the mapping to disk.
func (ix *Index) Sync(async bool) error { return ix.pf.Sync(async) }

// Close unmaps and closes the index file.
func (ix *Index) Close() error { return ix.pf.Close() }
