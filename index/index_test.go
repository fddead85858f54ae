package index

import (
	"path/filepath"
	"testing"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/stretchr/testify/require"
)

func key32(b byte) []byte {
	k := make([]byte, 32)
	k[0] = b
	return k
}

func TestIndex_UniqueInsertRejectsDuplicate(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "id.dat"), KindID, 16, 1<<12, false)
	require.NoError(t, err)
	defer ix.Close()

	k := key32(0x01)
	require.NoError(t, ix.Insert(k, 100, 1704067200))
	err = ix.Insert(k, 200, 1704067300)
	require.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestIndex_LookupReturnsEventOffset(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "id.dat"), KindID, 16, 1<<12, false)
	require.NoError(t, err)
	defer ix.Close()

	k := key32(0x02)
	require.NoError(t, ix.Insert(k, 4096, 1704067200))

	off, err := ix.Lookup(k)
	require.NoError(t, err)
	require.EqualValues(t, 4096, off)

	_, err = ix.Lookup(key32(0x03))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIndex_NonUniqueAllowsMultipleOffsetsPerKey(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "pubkey.dat"), KindPubkey, 16, 1<<12, false)
	require.NoError(t, err)
	defer ix.Close()

	k := key32(0x04)
	require.NoError(t, ix.Insert(k, 100, 10))
	require.NoError(t, ix.Insert(k, 200, 20))
	require.NoError(t, ix.Insert(k, 300, 30))

	var offsets []uint64
	err = ix.Iterate(k, 0, 0, 0, func(off uint64, createdAt int64) bool {
		offsets = append(offsets, off)
		return true
	})
	require.NoError(t, err)
	require.Len(t, offsets, 3)
}

func TestIndex_IterateRespectsSinceUntilAndLimit(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "pubkey.dat"), KindPubkey, 4, 1<<12, false)
	require.NoError(t, err)
	defer ix.Close()

	k := key32(0x05)
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, ix.Insert(k, uint64(i*8), i*100))
	}

	var seen []int64
	err = ix.Iterate(k, 200, 400, 0, func(_ uint64, createdAt int64) bool {
		seen = append(seen, createdAt)
		return true
	})
	require.NoError(t, err)
	require.Len(t, seen, 3)

	seen = nil
	err = ix.Iterate(k, 0, 0, 2, func(_ uint64, createdAt int64) bool {
		seen = append(seen, createdAt)
		return true
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
}

func TestIndex_MarkTombstoneHidesEntryFromLookupAndIterate(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "id.dat"), KindID, 16, 1<<12, false)
	require.NoError(t, err)
	defer ix.Close()

	k := key32(0x06)
	require.NoError(t, ix.Insert(k, 512, 1704067200))
	require.NoError(t, ix.MarkTombstone(k, 512))

	_, err = ix.Lookup(k)
	require.ErrorIs(t, err, errs.ErrNotFound)

	var called bool
	err = ix.Iterate(k, 0, 0, 0, func(uint64, int64) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestIndex_GrowsPoolPastInitialCapacity(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "pubkey.dat"), KindPubkey, 8, 64, false)
	require.NoError(t, err)
	defer ix.Close()

	for i := byte(0); i < 100; i++ {
		require.NoError(t, ix.Insert(key32(i), uint64(i)*8, int64(i)))
	}
	require.EqualValues(t, 100, ix.EntryCount())
}

func TestIndex_BloomAcceleratorMatchesUnfiltered(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(filepath.Join(dir, "pubkey.dat"), KindPubkey, 8, 1<<12, true)
	require.NoError(t, err)
	defer ix.Close()

	present := key32(0x07)
	absent := key32(0x08)
	require.NoError(t, ix.Insert(present, 64, 100))

	_, err = ix.Lookup(present)
	require.NoError(t, err)

	var called bool
	err = ix.Iterate(absent, 0, 0, 0, func(uint64, int64) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestIndex_ReopenPreservesEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "id.dat")
	ix, err := Open(path, KindID, 16, 1<<12, false)
	require.NoError(t, err)
	k := key32(0x09)
	require.NoError(t, ix.Insert(k, 8192, 1704067200))
	require.NoError(t, ix.Close())

	ix2, err := Open(path, KindID, 16, 1<<12, false)
	require.NoError(t, err)
	defer ix2.Close()

	off, err := ix2.Lookup(k)
	require.NoError(t, err)
	require.EqualValues(t, 8192, off)
}

func TestOpenSet_OpensAllSixIndices(t *testing.T) {
	dir := t.TempDir()
	counts := map[Kind]uint64{
		KindID:         16,
		KindPubkey:     16,
		KindKind:       4,
		KindPubkeyKind: 16,
		KindTag:        16,
	}
	set, err := OpenSet(dir, counts, 1<<12, true)
	require.NoError(t, err)
	defer set.Close()

	require.NoError(t, set.ID.Insert(key32(0x0a), 100, 1))
	require.NoError(t, set.Kind.Insert(KindKey(1), 100, 1))
	require.NoError(t, set.PubkeyKind.Insert(PubkeyKindKey([32]byte{0x0b}, 1), 100, 1))
	require.NoError(t, set.Tag.Insert(TagKey('e', []byte("deadbeef")), 100, 1))
	require.NoError(t, set.Timeline.Insert(nil, 100, 1))
}
