package index

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// bloom is the optional accelerator SPEC_FULL.md §4 adds in front of the
// bucket-chain walk. It is rebuilt in memory from the on-disk pool on
// every Open and never persisted: behavior with it disabled is identical,
// just slower on a negative lookup. It never produces false negatives, so
// lookup/iterate only use it to skip work, never to decide an answer.
type bloom struct {
	bits []uint64
	n    uint64 // number of bits, a power of two for cheap masking
}

// newBloom sizes the filter for roughly one bit per expected entry times a
// small multiplier, which keeps the false-positive rate low without make
// the filter itself a meaningful fraction of the pool's memory footprint.
func newBloom(expectedEntries uint64) *bloom {
	bitsWanted := (expectedEntries + 1) * 8
	n := uint64(1)
	for n < bitsWanted {
		n <<= 1
	}
	if n < 1024 {
		n = 1024
	}
	return &bloom{bits: make([]uint64, n/64), n: n}
}

func (b *bloom) positions(key []byte) (uint64, uint64) {
	h1 := bucketHash(key, b.n) // FNV-1a 64-bit, already mandated for bucket hashing
	h2 := xxhash.Sum64(key) % b.n
	return h1, h2
}

func (b *bloom) add(key []byte) {
	p1, p2 := b.positions(key)
	b.set(p1)
	b.set(p2)
}

func (b *bloom) set(pos uint64) {
	b.bits[pos/64] |= uint64(1) << (pos % 64)
}

func (b *bloom) get(pos uint64) bool {
	return b.bits[pos/64]&(uint64(1)<<(pos%64)) != 0
}

// mightContain returns false only when key was definitely never added
// (no false negatives); true means "maybe", and the caller must still walk
// the chain.
func (b *bloom) mightContain(key []byte) bool {
	p1, p2 := b.positions(key)
	return b.get(p1) && b.get(p2)
}

// populationHint reports the approximate number of set bits, exposed only
// for diagnostics/tests.
func (b *bloom) populationHint() int {
	n := 0
	for _, w := range b.bits {
		n += bits.OnesCount64(w)
	}
	return n
}
