package index

import (
	"hash/fnv"
	"math/big"
)

// bucketHash computes FNV-1a 64-bit over key, mod bucketCount, as spec.md
// §4.4 mandates ("Hash: FNV-1a 64-bit over the key bytes, mod
// bucket_count"). hash/fnv is the stdlib implementation of exactly this
// algorithm — there is no third-party library that implements the spec's
// mandated hash any more faithfully than the reference one, so this is the
// one place in the index family that reaches for the standard library by
// design rather than by omission.
func bucketHash(key []byte, bucketCount uint64) uint64 {
	h := fnv.New64a()
	h.Write(key)
	return h.Sum64() % bucketCount
}

// fnv256Prime and fnv256OffsetBasis are the canonical FNV parameters for a
// 256-bit hash, per the FNV specification's extended parameter tables.
var (
	fnv256Prime, _        = new(big.Int).SetString("1000000000000000000000000000000000000000163", 16)
	fnv256OffsetBasis, _  = new(big.Int).SetString("dd268dbcaac550362d98c384c4e576ccc8b1536847b6bbb31023b4c8caee0535", 16)
	mod256                = new(big.Int).Lsh(big.NewInt(1), 256)
)

// FNV1a256 hashes data into a 32-byte digest using FNV-1a with the 256-bit
// parameter set. spec.md §4.4 uses this to fold tag values whose raw form
// exceeds 32 bytes down to a fixed-width key: "tag values whose raw form
// exceeds 32 bytes are hashed with FNV-1a-256 truncated to 32 bytes before
// use as key". A 256-bit digest is already exactly 32 bytes, so no
// truncation beyond the natural digest width is needed.
func FNV1a256(data []byte) [32]byte {
	h := new(big.Int).Set(fnv256OffsetBasis)
	b := new(big.Int)
	for _, c := range data {
		h.Xor(h, b.SetInt64(int64(c)))
		h.Mul(h, fnv256Prime)
		h.Mod(h, mod256)
	}
	var out [32]byte
	raw := h.Bytes()
	copy(out[32-len(raw):], raw)
	return out
}

// TagValueKey returns the 32-byte key a tag value maps to: the value
// itself, followed by zero bytes up to 32, if it already fits in 32 bytes, or
// its FNV-1a-256 digest otherwise. Both the insert and lookup paths must
// apply this same transform (spec.md §4.4).
func TagValueKey(value []byte) [32]byte {
	if len(value) <= 32 {
		var out [32]byte
		copy(out[:], value)
		return out
	}
	return FNV1a256(value)
}
