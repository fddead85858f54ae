// Package config provides centralized configuration for the nostrdb storage
// core.
//
// Configuration follows a three-tier hierarchy:
//  1. Explicit overrides (set directly on the Config struct by the embedder,
//     or via CLI flags in cmd/nostrdb-inspect)
//  2. Environment variables
//  3. Built-in defaults (lowest priority)
//
// All values have sensible defaults and can be overridden through
// environment variables or by mutating the returned Config before it is
// passed to relay.Open.
package config

import (
	"os"
	"strconv"
)

// Config holds every tunable of the storage core. Index bucket counts are
// fixed at file-creation time (spec.md §4.4: "Bucket table is never
// resized"); changing them after a data directory already exists has no
// effect on existing files.
type Config struct {
	// DataDir is the directory containing events.dat and the six idx_*.dat
	// files. Created if missing.
	// Environment: NOSTRDB_DATA_DIR
	// Default: "./data"
	DataDir string

	// DefaultQueryLimit is the result count used when a filter's limit
	// field is zero ("use default").
	// Environment: NOSTRDB_DEFAULT_LIMIT
	// Default: 500
	DefaultQueryLimit uint32

	// SyncAsync selects MS_ASYNC (true) vs MS_SYNC (false) for the msync
	// issued after each write_event. Async is the default: the spec
	// leaves durability caller-controlled and does not mandate sync writes.
	// Environment: NOSTRDB_SYNC_ASYNC
	// Default: true
	SyncAsync bool

	// BucketCountID is the id index's bucket count. Must be a power of two.
	// Environment: NOSTRDB_BUCKETS_ID
	// Default: 65536
	BucketCountID uint64

	// BucketCountPubkey is the pubkey index's bucket count.
	// Environment: NOSTRDB_BUCKETS_PUBKEY
	// Default: 65536
	BucketCountPubkey uint64

	// BucketCountKind is the kind index's bucket count.
	// Environment: NOSTRDB_BUCKETS_KIND
	// Default: 4096
	BucketCountKind uint64

	// BucketCountPubkeyKind is the combined pubkey+kind index's bucket count.
	// Environment: NOSTRDB_BUCKETS_PUBKEY_KIND
	// Default: 65536
	BucketCountPubkeyKind uint64

	// BucketCountTag is the tag index's bucket count.
	// Environment: NOSTRDB_BUCKETS_TAG
	// Default: 65536
	BucketCountTag uint64

	// InitialPoolSize is the initial byte size reserved for each index's
	// entry pool, before any growth.
	// Environment: NOSTRDB_INITIAL_POOL_SIZE
	// Default: 1<<20 (1 MiB)
	InitialPoolSize int64

	// InitialEventsSize is the initial byte size of events.dat.
	// Environment: NOSTRDB_INITIAL_EVENTS_SIZE
	// Default: 1<<22 (4 MiB)
	InitialEventsSize int64

	// LogLevel names the minimum level logger.SetLevel accepts:
	// trace, debug, info, warn, error.
	// Environment: NOSTRDB_LOG_LEVEL
	// Default: "info"
	LogLevel string

	// BloomAccelerated enables the in-memory Bloom-filter pre-check in
	// front of index bucket-chain walks (SPEC_FULL.md §4). Purely an
	// accelerator; behavior is identical with it disabled.
	// Environment: NOSTRDB_BLOOM (1/0, true/false)
	// Default: true
	BloomAccelerated bool
}

// Default returns a Config populated with built-in defaults, then
// overridden by any NOSTRDB_* environment variables that are set.
func Default() *Config {
	c := &Config{
		DataDir:               "./data",
		DefaultQueryLimit:     500,
		SyncAsync:             true,
		BucketCountID:         1 << 16,
		BucketCountPubkey:     1 << 16,
		BucketCountKind:       1 << 12,
		BucketCountPubkeyKind: 1 << 16,
		BucketCountTag:        1 << 16,
		InitialPoolSize:       1 << 20,
		InitialEventsSize:     1 << 22,
		LogLevel:              "info",
		BloomAccelerated:      true,
	}
	c.applyEnv()
	return c
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("NOSTRDB_DATA_DIR"); ok {
		c.DataDir = v
	}
	if v, ok := envUint("NOSTRDB_DEFAULT_LIMIT"); ok {
		c.DefaultQueryLimit = uint32(v)
	}
	if v, ok := envBool("NOSTRDB_SYNC_ASYNC"); ok {
		c.SyncAsync = v
	}
	if v, ok := envUint("NOSTRDB_BUCKETS_ID"); ok {
		c.BucketCountID = v
	}
	if v, ok := envUint("NOSTRDB_BUCKETS_PUBKEY"); ok {
		c.BucketCountPubkey = v
	}
	if v, ok := envUint("NOSTRDB_BUCKETS_KIND"); ok {
		c.BucketCountKind = v
	}
	if v, ok := envUint("NOSTRDB_BUCKETS_PUBKEY_KIND"); ok {
		c.BucketCountPubkeyKind = v
	}
	if v, ok := envUint("NOSTRDB_BUCKETS_TAG"); ok {
		c.BucketCountTag = v
	}
	if v, ok := envUint("NOSTRDB_INITIAL_POOL_SIZE"); ok {
		c.InitialPoolSize = int64(v)
	}
	if v, ok := envUint("NOSTRDB_INITIAL_EVENTS_SIZE"); ok {
		c.InitialEventsSize = int64(v)
	}
	if v, ok := os.LookupEnv("NOSTRDB_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := envBool("NOSTRDB_BLOOM"); ok {
		c.BloomAccelerated = v
	}
}

func envUint(name string) (uint64, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Validate checks that bucket counts are powers of two, as spec.md §3
// requires ("Index bucket count is a power of two").
func (c *Config) Validate() error {
	for _, n := range []uint64{
		c.BucketCountID, c.BucketCountPubkey, c.BucketCountKind,
		c.BucketCountPubkeyKind, c.BucketCountTag,
	} {
		if n == 0 || n&(n-1) != 0 {
			return errNotPowerOfTwo
		}
	}
	return nil
}
