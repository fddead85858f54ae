// Package errs defines the flat sentinel error enum shared by every layer
// of the storage core. Errors surface to the API caller as one of these
// sentinels: the core never retries on the caller's behalf, and
// INDEX_CORRUPT in particular is never self-healing — it aborts the
// operation that discovered it.
package errs

import "errors"

var (
	// ErrFileOpen is returned when an existing data file cannot be opened.
	ErrFileOpen = errors.New("file open failed")

	// ErrFileCreate is returned when a new data file cannot be created.
	ErrFileCreate = errors.New("file create failed")

	// ErrMmapFailed is returned when mmap/mremap of a data file fails.
	ErrMmapFailed = errors.New("mmap failed")

	// ErrInvalidMagic is returned when a file's magic bytes do not match
	// the expected value for its role (events log vs. a given index).
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrVersionMismatch is returned when a file's format version is not
	// the one this build understands.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrFull is returned when a paged file cannot grow to satisfy a
	// reservation, or an index pool cannot admit a new entry.
	ErrFull = errors.New("store full")

	// ErrNotFound is returned when a lookup finds no live record.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned by a unique index when its key is already
	// present, and by write_event when the event id already exists.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidEvent covers both malformed filters and on-disk record
	// inconsistencies discovered during validation.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrIndexCorrupt is reserved for integrity violations discovered
	// during traversal: a pool offset out of bounds, a total_length
	// overflowing the file, an entry chain that does not terminate
	// within the pool. It must abort the current operation.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrNullParam is returned for a required argument that is nil or
	// zero-valued in a context where that is a programmer error, not a
	// recoverable runtime condition.
	ErrNullParam = errors.New("null parameter")

	// ErrFstatFailed is returned when stat-ing an open file descriptor fails.
	ErrFstatFailed = errors.New("fstat failed")

	// ErrFtruncateFailed is returned when growing a file via truncate fails.
	ErrFtruncateFailed = errors.New("ftruncate failed")
)
