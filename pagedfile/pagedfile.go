// Package pagedfile implements the growable, memory-mapped file spec.md
// §4.1 describes: a fixed-size typed header at offset 0 followed by a
// bump-allocated body. The header's own layout is owned by the caller
// (eventlog.EventsHeader, the index package's IndexHeader); pagedfile only
// guarantees that Header() always points at headerSize live, mapped bytes
// and that Data() is never stale after an EnsureCapacity that triggered
// growth.
package pagedfile

import (
	"os"
	"syscall"
	"unsafe"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/logger"
)

// growthFactor is the doubling factor spec.md §4.1 mandates: "the new size
// is max(next_offset+n, file_size × 2) rounded up to page size".
const growthFactor = 2

// File is a single memory-mapped file with a typed header region and a
// bump-allocated body. It is not safe for concurrent use without an
// external lock (spec.md §5: single logical owner).
type File struct {
	path       string
	label      string // for metrics.PagedFileBytes
	f          *os.File
	data       []byte
	fileSize   int64
	headerSize int
	pageSize   int64
}

// OpenOrCreate opens path, creating it if missing. header is the exact
// on-disk header image to write for a newly created file (already
// containing magic, version and any zeroed fields); it must be exactly
// headerSize bytes. initialSize is the file size a new file is truncated
// to. On an existing file, OpenOrCreate only mmaps it — callers validate
// magic/version themselves by inspecting Header().
//
// created reports whether the file did not exist before this call.
func OpenOrCreate(path, label string, headerSize int, initialSize int64, header []byte) (fl *File, created bool, err error) {
	if len(header) != headerSize {
		return nil, false, errs.ErrNullParam
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, false, wrap(errs.ErrFileOpen, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, wrap(errs.ErrFstatFailed, err)
	}

	created = stat.Size() == 0
	size := stat.Size()
	if created {
		size = initialSize
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, false, wrap(errs.ErrFtruncateFailed, err)
		}
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, false, wrap(errs.ErrMmapFailed, err)
	}

	pf := &File{
		path:       path,
		label:      label,
		f:          f,
		data:       data,
		fileSize:   size,
		headerSize: headerSize,
		pageSize:   int64(os.Getpagesize()),
	}

	if created {
		copy(pf.data[:headerSize], header)
	}

	return pf, created, nil
}

// Header returns the live headerSize-byte header region. The slice is
// invalidated by any call to EnsureCapacity that triggers growth; callers must
// re-fetch it afterward rather than caching it across a reserve.
func (f *File) Header() []byte {
	return f.data[:f.headerSize]
}

// Data returns the full live mapping, header included. Like Header, the
// slice is invalidated by growth.
func (f *File) Data() []byte {
	return f.data
}

// Size returns the current mapped (and on-disk) file size.
func (f *File) Size() int64 {
	return f.fileSize
}

// EnsureCapacity grows the file and its mapping so that at least `end`
// bytes are addressable, per spec.md §4.1's growth rule: new size is
// max(end, file_size*2) rounded up to the OS page size. It is a no-op if
// the file is already large enough. If growth itself fails it returns an
// error wrapping errs.ErrFtruncateFailed (e.g. disk full) or
// errs.ErrMmapFailed; eventlog and index report that to their callers as
// errs.ErrFull.
func (f *File) EnsureCapacity(end int64) error {
	if end <= f.fileSize {
		return nil
	}

	newSize := f.fileSize * growthFactor
	if newSize < end {
		newSize = end
	}
	newSize = roundUp(newSize, f.pageSize)

	if err := syscall.Munmap(f.data); err != nil {
		return wrap(errs.ErrMmapFailed, err)
	}
	f.data = nil

	if err := f.f.Truncate(newSize); err != nil {
		// Try to remap the old size back so the handle stays usable.
		if remapped, merr := syscall.Mmap(int(f.f.Fd()), 0, int(f.fileSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED); merr == nil {
			f.data = remapped
		}
		return wrap(errs.ErrFtruncateFailed, err)
	}

	data, err := syscall.Mmap(int(f.f.Fd()), 0, int(newSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return wrap(errs.ErrMmapFailed, err)
	}

	f.data = data
	f.fileSize = newSize
	logger.L().Debugw("paged file grown", "path", f.path, "new_size", newSize)
	return nil
}

// Sync issues msync over the whole mapping. async selects MS_ASYNC over
// MS_SYNC, matching spec.md §4.1's sync(async?) operation.
func (f *File) Sync(async bool) error {
	flag := syscall.MS_SYNC
	if async {
		flag = syscall.MS_ASYNC
	}
	_, _, errno := syscall.Syscall(syscall.SYS_MSYNC, uintptrOf(f.data), uintptr(len(f.data)), uintptr(flag))
	if errno != 0 {
		return wrap(errs.ErrMmapFailed, errno)
	}
	return nil
}

// Close unmaps and closes the underlying file. Calling Close more than
// once is not supported.
func (f *File) Close() error {
	var err error
	if f.data != nil {
		if uerr := syscall.Munmap(f.data); uerr != nil {
			err = wrap(errs.ErrMmapFailed, uerr)
		}
		f.data = nil
	}
	if cerr := f.f.Close(); cerr != nil && err == nil {
		err = wrap(errs.ErrFileOpen, cerr)
	}
	return err
}

func uintptrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

func roundUp(n, multiple int64) int64 {
	if multiple <= 0 {
		return n
	}
	rem := n % multiple
	if rem == 0 {
		return n
	}
	return n + (multiple - rem)
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrappedErr{sentinel: sentinel, cause: cause}
}

type wrappedErr struct {
	sentinel error
	cause    error
}

func (e *wrappedErr) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *wrappedErr) Unwrap() error { return e.sentinel }
