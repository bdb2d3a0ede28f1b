package memregion

import (
	"unsafe"

	"code.hybscloud.com/memregion/internal"
)

// PageSize is the virtual memory page size used by AlignedAllocate to
// decide between the slice-backed and the OS-page-backed allocation
// strategy (see alignedmem.go). It defaults to a platform-appropriate
// value and can be overridden for testing or for platforms that report
// a non-standard page size at runtime.
var PageSize uintptr = internal.DefaultPageSize

// SetPageSize updates the package-level page size used by AlignedAllocate.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// noCopy is embedded in every allocator to make go vet's -copylocks check
// flag accidental copies. Copying a live allocator would duplicate its
// base/top/previous bookkeeping and silently violate every invariant the
// allocator maintains, so the struct must always be used through a pointer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Ptr is a thin, comparable wrapper around unsafe.Pointer standing in for
// the raw addresses the allocators hand out and thread through their
// bookkeeping. The zero Ptr is the null pointer.
type Ptr struct {
	p unsafe.Pointer
}

// ptrOf wraps a raw unsafe.Pointer as a Ptr.
func ptrOf(p unsafe.Pointer) Ptr { return Ptr{p: p} }

// ptrFromUintptr wraps a raw address as a Ptr.
func ptrFromUintptr(addr uintptr) Ptr { return Ptr{p: unsafe.Pointer(addr)} } //nolint:govet

// IsNil reports whether the pointer is null.
func (p Ptr) IsNil() bool { return p.p == nil }

// Add returns p advanced by n bytes.
func (p Ptr) Add(n uintptr) Ptr { return Ptr{p: unsafe.Add(p.p, n)} }

// Uintptr returns the pointer's numeric address.
func (p Ptr) Uintptr() uintptr { return uintptr(p.p) }

// Unsafe returns the underlying unsafe.Pointer.
func (p Ptr) Unsafe() unsafe.Pointer { return p.p }

// sub returns the byte distance from q to p (p - q), assuming p >= q.
func (p Ptr) sub(q Ptr) uintptr { return p.Uintptr() - q.Uintptr() }

// ptrOfSlice returns the address of buf's backing array as an
// unsafe.Pointer. buf must be non-empty.
func ptrOfSlice(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(buf))
}

// bytesAt returns a []byte view of the n bytes starting at p. The caller is
// responsible for ensuring those bytes belong to a live allocation; this is
// used internally to move payload bytes during Reallocate/CopyTo and to
// build LinearAllocator.Bytes' view.
func bytesAt(p Ptr, n uintptr) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p.p), int(n))
}
