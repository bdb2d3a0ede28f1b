package memregion

import (
	"os"
	"unsafe"
)

// AlignedBlock is the result of an AlignedAllocate call: an aligned pointer
// together with the bookkeeping AlignedFree needs to release the backing
// memory, regardless of which of the two backends (§11.1 in SPEC_FULL.md)
// actually produced it.
//
// AlignedBlock is the single mechanism every allocator's internal-buffer
// constructor goes through to acquire (and, on Reallocate/destruction,
// release) its backing buffer.
type AlignedBlock struct {
	ptr Ptr

	// raw keeps the slice-backed allocation's backing array alive for the
	// garbage collector; nil for an OS-backed block.
	raw []byte

	// osBase/osLen describe the actual (unaligned, possibly larger) region
	// returned by the OS allocator, needed to unmap the right range; osLen
	// is zero for a slice-backed block.
	osBase unsafe.Pointer
	osLen  int
}

// Ptr returns the aligned pointer.
func (b *AlignedBlock) Ptr() Ptr { return b.ptr }

// AlignedAllocate reserves size bytes such that the returned pointer is a
// multiple of align. It never returns a nil Ptr; unrecoverable platform
// allocation failures panic, matching the "constructors that cannot
// acquire their internal buffer panic" policy (§7).
//
// size must be >= 1. Requests at or above PageSize are satisfied by the
// OS-page-backed backend (mmap_unix.go / mmap_windows.go, adapted from
// cznic/memory); smaller requests use the slice-overallocation technique
// (adapted from the teacher package's AlignedMem). The returned
// *AlignedBlock, not a bare (Ptr, []byte) pair, is what AlignedFree takes
// back, since it is the one value that already knows which backend
// produced it.
func AlignedAllocate(size uintptr, align Alignment) *AlignedBlock {
	if size == 0 {
		panic("aligned allocation size cannot be zero")
	}

	if size >= PageSize && align.Uintptr() <= PageSize {
		return allocateOSBacked(size, align)
	}
	return allocateSliceBacked(size, align)
}

// allocateSliceBacked over-allocates a Go byte slice and returns a view
// into it starting at the first address aligned to align. This is the
// teacher package's AlignedMem technique, generalized to an arbitrary
// alignment rather than a fixed PageSize.
func allocateSliceBacked(size uintptr, align Alignment) *AlignedBlock {
	a := align.Uintptr()
	raw := make([]byte, size+a-1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	offset := align.adjustment(base)
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(raw)), offset)
	return &AlignedBlock{ptr: ptrOf(p), raw: raw}
}

// allocateOSBacked reserves size bytes directly from the OS, bypassing the
// Go heap. The OS returns memory aligned to its own page size, which can be
// smaller than PageSize (the arm64 default, or a SetPageSize override);
// when align exceeds the OS page size the mapping is over-allocated by
// align-1 bytes and the returned pointer is advanced to the first aligned
// address inside it.
func allocateOSBacked(size uintptr, align Alignment) *AlignedBlock {
	extra := uintptr(0)
	if align.Uintptr() > uintptr(os.Getpagesize()) {
		extra = align.Uintptr() - 1
	}
	b, err := mmapAllocate(int(size + extra))
	if err != nil {
		panic("aligned allocation failed: " + err.Error())
	}
	base := unsafe.Pointer(unsafe.SliceData(b))
	p := unsafe.Add(base, align.adjustment(uintptr(base)))
	return &AlignedBlock{ptr: ptrOf(p), osBase: base, osLen: len(b)}
}

// AlignedFree releases a block previously produced by AlignedAllocate. The
// caller must not use b again and must not double-free it.
func AlignedFree(b *AlignedBlock) {
	if b == nil {
		return
	}
	if b.osLen != 0 {
		if err := mmapFree(b.osBase, b.osLen); err != nil {
			panic("aligned free failed: " + err.Error())
		}
		return
	}
	// Slice-backed: dropping the reference is enough for the GC to
	// eventually reclaim it; there is no OS resource to release.
	b.raw = nil
}
