package memregion

import "unsafe"

// blockHeader is stored at the start of every block a StackAllocator hands
// out, ahead of the block's alignment gap and payload. It carries just enough bookkeeping to unwind a single
// Deallocate() call and to let Deallocate(mark) walk backwards through
// every block allocated after the mark.
type blockHeader struct {
	blockSize          uintptr
	alignmentOffset    uintptr
	previousBackOffset uintptr
}

var blockHeaderSize = uintptr(unsafe.Sizeof(blockHeader{}))

// Mark wraps a single pointer into a StackAllocator's buffer, captured at
// some point in its history so DeallocateMark can later roll the stack
// back to it in one step. A Mark is only meaningful for the
// StackAllocator whose buffer it points into; using one taken from a
// different allocator, or one the stack has since receded below, is a
// caller error.
type Mark struct {
	addr Ptr
}

// NewMark wraps a raw pointer into a StackAllocator's buffer as a Mark.
// Callers normally obtain a Mark from GetMark instead; this constructor is
// for code that already holds the address independently (e.g. one
// recovered from GetMemoryAddress earlier).
func NewMark(p Ptr) Mark {
	return Mark{addr: p}
}

// GetMemoryAddress returns the pointer this Mark wraps.
func (m Mark) GetMemoryAddress() Ptr {
	return m.addr
}

// StackAllocator hands out memory LIFO: each Allocate pushes a block,
// Deallocate() pops the most recent one, and Deallocate(mark) pops every
// block pushed since GetMark was called, in one step. Like LinearAllocator
// it either owns its buffer or borrows one from the caller.
type StackAllocator struct {
	_ noCopy

	base  Ptr
	top   Ptr
	size  uintptr
	align Alignment

	// previous is the back-offset (distance from base) of the blockHeader
	// belonging to the block most recently pushed, or 0 if the stack is
	// empty. It is the head of the intrusive linked list threaded through
	// each block's blockHeader, and always equals what top was immediately
	// before that block's header was written.
	previous uintptr

	external bool
	block    *AlignedBlock
	extBuf   []byte
}

const stackAlignmentDefault = uintptr(1)

// NewStackAllocator constructs a StackAllocator that owns a freshly
// acquired, align-aligned buffer of size bytes.
func NewStackAllocator(size uintptr, align Alignment) *StackAllocator {
	if size == 0 {
		panic("stack allocator size cannot be zero")
	}
	block := AlignedAllocate(size, align)
	return &StackAllocator{
		base:  block.Ptr(),
		top:   block.Ptr(),
		size:  size,
		align: align,
		block: block,
	}
}

// NewStackAllocatorDefault constructs a StackAllocator that owns a
// freshly acquired buffer of size bytes at the default alignment of 1. It
// routes through NewStackAllocator the same way NewStackAllocatorExternal
// routes through NewStackAllocatorExternalAligned, rather than duplicating
// the setup logic.
func NewStackAllocatorDefault(size uintptr) *StackAllocator {
	return NewStackAllocator(size, NewAlignment(stackAlignmentDefault))
}

// NewStackAllocatorExternal constructs a StackAllocator over a
// caller-supplied buffer with the default alignment of 1. It routes
// through the same alignment-adjustment path as
// NewStackAllocatorExternalAligned (the adjustment is simply zero for
// align 1) rather than duplicating the base/top setup logic.
func NewStackAllocatorExternal(size uintptr, buf []byte) *StackAllocator {
	return NewStackAllocatorExternalAligned(size, buf, NewAlignment(stackAlignmentDefault))
}

// NewStackAllocatorExternalAligned constructs a StackAllocator over a
// caller-supplied buffer, advancing base forward within buf to the first
// address aligned to align; the available size shrinks by that
// adjustment.
func NewStackAllocatorExternalAligned(size uintptr, buf []byte, align Alignment) *StackAllocator {
	if size == 0 {
		panic("stack allocator size cannot be zero")
	}
	if len(buf) == 0 {
		panic("stack allocator external buffer cannot be empty")
	}
	if uintptr(len(buf)) < size {
		panic("stack allocator external buffer smaller than size")
	}
	base0 := ptrOf(ptrOfSlice(buf))
	adj := align.adjustment(base0.Uintptr())
	if adj >= size {
		panic("stack allocator external buffer too small to satisfy alignment")
	}
	base := base0.Add(adj)
	return &StackAllocator{
		base:     base,
		top:      base,
		size:     size - adj,
		align:    align,
		external: true,
		extBuf:   buf,
	}
}

// headerAdjustment returns the alignment adjustment that Allocate and
// CanAllocate must apply: both compute it the same way, from
// top + sizeof(blockHeader), modulo align. There is no special case for
// the first allocation or for the default alignment; every call goes
// through this one formula.
func (s *StackAllocator) headerAdjustment(align Alignment) uintptr {
	return align.adjustment(s.top.Uintptr() + blockHeaderSize)
}

// Allocate reserves n bytes at alignment 1 (no payload padding) and returns
// a pointer to them; it is AllocateAligned(n, NewAlignment(1)).
func (s *StackAllocator) Allocate(n uintptr) Ptr {
	return s.AllocateAligned(n, NewAlignment(stackAlignmentDefault))
}

// AllocateAligned reserves n bytes such that the returned pointer
// satisfies align. It returns the zero Ptr, without mutating any state, if
// there is not enough room; use CanAllocateAligned to check in advance.
//
// The header sits immediately before the alignment gap, not after it: it
// is always written unshifted at the current top, and the adjustment
// (computed from top + sizeof(blockHeader)) only pads the gap between the
// header and the payload that follows it.
func (s *StackAllocator) AllocateAligned(n uintptr, align Alignment) Ptr {
	if n == 0 {
		panic("stack allocator allocation size cannot be zero")
	}
	if !s.CanAllocateAligned(n, align) {
		return Ptr{}
	}

	headerAddr := s.top
	adj := s.headerAdjustment(align)
	payload := headerAddr.Add(blockHeaderSize).Add(adj)

	hdr := (*blockHeader)(headerAddr.Unsafe())
	*hdr = blockHeader{
		blockSize:          n,
		alignmentOffset:    adj,
		previousBackOffset: s.previous,
	}

	s.previous = headerAddr.sub(s.base)
	s.top = payload.Add(n)
	return payload
}

// CanAllocate reports whether Allocate(n) would succeed right now.
func (s *StackAllocator) CanAllocate(n uintptr) bool {
	return s.CanAllocateAligned(n, NewAlignment(stackAlignmentDefault))
}

// CanAllocateAligned reports whether AllocateAligned(n, align) would
// succeed right now.
func (s *StackAllocator) CanAllocateAligned(n uintptr, align Alignment) bool {
	if n == 0 {
		return false
	}
	adj := s.headerAdjustment(align)
	used := s.top.sub(s.base)
	needed := adj + blockHeaderSize + n
	return used+needed <= s.size
}

// Deallocate pops the most recently allocated block. It panics if the
// stack is empty.
func (s *StackAllocator) Deallocate() {
	if s.top == s.base {
		panic("stack allocator Deallocate: stack is empty")
	}
	headerAddr := s.base.Add(s.previous)
	hdr := (*blockHeader)(headerAddr.Unsafe())
	s.top = headerAddr
	s.previous = hdr.previousBackOffset
}

// GetMark returns the allocator's current top wrapped as a Mark, to be
// passed to DeallocateMark later.
func (s *StackAllocator) GetMark() Mark {
	return Mark{addr: s.top}
}

// DeallocateMark pops every block allocated since mark was taken, in a
// single bulk rollback. The ordering rule: repeatedly pop the block the
// allocator currently considers "most recent" (following the
// previousBackOffset chain one link at a time) until top once again
// equals the pointer the mark wraps. It panics if mark does not
// correspond to a point still on this stack.
func (s *StackAllocator) DeallocateMark(mark Mark) {
	for s.top != mark.addr {
		if s.top == s.base {
			panic("stack allocator DeallocateMark: mark is not on this stack")
		}
		headerAddr := s.base.Add(s.previous)
		hdr := (*blockHeader)(headerAddr.Unsafe())
		s.top = headerAddr
		s.previous = hdr.previousBackOffset
	}
}

// Clear resets the allocator to empty without releasing its buffer.
func (s *StackAllocator) Clear() {
	s.top = s.base
	s.previous = 0
}

// CopyTo duplicates this allocator's occupied bytes, its top pointer, and
// its previous-block chain into dest, which must be at least as large as
// this allocator's whole buffer (not merely its occupied region).
func (s *StackAllocator) CopyTo(dest *StackAllocator) {
	if dest.size < s.size {
		panic("stack allocator CopyTo: destination too small")
	}
	allocated := s.GetAllocatedBytes()
	copy(bytesAt(dest.base, allocated), bytesAt(s.base, allocated))
	dest.top = dest.base.Add(allocated)
	dest.previous = s.previous
}

// Depth reports the number of blocks currently pushed on the stack.
func (s *StackAllocator) Depth() int {
	n := 0
	off := s.previous
	top := s.top
	for top != s.base {
		n++
		hdr := (*blockHeader)(s.base.Add(off).Unsafe())
		top = s.base.Add(off)
		off = hdr.previousBackOffset
	}
	return n
}

// GetSize returns the total capacity of the allocator's buffer.
func (s *StackAllocator) GetSize() uintptr { return s.size }

// GetAllocatedBytes returns the number of bytes currently in use,
// including per-block header overhead and alignment padding.
func (s *StackAllocator) GetAllocatedBytes() uintptr { return s.top.sub(s.base) }

// GetPointer returns the base of the allocator's buffer.
func (s *StackAllocator) GetPointer() Ptr { return s.base }

// Free releases an internally-owned allocator's buffer. It is a no-op on
// an externally-backed allocator.
func (s *StackAllocator) Free() {
	if s.external {
		return
	}
	AlignedFree(s.block)
	s.block = nil
}
