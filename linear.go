package memregion

// LinearAllocator hands out memory by bumping a top pointer forward through
// a buffer; it never reclaims individual blocks, only the whole buffer at
// once via Clear. It is the cheapest of the three allocators and the right
// choice for scratch memory whose lifetime is tied to a single frame, job,
// or request.
//
// A LinearAllocator either owns its buffer (acquired through
// AlignedAllocate, and released by Free) or
// borrows one supplied by the caller ("external"); the zero value is not
// usable, construct one with NewLinearAllocator or one of the External
// constructors.
type LinearAllocator struct {
	_ noCopy

	base  Ptr
	top   Ptr
	size  uintptr
	align Alignment

	external bool
	block    *AlignedBlock // non-nil only when the buffer is internally owned
	extBuf   []byte        // pins an external Go-backed buffer against the GC
}

// NewLinearAllocator constructs a LinearAllocator that owns a freshly
// acquired, align-aligned buffer of size bytes.
func NewLinearAllocator(size uintptr, align Alignment) *LinearAllocator {
	if size == 0 {
		panic("linear allocator size cannot be zero")
	}
	block := AlignedAllocate(size, align)
	return &LinearAllocator{
		base:  block.Ptr(),
		top:   block.Ptr(),
		size:  size,
		align: align,
		block: block,
	}
}

// NewLinearAllocatorExternal constructs a LinearAllocator over a
// caller-supplied buffer, without requiring any particular alignment of
// buf. The allocator never frees buf; the caller retains ownership.
func NewLinearAllocatorExternal(size uintptr, buf []byte) *LinearAllocator {
	return NewLinearAllocatorExternalAligned(size, buf, NewAlignment(1))
}

// NewLinearAllocatorExternalAligned constructs a LinearAllocator over a
// caller-supplied buffer, advancing base forward within buf to the first
// address aligned to align; the available size shrinks by that
// adjustment. NewLinearAllocatorExternal routes through this same code
// path with align=1, where the adjustment is always zero, rather than
// duplicating the base/size setup.
func NewLinearAllocatorExternalAligned(size uintptr, buf []byte, align Alignment) *LinearAllocator {
	if size == 0 {
		panic("linear allocator size cannot be zero")
	}
	if len(buf) == 0 {
		panic("linear allocator external buffer cannot be empty")
	}
	if uintptr(len(buf)) < size {
		panic("linear allocator external buffer smaller than size")
	}
	base0 := ptrOf(ptrOfSlice(buf))
	adj := align.adjustment(base0.Uintptr())
	if adj >= size {
		panic("linear allocator external buffer too small to satisfy alignment")
	}
	base := base0.Add(adj)
	return &LinearAllocator{
		base:     base,
		top:      base,
		size:     size - adj,
		align:    align,
		external: true,
		extBuf:   buf,
	}
}

// Allocate reserves n bytes and returns a pointer to them, or the zero Ptr
// if there is not enough room left.
func (l *LinearAllocator) Allocate(n uintptr) Ptr {
	return l.AllocateAligned(n, NewAlignment(1))
}

// AllocateAligned reserves n bytes such that the returned pointer satisfies
// align, which may differ from the allocator's own alignment. It returns
// the zero Ptr, without mutating any state, if there is not enough room
// left once the alignment adjustment is applied; use CanAllocateAligned to
// check in advance.
func (l *LinearAllocator) AllocateAligned(n uintptr, align Alignment) Ptr {
	if n == 0 {
		panic("linear allocator allocation size cannot be zero")
	}
	if !l.CanAllocateAligned(n, align) {
		return Ptr{}
	}
	adj := align.adjustment(l.top.Uintptr())
	p := l.top.Add(adj)
	l.top = p.Add(n)
	return p
}

// CanAllocate reports whether Allocate(n) would succeed right now.
func (l *LinearAllocator) CanAllocate(n uintptr) bool {
	return l.CanAllocateAligned(n, NewAlignment(1))
}

// CanAllocateAligned reports whether AllocateAligned(n, align) would
// succeed right now.
func (l *LinearAllocator) CanAllocateAligned(n uintptr, align Alignment) bool {
	if n == 0 {
		return false
	}
	adj := align.adjustment(l.top.Uintptr())
	used := l.top.sub(l.base)
	return used+adj+n <= l.size
}

// Clear resets the allocator to empty without releasing its buffer; every
// pointer previously returned by Allocate becomes invalid.
func (l *LinearAllocator) Clear() {
	l.top = l.base
}

// CopyTo duplicates this allocator's occupied bytes and top-pointer offset
// into dest, which must have at least as much room as this allocator has
// allocated. dest's own buffer (internal or external) is left untouched;
// only its live region is overwritten.
func (l *LinearAllocator) CopyTo(dest *LinearAllocator) {
	allocated := l.GetAllocatedBytes()
	if allocated > dest.size {
		panic("linear allocator CopyTo: destination too small")
	}
	copy(bytesAt(dest.base, allocated), bytesAt(l.base, allocated))
	dest.top = dest.base.Add(allocated)
}

// Reallocate replaces an internally-owned allocator's buffer with a freshly
// acquired one of newSize bytes, copying every byte already allocated and
// releasing the old buffer; base moves to the new buffer. It panics if called on
// an externally-backed allocator; use ReallocateExternal for a borrowed
// buffer. If newSize does not exceed the current size, it is a no-op,
// matching the original's "growth only" contract.
func (l *LinearAllocator) Reallocate(newSize uintptr) {
	if l.external {
		panic("linear allocator Reallocate: allocator does not own its buffer, use ReallocateExternal")
	}
	if newSize <= l.size {
		return
	}

	allocated := l.GetAllocatedBytes()
	newBlock := AlignedAllocate(newSize, l.align)
	copy(bytesAt(newBlock.Ptr(), allocated), bytesAt(l.base, allocated))

	oldBlock := l.block
	l.block = newBlock
	l.base = newBlock.Ptr()
	l.top = l.base.Add(allocated)
	l.size = newSize
	AlignedFree(oldBlock)
}

// ReallocateExternal relocates an externally-backed allocator onto a new
// caller-supplied buffer, preserving every byte already allocated. base is
// advanced forward within newLocation to satisfy the allocator's
// alignment, exactly as the external+alignment constructor does, and that
// adjustment is subtracted from the effective new size. If the resulting
// effective size does not exceed the current size, this is a no-op,
// matching the original's "growth only" contract. The allocator does not
// take ownership of newLocation, matching NewLinearAllocatorExternal.
func (l *LinearAllocator) ReallocateExternal(newSize uintptr, newLocation []byte) {
	if !l.external {
		panic("linear allocator ReallocateExternal: allocator owns its buffer, use Reallocate")
	}
	if len(newLocation) == 0 {
		panic("linear allocator ReallocateExternal: new buffer cannot be empty")
	}

	base := ptrOf(ptrOfSlice(newLocation))
	adj := l.align.adjustment(base.Uintptr())
	if newSize < adj {
		return
	}
	effectiveSize := newSize - adj
	if effectiveSize <= l.size {
		return
	}
	if uintptr(len(newLocation)) < adj+effectiveSize {
		panic("linear allocator ReallocateExternal: new buffer smaller than new size")
	}

	allocated := l.GetAllocatedBytes()
	newBase := base.Add(adj)
	copy(bytesAt(newBase, allocated), bytesAt(l.base, allocated))

	l.base = newBase
	l.top = newBase.Add(allocated)
	l.size = effectiveSize
	l.extBuf = newLocation
}

// GetSize returns the total capacity of the allocator's buffer.
func (l *LinearAllocator) GetSize() uintptr { return l.size }

// GetAllocatedBytes returns the number of bytes currently in use.
func (l *LinearAllocator) GetAllocatedBytes() uintptr { return l.top.sub(l.base) }

// GetPointer returns the base of the allocator's buffer.
func (l *LinearAllocator) GetPointer() Ptr { return l.base }

// GetTop returns the allocator's current top-of-stack pointer, i.e. where
// the next Allocate call (with no alignment adjustment) would start.
func (l *LinearAllocator) GetTop() Ptr { return l.top }

// Bytes returns a []byte view of the bytes currently allocated from this
// allocator, from base up to top. The slice aliases live allocator memory
// and is invalidated by the next Clear, Reallocate, or ReallocateExternal.
func (l *LinearAllocator) Bytes() []byte {
	return bytesAt(l.base, l.GetAllocatedBytes())
}

// Free releases an internally-owned allocator's buffer. It is a no-op on
// an externally-backed allocator, since it never owned that memory.
func (l *LinearAllocator) Free() {
	if l.external {
		return
	}
	AlignedFree(l.block)
	l.block = nil
}
