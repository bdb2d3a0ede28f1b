package memregion

import "unsafe"

// freeListPtrSize is the per-slot bookkeeping cost GetTotalSize reports as
// bundled alongside the pool's payload, matching the original's companion
// array of one pointer per block. The free list itself is not stored in
// the payload buffer at all (see the freeList field below); this constant
// only feeds GetTotalSize's arithmetic so callers that budgeted memory
// against "pool_size + blocks*sizeof(void**)" still get the number they
// expect.
var freeListPtrSize = uintptr(unsafe.Sizeof(uintptr(0)))

const noFreeBlock = int32(-1)

// PoolAllocator hands out fixed-size blocks from a buffer, tracking which
// blocks are free through an intrusive singly-linked list threaded through
// a companion index array rather than through the payload bytes
// themselves, so a block's payload is never clobbered by free-list
// bookkeeping while it's sitting unused in the pool.
type PoolAllocator struct {
	_ noCopy

	base       Ptr
	blockSize  uintptr
	align      Alignment
	blockCount int32
	poolSize   uintptr

	// freeList[i] is the index of the next free block after i, or
	// noFreeBlock at the end of the chain. firstFree is the head.
	freeList  []int32
	firstFree int32

	external bool
	block    *AlignedBlock
	extBuf   []byte
}

// NewPoolAllocator constructs a PoolAllocator that owns a freshly acquired,
// align-aligned buffer of poolSize bytes, holding poolSize/blockSize
// blocks (integer division; any trailing bytes past the last whole block
// are unused).
func NewPoolAllocator(poolSize, blockSize uintptr, align Alignment) *PoolAllocator {
	if poolSize == 0 {
		panic("pool allocator pool size cannot be zero")
	}
	if blockSize == 0 {
		panic("pool allocator block size cannot be zero")
	}
	blockCount := poolSize / blockSize
	if blockCount == 0 {
		panic("pool allocator pool size smaller than one block")
	}
	block := AlignedAllocate(poolSize, align)
	p := &PoolAllocator{
		base:       block.Ptr(),
		blockSize:  blockSize,
		align:      align,
		blockCount: int32(blockCount),
		poolSize:   blockCount * blockSize,
		block:      block,
	}
	p.resetFreeList()
	return p
}

// NewPoolAllocatorExternal constructs a PoolAllocator over a
// caller-supplied buffer, advancing its start forward to the first
// address aligned to a pointer's size (the implicit default alignment for
// this constructor) and reducing the effective pool size by that
// adjustment. The allocator never frees buf.
func NewPoolAllocatorExternal(poolSize, blockSize uintptr, buf []byte) *PoolAllocator {
	return NewPoolAllocatorExternalAligned(poolSize, blockSize, buf, NewAlignment(freeListPtrSize))
}

// NewPoolAllocatorExternalAligned constructs a PoolAllocator over a
// caller-supplied buffer, advancing its start forward to the first
// address aligned to align and reducing the effective pool size by that
// adjustment.
func NewPoolAllocatorExternalAligned(poolSize, blockSize uintptr, buf []byte, align Alignment) *PoolAllocator {
	if poolSize == 0 {
		panic("pool allocator pool size cannot be zero")
	}
	if blockSize == 0 {
		panic("pool allocator block size cannot be zero")
	}
	if uintptr(len(buf)) < poolSize {
		panic("pool allocator external buffer smaller than pool size")
	}
	base0 := ptrOf(ptrOfSlice(buf))
	adj := align.adjustment(base0.Uintptr())
	if adj >= poolSize {
		panic("pool allocator external buffer too small to satisfy alignment")
	}
	effectiveSize := poolSize - adj
	blockCount := effectiveSize / blockSize
	if blockCount == 0 {
		panic("pool allocator pool size smaller than one block")
	}
	p := &PoolAllocator{
		base:       base0.Add(adj),
		blockSize:  blockSize,
		align:      align,
		blockCount: int32(blockCount),
		poolSize:   blockCount * blockSize,
		external:   true,
		extBuf:     buf,
	}
	p.resetFreeList()
	return p
}

// NewPoolAllocatorForType is a convenience constructor for a pool of count
// blocks sized for a value whose natural alignment requirement is at most
// blockSize bytes: the block alignment is rounded up to the next power of
// two via AlignmentRoundUp, so callers that just know "a value roughly
// this big" don't have to compute a legal Alignment by hand.
func NewPoolAllocatorForType(blockSize uintptr, count int) *PoolAllocator {
	return NewPoolAllocator(blockSize*uintptr(count), blockSize, AlignmentRoundUp(blockSize))
}

func (p *PoolAllocator) resetFreeList() {
	p.freeList = make([]int32, p.blockCount)
	for i := int32(0); i < p.blockCount; i++ {
		if i == p.blockCount-1 {
			p.freeList[i] = noFreeBlock
		} else {
			p.freeList[i] = i + 1
		}
	}
	p.firstFree = 0
}

// Allocate reserves one block and returns a pointer to it. It returns the
// zero Ptr, without mutating any state, if the pool is full; use
// CanAllocate to check in advance.
func (p *PoolAllocator) Allocate() Ptr {
	if p.firstFree == noFreeBlock {
		return Ptr{}
	}
	idx := p.firstFree
	p.firstFree = p.freeList[idx]
	return p.base.Add(uintptr(idx) * p.blockSize)
}

// Deallocate returns a block previously obtained from Allocate to the
// pool. It panics if ptr does not point at the start of a block owned by
// this pool.
//
// The bounds check compares ptr only against the pool's payload region
// (base .. base+poolSize), never against GetTotalSize(): the free list
// lives outside the payload buffer entirely (see the freeList field), so
// nothing at or past base+poolSize is ever a valid block address.
func (p *PoolAllocator) Deallocate(ptr Ptr) {
	if ptr.Uintptr() < p.base.Uintptr() || ptr.Uintptr() >= p.base.Uintptr()+p.poolSize {
		panic("pool allocator Deallocate: pointer out of range")
	}
	offset := ptr.sub(p.base)
	if offset%p.blockSize != 0 {
		panic("pool allocator Deallocate: pointer is not a block boundary")
	}
	idx := int32(offset / p.blockSize)
	p.freeList[idx] = p.firstFree
	p.firstFree = idx
}

// Clear returns every block to the pool, discarding whatever was stored
// in them.
func (p *PoolAllocator) Clear() {
	p.resetFreeList()
}

// CanAllocate reports whether Allocate would succeed right now.
func (p *PoolAllocator) CanAllocate() bool {
	return p.firstFree != noFreeBlock
}

// Owns reports whether ptr falls inside this pool's payload region. It
// does not check block-boundary alignment; use it as a coarse ownership
// test before deciding which pool to Deallocate into.
func (p *PoolAllocator) Owns(ptr Ptr) bool {
	return ptr.Uintptr() >= p.base.Uintptr() && ptr.Uintptr() < p.base.Uintptr()+p.poolSize
}

// CopyTo duplicates this pool's occupied and free blocks into dest, which
// must use the same block size and have at least as many blocks. If dest
// has more blocks than this pool, the extra blocks are appended to the
// free list's tail in ascending index order, after this pool's free
// blocks, which keep their original order in the free list.
func (p *PoolAllocator) CopyTo(dest *PoolAllocator) {
	if dest.blockSize != p.blockSize {
		panic("pool allocator CopyTo: block size mismatch")
	}
	if dest.blockCount < p.blockCount {
		panic("pool allocator CopyTo: destination has fewer blocks")
	}

	copy(bytesAt(dest.base, p.poolSize), bytesAt(p.base, p.poolSize))

	var freeOrder []int32
	for idx := p.firstFree; idx != noFreeBlock; idx = p.freeList[idx] {
		freeOrder = append(freeOrder, idx)
	}

	dest.freeList = make([]int32, dest.blockCount)
	for i := range dest.freeList {
		dest.freeList[i] = noFreeBlock
	}

	chain := make([]int32, 0, len(freeOrder)+int(dest.blockCount-p.blockCount))
	chain = append(chain, freeOrder...)
	for i := p.blockCount; i < dest.blockCount; i++ {
		chain = append(chain, i)
	}

	if len(chain) == 0 {
		dest.firstFree = noFreeBlock
	} else {
		dest.firstFree = chain[0]
		for i := 0; i < len(chain)-1; i++ {
			dest.freeList[chain[i]] = chain[i+1]
		}
		dest.freeList[chain[len(chain)-1]] = noFreeBlock
	}
}

// GetPointer returns the base of the pool's payload buffer.
func (p *PoolAllocator) GetPointer() Ptr { return p.base }

// GetAlignment returns the pool's configured block alignment.
func (p *PoolAllocator) GetAlignment() Alignment { return p.align }

// GetBlockSize returns the size, in bytes, of one block.
func (p *PoolAllocator) GetBlockSize() uintptr { return p.blockSize }

// GetPoolSize returns the size, in bytes, of the payload region alone
// (blockSize * blockCount).
func (p *PoolAllocator) GetPoolSize() uintptr { return p.poolSize }

// GetTotalSize returns the pool size plus the bookkeeping cost of its
// free list, as if the free list were one pointer-sized companion slot
// per block appended to the payload. Deallocate's bounds check
// deliberately does not use this value (see REDESIGN notes in
// DESIGN.md); it exists only so callers that plan memory budgets against
// "payload + free list" get a number consistent with the original design.
func (p *PoolAllocator) GetTotalSize() uintptr {
	return p.poolSize + uintptr(p.blockCount)*freeListPtrSize
}

// GetAllocatedBytes returns the number of bytes currently checked out of
// the pool (one blockSize per outstanding block).
func (p *PoolAllocator) GetAllocatedBytes() uintptr {
	free := int32(0)
	for idx := p.firstFree; idx != noFreeBlock; idx = p.freeList[idx] {
		free++
	}
	return uintptr(p.blockCount-free) * p.blockSize
}

// Free releases an internally-owned allocator's buffer. It is a no-op on
// an externally-backed allocator.
func (p *PoolAllocator) Free() {
	if p.external {
		return
	}
	AlignedFree(p.block)
	p.block = nil
}
