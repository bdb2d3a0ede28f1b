// Package memregion provides single-threaded, region-style memory
// allocators that carve blocks out of a raw byte buffer without ever
// touching the Go heap's general-purpose allocator once that buffer has
// been acquired.
//
// None of the three allocators are safe for concurrent use; each is meant
// to back one region of memory owned by one goroutine at a time, the way
// a frame allocator or a per-request arena would be used in a C or C++
// game or server codebase. Wrap an allocator in your own synchronization
// if multiple goroutines need access to it.
//
// # Alignment
//
// Alignment encapsulates a power-of-two byte boundary and is validated
// once, at construction, so every allocator can assume any Alignment
// value it receives is already legal:
//
//	a := memregion.NewAlignment(16)
//	r := memregion.AlignmentRoundUp(24) // rounds up to 32
//
// # Aligned raw memory
//
// AlignedAllocate/AlignedFree are the single mechanism every allocator's
// internally-owned buffer goes through. Small or oddly-aligned requests
// come from an over-allocated Go slice; requests at or above PageSize are
// served directly from the OS via mmap (or the Windows equivalent),
// bypassing the Go heap entirely:
//
//	block := memregion.AlignedAllocate(4096, memregion.NewAlignment(64))
//	defer memregion.AlignedFree(block)
//
// # Linear allocator
//
// LinearAllocator bumps a top pointer forward through a buffer and
// reclaims everything at once with Clear; it never frees individual
// blocks. Use it for memory whose lifetime is tied to a single frame,
// job, or request.
//
// # Stack allocator
//
// StackAllocator hands out memory LIFO, storing a small header before
// each block so a single Deallocate call can pop the most recent block,
// or a Mark taken earlier can be used to roll back every block allocated
// since. Use it when allocations nest in a predictable push/pop pattern.
//
// # Pool allocator
//
// PoolAllocator hands out fixed-size blocks from a buffer and tracks free
// blocks through an index-based free list kept outside the payload
// buffer, so a block's contents are never disturbed by pool bookkeeping
// while the block sits unused. Use it when every allocation from a
// region is the same size, e.g. one struct type's worth of memory.
//
// # Thread safety
//
// None. Every allocator embeds a noCopy sentinel so go vet's -copylocks
// check flags accidental copies, since copying a live allocator would
// duplicate its base/top/free-list bookkeeping and silently violate its
// invariants.
package memregion
