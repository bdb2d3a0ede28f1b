package memregion

import "testing"

func TestLinearAllocatorBasicAllocate(t *testing.T) {
	l := NewLinearAllocator(128, NewAlignment(8))
	defer l.Free()

	p1 := l.Allocate(16)
	p2 := l.Allocate(32)

	if p2.Uintptr() != p1.Uintptr()+16 {
		t.Fatalf("expected contiguous bump allocation, got p1=%x p2=%x", p1.Uintptr(), p2.Uintptr())
	}
	if l.GetAllocatedBytes() != 48 {
		t.Fatalf("GetAllocatedBytes() = %d, want 48", l.GetAllocatedBytes())
	}
}

func TestLinearAllocatorAllocateAligned(t *testing.T) {
	l := NewLinearAllocator(128, NewAlignment(1))
	defer l.Free()

	l.Allocate(3) // top is now base+3, deliberately misaligned for align 16
	p := l.AllocateAligned(8, NewAlignment(16))
	if p.Uintptr()%16 != 0 {
		t.Fatalf("AllocateAligned pointer %x not aligned to 16", p.Uintptr())
	}
}

func TestLinearAllocatorOutOfSpaceReturnsNil(t *testing.T) {
	l := NewLinearAllocator(16, NewAlignment(1))
	defer l.Free()

	if l.CanAllocate(17) {
		t.Fatal("CanAllocate(17) true for a 16-byte allocator")
	}
	p := l.Allocate(17)
	if !p.IsNil() {
		t.Fatalf("Allocate beyond capacity: got %x, want nil", p.Uintptr())
	}
	if l.GetAllocatedBytes() != 0 {
		t.Fatal("failed Allocate must not mutate allocator state")
	}
}

func TestLinearAllocatorClear(t *testing.T) {
	l := NewLinearAllocator(64, NewAlignment(1))
	defer l.Free()

	l.Allocate(32)
	l.Clear()
	if l.GetAllocatedBytes() != 0 {
		t.Fatalf("GetAllocatedBytes() after Clear = %d, want 0", l.GetAllocatedBytes())
	}
	p := l.Allocate(64)
	if p != l.GetPointer() {
		t.Fatal("allocation after Clear did not restart at base")
	}
}

func TestLinearAllocatorExternalBufferRealignment(t *testing.T) {
	// Build a buffer with a base address guaranteed to be 4-byte aligned,
	// then hand the allocator a sub-slice offset by 2 bytes so it must
	// realign forward by exactly 2 bytes (to the next multiple of 4),
	// shrinking the usable size from 8 to 6... unless the runtime slice
	// happens to start at an address already 4-aligned two bytes in, in
	// which case the adjustment is 2 either way since the sub-slice base
	// is always +2 from a 4-aligned address.
	raw := make([]byte, 16)
	base := ptrOf(ptrOfSlice(raw))
	// Find an offset o such that base+o is 4-aligned, then use buf = raw[o+2:o+10].
	o := NewAlignment(4).adjustment(base.Uintptr())
	buf := raw[o+2 : o+10]

	l := NewLinearAllocatorExternalAligned(8, buf, NewAlignment(4))
	if l.GetPointer().Uintptr()%4 != 0 {
		t.Fatalf("GetPointer() %x not aligned to 4", l.GetPointer().Uintptr())
	}
	if l.GetSize() != 6 {
		t.Fatalf("GetSize() = %d, want 6 (8 - 2 bytes of realignment)", l.GetSize())
	}
}

func TestLinearAllocatorExternalBuffer(t *testing.T) {
	buf := make([]byte, 64)
	l := NewLinearAllocatorExternal(64, buf)

	p := l.Allocate(10)
	if p.Uintptr() != ptrOf(ptrOfSlice(buf)).Uintptr() {
		t.Fatal("external allocator did not start at caller's buffer")
	}
}

func TestLinearAllocatorReallocateExternalRelocates(t *testing.T) {
	buf := make([]byte, 32)
	l := NewLinearAllocatorExternal(32, buf)
	l.Allocate(16)

	bigger := make([]byte, 64)
	l.ReallocateExternal(64, bigger)

	if l.GetSize() != 64 {
		t.Fatalf("GetSize() = %d, want 64", l.GetSize())
	}
	if l.GetAllocatedBytes() != 16 {
		t.Fatalf("GetAllocatedBytes() after relocate = %d, want 16", l.GetAllocatedBytes())
	}
	if l.GetPointer().Uintptr() != ptrOf(ptrOfSlice(bigger)).Uintptr() {
		t.Fatal("ReallocateExternal did not move base to the new buffer")
	}
}

func TestLinearAllocatorReallocateInternalGrowsAndPreservesBytes(t *testing.T) {
	l := NewLinearAllocator(16, NewAlignment(8))
	defer l.Free()

	p := l.Allocate(8)
	*(*byte)(p.Unsafe()) = 0x42

	l.Reallocate(64)
	if l.GetSize() != 64 {
		t.Fatalf("GetSize() = %d, want 64", l.GetSize())
	}
	if *(*byte)(l.GetPointer().Unsafe()) != 0x42 {
		t.Fatal("Reallocate did not preserve previously allocated bytes")
	}
}

func TestLinearAllocatorCopyTo(t *testing.T) {
	src := NewLinearAllocator(32, NewAlignment(1))
	defer src.Free()
	dst := NewLinearAllocator(32, NewAlignment(1))
	defer dst.Free()

	p := src.Allocate(10)
	*(*byte)(p.Unsafe()) = 7

	src.CopyTo(dst)
	if dst.GetAllocatedBytes() != 10 {
		t.Fatalf("dst.GetAllocatedBytes() = %d, want 10", dst.GetAllocatedBytes())
	}
	if *(*byte)(dst.GetPointer().Unsafe()) != 7 {
		t.Fatal("CopyTo did not copy payload bytes")
	}
}
