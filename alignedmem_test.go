package memregion

import "testing"

func TestAlignedAllocateSliceBacked(t *testing.T) {
	align := NewAlignment(64)
	b := AlignedAllocate(256, align)
	defer AlignedFree(b)

	if b.Ptr().Uintptr()%64 != 0 {
		t.Fatalf("pointer %x not aligned to 64", b.Ptr().Uintptr())
	}
	if b.osLen != 0 {
		t.Fatalf("expected slice-backed block, got OS-backed (osLen=%d)", b.osLen)
	}

	view := bytesAt(b.Ptr(), 256)
	for i := range view {
		view[i] = byte(i)
	}
	for i := range view {
		if view[i] != byte(i) {
			t.Fatalf("byte %d corrupted: got %d", i, view[i])
		}
	}
}

func TestAlignedAllocateOSBacked(t *testing.T) {
	size := PageSize * 2
	align := NewAlignment(PageSize)
	b := AlignedAllocate(size, align)
	defer AlignedFree(b)

	if b.Ptr().Uintptr()%PageSize != 0 {
		t.Fatalf("pointer %x not aligned to page size %d", b.Ptr().Uintptr(), PageSize)
	}
	if b.osLen == 0 {
		t.Fatalf("expected OS-backed block for size %d", size)
	}

	view := bytesAt(b.Ptr(), size)
	view[0] = 0xAB
	view[len(view)-1] = 0xCD
	if view[0] != 0xAB || view[len(view)-1] != 0xCD {
		t.Fatal("OS-backed memory not writable/readable as expected")
	}
}

func TestAlignedAllocateRejectsZeroSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AlignedAllocate(0, ...): expected panic")
		}
	}()
	AlignedAllocate(0, NewAlignment(8))
}

func TestAlignedFreeNil(t *testing.T) {
	// Must not panic.
	AlignedFree(nil)
}
