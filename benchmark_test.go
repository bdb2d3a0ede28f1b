package memregion

import "testing"

func BenchmarkLinearAllocatorAllocate(b *testing.B) {
	l := NewLinearAllocator(uintptr(b.N)*16+64, NewAlignment(8))
	defer l.Free()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Allocate(16)
	}
}

func BenchmarkStackAllocatorAllocateDeallocate(b *testing.B) {
	s := NewStackAllocator(4096, NewAlignment(8))
	defer s.Free()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Allocate(16)
		s.Deallocate()
	}
}

func BenchmarkStackAllocatorMarkRollback(b *testing.B) {
	s := NewStackAllocator(8192, NewAlignment(8))
	defer s.Free()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mark := s.GetMark()
		for j := 0; j < 8; j++ {
			s.Allocate(16)
		}
		s.DeallocateMark(mark)
	}
}

func BenchmarkPoolAllocatorAllocateDeallocate(b *testing.B) {
	p := NewPoolAllocator(2048, 32, NewAlignment(8))
	defer p.Free()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr := p.Allocate()
		p.Deallocate(ptr)
	}
}
