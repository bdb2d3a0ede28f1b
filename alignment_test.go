package memregion

import "testing"

func TestNewAlignmentRejectsNonPowerOfTwo(t *testing.T) {
	cases := []uintptr{0, 3, 5, 6, 100}
	for _, v := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewAlignment(%d): expected panic", v)
				}
			}()
			NewAlignment(v)
		}()
	}
}

func TestNewAlignmentAcceptsPowerOfTwo(t *testing.T) {
	for _, v := range []uintptr{1, 2, 4, 8, 16, 1024} {
		a := NewAlignment(v)
		if a.Uintptr() != v {
			t.Errorf("NewAlignment(%d).Uintptr() = %d", v, a.Uintptr())
		}
	}
}

func TestAlignmentRoundUp(t *testing.T) {
	cases := []struct {
		in   uintptr
		want uintptr
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{24, 32},
		{1024, 1024},
		{1025, 2048},
	}
	for _, c := range cases {
		got := AlignmentRoundUp(c.in).Uintptr()
		if got != c.want {
			t.Errorf("AlignmentRoundUp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAlignmentRoundUpRejectsZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AlignmentRoundUp(0): expected panic")
		}
	}()
	AlignmentRoundUp(0)
}

func TestAdjustment(t *testing.T) {
	a := NewAlignment(16)
	cases := []struct {
		addr uintptr
		want uintptr
	}{
		{0, 0},
		{1, 15},
		{15, 1},
		{16, 0},
		{17, 15},
		{31, 1},
		{32, 0},
	}
	for _, c := range cases {
		got := a.adjustment(c.addr)
		if got != c.want {
			t.Errorf("adjustment(%d) = %d, want %d", c.addr, got, c.want)
		}
		if (c.addr+got)%16 != 0 {
			t.Errorf("addr %d + adjustment %d not aligned to 16", c.addr, got)
		}
	}
}
