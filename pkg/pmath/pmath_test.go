package pmath

import "testing"

func TestCeilToPowerOf2(t *testing.T) {
	cases := map[int]int{
		0:    1,
		1:    1,
		2:    2,
		3:    4,
		31:   32,
		32:   32,
		33:   64,
		1023: 1024,
	}
	for in, want := range cases {
		if got := CeilToPowerOf2(in); got != want {
			t.Fatal("CeilToPowerOf2", in, "=", got, "want", want)
		}
	}
}

func TestIsPowerOf2(t *testing.T) {
	for _, v := range []int{1, 2, 4, 32, 1 << 16} {
		if !IsPowerOf2(v) {
			t.Fatal("expected power of 2:", v)
		}
	}
	for _, v := range []int{0, -1, 3, 33, 1<<16 + 1} {
		if IsPowerOf2(v) {
			t.Fatal("not a power of 2:", v)
		}
	}
}
