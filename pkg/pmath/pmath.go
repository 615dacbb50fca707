package pmath

import "math/bits"

// CeilToPowerOf2 rounds size up to the nearest power of 2.
func CeilToPowerOf2(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(uint64(size-1)))
}

// IsPowerOf2 reports whether size is a power of 2.
func IsPowerOf2(size int) bool {
	return size > 0 && size&(size-1) == 0
}
