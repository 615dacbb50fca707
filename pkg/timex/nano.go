package timex

import (
	_ "unsafe"
)

//go:noescape
//go:linkname NanoTime runtime.nanotime
func NanoTime() int64

func Since(start int64) int64 {
	return NanoTime() - start
}

// StopWatch measures elapsed nanoseconds from the last Start.
type StopWatch int64

func (s *StopWatch) Start() {
	*s = StopWatch(NanoTime())
}

func (s *StopWatch) Elapsed() int64 {
	return NanoTime() - int64(*s)
}
