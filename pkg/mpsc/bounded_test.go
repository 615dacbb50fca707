package mpsc

import (
	"runtime"
	"sync"
	"testing"

	"github.com/portside/ferry/pkg/counter"
)

func TestPushPop(t *testing.T) {
	q := NewBounded[int](64, nil)
	for i := 0; i < 64; i++ {
		if !q.Push(i) {
			t.Fatal("push failed at", i)
		}
	}
	if q.Push(64) {
		t.Fatal("push succeeded on full ring")
	}
	for i := 0; i < 64; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatal("pop failed at", i)
		}
		if v != i {
			t.Fatal("expected", i, "got", v)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("pop succeeded on empty ring")
	}
}

func TestWakeSignal(t *testing.T) {
	q := NewBounded[int](32, nil)
	q.Push(1)
	select {
	case <-q.Wake():
	default:
		t.Fatal("no wake signal after push into empty ring")
	}
}

func TestConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 10000
	q := NewBounded[int](1<<16, nil)
	var wg sync.WaitGroup
	var pushed counter.Counter
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Push(i) {
					runtime.Gosched()
				}
				pushed.Incr()
			}
		}()
	}

	var popped counter.Counter
	done := make(chan struct{})
	go func() {
		defer close(done)
		for popped.Load() < producers*perProducer {
			n := q.PopMany(1024, func(int) {})
			popped.Add(int64(n))
			if n == 0 {
				runtime.Gosched()
			}
		}
	}()

	wg.Wait()
	<-done
	if popped.Load() != producers*perProducer {
		t.Fatal("lost elements:", popped.Load())
	}
}

func BenchmarkPush(b *testing.B) {
	q := NewBounded[int](1<<20, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !q.Push(i) {
			q.PopMany(1<<20, func(int) {})
		}
	}
}
