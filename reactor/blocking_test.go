package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/portside/ferry/pkg/counter"
)

func TestBlockingPoolRunsTasks(t *testing.T) {
	bp := NewBlockingPool(4, 1024)
	defer bp.Close()

	c := new(counter.Counter)
	wg := new(sync.WaitGroup)
	const tasks = 1000
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		if !bp.Invoke(func() {
			c.Incr()
			wg.Done()
		}) {
			wg.Done()
			t.Fatal("invoke rejected at", i)
		}
	}
	wg.Wait()
	if c.Load() != tasks {
		t.Fatal("expected", tasks, "got", c.Load())
	}
}

func TestBlockingPoolPanicRecovered(t *testing.T) {
	bp := NewBlockingPool(2, 64)
	defer bp.Close()

	if !bp.Invoke(func() { panic("boom") }) {
		t.Fatal("invoke rejected")
	}

	done := make(chan struct{})
	// Invoke one task per worker so the panicking worker is covered.
	var once sync.Once
	for i := 0; i < 4; i++ {
		bp.Invoke(func() { once.Do(func() { close(done) }) })
	}
	select {
	case <-done:
	case <-time.After(time.Second * 5):
		t.Fatal("pool dead after panic")
	}
}

func TestBlockingPoolClose(t *testing.T) {
	bp := NewBlockingPool(2, 64)
	if err := bp.Close(); err != nil {
		t.Fatal(err)
	}
}
