// Package mpsc provides a bounded multi-producer single-consumer queue
// built on the Vyukov ring algorithm, with an optional wake channel
// that signals the consumer when the queue transitions from empty.
package mpsc

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/portside/ferry/pkg/counter"
	"github.com/portside/ferry/pkg/pmath"
)

const cacheLinePad = unsafe.Sizeof(cpu.CacheLinePad{})

type slot[T any] struct {
	seq  int64
	data T
	set  uint32
}

// Bounded is a fixed-capacity MPSC ring. Push fails when full.
// Pop and PopMany may only be called from the single consumer.
type Bounded[T any] struct {
	head      int64
	_         [cacheLinePad - 8]byte
	tail      int64
	_         [cacheLinePad - 8]byte
	slots     []slot[T]
	mask      int64
	wake      int64
	wakeCh    chan struct{}
	wakeCount counter.Counter
	wakeFull  counter.Counter
}

// NewBounded returns a ring with capacity rounded up to a power of 2.
// If wake is nil a 1-slot channel is allocated.
func NewBounded[T any](capacity int64, wake chan struct{}) *Bounded[T] {
	if wake == nil {
		wake = make(chan struct{}, 1)
	}
	if capacity < 32 {
		capacity = 32
	}
	if !pmath.IsPowerOf2(int(capacity)) {
		capacity = int64(pmath.CeilToPowerOf2(int(capacity)))
	}
	slots := make([]slot[T], capacity)
	for i := range slots {
		slots[i].seq = int64(i)
	}
	return &Bounded[T]{
		mask:   capacity - 1,
		wakeCh: wake,
		slots:  slots,
	}
}

// Wake returns the channel signaled when the queue becomes non-empty.
func (b *Bounded[T]) Wake() <-chan struct{} { return b.wakeCh }

func (b *Bounded[T]) WakeCount() int64 { return b.wakeCount.Load() }

func (b *Bounded[T]) WakeChanFullCount() int64 { return b.wakeFull.Load() }

func (b *Bounded[T]) Len() int {
	return int(atomic.LoadInt64(&b.tail) - atomic.LoadInt64(&b.head))
}

func (b *Bounded[T]) Cap() int { return len(b.slots) }

func (b *Bounded[T]) IsEmpty() bool {
	return atomic.LoadInt64(&b.tail)-atomic.LoadInt64(&b.head) == 0
}

func (b *Bounded[T]) IsFull() bool {
	return atomic.LoadInt64(&b.tail)-atomic.LoadInt64(&b.head) >= b.mask
}

// Push enqueues data. Returns false when the ring is full.
func (b *Bounded[T]) Push(data T) bool {
	var (
		cell *slot[T]
		pos  = atomic.LoadInt64(&b.tail)
	)
	for {
		cell = &b.slots[pos&b.mask]
		seq := atomic.LoadInt64(&cell.seq)
		diff := seq - pos
		if diff == 0 {
			if atomic.CompareAndSwapInt64(&b.tail, pos, pos+1) {
				break
			}
		} else if diff < 0 {
			return false
		} else {
			pos = atomic.LoadInt64(&b.tail)
		}
	}

	cell.data = data
	atomic.StoreUint32(&cell.set, 1)
	atomic.StoreInt64(&cell.seq, pos+1)

	if pos-atomic.LoadInt64(&b.head) == 0 {
		if atomic.CompareAndSwapInt64(&b.wake, 0, 1) {
			b.wakeCount.Incr()
			select {
			case b.wakeCh <- struct{}{}:
			default:
				b.wakeFull.Incr()
			}
		}
	}
	return true
}

// Pop dequeues one element. ok is false when the ring is empty.
func (b *Bounded[T]) Pop() (data T, ok bool) {
	atomic.StoreInt64(&b.wake, 0)
	var (
		cell *slot[T]
		pos  = atomic.LoadInt64(&b.head)
	)
	for {
		cell = &b.slots[pos&b.mask]
		seq := atomic.LoadInt64(&cell.seq)
		diff := seq - (pos + 1)
		if diff == 0 {
			if atomic.LoadUint32(&cell.set) == 0 {
				// producer has claimed the slot but not published yet
				return
			}
			if atomic.CompareAndSwapInt64(&b.head, pos, pos+1) {
				break
			}
		} else if diff < 0 {
			return
		} else {
			pos = atomic.LoadInt64(&b.head)
		}
	}

	data = cell.data
	var zero T
	cell.data = zero
	atomic.StoreUint32(&cell.set, 0)
	atomic.StoreInt64(&cell.seq, pos+b.mask+1)
	return data, true
}

// PopMany dequeues up to maxCount elements, invoking consumer for each.
func (b *Bounded[T]) PopMany(maxCount int, consumer func(T)) (count int) {
	atomic.StoreInt64(&b.wake, 0)
	var (
		cell *slot[T]
		zero T
		pos  = atomic.LoadInt64(&b.head)
	)
	for {
		cell = &b.slots[pos&b.mask]
		seq := atomic.LoadInt64(&cell.seq)
		diff := seq - (pos + 1)
		if diff == 0 {
			if atomic.LoadUint32(&cell.set) == 0 {
				atomic.StoreInt64(&b.head, pos)
				return
			}
			data := cell.data
			cell.data = zero
			atomic.StoreUint32(&cell.set, 0)
			atomic.StoreInt64(&cell.seq, pos+b.mask+1)
			pos++
			atomic.StoreInt64(&b.head, pos)
			consumer(data)
			count++
			if count >= maxCount {
				return
			}
		} else if diff < 0 {
			atomic.StoreInt64(&b.head, pos)
			return
		} else {
			pos = atomic.LoadInt64(&b.head)
		}
	}
}
