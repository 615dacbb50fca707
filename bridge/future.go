package bridge

import (
	"runtime"
	"sync"

	"github.com/portside/ferry/oneshot"
	"github.com/portside/ferry/pkg/mpsc"
	"github.com/portside/ferry/pkg/spinlock"
)

// Waker is the boundary waker handle: a single wake capability backed
// by whatever primitive the scheduler on the registering side uses.
type Waker = oneshot.Waker

// Poller is the boundary-facing poll surface of a computation. Poll
// either writes the encoded result into result and returns
// PollReadyValue/PollReadyError, or records waker and returns
// PollPending. result must be sized for the encoded payload; the
// value and error codecs are fixed per concrete future type.
type Poller interface {
	Poll(result []byte, waker Waker) uint32
}

// codec is the boundary encoding for one concrete result type. The
// boundary cannot carry type parameters, so each exported future type
// binds one codec statically.
type codec[T any] struct {
	encode func(dst []byte, v T) int
	decode func(src []byte) (T, error)
}

var (
	f64Codec    = codec[float64]{encode: EncodeF64, decode: DecodeF64}
	stringCodec = codec[string]{encode: EncodeString, decode: DecodeString}
)

// boundaryFuture adapts a oneshot future to the poll protocol. When
// the pairing was created by an execlet, each poll first runs the
// units the foreign side submitted, so foreign-scheduled work executes
// on whichever goroutine drives the future.
type boundaryFuture[T any] struct {
	fut   *oneshot.Future[T]
	codec codec[T]
	exec  *execQueue
}

func (f *boundaryFuture[T]) poll(result []byte, waker Waker) uint32 {
	if f.exec != nil {
		f.exec.setWaker(waker)
		f.exec.drain()
	}
	var v T
	status, err := f.fut.Poll(&v, waker)
	switch status {
	case oneshot.ReadyValue:
		f.codec.encode(result, v)
		return PollReadyValue
	case oneshot.ReadyError:
		encodeErrorPayload(result, errorMessage(err))
		return PollReadyError
	default:
		return PollPending
	}
}

func (f *boundaryFuture[T]) drop() {
	f.fut.Drop()
}

// boundarySender adapts a oneshot sender to the send protocol. The
// payload bytes are decoded (copied) during the call; the pointer is
// never retained.
type boundarySender[T any] struct {
	snd   *oneshot.Sender[T]
	codec codec[T]
}

func (s *boundarySender[T]) send(status uint32, payload []byte) {
	switch status {
	case SendValue:
		v, err := s.codec.decode(payload)
		if err != nil {
			panic(err)
		}
		s.snd.Send(v)
	case SendError:
		msg, err := decodeErrorPayload(payload)
		if err != nil {
			panic(err)
		}
		s.snd.Fail(NewRemoteError(msg))
	default:
		panic("bridge: unknown send status")
	}
}

func (s *boundarySender[T]) drop() {
	s.snd.Drop()
}

const execQueueSize = 256

// execQueue carries units of work the foreign side submitted to run on
// the native side. Drained by whichever goroutine polls the paired
// future; the mutex serializes concurrent pollers.
type execQueue struct {
	tasks *mpsc.Bounded[func()]
	mu    sync.Mutex
	wmu   spinlock.Mutex
	waker Waker
}

func newExecQueue() *execQueue {
	return &execQueue{
		tasks: mpsc.NewBounded[func()](execQueueSize, nil),
	}
}

func (q *execQueue) setWaker(w Waker) {
	q.wmu.Lock()
	q.waker = w
	q.wmu.Unlock()
}

func (q *execQueue) drain() {
	q.mu.Lock()
	for {
		task, ok := q.tasks.Pop()
		if !ok {
			break
		}
		task()
	}
	q.mu.Unlock()
}

func (q *execQueue) submit(task func()) {
	for !q.tasks.Push(task) {
		// Backpressure: the poller drains in submission order, so a
		// full ring clears as soon as the future is polled again.
		q.wake()
		runtime.Gosched()
	}
	q.wake()
}

func (q *execQueue) wake() {
	q.wmu.Lock()
	w := q.waker
	q.wmu.Unlock()
	if w != nil {
		_ = w.Wake()
	}
}
