package bridge

import (
	"github.com/portside/ferry/oneshot"
	"github.com/portside/ferry/pkg/util"
)

// Per-type instantiation for float64 results. The boundary protocol
// cannot carry type parameters, so each concrete result type exports a
// matched {Future, Sender, channel} trio over the shared core.

// OneshotF64 pairs the two sides of a float64 channel.
type OneshotF64 struct {
	Future *FutureF64
	Sender *SenderF64
}

// FutureF64 is an owned, exclusive handle to one pending or completed
// float64 computation, exposed through the poll protocol.
type FutureF64 struct {
	inner boundaryFuture[float64]
}

// SenderF64 owns the right to write exactly one float64 completion.
type SenderF64 struct {
	inner boundarySender[float64]
}

// ChannelF64 allocates the shared cell and returns the paired handles.
func ChannelF64() OneshotF64 {
	fut, snd := oneshot.New[float64]()
	return OneshotF64{
		Future: &FutureF64{inner: boundaryFuture[float64]{fut: fut, codec: f64Codec}},
		Sender: &SenderF64{inner: boundarySender[float64]{snd: snd, codec: f64Codec}},
	}
}

// Poll drives the future. On PollReadyValue the 8-byte little-endian
// value is written into result; on PollReadyError the encoded failure
// message is. Otherwise waker is recorded and PollPending returned.
func (f *FutureF64) Poll(result []byte, waker Waker) uint32 {
	return f.inner.poll(result, waker)
}

// Drop detaches the future; a later Send on the pair is a no-op.
func (f *FutureF64) Drop() { f.inner.drop() }

// Send completes the pair. status selects the payload decoding:
// SendValue expects an encoded float64, SendError an encoded failure
// message. The payload is copied during the call and never retained.
// A second Send on the same pair panics.
func (s *SenderF64) Send(status uint32, payload []byte) {
	s.inner.send(status, payload)
}

// Drop releases the sender; if nothing was sent the future fails with
// oneshot.ErrSenderDropped.
func (s *SenderF64) Drop() { s.inner.drop() }

// GoF64 exposes a native computation through the poll protocol. fn is
// scheduled onto runner eagerly: it starts when the runner runs it,
// not when the future is first polled. A panic in fn fails the future.
func GoF64(runner Runner, fn func() (float64, error)) *FutureF64 {
	fut, snd := oneshot.New[float64]()
	runner.Go(func() {
		defer func() {
			if e := recover(); e != nil {
				snd.Fail(util.PanicToError(e))
			}
		}()
		v, err := fn()
		if err != nil {
			snd.Fail(err)
			return
		}
		snd.Send(v)
	})
	return &FutureF64{inner: boundaryFuture[float64]{fut: fut, codec: f64Codec}}
}

// ExecletF64 is the completion handle the foreign side holds when it
// schedules its own work onto the native side: Submit queues units to
// run on whichever goroutine polls the paired future, Send delivers
// the final result.
type ExecletF64 struct {
	q   *execQueue
	snd boundarySender[float64]
}

// ExecletChannelF64 returns a future paired with an execlet.
func ExecletChannelF64() (*FutureF64, *ExecletF64) {
	fut, snd := oneshot.New[float64]()
	q := newExecQueue()
	return &FutureF64{inner: boundaryFuture[float64]{fut: fut, codec: f64Codec, exec: q}},
		&ExecletF64{q: q, snd: boundarySender[float64]{snd: snd, codec: f64Codec}}
}

// Submit queues task to run during a later poll of the paired future,
// in submission order, and wakes the registered waker.
func (e *ExecletF64) Submit(task func()) { e.q.submit(task) }

// Send delivers the completion, same contract as SenderF64.Send.
func (e *ExecletF64) Send(status uint32, payload []byte) {
	e.snd.send(status, payload)
}
