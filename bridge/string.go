package bridge

import (
	"github.com/portside/ferry/oneshot"
	"github.com/portside/ferry/pkg/util"
)

// Per-type instantiation for string results. Near-duplicate of the
// float64 trio: each additional result type is an instantiation of the
// same pattern, not new design.

type OneshotString struct {
	Future *FutureString
	Sender *SenderString
}

type FutureString struct {
	inner boundaryFuture[string]
}

type SenderString struct {
	inner boundarySender[string]
}

// ChannelString allocates the shared cell and returns the paired handles.
func ChannelString() OneshotString {
	fut, snd := oneshot.New[string]()
	return OneshotString{
		Future: &FutureString{inner: boundaryFuture[string]{fut: fut, codec: stringCodec}},
		Sender: &SenderString{inner: boundarySender[string]{snd: snd, codec: stringCodec}},
	}
}

// Poll drives the future. Ready payloads are length-prefixed UTF-8.
func (f *FutureString) Poll(result []byte, waker Waker) uint32 {
	return f.inner.poll(result, waker)
}

func (f *FutureString) Drop() { f.inner.drop() }

func (s *SenderString) Send(status uint32, payload []byte) {
	s.inner.send(status, payload)
}

func (s *SenderString) Drop() { s.inner.drop() }

// GoString exposes a native string computation through the poll
// protocol. Same start and panic semantics as GoF64.
func GoString(runner Runner, fn func() (string, error)) *FutureString {
	fut, snd := oneshot.New[string]()
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
	return &FutureString{inner: boundaryFuture[string]{fut: fut, codec: stringCodec}}
}

type ExecletString struct {
	q   *execQueue
	snd boundarySender[string]
}

// ExecletChannelString returns a future paired with an execlet.
func ExecletChannelString() (*FutureString, *ExecletString) {
	fut, snd := oneshot.New[string]()
	q := newExecQueue()
	return &FutureString{inner: boundaryFuture[string]{fut: fut, codec: stringCodec, exec: q}},
		&ExecletString{q: q, snd: boundarySender[string]{snd: snd, codec: stringCodec}}
}

func (e *ExecletString) Submit(task func()) { e.q.submit(task) }

func (e *ExecletString) Send(status uint32, payload []byte) {
	e.snd.send(status, payload)
}
