package bridge

import (
	"github.com/portside/ferry/oneshot"
	"github.com/portside/ferry/reactor"
)

// Reactor-side adapter: a task whose suspension logic calls the
// boundary poll surface, registering itself as the waker. When the
// foreign side wakes the task, the reactor re-polls it; on completion
// the decoded result resolves a native oneshot.
type pollerTask[T any] struct {
	reactor.TaskProvider
	poller Poller
	codec  codec[T]
	snd    *oneshot.Sender[T]
	buf    []byte
}

func (t *pollerTask[T]) Poll(ctx reactor.Context) error {
	switch status := t.poller.Poll(t.buf, &t.TaskProvider); status {
	case PollPending:
		return nil
	case PollReadyValue:
		v, err := t.codec.decode(t.buf)
		if err != nil {
			t.snd.Fail(err)
		} else {
			t.snd.Send(v)
		}
		return reactor.ErrStop
	case PollReadyError:
		msg, err := decodeErrorPayload(t.buf)
		if err != nil {
			t.snd.Fail(err)
		} else {
			t.snd.Fail(NewRemoteError(msg))
		}
		return reactor.ErrStop
	default:
		panic("bridge: unknown poll status")
	}
}

func spawnPoller[T any](r *reactor.Reactor, p Poller, c codec[T]) (*oneshot.Future[T], error) {
	fut, snd := oneshot.New[T]()
	task := &pollerTask[T]{
		poller: p,
		codec:  c,
		snd:    snd,
		buf:    make([]byte, ResultBufferSize),
	}
	if _, err := r.Spawn(task); err != nil {
		snd.Drop()
		return nil, err
	}
	return fut, nil
}

// SpawnF64 schedules a boundary-polled float64 computation onto the
// reactor and returns a native future for its decoded result.
func SpawnF64(r *reactor.Reactor, p Poller) (*oneshot.Future[float64], error) {
	return spawnPoller(r, p, f64Codec)
}

// SpawnString is SpawnF64 for string results.
func SpawnString(r *reactor.Reactor, p Poller) (*oneshot.Future[string], error) {
	return spawnPoller(r, p, stringCodec)
}
