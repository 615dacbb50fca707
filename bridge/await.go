package bridge

import (
	"context"

	"github.com/portside/ferry/oneshot"
)

// ResultBufferSize is the scratch buffer size the await helpers hand
// to Poll. It bounds the encoded payload: callers with larger results
// drive the Poller themselves with an adequate buffer.
const ResultBufferSize = 4096

// parkWaker parks the awaiting goroutine on a channel; Wake unparks.
type parkWaker struct {
	ch chan struct{}
}

func newParkWaker() *parkWaker {
	return &parkWaker{ch: make(chan struct{}, 1)}
}

func (w *parkWaker) Wake() error {
	select {
	case w.ch <- struct{}{}:
	default:
	}
	return nil
}

// Wait blocks the calling goroutine until the native future resolves,
// the synchronous drain counterpart of spawning onto a reactor. On
// ctx cancellation the future is dropped and ctx.Err returned; the
// producer keeps running, only the caller stops waiting.
func Wait[T any](ctx context.Context, f *oneshot.Future[T]) (T, error) {
	var v T
	w := newParkWaker()
	for {
		status, err := f.Poll(&v, w)
		switch status {
		case oneshot.ReadyValue:
			return v, nil
		case oneshot.ReadyError:
			return v, err
		}
		select {
		case <-w.ch:
		case <-ctx.Done():
			f.Drop()
			return v, ctx.Err()
		}
	}
}

// await drives p until it reports completion, parking between pending
// polls. Returns the terminal status; result holds the encoded payload.
func await(ctx context.Context, p Poller, result []byte) (uint32, error) {
	w := newParkWaker()
	for {
		switch status := p.Poll(result, w); status {
		case PollPending:
			select {
			case <-w.ch:
			case <-ctx.Done():
				return PollPending, ctx.Err()
			}
		case PollReadyValue, PollReadyError:
			return status, nil
		default:
			panic("bridge: unknown poll status")
		}
	}
}

// AwaitF64 blocks until the boundary-polled computation resolves and
// decodes the result into the native idiom: a float64 or an error. A
// ready-error decodes to *RemoteError carrying the original message.
func AwaitF64(ctx context.Context, p Poller) (float64, error) {
	buf := make([]byte, ResultBufferSize)
	status, err := await(ctx, p, buf)
	if err != nil {
		return 0, err
	}
	if status == PollReadyError {
		msg, derr := decodeErrorPayload(buf)
		if derr != nil {
			return 0, derr
		}
		return 0, NewRemoteError(msg)
	}
	return DecodeF64(buf)
}

// AwaitString is AwaitF64 for string results.
func AwaitString(ctx context.Context, p Poller) (string, error) {
	buf := make([]byte, ResultBufferSize)
	status, err := await(ctx, p, buf)
	if err != nil {
		return "", err
	}
	if status == PollReadyError {
		msg, derr := decodeErrorPayload(buf)
		if derr != nil {
			return "", derr
		}
		return "", NewRemoteError(msg)
	}
	return DecodeString(buf)
}
