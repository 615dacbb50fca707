package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portside/ferry/oneshot"
)

func encodedF64(v float64) []byte {
	buf := make([]byte, F64Size)
	EncodeF64(buf, v)
	return buf
}

func encodedString(s string) []byte {
	buf := make([]byte, StringSize(s))
	EncodeString(buf, s)
	return buf
}

func TestChannelF64RoundTrip(t *testing.T) {
	pair := ChannelF64()
	pair.Sender.Send(SendValue, encodedF64(1234.5678))

	buf := make([]byte, F64Size)
	status := pair.Future.Poll(buf, nil)
	require.Equal(t, PollReadyValue, status)

	got, err := DecodeF64(buf)
	require.NoError(t, err)
	require.Equal(t, 1234.5678, got)
}

func TestChannelStringRoundTrip(t *testing.T) {
	pair := ChannelString()
	pair.Sender.Send(SendValue, encodedString("ping ping ping ping "))

	buf := make([]byte, ResultBufferSize)
	status := pair.Future.Poll(buf, nil)
	require.Equal(t, PollReadyValue, status)

	got, err := DecodeString(buf)
	require.NoError(t, err)
	require.Equal(t, "ping ping ping ping ", got)
}

func TestSendCopiesPayload(t *testing.T) {
	pair := ChannelString()
	payload := encodedString("original")
	pair.Sender.Send(SendValue, payload)
	// The callee must have copied the payload during the call.
	for i := range payload {
		payload[i] = 0xff
	}

	buf := make([]byte, ResultBufferSize)
	require.Equal(t, PollReadyValue, pair.Future.Poll(buf, nil))
	got, err := DecodeString(buf)
	require.NoError(t, err)
	require.Equal(t, "original", got)
}

func TestPollPendingThenWake(t *testing.T) {
	pair := ChannelF64()
	w := newParkWaker()

	buf := make([]byte, F64Size)
	require.Equal(t, PollPending, pair.Future.Poll(buf, w))

	pair.Sender.Send(SendValue, encodedF64(2.5))
	select {
	case <-w.ch:
	default:
		t.Fatal("waker not invoked by send")
	}
	require.Equal(t, PollReadyValue, pair.Future.Poll(buf, nil))
}

func TestErrorPayloadDecodes(t *testing.T) {
	pair := ChannelF64()
	pair.Sender.Send(SendError, encodedString("kapow"))

	buf := make([]byte, ResultBufferSize)
	status := pair.Future.Poll(buf, nil)
	require.Equal(t, PollReadyError, status)

	msg, err := DecodeString(buf)
	require.NoError(t, err)
	require.Equal(t, "kapow", msg)
}

func TestDoubleSendPanics(t *testing.T) {
	pair := ChannelF64()
	pair.Sender.Send(SendValue, encodedF64(1))
	assert.Panics(t, func() {
		pair.Sender.Send(SendValue, encodedF64(2))
	})
}

func TestSendAfterFutureDropped(t *testing.T) {
	pair := ChannelF64()
	pair.Future.Drop()
	assert.NotPanics(t, func() {
		pair.Sender.Send(SendValue, encodedF64(3))
	})
}

func TestSenderDropResolvesFuture(t *testing.T) {
	pair := ChannelF64()
	pair.Sender.Drop()

	// Only the message crosses the boundary, so the failure surfaces
	// as a RemoteError rather than the native sentinel.
	_, err := AwaitF64(context.Background(), pair.Future)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Contains(t, remote.Message(), "sender dropped")
}

func TestGoF64Await(t *testing.T) {
	fut := GoF64(GoRunner, func() (float64, error) {
		return 6.75, nil
	})
	got, err := AwaitF64(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, 6.75, got)
}

func TestGoF64ErrorSurfacesAsRemoteError(t *testing.T) {
	fut := GoF64(GoRunner, func() (float64, error) {
		return 0, NewRemoteError("kapow")
	})
	_, err := AwaitF64(context.Background(), fut)
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "kapow", remote.Message())
}

func TestGoStringPanicFailsFuture(t *testing.T) {
	fut := GoString(GoRunner, func() (string, error) {
		panic("exploded")
	})
	_, err := AwaitString(context.Background(), fut)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exploded")
}

func TestWaitNative(t *testing.T) {
	fut, snd := oneshot.New[string]()
	go func() {
		time.Sleep(time.Millisecond)
		snd.Send("done")
	}()
	got, err := Wait(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, "done", got)
}

func TestWaitContextCanceled(t *testing.T) {
	fut, snd := oneshot.New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*10)
	defer cancel()

	_, err := Wait(ctx, fut)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The producer keeps running; its send lands in a dropped cell.
	assert.NotPanics(t, func() { snd.Send(1) })
}

func TestExecletRunsSubmittedInOrder(t *testing.T) {
	fut, exec := ExecletChannelF64()

	var order []int
	exec.Submit(func() { order = append(order, 1) })
	exec.Submit(func() { order = append(order, 2) })
	exec.Submit(func() { exec.Send(SendValue, encodedF64(9.5)) })

	got, err := AwaitF64(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, 9.5, got)
	require.Equal(t, []int{1, 2}, order)
}

func TestExecletSubmitFromOtherGoroutineWakes(t *testing.T) {
	fut, exec := ExecletChannelString()
	go func() {
		time.Sleep(time.Millisecond)
		exec.Submit(func() {
			exec.Send(SendValue, encodedString("pong"))
		})
	}()
	got, err := AwaitString(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, "pong", got)
}

func TestExecletError(t *testing.T) {
	fut, exec := ExecletChannelF64()
	exec.Submit(func() {
		exec.Send(SendError, encodedString("kapow"))
	})
	_, err := AwaitF64(context.Background(), fut)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "kapow", remote.Message())
}
