package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portside/ferry/reactor"
)

func newTestReactor(t *testing.T) *reactor.Reactor {
	t.Helper()
	r, err := reactor.NewReactor(reactor.Config{Name: "bridge-test"})
	require.NoError(t, err)
	r.Start()
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSpawnF64ResolvesThroughReactor(t *testing.T) {
	r := newTestReactor(t)
	pair := ChannelF64()

	fut, err := SpawnF64(r, pair.Future)
	require.NoError(t, err)

	go func() {
		time.Sleep(time.Millisecond * 5)
		pair.Sender.Send(SendValue, encodedF64(42.125))
	}()

	got, err := Wait(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, 42.125, got)
}

func TestSpawnStringErrorDecodes(t *testing.T) {
	r := newTestReactor(t)
	pair := ChannelString()

	fut, err := SpawnString(r, pair.Future)
	require.NoError(t, err)

	pair.Sender.Send(SendError, encodedString("kapow"))

	_, err = Wait(context.Background(), fut)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "kapow", remote.Message())
}

func TestSpawnF64ManyWakeCycles(t *testing.T) {
	r := newTestReactor(t)

	// A poller that reports pending a few times, waking itself, before
	// completing. Exercises repeated suspend/resume through the task.
	pair := ChannelF64()
	remaining := 5
	p := pollerFunc(func(result []byte, waker Waker) uint32 {
		if remaining > 0 {
			remaining--
			w := waker
			go func() { _ = w.Wake() }()
			return PollPending
		}
		return pair.Future.Poll(result, waker)
	})
	pair.Sender.Send(SendValue, encodedF64(7))

	fut, err := SpawnF64(r, p)
	require.NoError(t, err)

	got, err := Wait(context.Background(), fut)
	require.NoError(t, err)
	require.Equal(t, float64(7), got)
}

type pollerFunc func(result []byte, waker Waker) uint32

func (f pollerFunc) Poll(result []byte, waker Waker) uint32 {
	return f(result, waker)
}
