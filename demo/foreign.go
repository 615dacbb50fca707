package demo

import (
	"context"

	"github.com/portside/ferry/bridge"
	"github.com/portside/ferry/reactor"
)

const (
	// foreignWorkers must exceed the ping-pong depth: each recursion
	// level parks one worker while it awaits the native reply.
	foreignWorkers   = 8
	foreignQueueSize = 1024
)

// Foreign simulates the other side of the boundary: a runtime that
// holds no native handles, only the {status, buffer, waker} protocol.
// Its computations run on a blocking pool and complete the paired
// future through an execlet, the same shape a foreign scheduler
// driving native completions would use.
type Foreign struct {
	pool *reactor.BlockingPool
}

func NewForeign() *Foreign {
	return &Foreign{
		pool: reactor.NewBlockingPool(foreignWorkers, foreignQueueSize),
	}
}

func (f *Foreign) Close() error {
	return f.pool.Close()
}

// invoke schedules fn on the foreign pool, spilling to a goroutine if
// the worker queue is full so the paired future always resolves.
func (f *Foreign) invoke(fn func()) {
	if !f.pool.Invoke(fn) {
		go fn()
	}
}

// DotProduct computes the reduction on the foreign scheduler. The
// final completion is submitted through the execlet, so the send runs
// on whichever native goroutine polls the returned future.
func (f *Foreign) DotProduct(c *Ctx) *bridge.FutureF64 {
	fut, exec := bridge.ExecletChannelF64()
	f.invoke(func() {
		v := c.SerialDotProduct()
		buf := make([]byte, bridge.F64Size)
		bridge.EncodeF64(buf, v)
		exec.Submit(func() {
			exec.Send(bridge.SendValue, buf)
		})
	})
	return fut
}

// NotProduct fails immediately from the foreign side.
func (f *Foreign) NotProduct() *bridge.FutureF64 {
	fut, exec := bridge.ExecletChannelF64()
	f.invoke(func() {
		buf := make([]byte, bridge.StringSize("kapow"))
		bridge.EncodeString(buf, "kapow")
		exec.Send(bridge.SendError, buf)
	})
	return fut
}

// PingPong answers the native side's recursion: it drives the native
// computation for the same depth through the boundary surface and
// relays the reply.
func (f *Foreign) PingPong(c *Ctx, i int) *bridge.FutureString {
	fut, exec := bridge.ExecletChannelString()
	f.invoke(func() {
		s, err := bridge.AwaitString(context.Background(), c.PingPong(f, i))
		if err != nil {
			msg := err.Error()
			buf := make([]byte, bridge.StringSize(msg))
			bridge.EncodeString(buf, msg)
			exec.Send(bridge.SendError, buf)
			return
		}
		buf := make([]byte, bridge.StringSize(s))
		bridge.EncodeString(buf, s)
		exec.Send(bridge.SendValue, buf)
	})
	return fut
}
