// Package oneshot provides a single-producer single-consumer handoff
// cell carrying exactly one value or exactly one failure. The pair is
// the completion primitive used to move a result computed on one
// scheduler into a future observed on another.
package oneshot

import (
	"errors"

	"github.com/portside/ferry/pkg/spinlock"
)

// Status is the result of polling a Future.
type Status uint32

const (
	// Pending means no completion has arrived; the waker was recorded.
	Pending Status = iota
	// ReadyValue means the value was moved into the poll destination.
	ReadyValue
	// ReadyError means the producer failed; the error is returned
	// alongside the status.
	ReadyError
)

// Waker is the capability to reschedule the consumer of a pending
// future. Implementations must be safe to invoke from any goroutine.
type Waker interface {
	Wake() error
}

// ErrSenderDropped completes a future whose sender was dropped
// before sending.
var ErrSenderDropped = errors.New("oneshot: sender dropped before send")

const (
	stateEmpty = iota
	stateFilled
	stateFailed
	stateConsumed
)

// cell is the shared single-assignment slot. The spinlock guards the
// {empty, filled/failed, consumed} transition and the waker slot; the
// critical sections are a handful of loads and stores.
type cell[T any] struct {
	mu      spinlock.Mutex
	state   uint32
	value   T
	err     error
	waker   Waker
	sent    bool
	dropped bool
}

// Future is the exclusive read side of a oneshot pair. It is consumed
// by the first poll that observes completion.
type Future[T any] struct {
	cell *cell[T]
}

// Sender is the exclusive write side of a oneshot pair. Exactly one
// of Send or Fail may be called, exactly once.
type Sender[T any] struct {
	cell *cell[T]
}

// New allocates the shared cell and returns the paired handles.
func New[T any]() (*Future[T], *Sender[T]) {
	c := &cell[T]{}
	return &Future[T]{cell: c}, &Sender[T]{cell: c}
}

// Send completes the pair with value. A second completion on the same
// pair is a broken producer contract and panics. Sending after the
// future was dropped silently discards value.
func (s *Sender[T]) Send(value T) {
	c := s.cell
	c.mu.Lock()
	if c.sent {
		c.mu.Unlock()
		panic("oneshot: double send")
	}
	c.sent = true
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.value = value
	c.state = stateFilled
	w := c.waker
	c.waker = nil
	c.mu.Unlock()
	if w != nil {
		_ = w.Wake()
	}
}

// Fail completes the pair with err. Same contract as Send.
func (s *Sender[T]) Fail(err error) {
	c := s.cell
	c.mu.Lock()
	if c.sent {
		c.mu.Unlock()
		panic("oneshot: double send")
	}
	c.sent = true
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.err = err
	c.state = stateFailed
	w := c.waker
	c.waker = nil
	c.mu.Unlock()
	if w != nil {
		_ = w.Wake()
	}
}

// Drop releases the sender without completing. If nothing was sent the
// future resolves to ErrSenderDropped so the consumer never waits on a
// completion that cannot arrive.
func (s *Sender[T]) Drop() {
	c := s.cell
	c.mu.Lock()
	if c.sent {
		c.mu.Unlock()
		return
	}
	c.sent = true
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.err = ErrSenderDropped
	c.state = stateFailed
	w := c.waker
	c.waker = nil
	c.mu.Unlock()
	if w != nil {
		_ = w.Wake()
	}
}

// Poll reads the cell. On ReadyValue the value is moved into dst and
// the cell is consumed. On ReadyError the failure is returned and the
// cell is consumed. Otherwise waker is recorded (last writer wins
// across repeated pending polls) and Pending is returned. Polling a
// consumed future is a contract violation and panics.
func (f *Future[T]) Poll(dst *T, waker Waker) (Status, error) {
	c := f.cell
	c.mu.Lock()
	switch c.state {
	case stateFilled:
		c.state = stateConsumed
		if dst != nil {
			*dst = c.value
		}
		var zero T
		c.value = zero
		c.mu.Unlock()
		return ReadyValue, nil
	case stateFailed:
		c.state = stateConsumed
		err := c.err
		c.mu.Unlock()
		return ReadyError, err
	case stateConsumed:
		c.mu.Unlock()
		panic("oneshot: poll after consume")
	default:
		c.waker = waker
		c.mu.Unlock()
		return Pending, nil
	}
}

// Drop detaches the reader. A later Send or Fail on the paired sender
// becomes a no-op instead of a fault.
func (f *Future[T]) Drop() {
	c := f.cell
	c.mu.Lock()
	c.dropped = true
	c.waker = nil
	c.mu.Unlock()
}
