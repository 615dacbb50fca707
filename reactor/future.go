package reactor

import (
	"time"
)

// Future is a cooperative computation driven by the reactor. Poll is
// invoked on the reactor goroutine; returning ErrStop finishes the
// task, any other error is logged and the task keeps running.
type Future interface {
	Poll(ctx Context) error
}

// PollClose is implemented by futures that want a final callback when
// their task is removed.
type PollClose interface {
	PollClose(ev CloseEvent) error
}

type PollReason uint8

const (
	ReasonStart PollReason = 0
	ReasonWake  PollReason = 1
	ReasonClose PollReason = 2
)

type CloseEvent struct {
	Task   *Task
	Time   int64
	Reason any
}

type Context struct {
	Task   *Task
	Time   int64
	Reason PollReason
}

// Wake polls this task again as soon as the current poll returns.
func (p *Context) Wake() {
	p.Task.wakeSelf = true
}

// WakeAfter polls this task again after the specified duration.
func (p *Context) WakeAfter(duration time.Duration) {
	p.Task.wakeAfter = duration
}

// Stop marks the task to be stopped and removed.
func (p *Context) Stop() {
	p.Task.stop = true
}

// Reactor the task belongs to.
func (p *Context) Reactor() *Reactor {
	return p.Task.reactor
}
