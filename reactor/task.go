package reactor

import (
	"time"
)

// Waker is the capability to reschedule a pending computation. *Task
// implements it, so a task handle can be handed to any completion
// source as an opaque wake token.
type Waker interface {
	Wake() error
}

// TaskProvider embeds a back-reference to the owning task into a
// Future. Spawn wires it up when the future implements FutureTask.
type TaskProvider struct {
	task *Task
}

func (tp *TaskProvider) Task() *Task        { return tp.task }
func (tp *TaskProvider) SetTask(task *Task) { tp.task = task }

func (tp *TaskProvider) Wake() error {
	t := tp.task
	if t == nil {
		return nil
	}
	return t.Wake()
}

func (tp *TaskProvider) Reactor() *Reactor {
	t := tp.task
	if t == nil {
		return nil
	}
	return t.reactor
}

// FutureTask is implemented by futures that want their task handle.
type FutureTask interface {
	SetTask(task *Task)
}

// Task is the reactor's handle to one spawned future. All mutable
// fields are owned by the reactor goroutine; Wake and WakeAfter are
// the only operations safe from other goroutines.
type Task struct {
	id        int64
	reactor   *Reactor
	future    Future
	started   int64
	lastPoll  int64
	wakes     int64
	polls     int64
	wakeAfter time.Duration
	wakeSelf  bool
	stop      bool
}

func (t *Task) ID() int64         { return t.id }
func (t *Task) Reactor() *Reactor { return t.reactor }
func (t *Task) Future() Future    { return t.future }
func (t *Task) Started() int64    { return t.started }
func (t *Task) LastPoll() int64   { return t.lastPoll }
func (t *Task) Wakes() int64      { return t.wakes }
func (t *Task) Polls() int64      { return t.polls }
func (t *Task) Stopped() bool     { return t.stop }

// Wake enqueues the task to be polled again. Safe from any goroutine.
func (t *Task) Wake() error {
	reactor := t.reactor
	if reactor == nil {
		return nil
	}
	return reactor.Wake(t)
}

// WakeAfter enqueues the task to be polled again after duration.
func (t *Task) WakeAfter(duration time.Duration) error {
	reactor := t.reactor
	if reactor == nil {
		return nil
	}
	return reactor.WakeAfter(t, duration)
}
