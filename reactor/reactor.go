package reactor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	logger "github.com/moontrade/log"

	"github.com/portside/ferry/pkg/counter"
	"github.com/portside/ferry/pkg/mpsc"
	"github.com/portside/ferry/pkg/pmath"
	"github.com/portside/ferry/pkg/timex"
	"github.com/portside/ferry/pkg/util"
)

var (
	ErrQueueFull = errors.New("queue full")
	ErrStop      = errors.New("stop")
)

const (
	DefaultInvokeQueueSize = 1024
	DefaultWakeQueueSize   = 1024
	DefaultSpawnQueueSize  = 1024
	DefaultWorkerCap       = 10000
)

type Stats struct {
	spawns     counter.Counter
	spawnsDur  counter.TimeCounter
	wakes      counter.Counter
	wakesDur   counter.TimeCounter
	invokes    counter.Counter
	invokesDur counter.TimeCounter
	polls      counter.Counter
	panics     counter.Counter
}

func (s *Stats) Spawns() int64  { return s.spawns.Load() }
func (s *Stats) Wakes() int64   { return s.wakes.Load() }
func (s *Stats) Invokes() int64 { return s.invokes.Load() }
func (s *Stats) Polls() int64   { return s.polls.Load() }
func (s *Stats) Panics() int64  { return s.panics.Load() }

type Config struct {
	Name        string
	InvokeQSize int
	WakeQSize   int
	SpawnQSize  int
	WorkerCap   int32
}

// Reactor runs all tasks on a single goroutine. Lock-free MPSC queues
// accept spawns, wakes and invokes from any goroutine and the loop
// goroutine drains them, so a task's Poll never races with itself.
// Blocking or compute-heavy work belongs on the worker pool via
// SpawnWorker; the completion then signals back through a wake.
type Reactor struct {
	Stats
	name       string
	now        int64
	state      int64
	size       counter.Counter
	idCounter  counter.Counter
	wakeQ      *mpsc.Bounded[*Task]
	spawnQ     *mpsc.Bounded[*Task]
	invokeQ    *mpsc.Bounded[func()]
	tasks      map[int64]*Task
	workerPool gopool.Pool
	ctx        context.Context
	cancel     context.CancelFunc
	stopped    chan struct{}
}

func NewReactor(config Config) (*Reactor, error) {
	if config.Name == "" {
		config.Name = "reactor"
	}
	if config.InvokeQSize <= 4 {
		config.InvokeQSize = DefaultInvokeQueueSize
	}
	if config.WakeQSize <= 4 {
		config.WakeQSize = DefaultWakeQueueSize
	}
	if config.SpawnQSize <= 4 {
		config.SpawnQSize = DefaultSpawnQueueSize
	}
	if config.WorkerCap <= 0 {
		config.WorkerCap = DefaultWorkerCap
	}
	config.InvokeQSize = pmath.CeilToPowerOf2(config.InvokeQSize)
	config.WakeQSize = pmath.CeilToPowerOf2(config.WakeQSize)
	config.SpawnQSize = pmath.CeilToPowerOf2(config.SpawnQSize)
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reactor{
		name:       config.Name,
		wakeQ:      mpsc.NewBounded[*Task](int64(config.WakeQSize), nil),
		spawnQ:     mpsc.NewBounded[*Task](int64(config.SpawnQSize), nil),
		invokeQ:    mpsc.NewBounded[func()](int64(config.InvokeQSize), nil),
		tasks:      make(map[int64]*Task),
		workerPool: gopool.NewPool(config.Name, config.WorkerCap, gopool.NewConfig()),
		ctx:        ctx,
		cancel:     cancel,
		stopped:    make(chan struct{}),
	}
	return r, nil
}

func (r *Reactor) Name() string { return r.name }

func (r *Reactor) Now() int64 { return atomic.LoadInt64(&r.now) }

// Size is the number of live tasks.
func (r *Reactor) Size() int64 { return r.size.Load() }

func (r *Reactor) Start() {
	if !atomic.CompareAndSwapInt64(&r.state, 0, 1) {
		return
	}
	go r.run()
}

func (r *Reactor) Close() error {
	if !atomic.CompareAndSwapInt64(&r.state, 1, 2) {
		return nil
	}
	r.cancel()
	<-r.stopped
	return nil
}

// Spawn schedules future onto the reactor. The future begins executing
// eagerly: the first poll happens as soon as the loop drains the spawn
// queue, not when the result is first awaited.
func (r *Reactor) Spawn(future Future) (*Task, error) {
	if future == nil {
		return nil, errors.New("nil future")
	}
	task := &Task{
		id:      r.idCounter.Incr(),
		reactor: r,
		future:  future,
	}
	if provider, ok := future.(FutureTask); ok {
		provider.SetTask(task)
	}
	if !r.spawnQ.Push(task) {
		return nil, ErrQueueFull
	}
	return task, nil
}

// Wake enqueues task to be polled again.
func (r *Reactor) Wake(task *Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	reactor := task.reactor
	if reactor == nil {
		return errors.New("task is not scheduled")
	}
	if reactor != r {
		return reactor.Wake(task)
	}
	if !r.wakeQ.Push(task) {
		return ErrQueueFull
	}
	return nil
}

// WakeAfter enqueues task to be polled again after the delay.
func (r *Reactor) WakeAfter(task *Task, after time.Duration) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if after <= 0 {
		return r.Wake(task)
	}
	time.AfterFunc(after, func() {
		if err := r.Wake(task); err != nil {
			logger.Warn(err)
		}
	})
	return nil
}

// Invoke runs fn on the reactor goroutine.
func (r *Reactor) Invoke(fn func()) bool {
	if fn == nil {
		return false
	}
	return r.invokeQ.Push(fn)
}

// SpawnWorker runs fn on the worker pool.
func (r *Reactor) SpawnWorker(fn func()) {
	r.workerPool.Go(fn)
}

func (r *Reactor) run() {
	defer func() {
		if e := recover(); e != nil {
			logger.Error(util.PanicToError(e))
		}
		close(r.stopped)
	}()

	var (
		invokeQ     = r.invokeQ
		invokeQWake = invokeQ.Wake()
		wakeQ       = r.wakeQ
		wakeQWake   = wakeQ.Wake()
		spawnQ      = r.spawnQ
		spawnQWake  = spawnQ.Wake()
		done        = r.ctx.Done()
	)

	onSpawn := func(task *Task) {
		r.pollStart(r.now, task)
	}
	onWake := func(task *Task) {
		r.pollWake(r.now, task)
	}
	onFn := func(fn func()) {
		r.invoke(fn)
	}

	// Each flush is bounded by a length snapshot so a task that re-wakes
	// itself during its own poll lands in the next round instead of
	// spinning the current one forever.
	flushSpawnQueue := func() int {
		n := spawnQ.Len()
		if n == 0 {
			return 0
		}
		atomic.StoreInt64(&r.now, timex.NanoTime())
		count := spawnQ.PopMany(n, onSpawn)
		r.spawns.Add(int64(count))
		r.spawnsDur.Add(timex.Since(r.now))
		return count
	}
	flushWakeQueue := func() int {
		n := wakeQ.Len()
		if n == 0 {
			return 0
		}
		atomic.StoreInt64(&r.now, timex.NanoTime())
		count := wakeQ.PopMany(n, onWake)
		r.wakes.Add(int64(count))
		r.wakesDur.Add(timex.Since(r.now))
		return count
	}
	flushInvokeQueue := func() int {
		n := invokeQ.Len()
		if n == 0 {
			return 0
		}
		now := timex.NanoTime()
		count := invokeQ.PopMany(n, onFn)
		r.invokes.Add(int64(count))
		r.invokesDur.Add(timex.Since(now))
		return count
	}

	// The wake channels are edge-triggered: a push only signals when the
	// queue looked empty to the producer. Draining until every queue is
	// empty before blocking guarantees the next push signals.
Loop:
	for {
		n := flushInvokeQueue()
		n += flushWakeQueue()
		n += flushSpawnQueue()

		select {
		case <-done:
			break Loop
		default:
		}

		if n > 0 {
			continue
		}

		select {
		case <-invokeQWake:
		case <-wakeQWake:
		case <-spawnQWake:
		case <-done:
			break Loop
		}
	}

	atomic.StoreInt64(&r.now, timex.NanoTime())
	for _, task := range r.tasks {
		r.stopTask(r.now, task)
	}
}

func (r *Reactor) pollStart(now int64, task *Task) {
	defer func() {
		if e := recover(); e != nil {
			r.panics.Incr()
			logger.Error(util.PanicToError(e), "Reactor.pollStart panic")
			task.stop = true
		}
	}()
	task.started = now
	r.poll(task, Context{
		Task:   task,
		Time:   now,
		Reason: ReasonStart,
	})
	if task.stop {
		r.stopTask(now, task)
		return
	}
	r.tasks[task.id] = task
	r.size.Incr()
	r.afterPoll(task)
}

func (r *Reactor) pollWake(now int64, task *Task) {
	if task.stop {
		return
	}
	defer func() {
		if e := recover(); e != nil {
			r.panics.Incr()
			logger.Error(util.PanicToError(e), "Reactor.pollWake panic")
			task.stop = true
			r.stopTask(now, task)
		}
	}()

	task.wakes++
	r.poll(task, Context{
		Task:   task,
		Time:   now,
		Reason: ReasonWake,
	})
	if task.stop {
		r.stopTask(now, task)
		return
	}
	r.afterPoll(task)
}

func (r *Reactor) poll(task *Task, ctx Context) {
	task.polls++
	task.lastPoll = ctx.Time
	r.polls.Incr()
	err := task.future.Poll(ctx)
	if err != nil {
		if err == ErrStop {
			task.stop = true
		} else {
			logger.Warn(err)
		}
	}
}

func (r *Reactor) afterPoll(task *Task) {
	if task.wakeSelf {
		task.wakeSelf = false
		if !r.wakeQ.Push(task) {
			logger.Warn(ErrQueueFull, "Reactor.afterPoll re-wake dropped")
		}
	}
	if task.wakeAfter > 0 {
		after := task.wakeAfter
		task.wakeAfter = 0
		_ = r.WakeAfter(task, after)
	}
}

func (r *Reactor) stopTask(now int64, task *Task) {
	defer func() {
		if e := recover(); e != nil {
			r.panics.Incr()
			logger.Error(util.PanicToError(e), "Reactor.stopTask panic")
		}
	}()
	if _, ok := r.tasks[task.id]; ok {
		delete(r.tasks, task.id)
		r.size.Decr()
	}
	task.stop = true
	if pc, ok := task.future.(PollClose); ok {
		err := pc.PollClose(CloseEvent{
			Task: task,
			Time: now,
		})
		if err != nil {
			logger.Warn(err)
		}
	}
}

func (r *Reactor) invoke(fn func()) {
	defer func() {
		if e := recover(); e != nil {
			r.panics.Incr()
			logger.Error(util.PanicToError(e), "Reactor.invoke panic")
		}
	}()
	if fn != nil {
		fn()
	}
}
