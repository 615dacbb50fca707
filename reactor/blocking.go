package reactor

import (
	"context"
	"math"
	"runtime"
	"sync"

	logger "github.com/moontrade/log"

	"github.com/portside/ferry/pkg/counter"
	"github.com/portside/ferry/pkg/mpsc"
	"github.com/portside/ferry/pkg/pmath"
	"github.com/portside/ferry/pkg/timex"
	"github.com/portside/ferry/pkg/util"
)

// BlockingPool executes tasks that may block, but *should* execute
// rather quickly (<1s). It has a fixed number of worker goroutines and
// tasks are spread among them in round-robin fashion.
type BlockingPool struct {
	started     int64
	workers     []*blockingWorker
	workersMask int64
	jobs        counter.Counter
	jobsDur     counter.TimeCounter
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewBlockingPool(numWorkers, queueSize int) *BlockingPool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
		if numWorkers > 1 {
			numWorkers /= 2
		}
	}
	numWorkers = pmath.CeilToPowerOf2(numWorkers)
	queueSize = pmath.CeilToPowerOf2(queueSize)
	bp := &BlockingPool{
		started:     timex.NanoTime(),
		workers:     make([]*blockingWorker, numWorkers),
		workersMask: int64(numWorkers - 1),
	}
	bp.ctx, bp.cancel = context.WithCancel(context.Background())
	for i := 0; i < numWorkers; i++ {
		worker := &blockingWorker{
			pool:  bp,
			queue: mpsc.NewBounded[func()](int64(queueSize), nil),
		}
		bp.workers[i] = worker
		bp.wg.Add(1)
		go worker.run()
	}
	return bp
}

func (b *BlockingPool) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

func (b *BlockingPool) Jobs() int64 { return b.jobs.Load() }

// Invoke dispatches fn to one of the workers. Returns false when that
// worker's queue is full.
func (b *BlockingPool) Invoke(fn func()) bool {
	if fn == nil {
		return false
	}
	worker := b.workers[b.jobs.Incr()&b.workersMask]
	return worker.queue.Push(fn)
}

type blockingWorker struct {
	pool    *BlockingPool
	queue   *mpsc.Bounded[func()]
	jobs    counter.Counter
	jobsDur counter.TimeCounter
}

func (w *blockingWorker) run() {
	defer w.pool.wg.Done()
	var (
		queue     = w.queue
		queueWake = queue.Wake()
		done      = w.pool.ctx.Done()
	)
	var sw timex.StopWatch
	onTask := func(task func()) {
		w.jobs.Incr()
		sw.Start()
		w.invoke(task)
		elapsed := sw.Elapsed()
		w.jobsDur.Add(elapsed)
		w.pool.jobsDur.Add(elapsed)
	}
	for {
		n := queue.PopMany(math.MaxUint32, onTask)
		if n > 0 {
			runtime.Gosched()
			continue
		}
		select {
		case <-queueWake:
		case <-done:
			return
		}
	}
}

func (w *blockingWorker) invoke(task func()) {
	defer func() {
		if e := recover(); e != nil {
			logger.Warn(util.PanicToError(e), "panic")
		}
	}()
	task()
}
