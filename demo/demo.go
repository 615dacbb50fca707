// Package demo exercises the bridge with the demonstration payload: a
// recursive parallel dot product over generator-derived vectors, an
// immediately failing computation and a bounded ping-pong recursion
// across the boundary surface.
package demo

import (
	"context"

	ants "github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"github.com/portside/ferry/bridge"
	"github.com/portside/ferry/oneshot"
	"github.com/portside/ferry/pkg/xorshift"
)

const (
	DefaultSeed           = 0x243f6a88
	DefaultVectorLength   = 16384
	DefaultSplitThreshold = 32
	DefaultPoolSize       = 1024

	pingPongDepth = 4
)

type Config struct {
	Seed           uint32
	VectorLength   int
	SplitThreshold int
	PoolSize       int
}

// Ctx is the native world: the generated vectors and the worker pool
// the parallel reduction fans out on. Constructed explicitly; nothing
// here is lazily initialized.
type Ctx struct {
	a      []float64
	b      []float64
	split  int
	pool   *ants.Pool
	runner bridge.Runner
}

func NewCtx(config Config) (*Ctx, error) {
	if config.Seed == 0 {
		config.Seed = DefaultSeed
	}
	if config.VectorLength <= 0 {
		config.VectorLength = DefaultVectorLength
	}
	if config.SplitThreshold <= 0 {
		config.SplitThreshold = DefaultSplitThreshold
	}
	if config.PoolSize <= 0 {
		config.PoolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(config.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "demo: worker pool")
	}
	rand := xorshift.NewRand(config.Seed)
	a := make([]float64, config.VectorLength)
	b := make([]float64, config.VectorLength)
	for i := 0; i < config.VectorLength; i++ {
		a[i] = rand.NextFloat()
		b[i] = rand.NextFloat()
	}
	c := &Ctx{
		a:     a,
		b:     b,
		split: config.SplitThreshold,
		pool:  pool,
	}
	// Overload falls back to a plain goroutine so a saturated pool
	// degrades instead of deadlocking blocked parents.
	c.runner = bridge.RunnerFunc(func(fn func()) {
		if err := pool.Submit(fn); err != nil {
			go fn()
		}
	})
	return c, nil
}

func (c *Ctx) Close() {
	c.pool.Release()
}

func (c *Ctx) Runner() bridge.Runner { return c.runner }

// DotProduct exposes the parallel reduction through the boundary poll
// surface. The computation starts eagerly on the pool.
func (c *Ctx) DotProduct() *bridge.FutureF64 {
	return bridge.GoF64(c.runner, func() (float64, error) {
		return c.dot(context.Background(), 0, len(c.a))
	})
}

// dot halves the range while above the split threshold, submits one
// half to the pool and computes the other inline, then joins. The
// split points are a function of the range alone, so the floating
// point association is identical however the halves are scheduled.
func (c *Ctx) dot(ctx context.Context, start, end int) (float64, error) {
	if end-start <= c.split {
		sum := 0.0
		for i := start; i < end; i++ {
			sum += c.a[i] * c.b[i]
		}
		return sum, nil
	}
	mid := (start + end) / 2
	fut, snd := oneshot.New[float64]()
	c.runner.Go(func() {
		v, err := c.dot(ctx, start, mid)
		if err != nil {
			snd.Fail(err)
			return
		}
		snd.Send(v)
	})
	second, err := c.dot(ctx, mid, end)
	if err != nil {
		fut.Drop()
		return 0, err
	}
	first, err := bridge.Wait(ctx, fut)
	if err != nil {
		return 0, errors.Wrap(err, "demo: join split half")
	}
	return first + second, nil
}

// SerialDotProduct computes the same reduction single-threaded, with
// the same split structure, so the result is comparable bit for bit.
func (c *Ctx) SerialDotProduct() float64 {
	return c.dotSerial(0, len(c.a))
}

func (c *Ctx) dotSerial(start, end int) float64 {
	if end-start <= c.split {
		sum := 0.0
		for i := start; i < end; i++ {
			sum += c.a[i] * c.b[i]
		}
		return sum
	}
	mid := (start + end) / 2
	return c.dotSerial(start, mid) + c.dotSerial(mid, end)
}

// NotProduct is a computation that fails immediately, exercising the
// error path across the boundary.
func (c *Ctx) NotProduct() *bridge.FutureF64 {
	return bridge.GoF64(c.runner, func() (float64, error) {
		return 0, errors.New("kapow")
	})
}

// PingPong recurses across the boundary: below the depth bound it
// awaits the foreign side's reply for i+1 and appends one token.
func (c *Ctx) PingPong(f *Foreign, i int) *bridge.FutureString {
	return bridge.GoString(c.runner, func() (string, error) {
		if i >= pingPongDepth {
			return "", nil
		}
		s, err := bridge.AwaitString(context.Background(), f.PingPong(c, i+1))
		if err != nil {
			return "", err
		}
		return s + "ping ", nil
	})
}
